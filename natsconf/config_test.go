package natsconf

import (
	"os"
	"testing"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NATSIO_CONN_CLUSTER_URI", "127.0.0.1:4222")
	t.Setenv("NATSIO_CONN_TLS", "true")
	t.Setenv("NATSIO_LOG_LEVEL", "debug")

	// Avoid picking up a stray .env file from the working directory.
	if _, err := os.Stat(".env"); err == nil {
		t.Skip(".env present in test working directory, skipping to avoid cross-contamination")
	}

	var cfg ClientConfig
	if err := Load("NATSIO_", &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Conn.ClusterURI != "127.0.0.1:4222" {
		t.Fatalf("ClusterURI = %q", cfg.Conn.ClusterURI)
	}
	if !cfg.Conn.TLS {
		t.Fatal("TLS = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q", cfg.Log.Level)
	}
}
