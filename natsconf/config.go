// Package natsconf loads client configuration from an optional .env file
// and environment variables, the same way the rest of the monorepo this
// client was split out of configures its services.
package natsconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load populates target (a pointer to a struct with mapstructure/viper
// tags) from a .env file in the working directory, if present, and from
// environment variables beginning with prefix.
//
// An env var NATSIO_CONN_CLUSTER_URI with prefix "NATSIO_" becomes the key
// conn.cluster_uri: the first underscore after the prefix separates the
// section from the key, and later underscores stay part of the key name.
func Load(prefix string, target interface{}) error {
	v := viper.New()

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("natsconf: read .env: %w", err)
		}
	}

	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		key, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(key, prefixUpper) {
			continue
		}
		propKey := strings.TrimPrefix(strings.TrimPrefix(key, prefixUpper), "_")
		propKey = strings.ToLower(strings.Replace(propKey, "_", ".", 1))
		v.Set(propKey, value)
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("natsconf: unmarshal: %w", err)
	}
	return nil
}

// ClientConfig is a client configuration shape for Load("NATSIO_", ...).
// cmd/natsc does not use it; natsc takes its settings from command-line
// flags.
type ClientConfig struct {
	Conn struct {
		ClusterURI string `mapstructure:"cluster_uri"`
		TLS        bool   `mapstructure:"tls"`
		Name       string `mapstructure:"name"`
		User       string `mapstructure:"user"`
		Pass       string `mapstructure:"pass"`
		AuthToken  string `mapstructure:"auth_token"`
	} `mapstructure:"conn"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}
