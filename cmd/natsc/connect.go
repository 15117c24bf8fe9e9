package main

import (
	"context"
	"time"

	"github.com/kartikbazzad/natsio"
)

func connectClient(ctx context.Context) (*natsio.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return natsio.Connect(dialCtx, natsio.ConnectOptions{
		ClusterURI: clusterURI,
		TLS:        useTLS,
		Name:       clientName,
	})
}
