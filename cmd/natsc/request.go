package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var requestTimeout time.Duration

var requestCmd = &cobra.Command{
	Use:   "request <subject> <message>",
	Short: "Publish a request and wait for a single reply",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connectClient(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reply, err := c.Request(ctx, args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(string(reply.Data))
		return nil
	},
}

func init() {
	requestCmd.Flags().DurationVar(&requestTimeout, "timeout", 5*time.Second, "how long to wait for a reply")
}
