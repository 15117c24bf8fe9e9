package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kartikbazzad/natsio"
)

var subCmd = &cobra.Command{
	Use:   "sub <subject>",
	Short: "Subscribe and print messages until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connectClient(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		sub, err := c.Subscribe(natsio.SubCmd{Subject: args[0]})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("listening on %q (ctrl-c to stop)\n", args[0])
		for {
			select {
			case msg, ok := <-sub.Messages():
				if !ok {
					return nil
				}
				fmt.Printf("[%s] %s: %s\n", humanize.Bytes(uint64(len(msg.Data))), msg.Subject, msg.Data)
			case <-sigCh:
				return nil
			}
		}
	},
}
