package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kartikbazzad/natsio"
)

var pubCmd = &cobra.Command{
	Use:   "pub <subject> <message>",
	Short: "Publish one message and exit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connectClient(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		subject, data := args[0], []byte(args[1])
		if err := c.Publish(natsio.PubCmd{Subject: subject, Data: data}); err != nil {
			return err
		}
		fmt.Printf("published %s to %q\n", humanize.Bytes(uint64(len(data))), subject)
		return nil
	},
}
