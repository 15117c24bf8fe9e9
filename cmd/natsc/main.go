// Command natsc is a small interactive client for exercising natsio
// against a running cluster: publish, subscribe, and request/reply from
// the shell, or drop into a REPL when no subcommand is given.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	clusterURI string
	clientName string
	useTLS     bool
)

var rootCmd = &cobra.Command{
	Use:   "natsc",
	Short: "natsio command-line client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&clusterURI, "server", "127.0.0.1:4222", "cluster address (host:port)")
	rootCmd.PersistentFlags().StringVar(&clientName, "name", "natsc", "client name reported in CONNECT")
	rootCmd.PersistentFlags().BoolVar(&useTLS, "tls", false, "require TLS")

	rootCmd.AddCommand(pubCmd, subCmd, requestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
