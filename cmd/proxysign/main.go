package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var secret string

	rootCmd := &cobra.Command{
		Use:   "proxysign",
		Short: "Sign and verify app-proxy request URLs",
		Long: `proxysign produces upload authorization URLs carrying a valid app-proxy
signature, and checks the signature of existing URLs.

The shared secret defaults to $SHOPIFY_API_SECRET.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("SHOPIFY_API_SECRET"), "shared proxy secret")

	rootCmd.AddCommand(NewURLCommand())
	rootCmd.AddCommand(NewVerifyCommand())

	return rootCmd
}
