package main

import (
	"fmt"
	"os"

	"github.com/detachd/portal/cmd/cli/claims"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(claims.Group)
	rootCmd.AddCommand(claims.List)
	rootCmd.AddCommand(claims.Seed)
}

var rootCmd = &cobra.Command{
	Use:  "detachd-cli",
	Long: `Command line utilities for the Detachd claims portal`,
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
