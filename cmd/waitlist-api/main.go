package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Waitlist API
// @version 1.0.0
// @description Email waitlist enrollment with stable queue positions.
// @BasePath /api
// @schemes http https

var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:           "waitlist-api",
		Short:         "Waitlist enrollment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
)

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd(), versionCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
