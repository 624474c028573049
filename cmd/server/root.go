package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mailgateway",
		Short: "OAuth session gateway for reading a Google mailbox",
		Long: `mailgateway signs users in with Google, keeps their credentials in a
server-side session and exposes a small JSON API over their mailbox.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "mailgateway version %s\n" .Version}}`)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd(version))
	return rootCmd
}

// Execute runs the CLI. With no subcommand the gateway is served.
func Execute(version string) {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}
	if err := newRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("mailgateway version %s\n", version)
		},
	}
}
