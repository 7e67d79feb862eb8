package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipi",
	Short: "LINE photo relay",
	Long: "pipi receives LINE webhook events, forwards image attachments to the media host,\n" +
		"records them in PostgreSQL and serves a small gallery with live updates.",
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, initDBCmd, updateDBCmd, hashPasswordCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
