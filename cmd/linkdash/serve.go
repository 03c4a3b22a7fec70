package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default command)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}
