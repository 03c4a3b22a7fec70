// Command linkdash serves and administers the layered bookmark store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/config"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

var (
	// cfg and log are loaded once by PersistentPreRun.
	cfg *config.Config
	log logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ linkdash: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "linkdash",
	Short: "LinkDash is a layered bookmark dashboard",
	Long: `LinkDash keeps one global collection of links shared by everyone and one
personal collection per user, and serves their merged view over HTTP.

Configuration is read from LINKDASH_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" {
			return
		}
		cfg = config.Load()
		log = logger.New(cfg.LogLevel, cfg.PrettyLog)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importHomepageCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}
