package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/app"
	redisstore "github.com/MrSnakeDoc/linkdash/internal/store/redis"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the degraded-mode cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Remove every cached snapshot from redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := app.OpenBackend(cfg, log)
		if err != nil {
			return err
		}
		defer backend.Close(log)

		cache, ok := backend.Cache.(*redisstore.Cache)
		if !ok {
			return errors.New("no redis cache configured (set LINKDASH_REDIS_ADDR)")
		}
		if err := cache.Flush(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache flushed")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
}
