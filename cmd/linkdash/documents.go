package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/app"
	redisstore "github.com/MrSnakeDoc/linkdash/internal/store/redis"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List the documents held by redis storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := app.OpenBackend(cfg, log)
		if err != nil {
			return err
		}
		defer backend.Close(log)

		store, ok := backend.Adapter.(*redisstore.Store)
		if !ok {
			return errors.New("documents can only be listed with LINKDASH_STORAGE=redis")
		}
		keys, err := store.Keys(cmd.Context())
		if err != nil {
			return err
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}
