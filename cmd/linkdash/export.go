package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/utils"
)

var (
	exportOut  string
	exportUser string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every collection as a JSON bundle",
	Long: `Export writes the layered bundle accepted by import.

Without --user every collection is exported. With --user only the global
collection and that user's personal collection are.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, admin := "admin", true
		if exportUser != "" {
			username, admin = exportUser, false
		}

		store, backend, err := openStore(cmd.Context(), username, admin)
		if err != nil {
			return err
		}
		defer backend.Close(log)

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer utils.MustClose(f, exportOut, log)
			w = f
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(store.Export())
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportUser, "user", "", "export only what this user can see")
}
