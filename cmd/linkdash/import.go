package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/linkstore"
	"github.com/MrSnakeDoc/linkdash/internal/sources/homepage"
)

var importUser string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON bundle into the configured storage",
	Long: `Import replaces collections with the content of a JSON bundle.

Two shapes are accepted:
  {"globalLinks": [...], "personalLinks": {"alice": [...]}}  layered
  [...] or {"links": [...]}                                 legacy, global only

Every collection named in the bundle replaces the stored one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read bundle: %w", err)
		}
		return importBundle(cmd, data)
	},
}

var importHomepageCmd = &cobra.Command{
	Use:   "import-homepage <bookmarks.yaml|services.yaml>",
	Short: "Import a Homepage configuration as the global collection",
	Long: `Converts Homepage (gethomepage.dev) services or bookmarks into global links.
Each category becomes a group. The global collection is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := homepage.LoadLinks(args[0])
		if err != nil {
			return err
		}
		data, err := json.Marshal(links)
		if err != nil {
			return fmt.Errorf("encode homepage links: %w", err)
		}
		return importBundle(cmd, data)
	},
}

func init() {
	for _, c := range []*cobra.Command{importCmd, importHomepageCmd} {
		c.Flags().StringVar(&importUser, "user", "admin", "administrator performing the import")
	}
}

func importBundle(cmd *cobra.Command, data []byte) error {
	ctx := cmd.Context()

	store, backend, err := openStore(ctx, importUser, true)
	if err != nil {
		return err
	}
	defer backend.Close(log)

	bundle, err := store.ParseBundle(data)
	if err != nil {
		return err
	}
	if err := store.ImportBundle(ctx, bundle); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", describe(bundle))
	return nil
}

func describe(b linkstore.Bundle) string {
	out := ""
	if b.HasGlobal {
		out = fmt.Sprintf("%d global links", len(b.Global))
	}
	for owner, links := range b.Personal {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d links for %s", len(links), owner)
	}
	if out == "" {
		out = "nothing"
	}
	return out
}
