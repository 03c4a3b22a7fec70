package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkdash/internal/config"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

var (
	tokenAdmin bool
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Mint a bearer token for jwt identity mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IdentityMode != config.IdentityJWT {
			return errors.New("tokens are only used with LINKDASH_IDENTITY_MODE=jwt")
		}
		if !storage.ValidUsername(args[0]) {
			return errors.New("invalid username")
		}

		token, err := identity.NewJWTResolver(cfg.JWTSecret).Issue(args[0], tokenAdmin, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant administrator rights")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
