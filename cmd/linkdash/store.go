package main

import (
	"context"

	"github.com/MrSnakeDoc/linkdash/internal/app"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/linkstore"
)

// openStore connects the configured storage and loads a store acting as
// username. The caller closes the returned backend.
func openStore(ctx context.Context, username string, admin bool) (*linkstore.Store, *app.Backend, error) {
	backend, err := app.OpenBackend(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	store := linkstore.New(linkstore.Options{
		Adapter: backend.Adapter,
		Oracle:  identity.NewStatic(username, admin),
		Logger:  log,
	})
	store.LoadAll(ctx)
	return store, backend, nil
}
