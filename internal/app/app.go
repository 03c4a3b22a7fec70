package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/config"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver"
	"github.com/MrSnakeDoc/linkdash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/session"
	"github.com/MrSnakeDoc/linkdash/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	backend  *Backend
	sessions *session.Manager
	reaper   *session.Reaper
}

func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	backend, err := OpenBackend(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(backend.Adapter, backend.Cache, loggerClient)
	reaper := session.NewReaper(sessions, loggerClient, cfg.SessionSweep, cfg.SessionTTL)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Sessions:     sessions,
		Resolver:     NewResolver(cfg),
		StorageName:  backend.Adapter.Name(),
		StoragePing:  backend.Ping,
		RedisClient:  backend.RedisClient,
		ImportBurst:  cfg.ImportBurst,
		ImportPerMin: cfg.ImportPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		backend:  backend,
		sessions: sessions,
		reaper:   reaper,
	}, nil
}

// NewResolver returns the request resolver for the configured identity mode.
func NewResolver(cfg *config.Config) identity.Resolver {
	if cfg.IdentityMode == config.IdentityJWT {
		return identity.NewJWTResolver(cfg.JWTSecret)
	}
	return identity.HeaderResolver{
		UserHeader:  cfg.UserHeader,
		AdminHeader: cfg.AdminHeader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting LinkDash v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("LinkDash %s", version.Current())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start idle session reaper
	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.SessionSweep),
		logger.Duration("ttl", a.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.shutdownStores()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.shutdownStores()
	a.logger.Info("✅ LinkDash stopped cleanly")
	return nil
}

// shutdownStores stops background work, warns about unsaved changes and
// releases the storage connections.
func (a *App) shutdownStores() {
	a.reaper.Stop()

	for _, s := range a.sessions.Sessions() {
		if dirty := s.Store.Dirty(); dirty.Any() {
			a.logger.Warn("session closed with unsaved changes",
				logger.String("user", s.Username),
				logger.Bool("global", dirty.Global),
				logger.Strings("personal", dirty.Personal))
		}
	}
	a.sessions.CloseAll()

	a.backend.Close(a.logger)
}
