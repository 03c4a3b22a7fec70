package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/session"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Sessions     *session.Manager                // per-user layered stores
	Resolver     identity.Resolver               // maps requests to users
	StorageName  string                          // primary adapter name, for status endpoints
	StoragePing  func(ctx context.Context) error // primary adapter health check (nil = always ok)
	RedisClient  *redis.Client                   // optional degraded-mode cache connection
	ImportBurst  int                             // import rate limit burst
	ImportPerMin int                             // import rate limit refill
}
