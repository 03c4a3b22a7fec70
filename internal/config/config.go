package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for the primary adapter.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Identity resolution modes.
const (
	IdentityHeader = "header"
	IdentityJWT    = "jwt"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage    string // "file" | "redis" | "sqlite"
	StorageDir string // root of the file adapter (ex: /etc/linkdash)
	SQLitePath string // database file of the sqlite adapter

	// Identity
	IdentityMode string // "header" | "jwt"
	UserHeader   string // header carrying the username (header mode)
	AdminHeader  string // header carrying the admin flag (header mode)
	JWTSecret    string // HS256 secret (jwt mode)

	// Sessions
	SessionTTL   time.Duration // idle time before a session is dropped
	SessionSweep time.Duration // interval between idle session sweeps

	// Import rate limit
	ImportBurst  int // max imports in a burst
	ImportPerMin int // sustained imports per minute

	// Redis (optional unless Storage is "redis"; also serves as degraded-mode cache)
	RedisAddr           string        // ex: "localhost:6379", empty = disabled
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisCacheTTL       time.Duration // lifetime of degraded-mode cache entries
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /infra to specific IP ranges (e.g. "10.0.0.0/8, 1.2.3.4")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// RedisEnabled reports whether a redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKDASH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKDASH_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKDASH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKDASH_PRETTY_LOG", true),

		// Storage
		Storage:    strings.ToLower(getenv("LINKDASH_STORAGE", StorageFile)),
		StorageDir: getenv("LINKDASH_STORAGE_DIR", "/etc/linkdash"),
		SQLitePath: getenv("LINKDASH_SQLITE_PATH", "/var/lib/linkdash/linkdash.db"),

		// Identity
		IdentityMode: strings.ToLower(getenv("LINKDASH_IDENTITY_MODE", IdentityHeader)),
		UserHeader:   getenv("LINKDASH_USER_HEADER", "X-Remote-User"),
		AdminHeader:  getenv("LINKDASH_ADMIN_HEADER", "X-Remote-Admin"),
		JWTSecret:    getenv("LINKDASH_JWT_SECRET", ""),

		// Sessions
		SessionTTL:   mustDuration("LINKDASH_SESSION_TTL", 30*time.Minute),
		SessionSweep: mustDuration("LINKDASH_SESSION_SWEEP", 5*time.Minute),

		// Import rate limit
		ImportBurst:  getenvInt("LINKDASH_IMPORT_BURST", 5),
		ImportPerMin: getenvInt("LINKDASH_IMPORT_PER_MIN", 10),

		// Redis settings
		RedisAddr:           getenv("LINKDASH_REDIS_ADDR", ""),
		RedisUser:           getenv("LINKDASH_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("LINKDASH_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LINKDASH_REDIS_DB", 0),
		RedisCacheTTL:       mustDuration("LINKDASH_REDIS_CACHE_TTL", 7*24*time.Hour),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKDASH_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKDASH_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKDASH_TRUST_PROXY", true),
	}

	switch cfg.Storage {
	case StorageFile, StorageSQLite:
	case StorageRedis:
		cfg.RedisAddr = requireEnv("LINKDASH_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: LINKDASH_STORAGE must be file, redis or sqlite, got %q", cfg.Storage))
	}

	switch cfg.IdentityMode {
	case IdentityHeader:
	case IdentityJWT:
		cfg.JWTSecret = requireEnv("LINKDASH_JWT_SECRET")
	default:
		panic(fmt.Sprintf("❌ FATAL: LINKDASH_IDENTITY_MODE must be header or jwt, got %q", cfg.IdentityMode))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		if cfg.JWTSecret != "" {
			cfgCopy.JWTSecret = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
