package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PARTYGAMES_REDIS_ADDR.
const EnvPrefix = "PARTYGAMES"

// Rate limiter backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Redis holds the connection settings shared by the server and historian.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

// Server configures cmd/server.
type Server struct {
	Bind      string
	Port      int
	PublicURL string
	Redis     Redis

	RoomTTL      time.Duration
	StrictWrites bool

	RateLimit        int
	RateWindow       time.Duration
	RateLimitBackend string

	HistoryQueue string
	Verbose      bool
}

// Historian configures cmd/historian.
type Historian struct {
	DatabaseURL   string
	Redis         Redis
	HistoryQueue  string
	BatchSize     int
	FlushInterval time.Duration
	Verbose       bool
}

// Validate rejects settings the server cannot run with.
func (c *Server) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.RateLimitBackend {
	case BackendMemory:
	case BackendRedis:
		if !c.Redis.Enabled() {
			return errors.New("--rate-limit-backend=redis requires --redis-addr")
		}
	default:
		return fmt.Errorf("unknown rate limit backend %q (want %s or %s)", c.RateLimitBackend, BackendMemory, BackendRedis)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("invalid rate window: %s", c.RateWindow)
	}
	if c.RoomTTL < 0 {
		return fmt.Errorf("invalid room ttl: %s", c.RoomTTL)
	}
	return nil
}

// Addr is the listen address.
func (c *Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func (c *Historian) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("--database-url is required")
	}
	if !c.Redis.Enabled() {
		return errors.New("--redis-addr is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch size: %d", c.BatchSize)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("invalid flush interval: %s", c.FlushInterval)
	}
	return nil
}

// RegisterServerFlags declares the server's flags on fs.
func RegisterServerFlags(fs *pflag.FlagSet, cfg *Server) {
	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: PARTYGAMES_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: PARTYGAMES_PORT)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "base URL encoded in join QR codes, defaults to the request host (env: PARTYGAMES_PUBLIC_URL)")
	registerRedisFlags(fs, &cfg.Redis)
	fs.DurationVar(&cfg.RoomTTL, "room-ttl", 24*time.Hour, "idle room expiry in Redis, 0 keeps rooms forever (env: PARTYGAMES_ROOM_TTL)")
	fs.BoolVar(&cfg.StrictWrites, "strict-writes", false, "reject concurrent writes to the same room with 409 (env: PARTYGAMES_STRICT_WRITES)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 60, "requests per client IP per window on /api/ (env: PARTYGAMES_RATE_LIMIT)")
	fs.DurationVar(&cfg.RateWindow, "rate-window", time.Minute, "rate limit window (env: PARTYGAMES_RATE_WINDOW)")
	fs.StringVar(&cfg.RateLimitBackend, "rate-limit-backend", BackendMemory, "rate limiter backend, memory or redis (env: PARTYGAMES_RATE_LIMIT_BACKEND)")
	fs.StringVar(&cfg.HistoryQueue, "history-queue", "partygames_actions", "Redis list receiving action records (env: PARTYGAMES_HISTORY_QUEUE)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: PARTYGAMES_VERBOSE)")
}

// RegisterHistorianFlags declares the historian's flags on fs.
func RegisterHistorianFlags(fs *pflag.FlagSet, cfg *Historian) {
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres connection string (env: PARTYGAMES_DATABASE_URL)")
	registerRedisFlags(fs, &cfg.Redis)
	fs.StringVar(&cfg.HistoryQueue, "history-queue", "partygames_actions", "Redis list to drain (env: PARTYGAMES_HISTORY_QUEUE)")
	fs.IntVar(&cfg.BatchSize, "batch-size", 20, "records per database transaction (env: PARTYGAMES_BATCH_SIZE)")
	fs.DurationVar(&cfg.FlushInterval, "flush-interval", 500*time.Millisecond, "maximum delay before a partial batch is written (env: PARTYGAMES_FLUSH_INTERVAL)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: PARTYGAMES_VERBOSE)")
}

func registerRedisFlags(fs *pflag.FlagSet, r *Redis) {
	fs.StringVar(&r.Addr, "redis-addr", "", "Redis address; empty keeps rooms in memory (env: PARTYGAMES_REDIS_ADDR)")
	fs.StringVar(&r.Password, "redis-password", "", "Redis password (env: PARTYGAMES_REDIS_PASSWORD)")
	fs.IntVar(&r.DB, "redis-db", 0, "Redis database index (env: PARTYGAMES_REDIS_DB)")
}

// BindEnv seeds flags from PARTYGAMES_* environment variables. Call it after
// registering flags and before parsing, so command-line values still win.
// Flag names may be given with underscores or dashes.
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
