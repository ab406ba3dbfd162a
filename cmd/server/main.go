// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/partygames/internal/cache"
	"github.com/jason-s-yu/partygames/internal/config"
	"github.com/jason-s-yu/partygames/internal/game/identity"
	"github.com/jason-s-yu/partygames/internal/game/majority"
	"github.com/jason-s-yu/partygames/internal/handlers"
	"github.com/jason-s-yu/partygames/internal/history"
	"github.com/jason-s-yu/partygames/internal/middleware"
	"github.com/jason-s-yu/partygames/internal/realtime"
	"github.com/jason-s-yu/partygames/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := &config.Server{}
	cmd := &cobra.Command{
		Use:           "partygames",
		Short:         "Room server for the color-majority and identity-map party games.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterServerFlags(cmd.Flags(), cfg)
	config.BindEnv(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *config.Server) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	var (
		majorityStore store.Store[majority.GameState] = store.NewMemory[majority.GameState]()
		identityStore store.Store[identity.GameState] = store.NewMemory[identity.GameState]()
		recorder      history.Recorder                = history.Nop{}
		limiter       middleware.Limiter              = middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow)
		rdb           *redis.Client
	)

	if cfg.Redis.Enabled() {
		var err error
		rdb, err = cache.Connect(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		majorityStore = store.NewRedis[majority.GameState](rdb, "partygames:"+handlers.GameColorMajority, cfg.RoomTTL)
		identityStore = store.NewRedis[identity.GameState](rdb, "partygames:"+handlers.GameIdentityMap, cfg.RoomTTL)
		recorder = cache.NewQueueRecorder(rdb, cfg.HistoryQueue)
		logger.WithField("addr", cfg.Redis.Addr).Info("using Redis for rooms and history")
	} else {
		logger.Info("no Redis configured; rooms live in memory and history is not recorded")
	}
	if cfg.RateLimitBackend == config.BackendRedis {
		limiter = middleware.NewRedisLimiter(rdb, "partygames:ratelimit", cfg.RateLimit, cfg.RateWindow)
	}

	router := httprouter.New()
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		logger.WithField("path", r.URL.Path).Errorf("panic: %v", v)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}

	handlers.NewAPIServer(handlers.Options{
		Logger:       logger,
		Majority:     majorityStore,
		Identity:     identityStore,
		Hub:          realtime.NewHub(logger),
		Recorder:     recorder,
		StrictWrites: cfg.StrictWrites,
		PublicURL:    cfg.PublicURL,
	}).Register(router)

	handler := middleware.LogMiddleware(logger)(
		middleware.RateLimit(logger, limiter, cfg.RateWindow)(router),
	)

	// no write timeout: websocket subscriptions are long-lived
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("partygames v%s listening on %s", releaseVersion, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
