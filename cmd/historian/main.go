// cmd/historian is an asynchronous historian service that pops action records
// from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/partygames/internal/cache"
	"github.com/jason-s-yu/partygames/internal/config"
	"github.com/jason-s-yu/partygames/internal/database"
	"github.com/jason-s-yu/partygames/internal/history"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cfg := &config.Historian{}
	cmd := &cobra.Command{
		Use:           "partygames-historian",
		Short:         "Drains the partygames action queue into Postgres.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterHistorianFlags(cmd.Flags(), cfg)
	config.BindEnv(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *config.Historian) error {
	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	h := &history.Historian{
		Source:     history.NewRedisSource(rdb, cfg.HistoryQueue),
		Sink:       database.NewActionLog(pool),
		BatchSize:  cfg.BatchSize,
		FlushDelay: cfg.FlushInterval,
		Logger:     logger,
	}
	h.Run(ctx)
	logger.Info("historian shutdown complete")
	return nil
}
