// Command modctl runs moderation maintenance tasks against the engine database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/logging"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/services"
	"github.com/spf13/cobra"
)

// engine is the service graph shared by the subcommands.
type engine struct {
	cfg        *config.Config
	penalties  *services.PenaltyService
	reputation *services.ReputationService
	sweeper    *services.PenaltySweeper
}

var eng *engine

// connectDB opens database.DB for the subcommands.
var connectDB = database.Connect

var rootCmd = &cobra.Command{
	Use:           "modctl",
	Short:         "Moderation and reputation maintenance",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logging.Setup(logging.ParseLevel(cfg.LogLevel))
		if err := connectDB(cfg); err != nil {
			return err
		}
		if cmd.Name() != migrateCmd.Name() {
			eng = newEngine(cfg)
		}
		return nil
	},
}

func newEngine(cfg *config.Config) *engine {
	relay := events.NewRelay(database.DB)
	penalties := services.NewPenaltyService(database.DB, relay)
	reputation := services.NewReputationService(database.DB, relay, cfg.ReputationLocation)
	services.RegisterHandlers(relay,
		services.NewEscalationService(penalties),
		reputation,
		services.NewNotificationService(database.DB),
	)

	var lease services.Lease
	if rdb, err := database.ConnectRedis(cfg.RedisURL); err != nil {
		slog.Warn("redis unavailable, sweeping without lease", "error", err)
	} else if rdb != nil {
		lease = database.NewLease(rdb, "community-core:penalty-sweep", cfg.PenaltySweepInterval)
	}

	return &engine{
		cfg:        cfg,
		penalties:  penalties,
		reputation: reputation,
		sweeper:    services.NewPenaltySweeper(penalties, cfg.PenaltySweepInterval, cfg.PenaltySweepBatch, lease),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if database.DB != nil {
		if sqlDB, dbErr := database.DB.DB(); dbErr == nil {
			sqlDB.Close()
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
