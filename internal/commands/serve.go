package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventmate-dev/eventmate/internal/config"
	"github.com/eventmate-dev/eventmate/internal/logger"
	"github.com/eventmate-dev/eventmate/internal/reconcile"
	"github.com/eventmate-dev/eventmate/internal/server"
	"github.com/eventmate-dev/eventmate/internal/statement"
	"github.com/eventmate-dev/eventmate/internal/store"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "eventmate.yaml", "path to eventmate.yaml")

	return cmd
}

func runServe(configPath string) error {
	log := logger.New()

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", configPath).Msg("no config file found, using defaults")
		cfg = config.Default()
	} else if err != nil {
		return err
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}

	participants := store.NewParticipants(db)
	activities := store.NewActivities(db)
	reconciler := reconcile.NewService(participants, cfg.Reconcile.Tolerance(), log)

	srv := server.New(
		participants,
		activities,
		reconciler,
		statement.Default(),
		nil,
		cfg.Uploads.MaxFileSizeMB*1024*1024,
		log,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting server")
	return srv.Router().Run(addr)
}
