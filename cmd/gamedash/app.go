package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ericogr/gamedash/internal/config"
	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/dashstate"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid gamedash configuration", err, logging.Fields{"config_path": path})
	}
	if err := logging.Init(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}); err != nil {
		logging.Fatal("Failed to initialize logging", err, nil)
	}
	return cfg
}

func openDatabaseOrExit(cfg *config.LoadedConfig) (*gorm.DB, storage.Repository) {
	db, err := storage.OpenAndMigrate(cfg.DatabasePath, &game.Game{
		Title:       cfg.DefaultGame.Title,
		Description: cfg.DefaultGame.Description,
	})
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"path": cfg.DatabasePath})
	}
	return db, storage.NewSQLiteRepository(db)
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newClient() (*dashclient.Client, error) {
	return dashclient.New(serverURL, apiToken)
}

func stateStore() dashstate.FileStore {
	p := statePath
	if p == "" {
		p = os.Getenv(constants.EnvStatePath)
	}
	if p == "" {
		p = dashstate.DefaultPath()
	}
	return dashstate.FileStore{Path: p}
}

// gameRef returns the --game flag, falling back to the game selected with
// "gamedash use".
func gameRef(cmd *cobra.Command) (string, error) {
	if f := cmd.Flags().Lookup("game"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	p, err := stateStore().Load()
	if err != nil {
		return "", err
	}
	if p.Game == "" {
		return "", dashstate.ErrNoGameSelected
	}
	return p.Game, nil
}

// session restores the saved selection against the server.
func session(ctx context.Context) (*dashstate.Session, *dashclient.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	p, err := stateStore().Load()
	if err != nil {
		return nil, nil, err
	}
	s := dashstate.New(c)
	if err := s.Restore(ctx, p); err != nil && !errors.Is(err, dashstate.ErrNoGameSelected) {
		return nil, nil, err
	}
	return s, c, nil
}
