// Package cmd implements the fly command tree. The root command doubles
// as the jump query: `fly <basename>` prints the best matching indexed
// path, and management subcommands maintain roots and the index.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VaibhavPandit-09/fly/internal/config"
	"github.com/VaibhavPandit-09/fly/internal/logger"
	"github.com/VaibhavPandit-09/fly/internal/store"
)

// App bundles the shared state every command needs: settings, the config
// file manager, the open store, and the console logger.
type App struct {
	Cfg     *config.Config
	Manager *config.Manager
	Store   *store.Store
	Log     *logger.Console
}

// openApp resolves configuration, ensures the on-disk layout, opens the
// store, and mirrors the configured roots into it.
func openApp(ctx context.Context) (*App, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(filepath.Join(configDir, config.ConfigFilename))
	if err != nil {
		return nil, err
	}

	manager := config.NewManager(configDir)
	if err := manager.EnsureLayout(); err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := manager.SyncRoots(ctx, st); err != nil {
		st.Close()
		return nil, fmt.Errorf("sync roots into store: %w", err)
	}

	return &App{
		Cfg:     cfg,
		Manager: manager,
		Store:   st,
		// Log to stderr: stdout carries the resolved path for the shell wrapper.
		Log: logger.NewConsole(os.Stderr, cfg.LogLevel),
	}, nil
}

// Close releases the app's store.
func (a *App) Close() error {
	return a.Store.Close()
}
