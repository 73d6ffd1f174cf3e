// Package app wires storage, rendering and the barcode service together
// from the parsed configuration. Both binaries build on it.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/clock"
	"github.com/atinyakov/barcoder/internal/config"
	"github.com/atinyakov/barcoder/internal/repository"
	"github.com/atinyakov/barcoder/internal/storage"
	"github.com/atinyakov/barcoder/internal/symbol"
)

// Store is a record repository that owns resources.
type Store interface {
	service.Repository
	Close() error
}

// App holds the wired components.
type App struct {
	Store     Store
	Artifacts *storage.ArtifactStore
	Service   *service.BarcodeService
	// Auth is nil when no admin secret is configured.
	Auth *service.Auth
}

// OpenStore opens the record store selected by opts.
func OpenStore(opts *config.Options, logger *zap.Logger) (Store, error) {
	switch opts.Backend() {
	case "postgres":
		logger.Info("using postgres storage")
		return openSQL(repository.DialectPostgres, opts.DatabaseDSN, logger)
	case "sqlite":
		logger.Info("using sqlite storage", zap.String("path", opts.SQLitePath))
		return openSQL(repository.DialectSQLite, opts.SQLitePath, logger)
	default:
		logger.Info("using in memory storage")
		return storage.CreateMemoryStorage()
	}
}

func openSQL(d repository.Dialect, dsn string, logger *zap.Logger) (Store, error) {
	db, err := repository.InitDB(d, dsn, logger)
	if err != nil {
		return nil, err
	}
	return repository.CreateBarcodeRepository(db, d, logger), nil
}

// New wires every component. The caller closes the App.
func New(opts *config.Options, logger *zap.Logger) (*App, error) {
	artifacts, err := storage.NewArtifactStore(opts.StorageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	store, err := OpenStore(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	clk := clock.Real()
	svc := service.NewBarcode(store, artifacts, symbol.NewRenderer(logger), clk, logger, service.Options{
		CacheSize: opts.CacheSize,
		CacheTTL:  opts.CacheTTL.Duration,
	})

	a := &App{Store: store, Artifacts: artifacts, Service: svc}
	if opts.AdminSecret != "" {
		a.Auth = service.NewAuth(opts.AdminSecret, clk)
	}
	return a, nil
}

// AuthIface returns Auth as an interface, nil when admin routes are disabled.
func (a *App) AuthIface() service.AuthIface {
	if a.Auth == nil {
		return nil
	}
	return a.Auth
}

func (a *App) Close() error {
	return a.Store.Close()
}
