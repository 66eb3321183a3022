// Package store selects and opens the snapshot persistence backend.
package store

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/config"
	"github.com/pedrovi35/EduSync-Pro/internal/db"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

// Backend persists whole snapshots keyed by identity.
//
// Load returns (nil, nil) when there is nothing stored yet so the caller can
// apply first-run defaults.
type Backend interface {
	Load(ctx context.Context, identity string) (*models.Snapshot, error)
	Save(ctx context.Context, identity string, snap *models.Snapshot) error
	Reset(ctx context.Context, identity string) error
	Close() error
}

// Accounts is implemented by backends that manage user registration.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*db.Account, error)
	Authenticate(ctx context.Context, email, password string) (*db.Account, error)
}

var (
	_ Backend  = (*FileBackend)(nil)
	_ Backend  = (*db.DB)(nil)
	_ Accounts = (*db.DB)(nil)
)

// Open returns the backend selected by cfg.Storage.Backend.
func Open(cfg *config.Config, home string, logger *zap.Logger) (Backend, error) {
	switch cfg.Storage.Backend {
	case "file", "":
		return NewFileBackend(filepath.Join(home, "data"), logger), nil
	case "sqlite":
		d, err := db.Open(cfg.DatabasePath(home), db.Options{
			MaxOpenConns: cfg.Storage.MaxOpenConns,
			PoolTimeout:  cfg.Storage.PoolTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (choose file or sqlite)", cfg.Storage.Backend)
	}
}
