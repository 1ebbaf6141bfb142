package db

import (
	"context"
	"fmt"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/config"
)

// Store is the persistence surface shared by every backend.
type Store interface {
	registration.Store
	recruitment.Store
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewStore builds the backend selected by STORE_DRIVER.
func NewStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.StorePostgres:
		conn, err := Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return NewPostgresStore(conn), nil
	case config.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
