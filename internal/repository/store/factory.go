package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/config"
)

// NewRepository builds the persistence backend selected by configuration.
func NewRepository(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Repository, error) {
	switch cfg.Driver {
	case config.StoreDriverFile:
		return NewFileRepository(cfg.DataDir, cfg.BackupLimit, logger)
	case config.StoreDriverMongo:
		return NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.BackupLimit, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
