package storage

import (
	"context"
	"fmt"

	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/config"
)

// New opens the backend selected by cfg.DBType.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileStorage(cfg.DataFile, cfg.FlushDelay, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DBDSN, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
