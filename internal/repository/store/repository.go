// Package store is the durability boundary: one versioned document holding
// chemicals, batches, jobs and settings, plus a rolling snapshot history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

// ErrUnknownSnapshot flags a restore against a snapshot id that is not in the
// backup history.
var ErrUnknownSnapshot = errors.New("unknown snapshot")

// BackupInfo identifies one snapshot in the rolling history.
type BackupInfo struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Repository is the persistence contract consumed by the job manager and the
// scheduler. Implementations must never leave a partially written document
// behind; a failed Save surfaces an error and the previous document survives.
type Repository interface {
	// Load reads the current document. A missing document yields a fresh
	// empty store, not an error.
	Load(ctx context.Context) (*models.Store, error)
	// Save replaces the current document.
	Save(ctx context.Context, s *models.Store) error
	// Backup pushes a snapshot onto the rolling history, evicting the oldest
	// entry once the configured cap is reached.
	Backup(ctx context.Context, s *models.Store) (BackupInfo, error)
	// ListBackups returns the history, most recent first.
	ListBackups(ctx context.Context) ([]BackupInfo, error)
	// Restore reads one snapshot by id. It does not touch the current
	// document; callers decide whether to adopt the result.
	Restore(ctx context.Context, id string) (*models.Store, error)
	// Close releases any underlying connection.
	Close(ctx context.Context) error
}
