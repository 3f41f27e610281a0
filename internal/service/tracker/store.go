package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/repository/store"
)

// ExportStore serializes the whole document as indented JSON.
func (s *Service) ExportStore() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode store export: %w", err)
	}
	return data, nil
}

// ImportStore replaces the whole document with the supplied snapshot. Import
// is a full overwrite, not a merge; the previous document is pushed onto the
// backup history first so a bad import can be undone.
func (s *Service) ImportStore(ctx context.Context, data []byte) error {
	snapshot := new(models.Store)
	if err := json.Unmarshal(data, snapshot); err != nil {
		return fmt.Errorf("decode store import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Backup(ctx, s.store); err != nil {
		s.logger.Warn("pre-import snapshot failed", zap.Error(err))
	}

	s.adoptLocked(snapshot)
	s.logger.Info("store imported",
		zap.Int("jobs", len(snapshot.Jobs)),
		zap.Int("batches", len(snapshot.Batches)),
		zap.Int("chemicals", len(snapshot.Chemicals)))
	return s.persist(ctx)
}

// Snapshot pushes the current document onto the rolling backup history.
func (s *Service) Snapshot(ctx context.Context) (store.BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Backup(ctx, s.store)
}

// ListBackups returns the snapshot history, most recent first.
func (s *Service) ListBackups(ctx context.Context) ([]store.BackupInfo, error) {
	return s.repo.ListBackups(ctx)
}

// RestoreBackup replaces the current document with a snapshot from the
// history and persists it as the new current document.
func (s *Service) RestoreBackup(ctx context.Context, id string) error {
	snapshot, err := s.repo.Restore(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.adoptLocked(snapshot)
	s.logger.Info("store restored from snapshot", zap.String("snapshot_id", id))
	return s.persist(ctx)
}

// adoptLocked swaps in a replacement document. The ledger arena is rebuilt
// from the new job set so derived batch totals can not carry stale claims.
func (s *Service) adoptLocked(snapshot *models.Store) {
	snapshot.Version = models.StoreVersion
	*s.store = *snapshot
	s.ledger.Rebuild()
}
