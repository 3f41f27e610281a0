package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

const (
	documentName     = "store.json"
	backupDirName    = "backups"
	snapshotLayout   = "20060102T150405.000"
	snapshotSuffix   = ".json"
	defaultBackupCap = 10
)

// FileRepository keeps the document as a single JSON file on disk with
// timestamped snapshot files in a backups/ subdirectory. Writes are staged
// through a temp file and renamed so a crash mid-write can not corrupt the
// current document.
type FileRepository struct {
	root      string
	backupCap int
	logger    *zap.Logger
}

// NewFileRepository creates the data directory if needed and returns a
// filesystem-backed repository. A backupCap of zero falls back to the default.
func NewFileRepository(root string, backupCap int, logger *zap.Logger) (*FileRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root == "" {
		root = "./data"
	}
	if backupCap <= 0 {
		backupCap = defaultBackupCap
	}
	if err := os.MkdirAll(filepath.Join(root, backupDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileRepository{root: root, backupCap: backupCap, logger: logger}, nil
}

// Load reads the current document, returning an empty store when none exists.
func (r *FileRepository) Load(_ context.Context) (*models.Store, error) {
	data, err := os.ReadFile(filepath.Join(r.root, documentName))
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Info("no store document found, starting empty")
			return models.NewStore(), nil
		}
		return nil, fmt.Errorf("read store document: %w", err)
	}

	s := new(models.Store)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode store document: %w", err)
	}
	return s, nil
}

// Save replaces the current document atomically.
func (r *FileRepository) Save(_ context.Context, s *models.Store) error {
	s.Version = models.StoreVersion
	s.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store document: %w", err)
	}
	return r.writeAtomic(filepath.Join(r.root, documentName), data)
}

// Backup writes a snapshot into the ring and evicts the oldest entries beyond
// the cap.
func (r *FileRepository) Backup(_ context.Context, s *models.Store) (BackupInfo, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return BackupInfo{}, fmt.Errorf("encode snapshot: %w", err)
	}

	now := time.Now().UTC()
	id := now.Format(snapshotLayout)
	path := filepath.Join(r.root, backupDirName, id+snapshotSuffix)
	if err := r.writeAtomic(path, data); err != nil {
		return BackupInfo{}, err
	}

	if err := r.prune(); err != nil {
		r.logger.Warn("snapshot pruning failed", zap.Error(err))
	}

	r.logger.Info("snapshot written", zap.String("snapshot_id", id))
	return BackupInfo{ID: id, Timestamp: now}, nil
}

// ListBackups returns the snapshot history, most recent first.
func (r *FileRepository) ListBackups(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, backupDirName))
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var infos []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotSuffix) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), snapshotSuffix)
		ts, err := time.Parse(snapshotLayout, id)
		if err != nil {
			continue
		}
		infos = append(infos, BackupInfo{ID: id, Timestamp: ts})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Timestamp.After(infos[j].Timestamp) })
	return infos, nil
}

// Restore reads one snapshot without touching the current document.
func (r *FileRepository) Restore(_ context.Context, id string) (*models.Store, error) {
	if strings.ContainsAny(id, "/\\") {
		return nil, ErrUnknownSnapshot
	}
	data, err := os.ReadFile(filepath.Join(r.root, backupDirName, id+snapshotSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrUnknownSnapshot
		}
		return nil, fmt.Errorf("read snapshot %s: %w", id, err)
	}

	s := new(models.Store)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return s, nil
}

// Close is a no-op for the filesystem backend.
func (r *FileRepository) Close(_ context.Context) error { return nil }

func (r *FileRepository) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("stage write: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("stage write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage write: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

func (r *FileRepository) prune() error {
	infos, err := r.ListBackups(context.Background())
	if err != nil {
		return err
	}
	for i := r.backupCap; i < len(infos); i++ {
		path := filepath.Join(r.root, backupDirName, infos[i].ID+snapshotSuffix)
		if err := os.Remove(path); err != nil {
			return err
		}
		r.logger.Debug("snapshot evicted", zap.String("snapshot_id", infos[i].ID))
	}
	return nil
}
