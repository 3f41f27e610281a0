package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

func TestLoadMissingDocumentStartsEmpty(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	doc, err := repo.Load(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, doc.Jobs)
	assert.Empty(t, doc.Batches)
	assert.Equal(t, models.StoreVersion, doc.Version)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	doc := models.NewStore()
	doc.Batches = append(doc.Batches, models.Batch{ID: "B1", TotalMix: 600, Used: 100, Remaining: 500})
	doc.Jobs = append(doc.Jobs, models.Job{
		ID:          "J1",
		Name:        "creek bend",
		Type:        models.JobSpotSpray,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Allocations: []models.Allocation{{BatchID: "B1", AmountUsed: 100}},
	})

	assert.NoError(t, repo.Save(context.Background(), doc))

	loaded, err := repo.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, loaded.Batches, 1)
	assert.Equal(t, 500.0, loaded.Batches[0].Remaining)
	assert.Len(t, loaded.Jobs, 1)
	assert.Equal(t, "creek bend", loaded.Jobs[0].Name)
	assert.False(t, loaded.SavedAt.IsZero())
}

func TestBackupRingEvictsOldest(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	doc := models.NewStore()
	var ids []string
	for i := 0; i < 5; i++ {
		info, err := repo.Backup(context.Background(), doc)
		assert.NoError(t, err)
		ids = append(ids, info.ID)
		// Snapshot ids carry millisecond precision; space them out so every
		// iteration gets a distinct id.
		time.Sleep(5 * time.Millisecond)
	}

	infos, err := repo.ListBackups(context.Background())
	assert.NoError(t, err)
	assert.Len(t, infos, 3)

	// Most recent first, and the two oldest snapshots are gone.
	assert.Equal(t, ids[4], infos[0].ID)
	assert.Equal(t, ids[3], infos[1].ID)
	assert.Equal(t, ids[2], infos[2].ID)

	_, err = repo.Restore(context.Background(), ids[0])
	assert.ErrorIs(t, err, ErrUnknownSnapshot)
}

func TestRestoreReturnsSnapshotContent(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	doc := models.NewStore()
	doc.Chemicals = append(doc.Chemicals, models.Chemical{Name: "Glyphosate 450", ContainerCount: 4})
	info, err := repo.Backup(context.Background(), doc)
	assert.NoError(t, err)

	// Mutate and save the current document; the snapshot stays untouched.
	doc.Chemicals = nil
	assert.NoError(t, repo.Save(context.Background(), doc))

	restored, err := repo.Restore(context.Background(), info.ID)
	assert.NoError(t, err)
	assert.Len(t, restored.Chemicals, 1)
	assert.Equal(t, "Glyphosate 450", restored.Chemicals[0].Name)
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	_, err = repo.Restore(context.Background(), "20000101T000000.000")
	assert.ErrorIs(t, err, ErrUnknownSnapshot)

	_, err = repo.Restore(context.Background(), "../escape")
	assert.ErrorIs(t, err, ErrUnknownSnapshot)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), 3, nil)
	assert.NoError(t, err)

	doc := models.NewStore()
	for i := 0; i < 3; i++ {
		doc.Jobs = append(doc.Jobs, models.Job{ID: "J", Name: "same doc"})
		assert.NoError(t, repo.Save(context.Background(), doc))
	}

	loaded, err := repo.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, loaded.Jobs, 3)
}
