// Package ledger owns batch volume accounting. Used and remaining are always
// derived from the live allocation arena, never accumulated across saves, so
// repeated edits of a job can not drift a batch.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

var (
	// ErrInvalidAmount flags a negative allocation or dump amount. The
	// operation no-ops.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnknownBatch flags a dangling batch reference.
	ErrUnknownBatch = errors.New("unknown batch")
)

const timeLayout = "15:04"

// Ledger reconciles batch usage against the live allocation set. It works
// directly on the store document; callers persist after mutating.
type Ledger struct {
	store  *models.Store
	logger *zap.Logger

	// alloc is the arena: batch id -> job id -> amount currently claimed.
	alloc map[string]map[string]float64
}

// New builds a ledger over the store and rebuilds the allocation arena from
// the jobs actually present. Stored used/remaining values are recomputed from
// that arena, which self-heals any drift or dangling reference in the loaded
// document.
func New(store *models.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{store: store, logger: logger}
	l.Rebuild()
	return l
}

// Rebuild reconstructs the arena from the store's job list and recomputes
// every batch.
func (l *Ledger) Rebuild() {
	l.alloc = make(map[string]map[string]float64)
	for _, job := range l.store.Jobs {
		for _, a := range job.Allocations {
			if a.AmountUsed < 0 {
				l.logger.Warn("dropping negative allocation during rebuild",
					zap.String("job_id", job.ID), zap.String("batch_id", a.BatchID))
				continue
			}
			if l.store.FindBatch(a.BatchID) == nil {
				l.logger.Warn("dropping allocation to unknown batch during rebuild",
					zap.String("job_id", job.ID), zap.String("batch_id", a.BatchID))
				continue
			}
			l.put(a.BatchID, job.ID, a.AmountUsed)
		}
	}
	for i := range l.store.Batches {
		l.Recompute(l.store.Batches[i].ID)
	}
}

// CreateBatch registers a new pour. TotalMix is fixed once poured.
func (l *Ledger) CreateBatch(totalMix float64, usages []models.ChemicalUsage, now time.Time) (*models.Batch, error) {
	if totalMix < 0 {
		return nil, ErrInvalidAmount
	}
	batch := models.Batch{
		ID:             uuid.NewString(),
		CreatedDate:    now.Truncate(24 * time.Hour),
		CreatedTime:    now.Format(timeLayout),
		TotalMix:       totalMix,
		Remaining:      totalMix,
		ChemicalUsages: usages,
	}
	l.store.Batches = append(l.store.Batches, batch)
	l.logger.Info("batch created", zap.String("batch_id", batch.ID), zap.Float64("total_mix", totalMix))
	return l.store.FindBatch(batch.ID), nil
}

// RecordAllocation registers one job's claim on a batch and recomputes it.
func (l *Ledger) RecordAllocation(batchID, jobID string, amount float64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	batch := l.store.FindBatch(batchID)
	if batch == nil {
		return ErrUnknownBatch
	}
	l.put(batchID, jobID, amount)
	batch.LinkJob(jobID)
	l.Recompute(batchID)
	return nil
}

// ReleaseAllocations drops every claim the job holds and recomputes the
// batches it touched. It returns the ids of those batches so callers can fold
// them into a wider reconciliation.
func (l *Ledger) ReleaseAllocations(jobID string) []string {
	var touched []string
	for batchID, jobs := range l.alloc {
		if _, ok := jobs[jobID]; !ok {
			continue
		}
		delete(jobs, jobID)
		touched = append(touched, batchID)
		l.Recompute(batchID)
	}
	return touched
}

// Apply reconciles a job's allocation set in one step: the job's previous
// contribution is released from every batch it touched, the new set is
// applied, and every batch in either set is recomputed. Allocations naming an
// unknown batch or carrying a negative amount are dropped with a warning, not
// fatal; the ids of dropped batch references are returned. Saving a job is
// never blocked by ledger state.
func (l *Ledger) Apply(jobID string, allocations []models.Allocation) (dropped []string) {
	touched := make(map[string]struct{})
	for _, id := range l.ReleaseAllocations(jobID) {
		touched[id] = struct{}{}
	}

	for _, a := range allocations {
		if a.AmountUsed < 0 {
			l.logger.Warn("dropping allocation with negative amount",
				zap.String("job_id", jobID), zap.String("batch_id", a.BatchID),
				zap.Float64("amount", a.AmountUsed))
			dropped = append(dropped, a.BatchID)
			continue
		}
		batch := l.store.FindBatch(a.BatchID)
		if batch == nil {
			l.logger.Warn("dropping allocation to unknown batch",
				zap.String("job_id", jobID), zap.String("batch_id", a.BatchID))
			dropped = append(dropped, a.BatchID)
			continue
		}
		l.put(a.BatchID, jobID, a.AmountUsed)
		batch.LinkJob(jobID)
		touched[a.BatchID] = struct{}{}
	}

	for id := range touched {
		l.Recompute(id)
	}
	return dropped
}

// RecordDump permanently reduces a batch's remaining volume. Dumps are
// independent of allocations and can not be undone.
func (l *Ledger) RecordDump(batchID string, amount float64, reason string, now time.Time) (models.DumpEvent, error) {
	if amount < 0 {
		return models.DumpEvent{}, ErrInvalidAmount
	}
	batch := l.store.FindBatch(batchID)
	if batch == nil {
		return models.DumpEvent{}, ErrUnknownBatch
	}
	event := models.DumpEvent{
		Date:   now.Truncate(24 * time.Hour),
		Time:   now.Format(timeLayout),
		Amount: amount,
		Reason: reason,
	}
	batch.DumpEvents = append(batch.DumpEvents, event)
	l.Recompute(batchID)
	l.logger.Info("dump recorded", zap.String("batch_id", batchID),
		zap.Float64("amount", amount), zap.String("reason", reason))
	return event, nil
}

// Recompute derives used/remaining for one batch from the arena. Remaining is
// clamped to [0, totalMix]; over-allocation is logged, never blocked, since a
// real-world mixing error must not stop field data from being saved.
func (l *Ledger) Recompute(batchID string) {
	batch := l.store.FindBatch(batchID)
	if batch == nil {
		return
	}

	var used float64
	for _, amount := range l.alloc[batchID] {
		used += amount
	}
	batch.Used = used

	remaining := batch.TotalMix - used - batch.DumpedTotal()
	if remaining < 0 {
		l.logger.Warn("batch over-allocated",
			zap.String("batch_id", batchID),
			zap.Float64("total_mix", batch.TotalMix),
			zap.Float64("used", used),
			zap.Float64("dumped", batch.DumpedTotal()))
		remaining = 0
	}
	if remaining > batch.TotalMix {
		remaining = batch.TotalMix
	}
	batch.Remaining = remaining
}

// JobAllocations reports the amounts a job currently claims, keyed by batch id.
func (l *Ledger) JobAllocations(jobID string) map[string]float64 {
	out := make(map[string]float64)
	for batchID, jobs := range l.alloc {
		if amount, ok := jobs[jobID]; ok {
			out[batchID] = amount
		}
	}
	return out
}

func (l *Ledger) put(batchID, jobID string, amount float64) {
	if l.alloc[batchID] == nil {
		l.alloc[batchID] = make(map[string]float64)
	}
	l.alloc[batchID][jobID] = amount
}
