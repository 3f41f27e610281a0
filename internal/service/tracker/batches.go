package tracker

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/filter"
	"github.com/tomschnierer025/weedtracker/internal/ledger"
)

// CreateBatch registers a new pour and persists. Chemical usage lines are
// descriptive snapshots; they are not required to balance against totalMix.
func (s *Service) CreateBatch(ctx context.Context, totalMix float64, usages []models.ChemicalUsage) (models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.ledger.CreateBatch(totalMix, usages, s.now())
	if err != nil {
		return models.Batch{}, err
	}
	if err := s.persist(ctx); err != nil {
		return *batch, err
	}
	return *batch, nil
}

// RecordDump permanently reduces a batch's remaining volume and persists.
func (s *Service) RecordDump(ctx context.Context, batchID string, amount float64, reason string) (models.DumpEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.ledger.RecordDump(batchID, amount, reason, s.now())
	if err != nil {
		return models.DumpEvent{}, err
	}
	if err := s.persist(ctx); err != nil {
		return event, err
	}
	return event, nil
}

// GetBatch returns a batch by id.
func (s *Service) GetBatch(batchID string) (models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.store.FindBatch(batchID)
	if batch == nil {
		return models.Batch{}, ledger.ErrUnknownBatch
	}
	return *batch, nil
}

// ListBatches returns batches passing the query, newest pour first.
func (s *Service) ListBatches(query filter.Query) []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Batch
	for _, batch := range s.store.Batches {
		if !filter.Matches(filter.BatchRecord{Batch: batch}, query) {
			continue
		}
		out = append(out, batch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedDate.After(out[j].CreatedDate) })
	return out
}

// drainedEpsilon absorbs float residue left by repeated allocation edits;
// anything below it counts as an empty batch.
const drainedEpsilon = 1e-9

// DrainedBatches returns batches with nothing left, for the operator's
// housekeeping view. Batches are never deleted, only drained.
func (s *Service) DrainedBatches() []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Batch
	for _, batch := range s.store.Batches {
		if batch.Remaining < drainedEpsilon {
			out = append(out, batch)
		}
	}
	return out
}

// logOverAllocations is a startup sweep that surfaces batches whose claims
// exceed their pour. The ledger already clamps remaining; this only reports.
func (s *Service) logOverAllocations() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, batch := range s.store.Batches {
		if batch.Used+batch.DumpedTotal() > batch.TotalMix {
			s.logger.Warn("batch carries more claims than mix",
				zap.String("batch_id", batch.ID),
				zap.Float64("total_mix", batch.TotalMix),
				zap.Float64("used", batch.Used))
		}
	}
}
