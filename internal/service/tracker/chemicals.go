package tracker

import (
	"context"
	"sort"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/filter"
)

// UpsertChemical creates or replaces a stock record and persists.
func (s *Service) UpsertChemical(ctx context.Context, chemical models.Chemical) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.Upsert(chemical)
	return s.persist(ctx)
}

// DeleteChemical removes a stock record and persists. Batch usage lines
// referencing it stay behind as orphaned snapshots.
func (s *Service) DeleteChemical(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Delete(name); err != nil {
		return err
	}
	return s.persist(ctx)
}

// ListChemicals returns stock records passing the query, sorted by name.
func (s *Service) ListChemicals(query filter.Query) []models.Chemical {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Chemical
	for _, chemical := range s.registry.List() {
		if !filter.Matches(filter.ChemicalRecord{Chemical: chemical}, query) {
			continue
		}
		out = append(out, chemical)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LowStockChemicals returns the procurement advisory view.
func (s *Service) LowStockChemicals() []models.Chemical {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.LowStock()
}
