// Package registry manages the chemical stock list and its low-stock view.
package registry

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

// ErrUnknownChemical flags a delete or lookup against a name not in stock.
var ErrUnknownChemical = errors.New("unknown chemical")

// Registry maps chemical names to stock records inside the store document.
type Registry struct {
	store  *models.Store
	logger *zap.Logger
}

// New wires a registry over the store.
func New(store *models.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, logger: logger}
}

// Upsert creates or replaces the stock record keyed by chemical name.
func (r *Registry) Upsert(chemical models.Chemical) {
	if existing := r.store.FindChemical(chemical.Name); existing != nil {
		*existing = chemical
		r.logger.Debug("chemical updated", zap.String("name", chemical.Name))
		return
	}
	r.store.Chemicals = append(r.store.Chemicals, chemical)
	r.logger.Info("chemical registered", zap.String("name", chemical.Name))
}

// Delete removes the stock record. Batch usage lines referencing the name are
// descriptive snapshots and stay behind, orphaned.
func (r *Registry) Delete(name string) error {
	for i := range r.store.Chemicals {
		if r.store.Chemicals[i].Name == name {
			r.store.Chemicals = append(r.store.Chemicals[:i], r.store.Chemicals[i+1:]...)
			r.logger.Info("chemical deleted", zap.String("name", name))
			return nil
		}
	}
	return ErrUnknownChemical
}

// Get returns the stock record for a name.
func (r *Registry) Get(name string) (models.Chemical, error) {
	if c := r.store.FindChemical(name); c != nil {
		return *c, nil
	}
	return models.Chemical{}, ErrUnknownChemical
}

// List returns a copy of all stock records.
func (r *Registry) List() []models.Chemical {
	out := make([]models.Chemical, len(r.store.Chemicals))
	copy(out, r.store.Chemicals)
	return out
}

// LowStock returns chemicals whose container count has fallen below their
// reorder threshold. This is an advisory view for procurement, not an error
// state; chemicals with a zero threshold never appear.
func (r *Registry) LowStock() []models.Chemical {
	var out []models.Chemical
	for _, c := range r.store.Chemicals {
		if c.LowStock() {
			out = append(out, c)
		}
	}
	return out
}
