// Package tracker coordinates every mutation of the store document. The
// application is single-actor: one operator, one store, one writer. The
// service serializes HTTP-triggered mutations behind a mutex so the
// release-then-apply ledger cycle always runs as one unit.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/ledger"
	"github.com/tomschnierer025/weedtracker/internal/registry"
	"github.com/tomschnierer025/weedtracker/internal/repository/store"
	"github.com/tomschnierer025/weedtracker/pkg/clients/geocode"
	"github.com/tomschnierer025/weedtracker/pkg/clients/weather"
)

// Service owns the in-memory store document and drives the ledger, registry
// and persistence layer. Weather and geocode clients are optional; a nil
// client simply leaves the corresponding job fields blank.
type Service struct {
	mu sync.Mutex

	store    *models.Store
	ledger   *ledger.Ledger
	registry *registry.Registry
	repo     store.Repository

	weather weather.Client
	geocode geocode.Client

	logger *zap.Logger
	now    func() time.Time
}

// New loads the document from the repository and wires the service.
func New(ctx context.Context, repo store.Repository, weatherClient weather.Client, geocodeClient geocode.Client, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	s := &Service{
		store:   doc,
		repo:    repo,
		weather: weatherClient,
		geocode: geocodeClient,
		logger:  logger,
		now:     time.Now,
	}
	s.ledger = ledger.New(doc, logger.Named("ledger"))
	s.registry = registry.New(doc, logger.Named("registry"))
	s.logOverAllocations()

	logger.Info("store loaded",
		zap.Int("jobs", len(doc.Jobs)),
		zap.Int("batches", len(doc.Batches)),
		zap.Int("chemicals", len(doc.Chemicals)))
	return s, nil
}

// persist writes the whole document. Callers hold the lock.
func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.store); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

// Settings returns the operator settings carried in the document.
func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Settings
}

// UpdateSettings replaces the operator settings and persists.
func (s *Service) UpdateSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Settings = settings
	return s.persist(ctx)
}
