package tracker

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/filter"
)

var (
	// ErrInvalidJobType flags a type outside the closed enum.
	ErrInvalidJobType = errors.New("invalid job type")
	// ErrUnknownJob flags an id that resolves to no job.
	ErrUnknownJob = errors.New("unknown job")
)

const lookupTimeout = 8 * time.Second

// SaveJob upserts a job and reconciles the ledger against its current
// allocation set. Upsert key: the immutable id when the draft carries one,
// otherwise the display name (first save). The returned slice lists batch ids
// whose allocations were dropped as dangling; a save is never blocked by
// ledger state.
func (s *Service) SaveJob(ctx context.Context, draft models.Job, asDraft bool) (models.Job, []string, error) {
	jobType, ok := models.ParseJobType(string(draft.Type))
	if !ok {
		return models.Job{}, nil, ErrInvalidJobType
	}
	// Store the canonical enum value; ParseJobType admits operator spellings
	// like "spot spray" that must not leak into the stored record.
	draft.Type = jobType

	// Weather and road lookups run before the ledger transaction and degrade
	// gracefully: a failed lookup leaves the field blank, never aborts a save.
	s.enrich(ctx, &draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if draft.Date.IsZero() {
		draft.Date = now.Truncate(24 * time.Hour)
	}

	job := s.upsertLocked(&draft, now)

	if draft.LinkedInspectionID != "" {
		s.archiveLinkedInspectionLocked(draft.LinkedInspectionID)
	}

	dropped := s.ledger.Apply(job.ID, job.Allocations)
	if len(dropped) > 0 {
		job.Allocations = withoutBatches(job.Allocations, dropped)
	}

	if asDraft {
		job.Status = models.StatusDraft
	} else {
		job.Status = models.StatusIncomplete
	}
	job.UpdatedAt = now

	if err := s.persist(ctx); err != nil {
		return *job, dropped, err
	}

	s.logger.Info("job saved",
		zap.String("job_id", job.ID),
		zap.String("name", job.Name),
		zap.String("status", string(job.Status)),
		zap.Int("allocations", len(job.Allocations)))
	return *job, dropped, nil
}

// upsertLocked finds or creates the record the draft lands on and copies the
// draft's fields over it, retaining the existing id.
func (s *Service) upsertLocked(draft *models.Job, now time.Time) *models.Job {
	var existing *models.Job
	if draft.ID != "" {
		existing = s.store.FindJob(draft.ID)
	} else if draft.Name != "" {
		existing = s.store.FindJobByName(draft.Name)
	}

	if existing != nil {
		draft.ID = existing.ID
		draft.CreatedAt = existing.CreatedAt
		*existing = *draft
		return existing
	}

	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.CreatedAt = now
	s.store.Jobs = append(s.store.Jobs, *draft)
	return s.store.FindJob(draft.ID)
}

// archiveLinkedInspectionLocked resolves the reference (id first, name as
// fallback) and archives the inspection. Already-archived inspections are
// left alone, so two jobs linking to the same inspection can not double-fire.
func (s *Service) archiveLinkedInspectionLocked(ref string) {
	target := s.store.FindJob(ref)
	if target == nil {
		target = s.store.FindJobByName(ref)
	}
	if target == nil {
		s.logger.Warn("linked inspection not found", zap.String("ref", ref))
		return
	}
	if target.Type != models.JobInspection {
		s.logger.Warn("linked job is not an inspection",
			zap.String("ref", ref), zap.String("type", string(target.Type)))
		return
	}
	if target.Archived {
		return
	}
	target.Archived = true
	target.Status = models.StatusArchived
	s.logger.Info("inspection archived via link", zap.String("job_id", target.ID))
}

// ArchiveJob marks a job archived. Archiving is idempotent and keeps the
// job's allocations registered in the ledger.
func (s *Service) ArchiveJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.store.FindJob(jobID)
	if job == nil {
		return ErrUnknownJob
	}
	if job.Archived {
		return nil
	}
	job.Archived = true
	job.Status = models.StatusArchived
	job.UpdatedAt = s.now()
	return s.persist(ctx)
}

// DeleteJob removes a job. Its ledger contribution is released and the
// affected batches recomputed before the record goes away, so used/remaining
// never reflect a job that no longer exists.
func (s *Service) DeleteJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.store.FindJob(jobID)
	if job == nil {
		return ErrUnknownJob
	}

	s.ledger.ReleaseAllocations(jobID)
	for i := range s.store.Jobs {
		if s.store.Jobs[i].ID == jobID {
			s.store.Jobs = append(s.store.Jobs[:i], s.store.Jobs[i+1:]...)
			break
		}
	}

	s.logger.Info("job deleted", zap.String("job_id", jobID))
	return s.persist(ctx)
}

// GetJob returns a job by id.
func (s *Service) GetJob(jobID string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.store.FindJob(jobID)
	if job == nil {
		return models.Job{}, ErrUnknownJob
	}
	return *job, nil
}

// ListJobs returns jobs passing the query, newest first. Archived jobs are
// excluded unless asked for.
func (s *Service) ListJobs(query filter.Query, includeArchived bool) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Job
	for _, job := range s.store.Jobs {
		if job.Archived && !includeArchived {
			continue
		}
		if !filter.Matches(filter.JobRecord{Job: job}, query) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// DueReminders returns unarchived jobs whose follow-up window has elapsed.
func (s *Service) DueReminders(now time.Time) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Job
	for _, job := range s.store.Jobs {
		if job.Archived {
			continue
		}
		if job.ReminderDue(now) {
			due = append(due, job)
		}
	}
	return due
}

func (s *Service) enrich(ctx context.Context, draft *models.Job) {
	if len(draft.TrackPoints) == 0 {
		return
	}
	point := draft.TrackPoints[0]

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	if s.weather != nil && draft.Conditions.Temperature == nil {
		conditions, err := s.weather.Current(lookupCtx, point.Lat, point.Lng)
		if err != nil {
			s.logger.Warn("weather lookup failed", zap.Error(err))
		} else {
			draft.Conditions.Temperature = &conditions.Temperature
			draft.Conditions.WindSpeed = &conditions.WindSpeed
			draft.Conditions.Humidity = &conditions.Humidity
		}
	}

	if s.geocode != nil && draft.Conditions.RoadName == "" {
		road, err := s.geocode.RoadName(lookupCtx, point.Lat, point.Lng)
		if err != nil {
			s.logger.Warn("reverse geocode failed", zap.Error(err))
		} else {
			draft.Conditions.RoadName = road
		}
	}
}

func withoutBatches(allocations []models.Allocation, dropped []string) []models.Allocation {
	droppedSet := make(map[string]struct{}, len(dropped))
	for _, id := range dropped {
		droppedSet[id] = struct{}{}
	}
	out := allocations[:0]
	for _, a := range allocations {
		if _, ok := droppedSet[a.BatchID]; !ok {
			out = append(out, a)
		}
	}
	return out
}
