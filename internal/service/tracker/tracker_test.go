package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/filter"
	"github.com/tomschnierer025/weedtracker/internal/repository/store"
	"github.com/tomschnierer025/weedtracker/pkg/clients/geocode"
	"github.com/tomschnierer025/weedtracker/pkg/clients/weather"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := store.NewFileRepository(t.TempDir(), 5, nil)
	assert.NoError(t, err)

	svc, err := New(context.Background(), repo, nil, nil, nil)
	assert.NoError(t, err)
	return svc
}

func mustCreateBatch(t *testing.T, svc *Service, totalMix float64) models.Batch {
	t.Helper()
	batch, err := svc.CreateBatch(context.Background(), totalMix, nil)
	assert.NoError(t, err)
	return batch
}

func TestSaveJobEditReplacesLedgerContribution(t *testing.T) {
	svc := newTestService(t)
	batch := mustCreateBatch(t, svc, 600)

	draft := models.Job{
		Name:        "creek bend blackberry",
		Type:        models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 100}},
	}
	saved, dropped, err := svc.SaveJob(context.Background(), draft, false)
	assert.NoError(t, err)
	assert.Empty(t, dropped)

	got, _ := svc.GetBatch(batch.ID)
	assert.Equal(t, 100.0, got.Used)
	assert.Equal(t, 500.0, got.Remaining)

	// Edit the amount and re-save under the same name: the batch must end up
	// reflecting only the current allocation, not the sum of both saves.
	draft.Allocations = []models.Allocation{{BatchID: batch.ID, AmountUsed: 50}}
	resaved, _, err := svc.SaveJob(context.Background(), draft, false)
	assert.NoError(t, err)
	assert.Equal(t, saved.ID, resaved.ID)

	got, _ = svc.GetBatch(batch.ID)
	assert.Equal(t, 50.0, got.Used)
	assert.Equal(t, 550.0, got.Remaining)

	jobs := svc.ListJobs(filter.Query{}, true)
	assert.Len(t, jobs, 1)
}

func TestSaveJobIdenticalContentIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	batch := mustCreateBatch(t, svc, 300)

	draft := models.Job{
		Name:        "road shoulder north",
		Type:        models.JobRoadShoulderSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 80}},
	}
	first, _, err := svc.SaveJob(context.Background(), draft, false)
	assert.NoError(t, err)
	second, _, err := svc.SaveJob(context.Background(), draft, false)
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	got, _ := svc.GetBatch(batch.ID)
	assert.Equal(t, 80.0, got.Used)
	assert.Equal(t, 220.0, got.Remaining)
}

func TestSaveJobUpsertsByIDWhenPresent(t *testing.T) {
	svc := newTestService(t)

	first, _, err := svc.SaveJob(context.Background(), models.Job{Name: "fence line", Type: models.JobSpotSpray}, false)
	assert.NoError(t, err)

	// A rename travelling by id must not create a second job.
	renamed := first
	renamed.Name = "fence line (east)"
	second, _, err := svc.SaveJob(context.Background(), renamed, false)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, svc.ListJobs(filter.Query{}, true), 1)
	assert.Equal(t, "fence line (east)", second.Name)
}

func TestSaveJobRejectsInvalidType(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.SaveJob(context.Background(), models.Job{Name: "bad", Type: "Mowing"}, false)
	assert.ErrorIs(t, err, ErrInvalidJobType)
	assert.Empty(t, svc.ListJobs(filter.Query{}, true))
}

func TestSaveJobNormalizesTypeSpelling(t *testing.T) {
	svc := newTestService(t)

	inspection, _, err := svc.SaveJob(context.Background(), models.Job{Name: "walkover", Type: "inspection"}, false)
	assert.NoError(t, err)
	assert.Equal(t, models.JobInspection, inspection.Type)

	spray, _, err := svc.SaveJob(context.Background(), models.Job{
		Name: "walkover spray", Type: "spot spray", LinkedInspectionID: inspection.ID,
	}, false)
	assert.NoError(t, err)
	assert.Equal(t, models.JobSpotSpray, spray.Type)

	// The canonical value is what the type flags match against.
	matched := svc.ListJobs(filter.Query{Types: []models.JobType{models.JobSpotSpray}}, true)
	assert.Len(t, matched, 1)
	assert.Equal(t, spray.ID, matched[0].ID)

	// And the linked target, saved under a variant spelling, still reads as an
	// inspection when the link fires.
	archived, _ := svc.GetJob(inspection.ID)
	assert.True(t, archived.Archived)
}

func TestSaveJobDefaultsDateAndStatus(t *testing.T) {
	svc := newTestService(t)

	draft, _, err := svc.SaveJob(context.Background(), models.Job{Name: "draft run", Type: models.JobInspection}, true)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusDraft, draft.Status)
	assert.False(t, draft.Date.IsZero())

	saved, _, err := svc.SaveJob(context.Background(), models.Job{Name: "real run", Type: models.JobInspection}, false)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, saved.Status)
}

func TestSaveJobDropsDanglingAllocation(t *testing.T) {
	svc := newTestService(t)
	batch := mustCreateBatch(t, svc, 100)

	draft := models.Job{
		Name: "partial refs",
		Type: models.JobSpotSpray,
		Allocations: []models.Allocation{
			{BatchID: batch.ID, AmountUsed: 30},
			{BatchID: "deleted-long-ago", AmountUsed: 10},
		},
	}
	saved, dropped, err := svc.SaveJob(context.Background(), draft, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"deleted-long-ago"}, dropped)
	assert.Len(t, saved.Allocations, 1)

	got, _ := svc.GetBatch(batch.ID)
	assert.Equal(t, 30.0, got.Used)
}

func TestLinkedInspectionArchivesExactlyOnce(t *testing.T) {
	svc := newTestService(t)

	inspection, _, err := svc.SaveJob(context.Background(), models.Job{Name: "inspect creek", Type: models.JobInspection}, false)
	assert.NoError(t, err)

	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "spray creek", Type: models.JobSpotSpray, LinkedInspectionID: inspection.ID,
	}, false)
	assert.NoError(t, err)

	archived, _ := svc.GetJob(inspection.ID)
	assert.True(t, archived.Archived)
	assert.Equal(t, models.StatusArchived, archived.Status)

	// A second job linking the same inspection must not error or flip state.
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "follow up spray", Type: models.JobSpotSpray, LinkedInspectionID: inspection.ID,
	}, false)
	assert.NoError(t, err)

	still, _ := svc.GetJob(inspection.ID)
	assert.True(t, still.Archived)
}

func TestLinkedInspectionResolvesByNameFallback(t *testing.T) {
	svc := newTestService(t)

	inspection, _, err := svc.SaveJob(context.Background(), models.Job{Name: "boundary check", Type: models.JobInspection}, false)
	assert.NoError(t, err)

	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "boundary spray", Type: models.JobSpotSpray, LinkedInspectionID: "boundary check",
	}, false)
	assert.NoError(t, err)

	archived, _ := svc.GetJob(inspection.ID)
	assert.True(t, archived.Archived)
}

func TestLinkedNonInspectionIsIgnored(t *testing.T) {
	svc := newTestService(t)

	spray, _, err := svc.SaveJob(context.Background(), models.Job{Name: "not an inspection", Type: models.JobSpotSpray}, false)
	assert.NoError(t, err)

	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "linker", Type: models.JobSpotSpray, LinkedInspectionID: spray.ID,
	}, false)
	assert.NoError(t, err)

	target, _ := svc.GetJob(spray.ID)
	assert.False(t, target.Archived)
}

func TestDeleteJobReleasesAllocations(t *testing.T) {
	svc := newTestService(t)
	batch := mustCreateBatch(t, svc, 400)

	job, _, err := svc.SaveJob(context.Background(), models.Job{
		Name:        "to be deleted",
		Type:        models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 150}},
	}, false)
	assert.NoError(t, err)

	got, _ := svc.GetBatch(batch.ID)
	assert.Equal(t, 150.0, got.Used)

	assert.NoError(t, svc.DeleteJob(context.Background(), job.ID))

	got, _ = svc.GetBatch(batch.ID)
	assert.Equal(t, 0.0, got.Used)
	assert.Equal(t, 400.0, got.Remaining)

	_, err = svc.GetJob(job.ID)
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestDrainedBatchesAbsorbFloatResidue(t *testing.T) {
	svc := newTestService(t)
	batch := mustCreateBatch(t, svc, 1.0)

	// 0.7+0.2+0.1 overshoots 1.0 by a hair in float64, so summing the lines
	// one decrement at a time leaves a residue rather than landing on zero.
	_, _, err := svc.SaveJob(context.Background(), models.Job{
		Name: "morning run", Type: models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 0.7}},
	}, false)
	assert.NoError(t, err)
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "afternoon run", Type: models.JobSpotSpray,
		Allocations: []models.Allocation{
			{BatchID: batch.ID, AmountUsed: 0.2},
		},
	}, false)
	assert.NoError(t, err)
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "evening run", Type: models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 0.1}},
	}, false)
	assert.NoError(t, err)

	drained := svc.DrainedBatches()
	assert.Len(t, drained, 1)
	assert.Equal(t, batch.ID, drained[0].ID)

	// A batch with real volume left stays out of the housekeeping view.
	half := mustCreateBatch(t, svc, 10)
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "half used", Type: models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: half.ID, AmountUsed: 5}},
	}, false)
	assert.NoError(t, err)
	assert.Len(t, svc.DrainedBatches(), 1)
}

func TestArchiveExcludesFromDefaultListing(t *testing.T) {
	svc := newTestService(t)

	job, _, err := svc.SaveJob(context.Background(), models.Job{Name: "done run", Type: models.JobSpotSpray}, false)
	assert.NoError(t, err)

	assert.NoError(t, svc.ArchiveJob(context.Background(), job.ID))
	assert.NoError(t, svc.ArchiveJob(context.Background(), job.ID)) // idempotent

	assert.Empty(t, svc.ListJobs(filter.Query{}, false))
	assert.Len(t, svc.ListJobs(filter.Query{}, true), 1)
}

func TestDueReminders(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	_, _, err := svc.SaveJob(context.Background(), models.Job{
		Name: "old spray", Type: models.JobSpotSpray,
		Date: now.AddDate(0, 0, -15), ReminderWeeks: 2,
	}, false)
	assert.NoError(t, err)
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name: "recent spray", Type: models.JobSpotSpray,
		Date: now.AddDate(0, 0, -3), ReminderWeeks: 2,
	}, false)
	assert.NoError(t, err)

	due := svc.DueReminders(now)
	assert.Len(t, due, 1)
	assert.Equal(t, "old spray", due[0].Name)
}

type stubWeather struct {
	conditions *weather.Conditions
	err        error
}

func (s stubWeather) Current(context.Context, float64, float64) (*weather.Conditions, error) {
	return s.conditions, s.err
}

type stubGeocode struct {
	road string
	err  error
}

func (s stubGeocode) RoadName(context.Context, float64, float64) (string, error) {
	return s.road, s.err
}

var _ weather.Client = stubWeather{}
var _ geocode.Client = stubGeocode{}

func TestEnrichmentPopulatesConditions(t *testing.T) {
	svc := newTestService(t)
	svc.weather = stubWeather{conditions: &weather.Conditions{Temperature: 21.5, WindSpeed: 12, Humidity: 60}}
	svc.geocode = stubGeocode{road: "Old Coach Road"}

	job, _, err := svc.SaveJob(context.Background(), models.Job{
		Name: "enriched", Type: models.JobSpotSpray,
		TrackPoints: []models.TrackPoint{{Lat: -33.86, Lng: 151.2}},
	}, false)
	assert.NoError(t, err)
	assert.Equal(t, "Old Coach Road", job.Conditions.RoadName)
	if assert.NotNil(t, job.Conditions.Temperature) {
		assert.Equal(t, 21.5, *job.Conditions.Temperature)
	}
}

func TestEnrichmentFailureNeverBlocksSave(t *testing.T) {
	svc := newTestService(t)
	svc.weather = stubWeather{err: errors.New("provider down")}
	svc.geocode = stubGeocode{err: errors.New("provider down")}

	job, _, err := svc.SaveJob(context.Background(), models.Job{
		Name: "degraded", Type: models.JobSpotSpray,
		TrackPoints: []models.TrackPoint{{Lat: -33.86, Lng: 151.2}},
	}, false)
	assert.NoError(t, err)
	assert.Empty(t, job.Conditions.RoadName)
	assert.Nil(t, job.Conditions.Temperature)
}

func TestStoreSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	repo, err := store.NewFileRepository(dir, 5, nil)
	assert.NoError(t, err)

	svc, err := New(context.Background(), repo, nil, nil, nil)
	assert.NoError(t, err)

	batch, err := svc.CreateBatch(context.Background(), 250, nil)
	assert.NoError(t, err)
	_, _, err = svc.SaveJob(context.Background(), models.Job{
		Name:        "persisted run",
		Type:        models.JobSpotSpray,
		Allocations: []models.Allocation{{BatchID: batch.ID, AmountUsed: 60}},
	}, false)
	assert.NoError(t, err)

	// A fresh service over the same directory sees the same ledger state.
	reloaded, err := New(context.Background(), repo, nil, nil, nil)
	assert.NoError(t, err)
	got, err := reloaded.GetBatch(batch.ID)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, got.Used)
	assert.Equal(t, 190.0, got.Remaining)
}

func TestImportIsFullOverwrite(t *testing.T) {
	svc := newTestService(t)
	mustCreateBatch(t, svc, 100)

	snapshot := models.NewStore()
	snapshot.Batches = append(snapshot.Batches, models.Batch{ID: "B-imported", TotalMix: 900, Remaining: 900})

	data, err := svc.ExportStore()
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	imported, err := json.Marshal(snapshot)
	assert.NoError(t, err)
	assert.NoError(t, svc.ImportStore(context.Background(), imported))

	batches := svc.ListBatches(filter.Query{})
	assert.Len(t, batches, 1)
	assert.Equal(t, "B-imported", batches[0].ID)
}
