package filter

import (
	"strings"
	"time"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

// JobRecord adapts a job for the evaluator.
type JobRecord struct {
	Job models.Job
}

func (r JobRecord) FilterDate() (time.Time, bool) {
	return r.Job.Date, !r.Job.Date.IsZero()
}

func (r JobRecord) FilterType() models.JobType { return r.Job.Type }

func (r JobRecord) SearchText() string {
	parts := []string{r.Job.Name, r.Job.Weed, r.Job.Notes, r.Job.LinkedInspectionID}
	return strings.Join(parts, " ")
}

// BatchRecord adapts a batch. Batches carry no job type, so type flags only
// ever exclude them when the caller sets flags on a batch view, which the UI
// does not do.
type BatchRecord struct {
	Batch models.Batch
}

func (r BatchRecord) FilterDate() (time.Time, bool) {
	return r.Batch.CreatedDate, !r.Batch.CreatedDate.IsZero()
}

func (r BatchRecord) FilterType() models.JobType { return "" }

func (r BatchRecord) SearchText() string {
	parts := []string{r.Batch.ID}
	for _, u := range r.Batch.ChemicalUsages {
		parts = append(parts, u.ChemicalName)
	}
	return strings.Join(parts, " ")
}

// ChemicalRecord adapts a chemical. Chemicals are undated and untyped; only
// the text predicate applies to them.
type ChemicalRecord struct {
	Chemical models.Chemical
}

func (r ChemicalRecord) FilterDate() (time.Time, bool) { return time.Time{}, false }

func (r ChemicalRecord) FilterType() models.JobType { return "" }

func (r ChemicalRecord) SearchText() string {
	return r.Chemical.Name + " " + r.Chemical.ActiveIngredient
}
