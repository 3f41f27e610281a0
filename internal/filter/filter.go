// Package filter implements the predicate evaluator shared by the job, batch
// and chemical list views. It is pure: no I/O, no store access.
package filter

import (
	"strings"
	"time"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

// Record is the capability a list entry must expose to be filterable. Each
// entity kind gets its own adapter rather than being coerced into a job shape.
type Record interface {
	// FilterDate returns the record's date and whether it has one.
	FilterDate() (time.Time, bool)
	// FilterType returns the record's job type, empty for non-job records.
	FilterType() models.JobType
	// SearchText returns the concatenation of the record's searchable fields.
	SearchText() string
}

// Query carries the filter bar's controls. Zero values
// disable the corresponding predicate.
type Query struct {
	Text     string
	DateFrom time.Time
	DateTo   time.Time
	Types    []models.JobType
}

// Matches evaluates the query against a record. The three predicates are
// ANDed; evaluation short-circuits on the first failure.
func Matches(r Record, q Query) bool {
	if !matchDate(r, q) {
		return false
	}
	if !matchType(r, q) {
		return false
	}
	return matchText(r, q)
}

// matchDate applies the inclusive date range. Records without a date fail
// whenever either bound is given. Comparison happens at day granularity so a
// record timestamped mid-day still falls inside a range ending on that day.
func matchDate(r Record, q Query) bool {
	if q.DateFrom.IsZero() && q.DateTo.IsZero() {
		return true
	}
	date, ok := r.FilterDate()
	if !ok {
		return false
	}
	day := date.Truncate(24 * time.Hour)
	if !q.DateFrom.IsZero() && day.Before(q.DateFrom.Truncate(24*time.Hour)) {
		return false
	}
	if !q.DateTo.IsZero() && day.After(q.DateTo.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// matchType passes everything when no flags are set, otherwise the record's
// type must be among the flagged ones.
func matchType(r Record, q Query) bool {
	if len(q.Types) == 0 {
		return true
	}
	kind := r.FilterType()
	for _, t := range q.Types {
		if kind == t {
			return true
		}
	}
	return false
}

func matchText(r Record, q Query) bool {
	needle := strings.TrimSpace(strings.ToLower(q.Text))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.SearchText()), needle)
}
