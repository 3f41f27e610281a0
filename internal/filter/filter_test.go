package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestTypeFlagAndDateRange(t *testing.T) {
	query := Query{
		DateFrom: date("2024-01-01"),
		DateTo:   date("2024-01-31"),
		Types:    []models.JobType{models.JobRoadShoulderSpray},
	}

	job := models.Job{Name: "highway run", Date: date("2024-01-15"), Type: models.JobSpotSpray}
	assert.False(t, Matches(JobRecord{Job: job}, query))

	job.Type = models.JobRoadShoulderSpray
	assert.True(t, Matches(JobRecord{Job: job}, query))
}

func TestDateRangeInclusiveBothEnds(t *testing.T) {
	query := Query{DateFrom: date("2024-01-01"), DateTo: date("2024-01-31")}

	assert.True(t, Matches(JobRecord{Job: models.Job{Date: date("2024-01-01")}}, query))
	assert.True(t, Matches(JobRecord{Job: models.Job{Date: date("2024-01-31")}}, query))
	assert.False(t, Matches(JobRecord{Job: models.Job{Date: date("2023-12-31")}}, query))
	assert.False(t, Matches(JobRecord{Job: models.Job{Date: date("2024-02-01")}}, query))
}

func TestDateBoundsCompareAtDayGranularity(t *testing.T) {
	query := Query{DateFrom: date("2024-01-01"), DateTo: date("2024-01-31")}

	// A mid-day timestamp on the closing day still falls inside the range.
	midDay := time.Date(2024, time.January, 31, 10, 30, 0, 0, time.UTC)
	assert.True(t, Matches(JobRecord{Job: models.Job{Date: midDay}}, query))

	// Late on the opening day is inside too, even against a midnight DateFrom.
	lateStart := time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC)
	assert.True(t, Matches(JobRecord{Job: models.Job{Date: lateStart}}, query))

	// The first moment of the next day is out.
	nextDay := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, Matches(JobRecord{Job: models.Job{Date: nextDay}}, query))
}

func TestUndatedRecordFailsWhenBoundsGiven(t *testing.T) {
	chemical := ChemicalRecord{Chemical: models.Chemical{Name: "Glyphosate 450"}}

	assert.False(t, Matches(chemical, Query{DateFrom: date("2024-01-01")}))
	assert.False(t, Matches(chemical, Query{DateTo: date("2024-01-01")}))
	assert.True(t, Matches(chemical, Query{}))
}

func TestEmptyTypeFlagsPassAllTypes(t *testing.T) {
	job := models.Job{Type: models.JobInspection, Date: date("2024-03-03")}
	assert.True(t, Matches(JobRecord{Job: job}, Query{}))
}

func TestFreeTextIsCaseInsensitiveSubstring(t *testing.T) {
	job := models.Job{Name: "Creek Bend", Weed: "Blackberry", Notes: "dense patch"}

	assert.True(t, Matches(JobRecord{Job: job}, Query{Text: "blackberry"}))
	assert.True(t, Matches(JobRecord{Job: job}, Query{Text: "CREEK"}))
	assert.True(t, Matches(JobRecord{Job: job}, Query{Text: "patch"}))
	assert.False(t, Matches(JobRecord{Job: job}, Query{Text: "thistle"}))
}

func TestBatchRecordSearchesUsageLines(t *testing.T) {
	batch := models.Batch{
		ID:          "b-7731",
		CreatedDate: date("2024-02-02"),
		ChemicalUsages: []models.ChemicalUsage{
			{ChemicalName: "Metsulfuron"},
		},
	}

	assert.True(t, Matches(BatchRecord{Batch: batch}, Query{Text: "metsulfuron"}))
	assert.True(t, Matches(BatchRecord{Batch: batch}, Query{Text: "7731"}))
	assert.False(t, Matches(BatchRecord{Batch: batch}, Query{Text: "glyphosate"}))
}

func TestPredicatesAreANDed(t *testing.T) {
	job := models.Job{
		Name: "Creek Bend",
		Date: date("2024-01-15"),
		Type: models.JobSpotSpray,
		Weed: "Blackberry",
	}
	query := Query{
		Text:     "blackberry",
		DateFrom: date("2024-02-01"),
		Types:    []models.JobType{models.JobSpotSpray},
	}

	// Text and type match, date does not: the whole query fails.
	assert.False(t, Matches(JobRecord{Job: job}, query))
}
