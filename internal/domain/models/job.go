package models

import (
	"strings"
	"time"
)

// JobType enumerates the supported task categories.
type JobType string

const (
	JobInspection        JobType = "Inspection"
	JobSpotSpray         JobType = "SpotSpray"
	JobRoadShoulderSpray JobType = "RoadShoulderSpray"
)

// ParseJobType derives a JobType from free-form operator input. The bool
// reports whether the value matched the closed enum.
func ParseJobType(value string) (JobType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "inspection":
		return JobInspection, true
	case "spotspray", "spot spray":
		return JobSpotSpray, true
	case "roadshoulderspray", "road shoulder spray":
		return JobRoadShoulderSpray, true
	default:
		return "", false
	}
}

// JobStatus enumerates the job lifecycle states.
type JobStatus string

const (
	StatusDraft      JobStatus = "Draft"
	StatusIncomplete JobStatus = "Incomplete"
	StatusArchived   JobStatus = "Archived"
)

// Allocation is a job's claim on a quantity of a batch's volume. BatchID is
// unique within a job's allocation list.
type Allocation struct {
	BatchID    string  `json:"batchId" bson:"batch_id"`
	AmountUsed float64 `json:"amountUsed" bson:"amount_used"`
}

// TrackPoint is a recorded geocoordinate along a job's route.
type TrackPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Conditions holds the optional observations captured at save time by the
// weather and reverse-geocoding collaborators. Nil pointers mean the lookup
// failed or never ran; a save is never blocked by missing conditions.
type Conditions struct {
	RoadName    string   `json:"roadName,omitempty" bson:"road_name,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	WindSpeed   *float64 `json:"windSpeed,omitempty" bson:"wind_speed,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty" bson:"humidity,omitempty"`
}

// Job captures a single field-spraying task. ID is immutable once generated;
// Name is an operator-assigned display key.
type Job struct {
	ID                 string       `json:"id" bson:"id"`
	Name               string       `json:"name" bson:"name"`
	Type               JobType      `json:"type" bson:"type"`
	Date               time.Time    `json:"date" bson:"date"`
	StartTime          string       `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime            string       `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Weed               string       `json:"weed" bson:"weed"`
	Status             JobStatus    `json:"status" bson:"status"`
	Allocations        []Allocation `json:"allocations" bson:"allocations"`
	LinkedInspectionID string       `json:"linkedInspectionId,omitempty" bson:"linked_inspection_id,omitempty"`
	TrackPoints        []TrackPoint `json:"trackPoints" bson:"track_points"`
	Notes              string       `json:"notes" bson:"notes"`
	PhotoRef           string       `json:"photoRef,omitempty" bson:"photo_ref,omitempty"`
	ReminderWeeks      int          `json:"reminderWeeks" bson:"reminder_weeks"`
	Archived           bool         `json:"archived" bson:"archived"`
	Conditions         Conditions   `json:"conditions" bson:"conditions"`
	CreatedAt          time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time    `json:"updatedAt" bson:"updated_at"`
}

// ReminderDue reports whether the job's follow-up reminder has elapsed as of
// now. Jobs without a reminder or without a date never come due.
func (j Job) ReminderDue(now time.Time) bool {
	if j.ReminderWeeks <= 0 || j.Date.IsZero() {
		return false
	}
	return !now.Before(j.Date.AddDate(0, 0, 7*j.ReminderWeeks))
}
