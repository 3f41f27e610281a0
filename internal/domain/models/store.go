package models

import "time"

// StoreVersion is the current document schema version.
const StoreVersion = 1

// Settings holds operator-tunable defaults carried inside the store document.
type Settings struct {
	DefaultReminderWeeks int `json:"defaultReminderWeeks" bson:"default_reminder_weeks"`
}

// Store is the single versioned document the whole application persists.
// Import replaces it wholesale; there is no merge.
type Store struct {
	Version   int        `json:"version" bson:"version"`
	SavedAt   time.Time  `json:"savedAt" bson:"saved_at"`
	Settings  Settings   `json:"settings" bson:"settings"`
	Chemicals []Chemical `json:"chemicals" bson:"chemicals"`
	Batches   []Batch    `json:"batches" bson:"batches"`
	Jobs      []Job      `json:"jobs" bson:"jobs"`
}

// NewStore returns an empty store document at the current version.
func NewStore() *Store {
	return &Store{Version: StoreVersion}
}

// FindBatch returns a pointer into the store's batch slice, or nil.
func (s *Store) FindBatch(id string) *Batch {
	for i := range s.Batches {
		if s.Batches[i].ID == id {
			return &s.Batches[i]
		}
	}
	return nil
}

// FindJob returns a pointer into the store's job slice, or nil.
func (s *Store) FindJob(id string) *Job {
	for i := range s.Jobs {
		if s.Jobs[i].ID == id {
			return &s.Jobs[i]
		}
	}
	return nil
}

// FindJobByName returns the first job carrying the display name, or nil.
func (s *Store) FindJobByName(name string) *Job {
	for i := range s.Jobs {
		if s.Jobs[i].Name == name {
			return &s.Jobs[i]
		}
	}
	return nil
}

// FindChemical returns a pointer into the store's chemical slice, or nil.
func (s *Store) FindChemical(name string) *Chemical {
	for i := range s.Chemicals {
		if s.Chemicals[i].Name == name {
			return &s.Chemicals[i]
		}
	}
	return nil
}
