package models

import "time"

// ChemicalUsage is a descriptive line recorded when a batch is poured. It is a
// snapshot, not a live reference: deleting the chemical later orphans the line
// and that is fine.
type ChemicalUsage struct {
	ChemicalName   string  `json:"chemicalName" bson:"chemical_name"`
	RatePer100L    float64 `json:"ratePer100L" bson:"rate_per_100l"`
	Unit           string  `json:"unit" bson:"unit"`
	ComputedAmount float64 `json:"computedAmount" bson:"computed_amount"`
}

// DumpEvent records a permanent reduction of a batch's remaining volume
// unrelated to job use (spoilage, disposal). There is no undump.
type DumpEvent struct {
	Date   time.Time `json:"date" bson:"date"`
	Time   string    `json:"time" bson:"time"`
	Amount float64   `json:"amount" bson:"amount"`
	Reason string    `json:"reason" bson:"reason"`
}

// Batch is a finite pour of mixed herbicide tracked for remaining volume.
// Used and Remaining are derived quantities: they are recomputed from the live
// allocation set, never trusted as accumulators.
type Batch struct {
	ID             string          `json:"id" bson:"id"`
	CreatedDate    time.Time       `json:"createdDate" bson:"created_date"`
	CreatedTime    string          `json:"createdTime" bson:"created_time"`
	TotalMix       float64         `json:"totalMix" bson:"total_mix"`
	Used           float64         `json:"used" bson:"used"`
	Remaining      float64         `json:"remaining" bson:"remaining"`
	ChemicalUsages []ChemicalUsage `json:"chemicalUsages" bson:"chemical_usages"`
	DumpEvents     []DumpEvent     `json:"dumpEvents" bson:"dump_events"`
	LinkedJobIDs   []string        `json:"linkedJobIds" bson:"linked_job_ids"`
}

// DumpedTotal sums all dump events on the batch.
func (b Batch) DumpedTotal() float64 {
	var total float64
	for _, d := range b.DumpEvents {
		total += d.Amount
	}
	return total
}

// LinkJob adds the job id to LinkedJobIDs if not already present.
func (b *Batch) LinkJob(jobID string) {
	for _, id := range b.LinkedJobIDs {
		if id == jobID {
			return
		}
	}
	b.LinkedJobIDs = append(b.LinkedJobIDs, jobID)
}
