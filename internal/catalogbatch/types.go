// Package catalogbatch drains bounded batches of row messages from the
// catalog-items topic, validates and persists each record, and publishes one
// completion notification per batch that persisted at least one record.
package catalogbatch

import "time"

// CatalogRecord is the persisted form of one imported row. ID is assigned
// at persistence time, never at parse time.
type CatalogRecord struct {
	ID          string
	Title       string
	Description string
	Price       int
	Count       int
}

// Outcome summarises a processed batch.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
)

// BatchResult tallies one batch's per-message outcomes.
type BatchResult struct {
	Succeeded int
	Failed    int
	FileKeys  []string
}

// Outcome reports success when every message in the batch persisted.
func (r BatchResult) Outcome() Outcome {
	if r.Failed == 0 {
		return OutcomeSuccess
	}
	return OutcomePartial
}

// CompletionNotification is published once per batch in which at least one
// record persisted. FileKeys names the source files the batch drew from.
type CompletionNotification struct {
	FileKeys    []string  `json:"fileKeys"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Outcome     Outcome   `json:"outcome"`
	CompletedAt time.Time `json:"completedAt"`
}
