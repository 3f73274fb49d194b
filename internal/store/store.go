package store

import "time"

// ProgressRecord is the latest known state of one poll invocation.
type ProgressRecord struct {
	// PollID identifies the invocation. Records are keyed by it.
	PollID string `json:"poll_id"`

	// RequestID is the generation job being polled.
	RequestID string `json:"request_id"`

	// Attempt is the 1-based number of the query that produced this record.
	Attempt int `json:"attempt"`

	// Status is the last status reported by the API, empty if none yet.
	Status string `json:"status"`

	// Progress is the last progress reported by the API, 0..100.
	Progress int `json:"progress"`

	// ElapsedMs is measured from the first query of the invocation.
	ElapsedMs int64 `json:"elapsed_ms"`

	// CheckedAt is when the query returned.
	CheckedAt time.Time `json:"checked_at"`

	// Error contains the error message if the query failed.
	Error *string `json:"error"`
}

// Store defines storage and subscription for progress records.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update stores a record, replacing any previous record with the same
	// PollID, and notifies all subscribers.
	Update(record ProgressRecord)

	// GetAll returns a snapshot of the stored records, oldest poll first.
	GetAll() []ProgressRecord

	// Get returns the record for pollID.
	Get(pollID string) (ProgressRecord, bool)

	// Subscribe returns a channel that receives every update.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan ProgressRecord

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan ProgressRecord)
}
