package models

import "time"

// SyncResult is one append-only audit row describing a single sync pass
// for a single source.
type SyncResult struct {
	ID           int64     `db:"id" json:"id,omitempty"`
	SourceID     string    `db:"source_id" json:"source_id"`
	Inserted     int       `db:"inserted" json:"inserted"`
	Updated      int       `db:"updated" json:"updated"`
	Errored      int       `db:"errored" json:"errored"`
	FetchFailed  bool      `db:"fetch_failed" json:"fetch_failed"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	DurationMS   int64     `db:"duration_ms" json:"duration_ms"`
	StartedAt    time.Time `db:"started_at" json:"started_at"`
}
