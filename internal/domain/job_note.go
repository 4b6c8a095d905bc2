package domain

import "time"

// NoteType classifies audit trail entries.
type NoteType string

const (
	NoteTypeManual       NoteType = "manual"
	NoteTypeStatusChange NoteType = "status_change"
	NoteTypePayment      NoteType = "payment"
)

// JobNote is an append-only audit entry attached to a job. Notes are never
// edited or deleted.
type JobNote struct {
	ID        int64
	JobID     int64
	Note      string
	NoteType  NoteType
	CreatedAt time.Time
}
