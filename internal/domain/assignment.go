package domain

import "time"

// AssignmentStatus enumerates dispatch session states.
type AssignmentStatus string

const (
	AssignmentStatusActive     AssignmentStatus = "active"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// Open reports whether the assignment still counts as a live dispatch.
func (s AssignmentStatus) Open() bool {
	return s == AssignmentStatusActive || s == AssignmentStatusInProgress
}

// TechnicianAssignment is a single dispatch of one technician, possibly
// covering several jobs through AssignmentJob links. Its status reflects the
// technician's overall session, not any one job.
type TechnicianAssignment struct {
	ID           int64
	TechnicianID int64
	AssignedBy   int64
	Status       AssignmentStatus
	Notes        string
	AssignedAt   time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// AssignmentJob links an assignment to one of the jobs it covers.
type AssignmentJob struct {
	ID           int64
	AssignmentID int64
	JobID        int64
}
