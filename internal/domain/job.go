package domain

import "time"

// JobStatus enumerates lifecycle states for repair jobs.
type JobStatus string

const (
	JobStatusNew        JobStatus = "New"
	JobStatusInProgress JobStatus = "In Progress"
	JobStatusCompleted  JobStatus = "Completed"
)

// Valid reports whether the status is a known value.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusNew, JobStatusInProgress, JobStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus enumerates settlement states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
)

// Job is the aggregate for a single repair ticket, tied to one customer and
// one store. RawCost is the internal repair cost and must never reach
// technician-role readers; it is nullable so redacted reads carry nil.
type Job struct {
	ID                  int64
	CustomerID          int64
	StoreID             int64
	DeviceType          string
	DeviceModel         string
	DeviceLockType      string
	DeviceLockSecret    string
	ProblemDescription  string
	NotificationMethods []string
	Status              JobStatus
	DepositCost         float64
	RawCost             *float64
	EstimateCost        float64
	ActualCost          float64
	PaymentStatus       PaymentStatus
	PaymentMethod       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
}

// Redacted returns a copy safe for technician-role readers.
func (j Job) Redacted() Job {
	j.RawCost = nil
	return j
}
