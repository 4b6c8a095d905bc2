package events

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated         EventType = "job_created"
	EventJobStatusChanged   EventType = "job_status_changed"
	EventJobReopened        EventType = "job_reopened"
	EventJobAssigned        EventType = "job_assigned"
	EventJobPaymentRecorded EventType = "job_payment_recorded"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     int64       `json:"job_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	CustomerID          int64    `json:"customer_id"`
	StoreID             int64    `json:"store_id"`
	DeviceType          string   `json:"device_type"`
	DeviceModel         string   `json:"device_model,omitempty"`
	NotificationMethods []string `json:"notification_methods,omitempty"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
	Note      string           `json:"note,omitempty"`
}

// JobAssignedPayload payload.
type JobAssignedPayload struct {
	AssignmentID int64   `json:"assignment_id"`
	TechnicianID int64   `json:"technician_id"`
	JobIDs       []int64 `json:"job_ids"`
}

// JobPaymentRecordedPayload payload.
type JobPaymentRecordedPayload struct {
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
}
