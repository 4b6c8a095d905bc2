package dto

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// CreateJobRequest payload for intake. ExistingCustomerID skips the
// phone/email lookup; TechnicianID of zero means no initial dispatch.
type CreateJobRequest struct {
	ExistingCustomerID  int64    `json:"existing_customer_id"`
	CustomerName        string   `json:"customer_name"`
	CustomerPhone       string   `json:"customer_phone"`
	CustomerEmail       string   `json:"customer_email"`
	CustomerAddress     string   `json:"customer_address"`
	StoreID             int64    `json:"store_id"`
	DeviceType          string   `json:"device_type"`
	DeviceModel         string   `json:"device_model"`
	DeviceLockType      string   `json:"device_lock_type"`
	DeviceLockSecret    string   `json:"device_lock_secret"`
	ProblemDescription  string   `json:"problem_description"`
	NotificationMethods []string `json:"notification_methods"`
	DepositCost         float64  `json:"deposit_cost"`
	EstimateCost        float64  `json:"estimate_cost"`
	TechnicianID        int64    `json:"technician_id"`
}

// TransitionRequest payload for a status change. RawCost and ActualCost are
// optional overrides applied with the transition.
type TransitionRequest struct {
	Status     domain.JobStatus `json:"status"`
	RawCost    *float64         `json:"raw_cost"`
	ActualCost *float64         `json:"actual_cost"`
	Note       string           `json:"note"`
}

// ReopenRequest payload for sending a completed job back to In Progress.
type ReopenRequest struct {
	Reason string `json:"reason"`
}

// PaymentRequest payload for settling a completed job.
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// NoteRequest payload for a manual note.
type NoteRequest struct {
	Note string `json:"note"`
}

// JobSummary response. RawCost is omitted for technician callers.
type JobSummary struct {
	ID                 int64                `json:"id"`
	CustomerID         int64                `json:"customer_id"`
	StoreID            int64                `json:"store_id"`
	DeviceType         string               `json:"device_type"`
	DeviceModel        string               `json:"device_model,omitempty"`
	ProblemDescription string               `json:"problem_description"`
	Status             domain.JobStatus     `json:"status"`
	DepositCost        float64              `json:"deposit_cost"`
	RawCost            *float64             `json:"raw_cost,omitempty"`
	EstimateCost       float64              `json:"estimate_cost"`
	ActualCost         float64              `json:"actual_cost"`
	PaymentStatus      domain.PaymentStatus `json:"payment_status"`
	PaymentMethod      string               `json:"payment_method,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	StartedAt          *time.Time           `json:"started_at"`
	CompletedAt        *time.Time           `json:"completed_at"`
}

// JobDetailResponse provides the full job projection.
type JobDetailResponse struct {
	JobSummary
	DeviceLockType      string              `json:"device_lock_type,omitempty"`
	DeviceLockSecret    string              `json:"device_lock_secret,omitempty"`
	NotificationMethods []string            `json:"notification_methods"`
	Customer            CustomerResponse    `json:"customer"`
	Store               StoreResponse       `json:"store"`
	Technician          *UserSummary        `json:"technician,omitempty"`
	Assignment          *AssignmentResponse `json:"assignment,omitempty"`
	Notes               []JobNoteResponse   `json:"notes"`
}

// JobNoteResponse represents one audit trail entry.
type JobNoteResponse struct {
	ID        int64           `json:"id"`
	JobID     int64           `json:"job_id"`
	Note      string          `json:"note"`
	NoteType  domain.NoteType `json:"note_type"`
	CreatedAt time.Time       `json:"created_at"`
}

// CustomerResponse is the operator view of a customer.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	StoreID   *int64    `json:"store_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
