package dto

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// AssignRequest payload for dispatching a technician to one or more jobs.
// A zero TechnicianID clears nothing and creates nothing; callers use it to
// submit an intake form with the technician picker left empty.
type AssignRequest struct {
	TechnicianID int64   `json:"technician_id"`
	JobIDs       []int64 `json:"job_ids"`
	Notes        string  `json:"notes"`
}

// AssignmentResponse represents a dispatch session.
type AssignmentResponse struct {
	ID           int64                   `json:"id"`
	TechnicianID int64                   `json:"technician_id"`
	AssignedBy   int64                   `json:"assigned_by"`
	Status       domain.AssignmentStatus `json:"status"`
	Notes        string                  `json:"notes,omitempty"`
	AssignedAt   time.Time               `json:"assigned_at"`
	StartedAt    *time.Time              `json:"started_at"`
	CompletedAt  *time.Time              `json:"completed_at"`
}
