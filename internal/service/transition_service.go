package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// TransitionService validates and applies job status changes, cascading to
// the job's open assignment and appending an audit note, all in one
// transaction.
type TransitionService struct {
	tx         repository.TxRunner
	repos      *repository.Repositories
	visibility *VisibilityService
	dispatcher events.Dispatcher
}

// TransitionDependencies bundles collaborators for the engine.
type TransitionDependencies struct {
	Tx         repository.TxRunner
	Repos      *repository.Repositories
	Visibility *VisibilityService
	Dispatcher events.Dispatcher
}

// CostOverrides optionally overwrites cost fields in the same operation as a
// status change. Nil fields are left untouched.
type CostOverrides struct {
	RawCost    *float64
	ActualCost *float64
}

// NewTransitionService constructs the engine.
func NewTransitionService(deps TransitionDependencies) *TransitionService {
	return &TransitionService{
		tx:         deps.Tx,
		repos:      deps.Repos,
		visibility: deps.Visibility,
		dispatcher: deps.Dispatcher,
	}
}

// Forward edges only. The Completed -> In Progress back-edge goes through
// Reopen, which demands an explicit confirmation call.
var allowedTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobStatusNew:        {domain.JobStatusInProgress},
	domain.JobStatusInProgress: {domain.JobStatusCompleted},
	domain.JobStatusCompleted:  {},
}

func isValidTransition(current, next domain.JobStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition moves a job along a forward edge. The job row is locked for the
// duration, so a concurrent caller whose expected prior status no longer
// matches observes InvalidTransition instead of clobbering state.
func (s *TransitionService) Transition(ctx context.Context, caller *domain.User, jobID int64, target domain.JobStatus, costs CostOverrides, note string) (*domain.Job, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if !caller.Role.CanTransitionJobs() {
		return nil, apperrors.NewForbidden("role may not change job status")
	}
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown target status", map[string]any{"status": target})
	}

	var updated *domain.Job
	var oldStatus domain.JobStatus
	err := s.tx.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		job, err := r.Jobs.GetByIDForUpdate(ctx, jobID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
			}
			return apperrors.MapError(err)
		}
		allowed, err := s.visibility.CanAccessJob(ctx, caller, job)
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.NewForbidden("job outside caller scope")
		}
		if !isValidTransition(job.Status, target) {
			return apperrors.NewInvalidTransition("status edge not permitted", map[string]any{
				"from": job.Status,
				"to":   target,
			})
		}

		oldStatus = job.Status
		now := time.Now()
		job.Status = target
		switch target {
		case domain.JobStatusInProgress:
			if job.StartedAt == nil {
				job.StartedAt = &now
			}
		case domain.JobStatusCompleted:
			job.CompletedAt = &now
		}
		applyCostOverrides(job, costs)

		if err := r.Jobs.Update(ctx, job); err != nil {
			return apperrors.MapError(err)
		}

		switch target {
		case domain.JobStatusInProgress:
			if err := r.Assignments.MarkInProgressForJob(ctx, job.ID); err != nil {
				return apperrors.MapError(err)
			}
		case domain.JobStatusCompleted:
			if err := r.Assignments.MarkCompletedForJob(ctx, job.ID); err != nil {
				return apperrors.MapError(err)
			}
		}

		if err := r.Notes.Create(ctx, &domain.JobNote{
			JobID:    job.ID,
			Note:     transitionNoteText(oldStatus, target, note),
			NoteType: domain.NoteTypeStatusChange,
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, caller, events.EventJobStatusChanged, updated.ID, oldStatus, updated.Status, note)
	return updated, nil
}

// Reopen moves a Completed job back to In Progress. The prior completed_at is
// retained as historical metadata; the audit trail records the reopen event.
// The assignment status is deliberately left alone, a fresh dispatch is the
// Assignment Manager's call.
func (s *TransitionService) Reopen(ctx context.Context, caller *domain.User, jobID int64, reason string) (*domain.Job, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if !caller.Role.CanTransitionJobs() {
		return nil, apperrors.NewForbidden("role may not change job status")
	}

	var updated *domain.Job
	err := s.tx.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		job, err := r.Jobs.GetByIDForUpdate(ctx, jobID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
			}
			return apperrors.MapError(err)
		}
		allowed, err := s.visibility.CanAccessJob(ctx, caller, job)
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.NewForbidden("job outside caller scope")
		}
		if job.Status != domain.JobStatusCompleted {
			return apperrors.NewInvalidTransition("only completed jobs can be reopened", map[string]any{
				"from": job.Status,
			})
		}

		job.Status = domain.JobStatusInProgress
		if err := r.Jobs.Update(ctx, job); err != nil {
			return apperrors.MapError(err)
		}

		text := "Job reopened"
		if strings.TrimSpace(reason) != "" {
			text = "Job reopened: " + strings.TrimSpace(reason)
		}
		if err := r.Notes.Create(ctx, &domain.JobNote{
			JobID:    job.ID,
			Note:     text,
			NoteType: domain.NoteTypeStatusChange,
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, caller, events.EventJobReopened, updated.ID, domain.JobStatusCompleted, updated.Status, reason)
	return updated, nil
}

func applyCostOverrides(job *domain.Job, costs CostOverrides) {
	if costs.RawCost != nil {
		job.RawCost = costs.RawCost
	}
	if costs.ActualCost != nil {
		job.ActualCost = *costs.ActualCost
	}
}

func transitionNoteText(from, to domain.JobStatus, note string) string {
	text := fmt.Sprintf("Status changed from %s to %s", from, to)
	if strings.TrimSpace(note) != "" {
		text += ": " + strings.TrimSpace(note)
	}
	return text
}

func (s *TransitionService) publishStatusChange(ctx context.Context, caller *domain.User, eventType events.EventType, jobID int64, oldStatus, newStatus domain.JobStatus, note string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		JobID:     jobID,
		Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
		Timestamp: time.Now(),
		Payload: events.JobStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      note,
		},
	})
}
