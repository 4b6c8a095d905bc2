package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// AssignmentService creates and supersedes technician dispatches. One
// assignment may cover several jobs; a job never has more than one open
// dispatch at a time.
type AssignmentService struct {
	tx         repository.TxRunner
	repos      *repository.Repositories
	visibility *VisibilityService
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Tx         repository.TxRunner
	Repos      *repository.Repositories
	Visibility *VisibilityService
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tx:         deps.Tx,
		repos:      deps.Repos,
		visibility: deps.Visibility,
		dispatcher: deps.Dispatcher,
	}
}

// Assign dispatches a technician to one or more jobs in a single assignment.
// A zero technicianID is a legal no-op: the jobs stay unassigned. Any
// existing open dispatch for a target job is superseded first.
func (s *AssignmentService) Assign(ctx context.Context, caller *domain.User, technicianID int64, jobIDs []int64, notes string) (*domain.TechnicianAssignment, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if caller.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians may not dispatch jobs")
	}
	if len(jobIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one job required", nil)
	}
	if technicianID == 0 {
		return nil, nil
	}

	technician, err := s.repos.Users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("assignee is not a technician", map[string]any{"user_id": technicianID})
	}

	assignment := &domain.TechnicianAssignment{
		TechnicianID: technicianID,
		AssignedBy:   caller.ID,
		Status:       domain.AssignmentStatusActive,
		Notes:        notes,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		for _, jobID := range jobIDs {
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
			linked, err := r.Stores.TechnicianLinked(ctx, job.StoreID, technicianID)
			if err != nil {
				return apperrors.MapError(err)
			}
			if !linked {
				return apperrors.NewConflict("technician not linked to job store", map[string]any{
					"technician_id": technicianID,
					"store_id":      job.StoreID,
				})
			}
		}

		if err := r.Assignments.Create(ctx, assignment); err != nil {
			return apperrors.MapError(err)
		}
		for _, jobID := range jobIDs {
			if _, err := r.Assignments.UnlinkOpenForJob(ctx, jobID); err != nil {
				return apperrors.MapError(err)
			}
			if err := r.Assignments.LinkJob(ctx, assignment.ID, jobID); err != nil {
				return apperrors.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, caller, assignment, jobIDs)
	return assignment, nil
}

// Reassign supersedes the job's current dispatch with a new technician. It is
// Assign with single-job intent spelled out at the call site.
func (s *AssignmentService) Reassign(ctx context.Context, caller *domain.User, technicianID, jobID int64, notes string) (*domain.TechnicianAssignment, error) {
	return s.Assign(ctx, caller, technicianID, []int64{jobID}, notes)
}

// GetActiveAssignment returns the job's open dispatch, or nil when the job is
// unassigned.
func (s *AssignmentService) GetActiveAssignment(ctx context.Context, caller *domain.User, jobID int64) (*domain.TechnicianAssignment, error) {
	job, err := s.repos.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	allowed, err := s.visibility.CanAccessJob(ctx, caller, job)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbidden("job outside caller scope")
	}

	assignment, err := s.repos.Assignments.GetActiveByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return assignment, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, caller *domain.User, assignment *domain.TechnicianAssignment, jobIDs []int64) {
	if s.dispatcher == nil {
		return
	}
	for _, jobID := range jobIDs {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventJobAssigned,
			JobID:     jobID,
			Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
			Timestamp: time.Now(),
			Payload: events.JobAssignedPayload{
				AssignmentID: assignment.ID,
				TechnicianID: assignment.TechnicianID,
				JobIDs:       jobIDs,
			},
		})
	}
}
