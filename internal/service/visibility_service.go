package service

import (
	"context"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// VisibilityService derives the row-scoping predicate for a caller from their
// role and store membership. Every job read and every mutation precondition
// goes through here.
type VisibilityService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
}

// NewVisibilityService constructs the service.
func NewVisibilityService(users repository.UserRepository, assignments repository.AssignmentRepository) *VisibilityService {
	return &VisibilityService{users: users, assignments: assignments}
}

// Scope returns the query predicate for the caller.
//
// admin: unrestricted, unless user_stores grants narrow the scope to specific
// stores. manager/staff: pinned to the home store. technician: only jobs
// reachable through the technician's own assignments.
func (s *VisibilityService) Scope(ctx context.Context, caller *domain.User) (repository.JobScope, error) {
	if caller == nil {
		return repository.JobScope{}, apperrors.NewUnauthorized("caller required")
	}
	switch caller.Role {
	case domain.RoleAdmin:
		grants, err := s.users.ListStoreGrants(ctx, caller.ID)
		if err != nil {
			return repository.JobScope{}, apperrors.MapError(err)
		}
		if len(grants) == 0 {
			return repository.Unrestricted(), nil
		}
		return repository.JobScope{StoreIDs: grants}, nil
	case domain.RoleManager, domain.RoleStaff:
		if caller.StoreID == nil {
			return repository.JobScope{}, apperrors.NewForbidden("no store membership")
		}
		return repository.JobScope{StoreIDs: []int64{*caller.StoreID}}, nil
	case domain.RoleTechnician:
		technicianID := caller.ID
		return repository.JobScope{TechnicianID: &technicianID}, nil
	default:
		return repository.JobScope{}, apperrors.NewForbidden("unknown role")
	}
}

// CanAccessJob reports whether the caller's scope covers the given job.
func (s *VisibilityService) CanAccessJob(ctx context.Context, caller *domain.User, job *domain.Job) (bool, error) {
	if caller == nil || job == nil {
		return false, nil
	}
	switch caller.Role {
	case domain.RoleAdmin:
		grants, err := s.users.ListStoreGrants(ctx, caller.ID)
		if err != nil {
			return false, apperrors.MapError(err)
		}
		if len(grants) == 0 {
			return true, nil
		}
		for _, storeID := range grants {
			if storeID == job.StoreID {
				return true, nil
			}
		}
		return false, nil
	case domain.RoleManager, domain.RoleStaff:
		return caller.StoreID != nil && *caller.StoreID == job.StoreID, nil
	case domain.RoleTechnician:
		assigned, err := s.assignments.TechnicianAssignedToJob(ctx, caller.ID, job.ID)
		if err != nil {
			return false, apperrors.MapError(err)
		}
		return assigned, nil
	default:
		return false, nil
	}
}

// RedactForCaller hides raw cost from technician-role readers regardless of
// scope.
func RedactForCaller(caller *domain.User, job domain.Job) domain.Job {
	if caller != nil && caller.Role == domain.RoleTechnician {
		return job.Redacted()
	}
	return job
}
