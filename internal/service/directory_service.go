package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// DirectoryService serves the read-mostly store and technician reference
// data, plus the admin-only link management.
type DirectoryService struct {
	stores repository.StoreRepository
	users  repository.UserRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(stores repository.StoreRepository, users repository.UserRepository) *DirectoryService {
	return &DirectoryService{stores: stores, users: users}
}

// ListStores returns every store.
func (s *DirectoryService) ListStores(ctx context.Context) ([]domain.Store, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stores, nil
}

// GetStore returns one store.
func (s *DirectoryService) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("store", map[string]any{"store_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return store, nil
}

// UpdateStoreContact changes the mutable contact fields.
func (s *DirectoryService) UpdateStoreContact(ctx context.Context, caller *domain.User, id int64, phone, email string) error {
	if caller == nil || caller.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := s.stores.UpdateContact(ctx, id, phone, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("store", map[string]any{"store_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListStoreTechnicians returns technicians dispatchable to a store.
func (s *DirectoryService) ListStoreTechnicians(ctx context.Context, storeID int64) ([]domain.User, error) {
	technicians, err := s.stores.ListTechnicians(ctx, storeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return technicians, nil
}

// LinkTechnician makes a technician dispatchable to a store.
func (s *DirectoryService) LinkTechnician(ctx context.Context, caller *domain.User, storeID, technicianID int64) error {
	if caller == nil || caller.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin required")
	}
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician {
		return apperrors.NewValidationError("user is not a technician", map[string]any{"user_id": technicianID})
	}
	if err := s.stores.LinkTechnician(ctx, storeID, technicianID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UnlinkTechnician deactivates the store link.
func (s *DirectoryService) UnlinkTechnician(ctx context.Context, caller *domain.User, storeID, technicianID int64) error {
	if caller == nil || caller.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := s.stores.UnlinkTechnician(ctx, storeID, technicianID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
