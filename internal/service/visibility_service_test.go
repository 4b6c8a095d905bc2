package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

func newVisibilityService(users *mockUserRepo, assignments *mockAssignmentRepo) *VisibilityService {
	if users == nil {
		users = &mockUserRepo{}
	}
	if assignments == nil {
		assignments = &mockAssignmentRepo{}
	}
	return NewVisibilityService(users, assignments)
}

func TestScopeAdminUnrestrictedWithoutGrants(t *testing.T) {
	svc := newVisibilityService(nil, nil)

	scope, err := svc.Scope(context.Background(), adminCaller())
	require.NoError(t, err)
	assert.True(t, scope.AllStores)
	assert.Empty(t, scope.StoreIDs)
	assert.Nil(t, scope.TechnicianID)
}

func TestScopeAdminNarrowedByGrants(t *testing.T) {
	users := &mockUserRepo{
		ListStoreGrantsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2, 5}, nil
		},
	}
	svc := newVisibilityService(users, nil)

	scope, err := svc.Scope(context.Background(), adminCaller())
	require.NoError(t, err)
	assert.False(t, scope.AllStores)
	assert.Equal(t, []int64{2, 5}, scope.StoreIDs)
}

func TestScopeManagerPinnedToHomeStore(t *testing.T) {
	svc := newVisibilityService(nil, nil)

	scope, err := svc.Scope(context.Background(), managerCaller(4))
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, scope.StoreIDs)
}

func TestScopeStaffWithoutStoreForbidden(t *testing.T) {
	svc := newVisibilityService(nil, nil)
	staff := &domain.User{ID: 3, Role: domain.RoleStaff}

	_, err := svc.Scope(context.Background(), staff)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestScopeTechnicianOwnAssignments(t *testing.T) {
	svc := newVisibilityService(nil, nil)
	technician := &domain.User{ID: 9, Role: domain.RoleTechnician}

	scope, err := svc.Scope(context.Background(), technician)
	require.NoError(t, err)
	require.NotNil(t, scope.TechnicianID)
	assert.Equal(t, int64(9), *scope.TechnicianID)
	assert.False(t, scope.AllStores)
}

func TestCanAccessJobByRole(t *testing.T) {
	job := &domain.Job{ID: 1, StoreID: 2}
	assignments := &mockAssignmentRepo{
		TechnicianAssignedToJobFn: func(ctx context.Context, technicianID, jobID int64) (bool, error) {
			return technicianID == 9, nil
		},
	}
	svc := newVisibilityService(nil, assignments)

	cases := []struct {
		name   string
		caller *domain.User
		want   bool
	}{
		{"admin without grants", adminCaller(), true},
		{"manager same store", managerCaller(2), true},
		{"manager other store", managerCaller(3), false},
		{"assigned technician", &domain.User{ID: 9, Role: domain.RoleTechnician}, true},
		{"unassigned technician", &domain.User{ID: 8, Role: domain.RoleTechnician}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanAccessJob(context.Background(), tc.caller, job)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanAccessJobAdminGrantMismatch(t *testing.T) {
	users := &mockUserRepo{
		ListStoreGrantsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{5}, nil
		},
	}
	svc := newVisibilityService(users, nil)

	allowed, err := svc.CanAccessJob(context.Background(), adminCaller(), &domain.Job{ID: 1, StoreID: 2})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedactForCallerHidesRawCostFromTechnicians(t *testing.T) {
	raw := 42.5
	job := domain.Job{ID: 1, RawCost: &raw, ActualCost: 99}

	technicianView := RedactForCaller(&domain.User{ID: 9, Role: domain.RoleTechnician}, job)
	assert.Nil(t, technicianView.RawCost)
	assert.Equal(t, 99.0, technicianView.ActualCost)

	managerView := RedactForCaller(managerCaller(1), job)
	require.NotNil(t, managerView.RawCost)
	assert.Equal(t, 42.5, *managerView.RawCost)
}
