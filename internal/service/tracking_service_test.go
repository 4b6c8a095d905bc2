package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

func TestGetSnapshotPublicView(t *testing.T) {
	raw := 35.0
	repos := &testRepos{
		jobs: &mockJobRepo{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.Job, error) {
				return &domain.Job{
					ID:                 10,
					CustomerID:         42,
					StoreID:            1,
					DeviceType:         "Phone",
					ProblemDescription: "Cracked screen",
					Status:             domain.JobStatusInProgress,
					RawCost:            &raw,
					ActualCost:         80,
					DeviceLockSecret:   "1234",
				}, nil
			},
		},
		customers: &mockCustomerRepo{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.Customer, error) {
				return &domain.Customer{ID: 42, Name: "Dana"}, nil
			},
		},
		stores: &mockStoreRepo{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.Store, error) {
				return &domain.Store{ID: 1, Name: "Main Branch", Phone: "0711"}, nil
			},
		},
	}
	svc := NewTrackingService(repos.bundle(), nil, 0, zap.NewNop())

	snapshot, err := svc.GetSnapshot(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), snapshot.JobID)
	assert.Equal(t, domain.JobStatusInProgress, snapshot.Status)
	assert.Equal(t, 80.0, snapshot.ActualCost)
	assert.Equal(t, "Dana", snapshot.CustomerName)
	assert.Equal(t, "Main Branch", snapshot.StoreName)
}

func TestGetSnapshotUnknownJob(t *testing.T) {
	svc := NewTrackingService((&testRepos{}).bundle(), nil, 0, zap.NewNop())

	_, err := svc.GetSnapshot(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
