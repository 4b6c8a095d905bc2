package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// TrackingSnapshot is the customer-facing view served on the public repair
// tracking page. It carries no internal cost and no lock secrets.
type TrackingSnapshot struct {
	JobID              int64            `json:"job_id"`
	DeviceType         string           `json:"device_type"`
	DeviceModel        string           `json:"device_model,omitempty"`
	ProblemDescription string           `json:"problem_description"`
	Status             domain.JobStatus `json:"status"`
	ActualCost         float64          `json:"actual_cost"`
	CustomerName       string           `json:"customer_name"`
	StoreName          string           `json:"store_name"`
	StorePhone         string           `json:"store_phone,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TrackingService serves public job status lookups, caching snapshots in
// Redis so the tracking page does not hammer the database.
type TrackingService struct {
	repos  *repository.Repositories
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTrackingService constructs the service. A nil client disables caching.
func NewTrackingService(repos *repository.Repositories, client *redis.Client, ttl time.Duration, logger *zap.Logger) *TrackingService {
	return &TrackingService{repos: repos, client: client, ttl: ttl, logger: logger}
}

func trackingKey(jobID int64) string {
	return fmt.Sprintf("track:job:%d", jobID)
}

// GetSnapshot returns the public view of a job, from cache when fresh.
func (s *TrackingService) GetSnapshot(ctx context.Context, jobID int64) (*TrackingSnapshot, error) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, trackingKey(jobID)).Bytes()
		if err == nil {
			var snapshot TrackingSnapshot
			if err := json.Unmarshal(raw, &snapshot); err == nil {
				return &snapshot, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("tracking cache read failed", zap.Int64("job_id", jobID), zap.Error(err))
		}
	}

	snapshot, err := s.buildSnapshot(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.client != nil {
		if raw, err := json.Marshal(snapshot); err == nil {
			if err := s.client.Set(ctx, trackingKey(jobID), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("tracking cache write failed", zap.Int64("job_id", jobID), zap.Error(err))
			}
		}
	}
	return snapshot, nil
}

// RegisterInvalidation drops cached snapshots when a job changes.
func (s *TrackingService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.client == nil {
		return
	}
	invalidate := func(ctx context.Context, event events.Event) error {
		if err := s.client.Del(ctx, trackingKey(event.JobID)).Err(); err != nil {
			s.logger.Warn("tracking cache invalidation failed", zap.Int64("job_id", event.JobID), zap.Error(err))
		}
		return nil
	}
	dispatcher.Subscribe(events.EventJobStatusChanged, invalidate)
	dispatcher.Subscribe(events.EventJobReopened, invalidate)
	dispatcher.Subscribe(events.EventJobPaymentRecorded, invalidate)
}

func (s *TrackingService) buildSnapshot(ctx context.Context, jobID int64) (*TrackingSnapshot, error) {
	job, err := s.repos.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	customer, err := s.repos.Customers.GetByID(ctx, job.CustomerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	store, err := s.repos.Stores.GetByID(ctx, job.StoreID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TrackingSnapshot{
		JobID:              job.ID,
		DeviceType:         job.DeviceType,
		DeviceModel:        job.DeviceModel,
		ProblemDescription: job.ProblemDescription,
		Status:             job.Status,
		ActualCost:         job.ActualCost,
		CustomerName:       customer.Name,
		StoreName:          store.Name,
		StorePhone:         store.Phone,
		UpdatedAt:          job.UpdatedAt,
	}, nil
}
