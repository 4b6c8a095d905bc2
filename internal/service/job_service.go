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

// JobService coordinates intake, scoped reads, payment settlement and the
// audit trail for repair jobs.
type JobService struct {
	tx         repository.TxRunner
	repos      *repository.Repositories
	visibility *VisibilityService
	dispatcher events.Dispatcher
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	Tx         repository.TxRunner
	Repos      *repository.Repositories
	Visibility *VisibilityService
	Dispatcher events.Dispatcher
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		tx:         deps.Tx,
		repos:      deps.Repos,
		visibility: deps.Visibility,
		dispatcher: deps.Dispatcher,
	}
}

// JobCreateInput describes an intake payload. When ExistingCustomerID is
// zero, intake looks the customer up by phone or email before creating a new
// record, so repeat customers never get duplicated.
type JobCreateInput struct {
	ExistingCustomerID  int64
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	CustomerAddress     string
	StoreID             int64
	DeviceType          string
	DeviceModel         string
	DeviceLockType      string
	DeviceLockSecret    string
	ProblemDescription  string
	NotificationMethods []string
	DepositCost         float64
	EstimateCost        float64
	TechnicianID        int64
}

// JobListFilter describes listing parameters; scoping comes from the caller.
type JobListFilter struct {
	Statuses        []domain.JobStatus
	PaymentStatuses []domain.PaymentStatus
	SearchTerm      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// JobProjection is the read-only full view handed to the document generator
// and the job detail page: job plus customer, store, technician and notes.
type JobProjection struct {
	Job        domain.Job
	Customer   domain.Customer
	Store      domain.Store
	Technician *domain.User
	Assignment *domain.TechnicianAssignment
	Notes      []domain.JobNote
}

// CreateJob registers a job, upserting the customer and optionally creating
// the initial dispatch, atomically.
func (s *JobService) CreateJob(ctx context.Context, caller *domain.User, input JobCreateInput) (*domain.Job, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if caller.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians may not create jobs")
	}
	if err := validateIntake(input); err != nil {
		return nil, err
	}

	storeID, err := s.resolveIntakeStore(ctx, caller, input.StoreID)
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		StoreID:             storeID,
		DeviceType:          strings.TrimSpace(input.DeviceType),
		DeviceModel:         strings.TrimSpace(input.DeviceModel),
		DeviceLockType:      input.DeviceLockType,
		DeviceLockSecret:    input.DeviceLockSecret,
		ProblemDescription:  strings.TrimSpace(input.ProblemDescription),
		NotificationMethods: input.NotificationMethods,
		Status:              domain.JobStatusNew,
		DepositCost:         input.DepositCost,
		EstimateCost:        input.EstimateCost,
		PaymentStatus:       domain.PaymentStatusPending,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		customer, err := s.upsertCustomer(ctx, r, storeID, input)
		if err != nil {
			return err
		}
		job.CustomerID = customer.ID

		if err := r.Jobs.Create(ctx, job); err != nil {
			return apperrors.MapError(err)
		}

		if input.TechnicianID != 0 {
			linked, err := r.Stores.TechnicianLinked(ctx, storeID, input.TechnicianID)
			if err != nil {
				return apperrors.MapError(err)
			}
			if !linked {
				return apperrors.NewConflict("technician not linked to job store", map[string]any{
					"technician_id": input.TechnicianID,
					"store_id":      storeID,
				})
			}
			assignment := &domain.TechnicianAssignment{
				TechnicianID: input.TechnicianID,
				AssignedBy:   caller.ID,
				Status:       domain.AssignmentStatusActive,
				Notes:        "Initial assignment",
			}
			if err := r.Assignments.Create(ctx, assignment); err != nil {
				return apperrors.MapError(err)
			}
			if err := r.Assignments.LinkJob(ctx, assignment.ID, job.ID); err != nil {
				return apperrors.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, caller, events.EventJobCreated, job.ID, events.JobCreatedPayload{
		CustomerID:          job.CustomerID,
		StoreID:             job.StoreID,
		DeviceType:          job.DeviceType,
		DeviceModel:         job.DeviceModel,
		NotificationMethods: job.NotificationMethods,
	})
	return job, nil
}

// ListJobs returns jobs visible to the caller. Technician reads come back
// with raw cost redacted.
func (s *JobService) ListJobs(ctx context.Context, caller *domain.User, filter JobListFilter) ([]domain.Job, error) {
	scope, err := s.visibility.Scope(ctx, caller)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repos.Jobs.List(ctx, scope, repository.JobFilter{
		Statuses:        filter.Statuses,
		PaymentStatuses: filter.PaymentStatuses,
		SearchTerm:      filter.SearchTerm,
		CreatedFrom:     filter.CreatedFrom,
		CreatedTo:       filter.CreatedTo,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range jobs {
		jobs[i] = RedactForCaller(caller, jobs[i])
	}
	return jobs, nil
}

// GetJobProjection assembles the full job view for the caller.
func (s *JobService) GetJobProjection(ctx context.Context, caller *domain.User, jobID int64) (*JobProjection, error) {
	job, err := s.fetchVisibleJob(ctx, caller, jobID)
	if err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.GetByID(ctx, job.CustomerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	store, err := s.repos.Stores.GetByID(ctx, job.StoreID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	notes, err := s.repos.Notes.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	projection := &JobProjection{
		Job:      RedactForCaller(caller, *job),
		Customer: *customer,
		Store:    *store,
		Notes:    notes,
	}

	assignment, err := s.repos.Assignments.GetActiveByJob(ctx, jobID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if assignment != nil {
		projection.Assignment = assignment
		technician, err := s.repos.Users.GetByID(ctx, assignment.TechnicianID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		projection.Technician = technician
	}
	return projection, nil
}

// RecordPayment settles a completed job. Settling twice is a conflict.
func (s *JobService) RecordPayment(ctx context.Context, caller *domain.User, jobID int64, method string) (*domain.Job, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if caller.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians may not record payments")
	}
	if strings.TrimSpace(method) == "" {
		return nil, apperrors.NewValidationError("payment method required", nil)
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
			return apperrors.NewInvalidTransition("payment requires a completed job", map[string]any{
				"status": job.Status,
			})
		}
		if job.PaymentStatus == domain.PaymentStatusCompleted {
			return apperrors.NewConflict("payment already recorded", map[string]any{"job_id": jobID})
		}

		if err := r.Jobs.UpdatePayment(ctx, jobID, strings.TrimSpace(method), domain.PaymentStatusCompleted); err != nil {
			return apperrors.MapError(err)
		}
		if err := r.Notes.Create(ctx, &domain.JobNote{
			JobID:    jobID,
			Note:     fmt.Sprintf("Payment recorded via %s", strings.TrimSpace(method)),
			NoteType: domain.NoteTypePayment,
		}); err != nil {
			return apperrors.MapError(err)
		}

		job.PaymentStatus = domain.PaymentStatusCompleted
		job.PaymentMethod = strings.TrimSpace(method)
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, caller, events.EventJobPaymentRecorded, updated.ID, events.JobPaymentRecordedPayload{
		PaymentMethod: updated.PaymentMethod,
		Amount:        updated.ActualCost,
	})
	return updated, nil
}

// AddNote appends a manual audit entry.
func (s *JobService) AddNote(ctx context.Context, caller *domain.User, jobID int64, text string) (*domain.JobNote, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("note text required", nil)
	}
	if _, err := s.fetchVisibleJob(ctx, caller, jobID); err != nil {
		return nil, err
	}
	note := &domain.JobNote{
		JobID:    jobID,
		Note:     strings.TrimSpace(text),
		NoteType: domain.NoteTypeManual,
	}
	if err := s.repos.Notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	return note, nil
}

// ListNotes returns the job's audit trail, newest first.
func (s *JobService) ListNotes(ctx context.Context, caller *domain.User, jobID int64) ([]domain.JobNote, error) {
	if _, err := s.fetchVisibleJob(ctx, caller, jobID); err != nil {
		return nil, err
	}
	notes, err := s.repos.Notes.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notes, nil
}

// LookupCustomer finds an existing customer by phone or email for intake.
func (s *JobService) LookupCustomer(ctx context.Context, caller *domain.User, phone, email string) (*domain.Customer, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if caller.Role == domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technicians may not browse customers")
	}
	customer, err := s.repos.Customers.FindByPhoneOrEmail(ctx, phone, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"phone": phone, "email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

func (s *JobService) fetchVisibleJob(ctx context.Context, caller *domain.User, jobID int64) (*domain.Job, error) {
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
	return job, nil
}

func (s *JobService) resolveIntakeStore(ctx context.Context, caller *domain.User, requested int64) (int64, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		if requested == 0 {
			return 0, apperrors.NewValidationError("store_id required for admin intake", nil)
		}
		// Store grants narrow intake the same way they narrow reads.
		scope, err := s.visibility.Scope(ctx, caller)
		if err != nil {
			return 0, err
		}
		if !scope.AllStores && !scope.Covers(requested) {
			return 0, apperrors.NewForbidden("store outside caller scope")
		}
		return requested, nil
	default:
		if caller.StoreID == nil {
			return 0, apperrors.NewForbidden("no store membership")
		}
		return *caller.StoreID, nil
	}
}

func (s *JobService) upsertCustomer(ctx context.Context, r *repository.Repositories, storeID int64, input JobCreateInput) (*domain.Customer, error) {
	if input.ExistingCustomerID != 0 {
		customer, err := r.Customers.GetByID(ctx, input.ExistingCustomerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": input.ExistingCustomerID})
			}
			return nil, apperrors.MapError(err)
		}
		mergeCustomerDetails(customer, input)
		if err := r.Customers.Update(ctx, customer); err != nil {
			return nil, apperrors.MapError(err)
		}
		return customer, nil
	}

	customer, err := r.Customers.FindByPhoneOrEmail(ctx, input.CustomerPhone, input.CustomerEmail)
	if err == nil {
		mergeCustomerDetails(customer, input)
		if err := r.Customers.Update(ctx, customer); err != nil {
			return nil, apperrors.MapError(err)
		}
		return customer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	customer = &domain.Customer{
		Name:    strings.TrimSpace(input.CustomerName),
		Phone:   strings.TrimSpace(input.CustomerPhone),
		Email:   strings.TrimSpace(input.CustomerEmail),
		Address: strings.TrimSpace(input.CustomerAddress),
		StoreID: &storeID,
	}
	if err := r.Customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// mergeCustomerDetails applies intake contact details onto an existing
// customer. Blank fields are left untouched so a re-intake with a partial
// form never erases stored contact data.
func mergeCustomerDetails(customer *domain.Customer, input JobCreateInput) {
	if name := strings.TrimSpace(input.CustomerName); name != "" {
		customer.Name = name
	}
	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		customer.Email = email
	}
	if address := strings.TrimSpace(input.CustomerAddress); address != "" {
		customer.Address = address
	}
}

func validateIntake(input JobCreateInput) error {
	missing := map[string]any{}
	if input.ExistingCustomerID == 0 && strings.TrimSpace(input.CustomerName) == "" {
		missing["customer_name"] = "required"
	}
	if input.ExistingCustomerID == 0 && strings.TrimSpace(input.CustomerPhone) == "" {
		missing["customer_phone"] = "required"
	}
	if strings.TrimSpace(input.DeviceType) == "" {
		missing["device_type"] = "required"
	}
	if strings.TrimSpace(input.ProblemDescription) == "" {
		missing["problem_description"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", missing)
	}
	return nil
}

func (s *JobService) publish(ctx context.Context, caller *domain.User, eventType events.EventType, jobID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		JobID:     jobID,
		Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
