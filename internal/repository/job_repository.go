package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
)

// JobScope is the row-scoping predicate derived from the caller's role and
// store membership. The zero value matches nothing; use Unrestricted for
// admin callers without explicit grants.
type JobScope struct {
	AllStores    bool
	StoreIDs     []int64
	TechnicianID *int64
}

// Unrestricted returns a scope matching every store.
func Unrestricted() JobScope {
	return JobScope{AllStores: true}
}

// Covers reports whether the scope admits the given store.
func (s JobScope) Covers(storeID int64) bool {
	if s.AllStores {
		return true
	}
	for _, id := range s.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// JobFilter captures job search parameters on top of the scope.
type JobFilter struct {
	Statuses        []domain.JobStatus
	PaymentStatuses []domain.PaymentStatus
	CustomerID      *int64
	SearchTerm      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// JobRepository encapsulates job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
	// GetByIDForUpdate locks the job row for the remainder of the
	// transaction, serializing concurrent transitions.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Job, error)
	List(ctx context.Context, scope JobScope, filter JobFilter) ([]domain.Job, error)
	UpdatePayment(ctx context.Context, id int64, method string, status domain.PaymentStatus) error
}

type jobRepository struct {
	db DBTX
}

// NewJobRepository instantiates repository.
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `id, customer_id, store_id, device_type, device_model, device_lock_type, device_lock_secret,
               problem_description, notification_methods, status, deposit_cost, raw_cost, estimate_cost,
               actual_cost, payment_status, payment_method, created_at, updated_at, started_at, completed_at`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (customer_id, store_id, device_type, device_model, device_lock_type, device_lock_secret,
                          problem_description, notification_methods, status, deposit_cost, raw_cost, estimate_cost,
                          actual_cost, payment_status, payment_method)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.CustomerID,
		job.StoreID,
		job.DeviceType,
		job.DeviceModel,
		job.DeviceLockType,
		job.DeviceLockSecret,
		job.ProblemDescription,
		job.NotificationMethods,
		job.Status,
		job.DepositCost,
		job.RawCost,
		job.EstimateCost,
		job.ActualCost,
		job.PaymentStatus,
		job.PaymentMethod,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE jobs SET status=$1, raw_cost=$2, estimate_cost=$3, actual_cost=$4, deposit_cost=$5,
            started_at=$6, completed_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		job.Status,
		job.RawCost,
		job.EstimateCost,
		job.ActualCost,
		job.DepositCost,
		job.StartedAt,
		job.CompletedAt,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	return r.fetchSingle(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1`, id)
}

func (r *jobRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Job, error) {
	return r.fetchSingle(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1 FOR UPDATE`, id)
}

func (r *jobRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&job.ID,
		&job.CustomerID,
		&job.StoreID,
		&job.DeviceType,
		&job.DeviceModel,
		&job.DeviceLockType,
		&job.DeviceLockSecret,
		&job.ProblemDescription,
		&job.NotificationMethods,
		&job.Status,
		&job.DepositCost,
		&job.RawCost,
		&job.EstimateCost,
		&job.ActualCost,
		&job.PaymentStatus,
		&job.PaymentMethod,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, scope JobScope, filter JobFilter) ([]domain.Job, error) {
	base := `SELECT ` + jobColumns + ` FROM jobs`
	clauses := []string{"1=1"}
	args := []any{}

	if !scope.AllStores {
		if scope.TechnicianID == nil && len(scope.StoreIDs) == 0 {
			return []domain.Job{}, nil
		}
		if len(scope.StoreIDs) > 0 {
			args = append(args, scope.StoreIDs)
			clauses = append(clauses, fmt.Sprintf("store_id = ANY($%d)", len(args)))
		}
	}
	if scope.TechnicianID != nil {
		args = append(args, *scope.TechnicianID)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM assignment_jobs aj
            JOIN technician_assignments ta ON ta.id = aj.assignment_id
            WHERE aj.job_id = jobs.id AND ta.technician_id = $%d)`, len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.PaymentStatuses) > 0 {
		placeholders := make([]string, len(filter.PaymentStatuses))
		for i, status := range filter.PaymentStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("payment_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(device_type) LIKE %s OR LOWER(device_model) LIKE %s OR LOWER(problem_description) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *jobRepository) UpdatePayment(ctx context.Context, id int64, method string, status domain.PaymentStatus) error {
	const query = `
        UPDATE jobs SET payment_method=$1, payment_status=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, method, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.CustomerID,
			&job.StoreID,
			&job.DeviceType,
			&job.DeviceModel,
			&job.DeviceLockType,
			&job.DeviceLockSecret,
			&job.ProblemDescription,
			&job.NotificationMethods,
			&job.Status,
			&job.DepositCost,
			&job.RawCost,
			&job.EstimateCost,
			&job.ActualCost,
			&job.PaymentStatus,
			&job.PaymentMethod,
			&job.CreatedAt,
			&job.UpdatedAt,
			&job.StartedAt,
			&job.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
