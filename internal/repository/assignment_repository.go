package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
)

// AssignmentRepository encapsulates technician dispatch persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.TechnicianAssignment) error
	GetByID(ctx context.Context, id int64) (*domain.TechnicianAssignment, error)
	// GetActiveByJob returns the job's single open (active/in_progress)
	// assignment, or pgx.ErrNoRows.
	GetActiveByJob(ctx context.Context, jobID int64) (*domain.TechnicianAssignment, error)
	LinkJob(ctx context.Context, assignmentID, jobID int64) error
	// UnlinkOpenForJob removes the job's links to any open assignment,
	// superseding the previous dispatch. Returns the number of links removed.
	UnlinkOpenForJob(ctx context.Context, jobID int64) (int64, error)
	ListJobIDs(ctx context.Context, assignmentID int64) ([]int64, error)
	// TechnicianAssignedToJob reports whether the technician is or ever was
	// dispatched to the job.
	TechnicianAssignedToJob(ctx context.Context, technicianID, jobID int64) (bool, error)
	ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.TechnicianAssignment, error)
	// MarkInProgressForJob flips the job's open assignment to in_progress,
	// stamping started_at if it is not already set.
	MarkInProgressForJob(ctx context.Context, jobID int64) error
	// MarkCompletedForJob flips the job's open assignment to completed.
	MarkCompletedForJob(ctx context.Context, jobID int64) error
}

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

const assignmentColumns = `id, technician_id, assigned_by, status, notes, assigned_at, started_at, completed_at`

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.TechnicianAssignment) error {
	const query = `
        INSERT INTO technician_assignments (technician_id, assigned_by, status, notes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, assigned_at`
	return r.db.QueryRow(ctx, query,
		assignment.TechnicianID,
		assignment.AssignedBy,
		assignment.Status,
		assignment.Notes,
	).Scan(&assignment.ID, &assignment.AssignedAt)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*domain.TechnicianAssignment, error) {
	return r.fetchSingle(ctx, `SELECT `+assignmentColumns+` FROM technician_assignments WHERE id=$1`, id)
}

func (r *assignmentRepository) GetActiveByJob(ctx context.Context, jobID int64) (*domain.TechnicianAssignment, error) {
	const query = `
        SELECT ta.id, ta.technician_id, ta.assigned_by, ta.status, ta.notes, ta.assigned_at, ta.started_at, ta.completed_at
        FROM technician_assignments ta
        JOIN assignment_jobs aj ON aj.assignment_id = ta.id
        WHERE aj.job_id=$1 AND ta.status IN ('active','in_progress')
        ORDER BY ta.assigned_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, jobID)
}

func (r *assignmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TechnicianAssignment, error) {
	var assignment domain.TechnicianAssignment
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&assignment.ID,
		&assignment.TechnicianID,
		&assignment.AssignedBy,
		&assignment.Status,
		&assignment.Notes,
		&assignment.AssignedAt,
		&assignment.StartedAt,
		&assignment.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) LinkJob(ctx context.Context, assignmentID, jobID int64) error {
	const query = `INSERT INTO assignment_jobs (assignment_id, job_id) VALUES ($1,$2)`
	_, err := r.db.Exec(ctx, query, assignmentID, jobID)
	return err
}

func (r *assignmentRepository) UnlinkOpenForJob(ctx context.Context, jobID int64) (int64, error) {
	const query = `
        DELETE FROM assignment_jobs
        WHERE job_id=$1 AND assignment_id IN (
            SELECT id FROM technician_assignments WHERE status IN ('active','in_progress')
        )`
	cmd, err := r.db.Exec(ctx, query, jobID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *assignmentRepository) ListJobIDs(ctx context.Context, assignmentID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT job_id FROM assignment_jobs WHERE assignment_id=$1 ORDER BY job_id`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobIDs []int64
	for rows.Next() {
		var jobID int64
		if err := rows.Scan(&jobID); err != nil {
			return nil, err
		}
		jobIDs = append(jobIDs, jobID)
	}
	return jobIDs, rows.Err()
}

func (r *assignmentRepository) TechnicianAssignedToJob(ctx context.Context, technicianID, jobID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM assignment_jobs aj
            JOIN technician_assignments ta ON ta.id = aj.assignment_id
            WHERE aj.job_id=$1 AND ta.technician_id=$2
        )`
	var assigned bool
	if err := r.db.QueryRow(ctx, query, jobID, technicianID).Scan(&assigned); err != nil {
		return false, err
	}
	return assigned, nil
}

func (r *assignmentRepository) ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.TechnicianAssignment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, technician_id, assigned_by, status, notes, assigned_at, started_at, completed_at
        FROM technician_assignments WHERE technician_id=$1
        ORDER BY assigned_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, technicianID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) MarkInProgressForJob(ctx context.Context, jobID int64) error {
	const query = `
        UPDATE technician_assignments
        SET status='in_progress', started_at=COALESCE(started_at, NOW())
        WHERE id IN (
            SELECT ta.id FROM technician_assignments ta
            JOIN assignment_jobs aj ON ta.id = aj.assignment_id
            WHERE aj.job_id=$1 AND ta.status IN ('active','in_progress')
        )`
	_, err := r.db.Exec(ctx, query, jobID)
	return err
}

func (r *assignmentRepository) MarkCompletedForJob(ctx context.Context, jobID int64) error {
	const query = `
        UPDATE technician_assignments
        SET status='completed', completed_at=NOW()
        WHERE id IN (
            SELECT ta.id FROM technician_assignments ta
            JOIN assignment_jobs aj ON ta.id = aj.assignment_id
            WHERE aj.job_id=$1 AND ta.status IN ('active','in_progress')
        )`
	_, err := r.db.Exec(ctx, query, jobID)
	return err
}

func scanAssignments(rows pgx.Rows) ([]domain.TechnicianAssignment, error) {
	var result []domain.TechnicianAssignment
	for rows.Next() {
		var assignment domain.TechnicianAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TechnicianID,
			&assignment.AssignedBy,
			&assignment.Status,
			&assignment.Notes,
			&assignment.AssignedAt,
			&assignment.StartedAt,
			&assignment.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
