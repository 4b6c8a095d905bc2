package repository

import (
	"context"

	"github.com/spec-kit/repair-service/internal/domain"
)

// JobNoteRepository stores append-only audit entries. There is no update or
// delete.
type JobNoteRepository interface {
	Create(ctx context.Context, note *domain.JobNote) error
	ListByJob(ctx context.Context, jobID int64) ([]domain.JobNote, error)
}

type jobNoteRepository struct {
	db DBTX
}

// NewJobNoteRepository builds repository.
func NewJobNoteRepository(db DBTX) JobNoteRepository {
	return &jobNoteRepository{db: db}
}

func (r *jobNoteRepository) Create(ctx context.Context, note *domain.JobNote) error {
	const query = `
        INSERT INTO job_notes (job_id, note, note_type)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		note.JobID,
		note.Note,
		note.NoteType,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *jobNoteRepository) ListByJob(ctx context.Context, jobID int64) ([]domain.JobNote, error) {
	const query = `
        SELECT id, job_id, note, note_type, created_at
        FROM job_notes WHERE job_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobNote
	for rows.Next() {
		var note domain.JobNote
		if err := rows.Scan(
			&note.ID,
			&note.JobID,
			&note.Note,
			&note.NoteType,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
