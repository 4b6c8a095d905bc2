package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
)

// StoreRepository encapsulates store and store-technician persistence.
type StoreRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
	UpdateContact(ctx context.Context, id int64, phone, email string) error
	ListTechnicians(ctx context.Context, storeID int64) ([]domain.User, error)
	TechnicianLinked(ctx context.Context, storeID, technicianID int64) (bool, error)
	LinkTechnician(ctx context.Context, storeID, technicianID int64) error
	UnlinkTechnician(ctx context.Context, storeID, technicianID int64) error
}

type storeRepository struct {
	db DBTX
}

// NewStoreRepository instantiates repository.
func NewStoreRepository(db DBTX) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	const query = `
        SELECT id, name, location, phone, email, created_at
        FROM stores WHERE id=$1`
	var store domain.Store
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&store.ID,
		&store.Name,
		&store.Location,
		&store.Phone,
		&store.Email,
		&store.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List(ctx context.Context) ([]domain.Store, error) {
	const query = `
        SELECT id, name, location, phone, email, created_at
        FROM stores ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Store
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(
			&store.ID,
			&store.Name,
			&store.Location,
			&store.Phone,
			&store.Email,
			&store.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, store)
	}
	return result, rows.Err()
}

func (r *storeRepository) UpdateContact(ctx context.Context, id int64, phone, email string) error {
	const query = `UPDATE stores SET phone=$1, email=$2 WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, phone, email, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *storeRepository) ListTechnicians(ctx context.Context, storeID int64) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.username, u.password_hash, u.role, u.full_name, u.email, u.store_id, u.created_at, u.last_login
        FROM users u
        JOIN store_technicians st ON st.technician_id = u.id
        WHERE st.store_id=$1 AND st.is_active
        ORDER BY u.full_name`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *storeRepository) TechnicianLinked(ctx context.Context, storeID, technicianID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM store_technicians
            WHERE store_id=$1 AND technician_id=$2 AND is_active
        )`
	var linked bool
	if err := r.db.QueryRow(ctx, query, storeID, technicianID).Scan(&linked); err != nil {
		return false, err
	}
	return linked, nil
}

func (r *storeRepository) LinkTechnician(ctx context.Context, storeID, technicianID int64) error {
	const query = `
        INSERT INTO store_technicians (store_id, technician_id, is_active)
        VALUES ($1, $2, TRUE)
        ON CONFLICT (store_id, technician_id) DO UPDATE SET is_active = TRUE`
	_, err := r.db.Exec(ctx, query, storeID, technicianID)
	return err
}

func (r *storeRepository) UnlinkTechnician(ctx context.Context, storeID, technicianID int64) error {
	const query = `
        UPDATE store_technicians SET is_active = FALSE
        WHERE store_id=$1 AND technician_id=$2`
	_, err := r.db.Exec(ctx, query, storeID, technicianID)
	return err
}
