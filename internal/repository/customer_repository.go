package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
)

// CustomerRepository encapsulates customer persistence. Lookup by phone or
// email keeps intake from registering the same customer twice.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByPhoneOrEmail(ctx context.Context, phone, email string) (*domain.Customer, error)
	ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, phone, email, address, store_id, created_at`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, phone, email, address, store_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.StoreID,
	).Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, email=$2, address=$3 WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		customer.Name,
		customer.Email,
		customer.Address,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.Address,
		&customer.StoreID,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPhoneOrEmail returns the oldest match for either key, or pgx.ErrNoRows.
func (r *customerRepository) FindByPhoneOrEmail(ctx context.Context, phone, email string) (*domain.Customer, error) {
	clauses := []string{}
	args := []any{}
	if strings.TrimSpace(phone) != "" {
		args = append(args, strings.TrimSpace(phone))
		clauses = append(clauses, "phone=$1")
	}
	if strings.TrimSpace(email) != "" {
		args = append(args, strings.TrimSpace(email))
		if len(args) == 1 {
			clauses = append(clauses, "email=$1")
		} else {
			clauses = append(clauses, "email=$2")
		}
	}
	if len(clauses) == 0 {
		return nil, pgx.ErrNoRows
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY created_at LIMIT 1`

	var customer domain.Customer
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.Address,
		&customer.StoreID,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, name, phone, email, address, store_id, created_at
        FROM customers WHERE store_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Phone,
			&customer.Email,
			&customer.Address,
			&customer.StoreID,
			&customer.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}
