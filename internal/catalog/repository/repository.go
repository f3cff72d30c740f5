package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/platform/apperr"
)

const serviceNotFoundMessage = "service not found"

const serviceColumns = `id, name, description, price_wash_dry, price_wash_only, price_dry_only, is_active, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new laundry services repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a laundry service by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (LaundryService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LaundryService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return LaundryService{}, fmt.Errorf("get service by id: %w", err)
	}

	return s, nil
}

// GetByIDs retrieves a batch of services keyed by ID. Missing IDs are simply
// absent from the result map; callers decide whether that is an error.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]LaundryService, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]LaundryService{}, nil
	}

	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get services by ids: %w", err)
	}
	defer rows.Close()

	items, err := scanServices(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]LaundryService, len(items))
	for _, s := range items {
		result[s.ID] = s
	}

	return result, nil
}

// List retrieves all laundry services ordered by name.
func (r *Repo) List(ctx context.Context) ([]LaundryService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// ListActive retrieves only active laundry services ordered by name.
func (r *Repo) ListActive(ctx context.Context) ([]LaundryService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active = true ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active services: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// Create creates a new laundry service.
func (r *Repo) Create(ctx context.Context, params CreateParams) (LaundryService, error) {
	query := `
		INSERT INTO services (name, description, price_wash_dry, price_wash_only, price_dry_only)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + serviceColumns

	s, err := scanService(r.pool.QueryRow(ctx, query,
		params.Name, params.Description, params.PriceWashDry, params.PriceWashOnly, params.PriceDryOnly,
	))
	if err != nil {
		return LaundryService{}, fmt.Errorf("create service: %w", err)
	}

	return s, nil
}

// Update updates an existing laundry service.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (LaundryService, error) {
	query := `
		UPDATE services SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			price_wash_dry = COALESCE($4, price_wash_dry),
			price_wash_only = COALESCE($5, price_wash_only),
			price_dry_only = COALESCE($6, price_dry_only),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + serviceColumns

	s, err := scanService(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.PriceWashDry, params.PriceWashOnly, params.PriceDryOnly,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LaundryService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return LaundryService{}, fmt.Errorf("update service: %w", err)
	}

	return s, nil
}

// SetActive sets the is_active flag for a laundry service.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE services SET is_active = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("set service active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}

	return nil
}

func scanService(row pgx.Row) (LaundryService, error) {
	var s LaundryService
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.PriceWashDry, &s.PriceWashOnly, &s.PriceDryOnly,
		&s.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return LaundryService{}, err
	}

	s.CreatedAt = createdAt.Format(time.RFC3339)
	s.UpdatedAt = updatedAt.Format(time.RFC3339)

	return s, nil
}

func scanServices(rows pgx.Rows) ([]LaundryService, error) {
	var results []LaundryService

	for rows.Next() {
		var s LaundryService
		var createdAt, updatedAt time.Time

		err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.PriceWashDry, &s.PriceWashOnly, &s.PriceDryOnly,
			&s.IsActive, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}

		s.CreatedAt = createdAt.Format(time.RFC3339)
		s.UpdatedAt = updatedAt.Format(time.RFC3339)

		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return results, nil
}
