package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepkit/ielts-backend/internal/model"
)

// TestRepository handles mock-test definition data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test definition with its ordered sections.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	var sections []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, sections, status, created_at, updated_at
		 FROM tests
		 WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &sections, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections, &t.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return t, nil
}

// ListPublished retrieves all published tests, used for cache prewarming.
func (r *TestRepository) ListPublished(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, sections, status, created_at, updated_at
		 FROM tests
		 WHERE status = $1
		 ORDER BY created_at`, model.TestStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		var sections []byte
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &sections, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return nil, fmt.Errorf("decode sections for %s: %w", t.ID, err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// Create inserts a test definition. Used by seed tooling.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (id, title, description, sections, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title,
		     description = EXCLUDED.description,
		     sections = EXCLUDED.sections,
		     status = EXCLUDED.status,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Description, sections, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}
