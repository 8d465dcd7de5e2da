package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepkit/ielts-backend/internal/model"
)

// ResultRepository handles finalized attempt data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a result row. The unique (user_id, test_id) constraint makes
// a duplicate submit fail loudly instead of silently overwriting a graded
// attempt; callers treat that conflict as already-submitted.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	sections, err := json.Marshal(res.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (id, user_id, test_id, status, started_at, completed_at, auto_submitted, sections, overall_band)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		res.ID, res.UserID, res.TestID, res.Status, res.StartedAt, res.CompletedAt, res.AutoSubmitted, sections, res.OverallBand,
	).Scan(&res.ID)
}

// GetByID retrieves a single result.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	var sections []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, status, started_at, completed_at, auto_submitted, sections, overall_band, feedback, confirmed_by
		 FROM results
		 WHERE id = $1`, id,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Status, &res.StartedAt, &res.CompletedAt, &res.AutoSubmitted, &sections, &res.OverallBand, &res.Feedback, &res.ConfirmedBy)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections, &res.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return res, nil
}

// GetByTestAndUser retrieves the result of one (test, user) pair, if any.
func (r *ResultRepository) GetByTestAndUser(ctx context.Context, testID uuid.UUID, userID int) (*model.Result, error) {
	res := &model.Result{}
	var sections []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, status, started_at, completed_at, auto_submitted, sections, overall_band, feedback, confirmed_by
		 FROM results
		 WHERE test_id = $1 AND user_id = $2`, testID, userID,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Status, &res.StartedAt, &res.CompletedAt, &res.AutoSubmitted, &sections, &res.OverallBand, &res.Feedback, &res.ConfirmedBy)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections, &res.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return res, nil
}

// ListByUser retrieves all results of a user, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, status, started_at, completed_at, auto_submitted, sections, overall_band, feedback, confirmed_by
		 FROM results
		 WHERE user_id = $1
		 ORDER BY completed_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		var sections []byte
		if err := rows.Scan(&res.ID, &res.UserID, &res.TestID, &res.Status, &res.StartedAt, &res.CompletedAt, &res.AutoSubmitted, &sections, &res.OverallBand, &res.Feedback, &res.ConfirmedBy); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sections, &res.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
