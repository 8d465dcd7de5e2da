package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepkit/ielts-backend/internal/model"
)

// AssignmentRepository handles test-assignment data access. Assignments are
// written by seed tooling; the service reads eligibility and the finalize
// worker flips status after submission.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// ListByUser retrieves all assignments for a user, newest first.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID int) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, status, assigned_at
		 FROM assignments
		 WHERE user_id = $1
		 ORDER BY assigned_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetByTestAndUser retrieves the assignment for one (test, user) pair.
func (r *AssignmentRepository) GetByTestAndUser(ctx context.Context, testID uuid.UUID, userID int) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, status, assigned_at
		 FROM assignments
		 WHERE test_id = $1 AND user_id = $2`, testID, userID,
	).Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.AssignedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an assignment. Used by seed tooling.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (id, test_id, user_id, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (test_id, user_id) DO UPDATE SET status = assignments.status
		 RETURNING assigned_at`,
		a.ID, a.TestID, a.UserID, model.AssignmentStatusAssigned,
	).Scan(&a.AssignedAt)
}
