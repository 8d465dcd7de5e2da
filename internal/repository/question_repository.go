package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepkit/ielts-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions of a test ordered by section and position.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, section_id, question_type, prompt, passage, options, min_words, correct_answer, order_num
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY section_id, order_num`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.TestID, &q.SectionID, &q.QuestionType, &q.Prompt, &q.Passage, &options, &q.MinWords, &q.CorrectAnswer, &q.OrderNum); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a question. Used by seed tooling.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO questions (id, test_id, section_id, question_type, prompt, passage, options, min_words, correct_answer, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE
		 SET prompt = EXCLUDED.prompt,
		     passage = EXCLUDED.passage,
		     options = EXCLUDED.options,
		     min_words = EXCLUDED.min_words,
		     correct_answer = EXCLUDED.correct_answer,
		     order_num = EXCLUDED.order_num`,
		q.ID, q.TestID, q.SectionID, q.QuestionType, q.Prompt, q.Passage, options, q.MinWords, q.CorrectAnswer, q.OrderNum,
	)
	return err
}
