package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
)

// QuestionRepository handles MCQ data access. Options are stored as a JSONB
// array to keep the ordered option list intact.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByResume retrieves the question set for a resume in its original order.
func (r *QuestionRepository) ListByResume(ctx context.Context, resumeID uuid.UUID) ([]quiz.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, answer
		 FROM mcqs WHERE resume_id = $1
		 ORDER BY order_num`, resumeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var q quiz.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.QuestionText, &rawOptions, &q.Answer); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceForResume atomically replaces the stored question set for a resume.
// Re-ingestion from the collaborator overwrites the previous generation.
func (r *QuestionRepository) ReplaceForResume(ctx context.Context, resumeID uuid.UUID, questions []quiz.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM mcqs WHERE resume_id = $1`, resumeID); err != nil {
			return fmt.Errorf("clear previous questions: %w", err)
		}

		for i, q := range questions {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO mcqs (id, resume_id, question_text, options, answer, order_num)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				q.ID, resumeID, q.QuestionText, options, q.Answer, i,
			); err != nil {
				return fmt.Errorf("insert question %d: %w", i, err)
			}
		}
		return nil
	})
}
