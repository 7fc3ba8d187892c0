package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resumeiq/skilltest-backend/internal/model"
)

// ResultRepository handles persisted test results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert stores a scored result, overwriting a previous attempt for the same
// resume. The worker may replay a queue entry after a crash, so the write has
// to be safe to repeat.
func (r *ResultRepository) Upsert(ctx context.Context, result *model.TestResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_results
		   (resume_id, score, total, percentage, status, time_taken_seconds, review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (resume_id) DO UPDATE
		 SET score = EXCLUDED.score,
		     total = EXCLUDED.total,
		     percentage = EXCLUDED.percentage,
		     status = EXCLUDED.status,
		     time_taken_seconds = EXCLUDED.time_taken_seconds,
		     review = EXCLUDED.review,
		     created_at = NOW()`,
		result.ResumeID, result.Score, result.Total, result.Percentage,
		result.Status, result.TimeTakenSeconds, result.Review,
	)
	return err
}

// GetByResume retrieves the stored result for a resume.
func (r *ResultRepository) GetByResume(ctx context.Context, resumeID uuid.UUID) (*model.TestResult, error) {
	result := &model.TestResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, resume_id, score, total, percentage, status, time_taken_seconds, review, created_at
		 FROM test_results
		 WHERE resume_id = $1`, resumeID,
	).Scan(&result.ID, &result.ResumeID, &result.Score, &result.Total, &result.Percentage,
		&result.Status, &result.TimeTakenSeconds, &result.Review, &result.CreatedAt)
	if err != nil {
		return nil, err
	}
	return result, nil
}
