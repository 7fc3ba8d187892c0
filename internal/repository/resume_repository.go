package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resumeiq/skilltest-backend/internal/model"
)

// ResumeRepository handles resume data access.
type ResumeRepository struct {
	pool *pgxpool.Pool
}

// NewResumeRepository creates a new ResumeRepository.
func NewResumeRepository(pool *pgxpool.Pool) *ResumeRepository {
	return &ResumeRepository{pool: pool}
}

// Create inserts a new resume with its extracted text.
func (r *ResumeRepository) Create(ctx context.Context, resume *model.Resume) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, filename, stored_path, extracted_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING uploaded_at`,
		resume.ID, resume.Filename, resume.StoredPath, resume.ExtractedText,
	).Scan(&resume.UploadedAt)
}

// GetByID retrieves a resume by its identifier.
func (r *ResumeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	resume := &model.Resume{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, filename, stored_path, extracted_text, uploaded_at
		 FROM resumes
		 WHERE id = $1`, id,
	).Scan(&resume.ID, &resume.Filename, &resume.StoredPath, &resume.ExtractedText, &resume.UploadedAt)
	if err != nil {
		return nil, err
	}
	return resume, nil
}

// Exists reports whether a resume with the given identifier is stored.
func (r *ResumeRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM resumes WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}
