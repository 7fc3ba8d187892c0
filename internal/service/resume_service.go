package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/extractor"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Sentinel errors for resume uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// resumeTextTTL caps how long extracted text stays hot in Redis; the
// Postgres row remains the source of truth.
const resumeTextTTL = 0 // no expiry; rows are small and eviction-friendly

// ResumeService handles resume upload, text extraction and storage.
type ResumeService struct {
	cfg       *config.Config
	extractor *extractor.PDFExtractor
	repo      *repository.ResumeRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewResumeService creates a new ResumeService.
func NewResumeService(
	cfg *config.Config,
	ext *extractor.PDFExtractor,
	repo *repository.ResumeRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResumeService {
	return &ResumeService{
		cfg:       cfg,
		extractor: ext,
		repo:      repo,
		rdb:       rdb,
		log:       log.With().Str("component", "resume_service").Logger(),
	}
}

// ProcessUpload validates, extracts and stores an uploaded résumé. The PDF is
// only written to disk after extraction succeeds, so unreadable uploads leave
// nothing behind and the user is simply asked for a different file.
func (s *ResumeService) ProcessUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.Resume, error) {
	if contentType := header.Header.Get("Content-Type"); contentType != "application/pdf" {
		return nil, fmt.Errorf("%w: %s (allowed: application/pdf)", ErrUnsupportedFileType, contentType)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, len(data), s.cfg.MaxUploadBytes)
	}

	resumeID := uuid.New()

	text, err := s.extractor.ExtractText(ctx, bytes.NewReader(data), header.Filename)
	if err != nil {
		return nil, err
	}

	storedPath, err := s.saveFile(resumeID, data)
	if err != nil {
		return nil, err
	}

	resume := &model.Resume{
		ID:            resumeID,
		Filename:      header.Filename,
		StoredPath:    storedPath,
		ExtractedText: text,
	}

	if err := s.repo.Create(ctx, resume); err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	// Keep the text hot for the question generator and session start.
	if err := s.rdb.Set(ctx, config.CacheKey.ResumeTextKey(resumeID.String()), text, resumeTextTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("resume_id", resumeID.String()).Msg("Failed to cache resume text")
	}

	s.log.Info().
		Str("resume_id", resumeID.String()).
		Str("filename", header.Filename).
		Int("chars", len(text)).
		Msg("Resume uploaded and extracted")

	return resume, nil
}

// GetResume retrieves a stored resume with its extracted text.
func (s *ResumeService) GetResume(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ResumeService) saveFile(resumeID uuid.UUID, data []byte) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, resumeID.String()+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}
