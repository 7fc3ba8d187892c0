package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/resumeiq/skilltest-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrResumeNotFound is returned when a question set targets an unknown resume.
var ErrResumeNotFound = errors.New("resume not found")

// QuestionService owns question-set ingestion and the candidate-facing paper.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	resumeRepo   *repository.ResumeRepository
	rdb          *redis.Client
	cfg          *config.Config
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	resumeRepo *repository.ResumeRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		resumeRepo:   resumeRepo,
		rdb:          rdb,
		cfg:          cfg,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// IngestQuestions validates and stores a generated question set for a resume,
// replacing any previous generation, and refreshes the cached paper. The
// structural invariants (non-empty set, >= 2 options, answer is a member of
// the options) are enforced here, at the boundary, so nothing downstream ever
// has to default or repair a question.
func (s *QuestionService) IngestQuestions(ctx context.Context, resumeID uuid.UUID, req *model.IngestQuestionsRequest) (int, error) {
	exists, err := s.resumeRepo.Exists(ctx, resumeID)
	if err != nil {
		return 0, fmt.Errorf("check resume: %w", err)
	}
	if !exists {
		return 0, ErrResumeNotFound
	}

	questions := make([]quiz.Question, 0, len(req.Questions))
	for _, item := range req.Questions {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		questions = append(questions, quiz.Question{
			ID:           id,
			QuestionText: item.QuestionText,
			Options:      item.Options,
			Answer:       item.Answer,
		})
	}

	if err := quiz.ValidateQuestions(questions); err != nil {
		return 0, err
	}

	if err := s.questionRepo.ReplaceForResume(ctx, resumeID, questions); err != nil {
		return 0, fmt.Errorf("store questions: %w", err)
	}

	s.cachePaper(ctx, resumeID, questions)

	s.log.Info().
		Str("resume_id", resumeID.String()).
		Int("count", len(questions)).
		Msg("Question set ingested")

	return len(questions), nil
}

// GetQuestions loads the full question set (correct answers included) for
// session start. Returns quiz.ErrEmptyQuestionSet when nothing has been
// ingested yet.
func (s *QuestionService) GetQuestions(ctx context.Context, resumeID uuid.UUID) ([]quiz.Question, error) {
	questions, err := s.questionRepo.ListByResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, quiz.ErrEmptyQuestionSet
	}
	return questions, nil
}

// GetPaper returns the candidate-facing paper with correct answers stripped,
// served from Redis with a Postgres fallback that self-heals the cache.
func (s *QuestionService) GetPaper(ctx context.Context, resumeID uuid.UUID) (*model.QuestionPaper, error) {
	key := config.CacheKey.QuestionPaperKey(resumeID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		paper := &model.QuestionPaper{}
		if err := json.Unmarshal([]byte(raw), paper); err == nil {
			return paper, nil
		}
		// Corrupt cache entry: fall through to the database.
		s.log.Warn().Str("resume_id", resumeID.String()).Msg("Dropping undecodable cached paper")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read cached paper: %w", err)
	}

	questions, err := s.GetQuestions(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	return s.cachePaper(ctx, resumeID, questions), nil
}

func (s *QuestionService) cachePaper(ctx context.Context, resumeID uuid.UUID, questions []quiz.Question) *model.QuestionPaper {
	paper := &model.QuestionPaper{
		ResumeID:        resumeID,
		DurationSeconds: s.cfg.TestDurationSeconds,
		Questions:       make([]model.PaperQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		paper.Questions = append(paper.Questions, model.PaperQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
		})
	}

	payload, err := json.Marshal(paper)
	if err == nil {
		if err := s.rdb.Set(ctx, config.CacheKey.QuestionPaperKey(resumeID.String()), payload, 0).Err(); err != nil {
			s.log.Warn().Err(err).Str("resume_id", resumeID.String()).Msg("Failed to cache paper")
		}
	}
	return paper
}
