package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/resumeiq/skilltest-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrResultNotFound indicates no graded result exists for the resume.
var ErrResultNotFound = errors.New("result not found")

// cachedResultTTL keeps freshly graded results readable before the persist
// worker has flushed them, and across a server restart shortly after.
const cachedResultTTL = 24 * time.Hour

// ResultService fans a graded result out to Redis (hot cache plus the
// persistence queue drained by the result worker) and reads results back
// with a Postgres fallback.
type ResultService struct {
	repo *repository.ResultRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(repo *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *ResultService {
	return &ResultService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "result_service").Logger(),
	}
}

// Publish caches the result and queues it for durable persistence. Failures
// are logged, not returned: grading already happened and the candidate must
// see their result regardless of storage hiccups.
func (s *ResultService) Publish(ctx context.Context, resumeID uuid.UUID, result *quiz.Result) {
	payload, err := json.Marshal(map[string]interface{}{
		"resume_id": resumeID.String(),
		"result":    result,
	})
	if err != nil {
		s.log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("Failed to encode result payload")
		return
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("Failed to queue result for persistence")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.TestResultKey(resumeID.String()), raw, cachedResultTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("resume_id", resumeID.String()).Msg("Failed to cache result")
	}
}

// Find returns the graded result for a resume, preferring the Redis cache
// and falling back to Postgres. Returns ErrResultNotFound when neither side
// has it.
func (s *ResultService) Find(ctx context.Context, resumeID uuid.UUID) (*quiz.Result, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.TestResultKey(resumeID.String())).Result()
	if err == nil {
		result := &quiz.Result{}
		if err := json.Unmarshal([]byte(raw), result); err == nil {
			return result, nil
		}
		s.log.Warn().Str("resume_id", resumeID.String()).Msg("Corrupt cached result, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Redis unavailable for result lookup, falling back to database")
	}

	row, err := s.repo.GetByResume(ctx, resumeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	result := &quiz.Result{
		Score:            row.Score,
		Total:            row.Total,
		Percentage:       row.Percentage,
		Status:           quiz.ResultStatus(row.Status),
		TimeTakenSeconds: row.TimeTakenSeconds,
	}
	if len(row.Review) > 0 {
		if err := json.Unmarshal(row.Review, &result.Review); err != nil {
			return nil, fmt.Errorf("decode stored review: %w", err)
		}
	}
	return result, nil
}
