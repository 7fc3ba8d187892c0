package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/resumeiq/skilltest-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains graded results off the Redis queue and persists them
// to Postgres in batches. Grading happens in memory on the serving path;
// this worker is the only writer of test_results.
type ResultWorker struct {
	pool *pgxpool.Pool
	repo *repository.ResultRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, repo *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

type resultPayload struct {
	ResumeID string       `json:"resume_id"`
	Result   *quiz.Result `json:"result"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*resultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p resultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil || p.Result == nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch Upsert Wrapper
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*resultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsertResults(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result upsert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPSERT using UNNEST + alias
// ----------------------------------------------------------------

func (w *ResultWorker) bulkUpsertResults(ctx context.Context, batch []*resultPayload) error {
	n := len(batch)

	ids := make([]uuid.UUID, 0, n)
	resumeIDs := make([]uuid.UUID, 0, n)
	scores := make([]int, 0, n)
	totals := make([]int, 0, n)
	percentages := make([]float64, 0, n)
	statuses := make([]string, 0, n)
	timesTaken := make([]int, 0, n)
	reviews := make([][]byte, 0, n)

	for _, p := range batch {
		rID, err := uuid.Parse(p.ResumeID)
		if err != nil {
			return err
		}
		review, err := json.Marshal(p.Result.Review)
		if err != nil {
			return err
		}
		ids = append(ids, uuid.New())
		resumeIDs = append(resumeIDs, rID)
		scores = append(scores, p.Result.Score)
		totals = append(totals, p.Result.Total)
		percentages = append(percentages, p.Result.Percentage)
		statuses = append(statuses, string(p.Result.Status))
		timesTaken = append(timesTaken, p.Result.TimeTakenSeconds)
		reviews = append(reviews, review)
	}

	query := `
		INSERT INTO test_results (
			id, resume_id, score, total, percentage, status, time_taken_seconds, review
		)
		SELECT
			u.id, u.resume_id, u.score, u.total, u.percentage, u.status, u.time_taken_seconds, u.review
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::int[],
			$4::int[],
			$5::float8[],
			$6::text[],
			$7::int[],
			$8::jsonb[]
		) AS u (id, resume_id, score, total, percentage, status, time_taken_seconds, review)
		ON CONFLICT (resume_id) DO UPDATE
		SET score = EXCLUDED.score,
		    total = EXCLUDED.total,
		    percentage = EXCLUDED.percentage,
		    status = EXCLUDED.status,
		    time_taken_seconds = EXCLUDED.time_taken_seconds,
		    review = EXCLUDED.review
	`

	_, err := w.pool.Exec(ctx, query,
		ids, resumeIDs, scores, totals, percentages, statuses, timesTaken, reviews,
	)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single upsert
// ----------------------------------------------------------------

func (w *ResultWorker) persistSingle(ctx context.Context, p *resultPayload) error {
	rID, err := uuid.Parse(p.ResumeID)
	if err != nil {
		return err
	}
	review, err := json.Marshal(p.Result.Review)
	if err != nil {
		return err
	}

	return w.repo.Upsert(ctx, &model.TestResult{
		ID:               uuid.New(),
		ResumeID:         rID,
		Score:            p.Result.Score,
		Total:            p.Result.Total,
		Percentage:       p.Result.Percentage,
		Status:           string(p.Result.Status),
		TimeTakenSeconds: p.Result.TimeTakenSeconds,
		Review:           review,
	})
}
