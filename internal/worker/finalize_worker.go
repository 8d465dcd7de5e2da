package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepkit/ielts-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	FinalizeBatchSize    = 50
	FinalizeBatchTimeout = 2 * time.Second
	FinalizePollTimeout  = 1 * time.Second
)

// FinalizeWorker consumes finalize_attempts_queue after a result has been
// stored: it flips the assignment to COMPLETED and drops the Redis autosave
// buffer. The result row itself is written synchronously on submit; nothing
// here is on the grading path.
type FinalizeWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewFinalizeWorker creates a new FinalizeWorker.
func NewFinalizeWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *FinalizeWorker {
	return &FinalizeWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "finalize_worker").Logger(),
	}
}

type finalizePayload struct {
	UserID int    `json:"user_id"`
	TestID string `json:"test_id"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *FinalizeWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]*finalizePayload, 0, FinalizeBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= FinalizeBatchSize || time.Since(lastFlush) >= FinalizeBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, FinalizePollTimeout, config.WorkerKey.FinalizeAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p finalizePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *FinalizeWorker) flushSafe(ctx context.Context, batch []*finalizePayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkCompleteAssignments(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk assignment update failed, using fallback")

		for _, p := range batch {
			if err := w.completeSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("completeSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.FinalizeAttemptsQueue, raw)
			}
		}
		return
	}

	// Assignments flipped, the autosave buffers are no longer needed.
	w.bulkClearAnswerBuffers(ctx, batch)
}

// bulkCompleteAssignments updates one batch in a single round trip using
// UNNEST arrays.
func (w *FinalizeWorker) bulkCompleteAssignments(ctx context.Context, batch []*finalizePayload) error {
	n := len(batch)

	testIDs := make([]uuid.UUID, 0, n)
	users := make([]int, 0, n)
	completedAts := make([]time.Time, n)

	now := time.Now()
	for i, p := range batch {
		tID, err := uuid.Parse(p.TestID)
		if err != nil {
			return err
		}
		testIDs = append(testIDs, tID)
		users = append(users, p.UserID)
		completedAts[i] = now
	}

	query := `
		UPDATE assignments AS a
		SET status = 'COMPLETED',
		    completed_at = t.completed_at
		FROM (
			SELECT
				u.test_id,
				u.user_id,
				u.completed_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::timestamptz[]
			) AS u (test_id, user_id, completed_at)
		) AS t
		WHERE a.test_id = t.test_id
		  AND a.user_id = t.user_id
	`

	_, err := w.pool.Exec(ctx, query, testIDs, users, completedAts)
	return err
}

func (w *FinalizeWorker) bulkClearAnswerBuffers(ctx context.Context, batch []*finalizePayload) {
	pipe := w.rdb.Pipeline()

	for _, p := range batch {
		key := config.CacheKey.AttemptAnswersKey(p.UserID, p.TestID)
		pipe.Del(ctx, key)
	}

	_, _ = pipe.Exec(ctx)
}

func (w *FinalizeWorker) completeSingle(ctx context.Context, p *finalizePayload) error {
	tID, err := uuid.Parse(p.TestID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE assignments
		 SET status = 'COMPLETED',
		     completed_at = NOW()
		 WHERE test_id = $1 AND user_id = $2`,
		tID, p.UserID,
	)

	return err
}
