package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prepkit/ielts-backend/internal/config"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/repository"
	"github.com/prepkit/ielts-backend/internal/scoring"
	"github.com/prepkit/ielts-backend/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrTestNotAssigned    = errors.New("test is not assigned to this user")
	ErrTestAlreadyTaken   = errors.New("test already completed")
	ErrNoActiveAttempt    = errors.New("no attempt in progress for this test")
	ErrSubmitNotConfirmed = errors.New("submission requires confirmation")
	ErrSubmitFailed       = errors.New("could not persist result, attempt preserved")
)

// LobbyStatus is the state of an assigned test as shown to the student.
type LobbyStatus string

const (
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
)

// LobbyEntry is one assigned test with its attempt overlay.
type LobbyEntry struct {
	TestID      uuid.UUID   `json:"test_id"`
	Title       string      `json:"title"`
	Sections    []model.Section `json:"sections"`
	Status      LobbyStatus `json:"status"`
	OverallBand *float64    `json:"overall_band,omitempty"`
	ResultID    *uuid.UUID  `json:"result_id,omitempty"`
}

// AttemptView is the full state returned to a client entering or reloading
// an attempt.
type AttemptView struct {
	State   *session.State           `json:"state"`
	Section model.Section            `json:"section"`
	Resumed bool                     `json:"resumed"`
}

// AttemptService orchestrates the test-taking session machine: attempt
// lifecycle, navigation, answer autosave, review, and submission.
type AttemptService struct {
	store       session.Store
	testService *TestService
	assignRepo  *repository.AssignmentRepository
	resultRepo  *repository.ResultRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	store session.Store,
	testService *TestService,
	assignRepo *repository.AssignmentRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		store:       store,
		testService: testService,
		assignRepo:  assignRepo,
		resultRepo:  resultRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// GetLobby returns the student's assigned tests with attempt status overlay.
func (s *AttemptService) GetLobby(ctx context.Context, userID int) ([]LobbyEntry, error) {
	assignments, err := s.assignRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	entries := make([]LobbyEntry, 0, len(assignments))
	for _, a := range assignments {
		payload, err := s.testService.GetPayload(ctx, a.TestID)
		if err != nil {
			continue // Unpublished or deleted test: hide from lobby
		}

		entry := LobbyEntry{
			TestID:   a.TestID,
			Title:    payload.Title,
			Sections: payload.Sections,
			Status:   LobbyStatusAvailable,
		}

		if res, err := s.resultRepo.GetByTestAndUser(ctx, a.TestID, userID); err == nil {
			entry.Status = LobbyStatusCompleted
			entry.OverallBand = res.OverallBand
			entry.ResultID = &res.ID
		} else if st, err := s.store.Load(ctx, userID, a.TestID); err == nil && st != nil {
			entry.Status = LobbyStatusInProgress
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// Plan rebuilds the immutable attempt layout from the cached payload.
func (s *AttemptService) Plan(ctx context.Context, testID uuid.UUID) (*session.Plan, error) {
	payload, err := s.testService.GetPayload(ctx, testID)
	if err != nil {
		return nil, err
	}
	test := &model.Test{
		ID:       payload.TestID,
		Title:    payload.Title,
		Sections: payload.Sections,
	}
	return session.NewPlan(test, payload.Questions), nil
}

// StartOrResume loads the persisted attempt for (user, test) or creates a
// fresh one. There is exactly one live attempt per pair; a reload resumes
// exactly from the saved cursor and timers.
func (s *AttemptService) StartOrResume(ctx context.Context, userID int, testID uuid.UUID) (*AttemptView, *session.Plan, error) {
	if err := s.verifyEligible(ctx, userID, testID); err != nil {
		return nil, nil, err
	}

	plan, err := s.Plan(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	state, err := s.store.Load(ctx, userID, testID)
	if err != nil {
		return nil, nil, err
	}

	resumed := state != nil
	if state == nil {
		state = session.New(userID, plan.Test, time.Now())
		if err := s.store.Save(ctx, state); err != nil {
			return nil, nil, err
		}
	}

	return &AttemptView{
		State:   state,
		Section: plan.Test.Sections[state.CurrentSection],
		Resumed: resumed,
	}, plan, nil
}

// GetState returns the live attempt state for reload recovery.
func (s *AttemptService) GetState(ctx context.Context, userID int, testID uuid.UUID) (*session.State, error) {
	state, err := s.store.Load(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoActiveAttempt
	}
	return state, nil
}

// RecordAnswer overwrites the answer for a question, persists the attempt,
// and queues the answer for PostgreSQL persistence. No shape validation:
// word-count minimums are advisory and never block recording.
func (s *AttemptService) RecordAnswer(ctx context.Context, userID int, testID, questionID uuid.UUID, answer model.Answer) error {
	state, err := s.GetState(ctx, userID, testID)
	if err != nil {
		return err
	}

	session.RecordAnswer(state, questionID, answer)
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}

	s.BufferAnswer(ctx, userID, testID, questionID, answer)
	return nil
}

// BufferAnswer mirrors an answer into the Redis autosave hash and pushes it
// onto the persist queue for the background worker. Also called directly by
// the stream handler, which records answers through its own runner.
func (s *AttemptService) BufferAnswer(ctx context.Context, userID int, testID, questionID uuid.UUID, answer model.Answer) {
	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}

	answersKey := config.CacheKey.AttemptAnswersKey(userID, testID.String())
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), raw).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Autosave buffer error")
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":     userID,
		"test_id":     testID.String(),
		"question_id": questionID.String(),
		"answer":      json.RawMessage(raw),
	})
	s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload)
}

// Advance moves the cursor forward. When the cursor is already on the last
// question of the last section it reports completion without moving.
func (s *AttemptService) Advance(ctx context.Context, userID int, testID uuid.UUID) (*session.State, bool, error) {
	state, err := s.GetState(ctx, userID, testID)
	if err != nil {
		return nil, false, err
	}

	plan, err := s.Plan(ctx, testID)
	if err != nil {
		return nil, false, err
	}

	completed := session.Advance(state, plan)
	if !completed {
		if err := s.store.Save(ctx, state); err != nil {
			return nil, false, err
		}
	}
	return state, completed, nil
}

// Retreat moves the cursor one question back; a no-op at the start of a
// section (backward navigation never crosses sections).
func (s *AttemptService) Retreat(ctx context.Context, userID int, testID uuid.UUID) (*session.State, error) {
	state, err := s.GetState(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	session.Retreat(state)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Review builds the per-section completion summary. Purely derived.
func (s *AttemptService) Review(ctx context.Context, userID int, testID uuid.UUID) ([]session.SectionSummary, error) {
	state, err := s.GetState(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	plan, err := s.Plan(ctx, testID)
	if err != nil {
		return nil, err
	}
	return session.BuildReviewSummary(state, plan), nil
}

// Submit finalizes the attempt: grades objective sections against the cached
// answer key, writes the result row, and only then clears the persisted
// session. auto bypasses the confirmation requirement (timer expiry).
//
// Idempotency: if no attempt exists but a result does, the existing result is
// returned — a late tick firing after a manual submit is a no-op.
func (s *AttemptService) Submit(ctx context.Context, userID int, testID uuid.UUID, confirmed, auto bool) (*model.Result, error) {
	state, err := s.store.Load(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		if existing, err := s.resultRepo.GetByTestAndUser(ctx, testID, userID); err == nil {
			return existing, nil
		}
		return nil, ErrNoActiveAttempt
	}

	if !confirmed && !auto {
		return nil, ErrSubmitNotConfirmed
	}

	plan, err := s.Plan(ctx, testID)
	if err != nil {
		return nil, err
	}

	result, err := s.grade(ctx, state, plan, auto)
	if err != nil {
		return nil, err
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a submit race; the winner's result stands.
			if existing, err := s.resultRepo.GetByTestAndUser(ctx, testID, userID); err == nil {
				_ = s.store.Clear(ctx, userID, testID)
				return existing, nil
			}
		}
		// Sink failure is retryable: the attempt stays intact.
		s.log.Error().Err(err).Int("user_id", userID).Str("test_id", testID.String()).Msg("Result persist failed")
		return nil, ErrSubmitFailed
	}

	if err := s.store.Clear(ctx, userID, testID); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Session clear failed after submit")
	}

	s.queueFinalize(ctx, userID, testID)

	s.log.Info().
		Int("user_id", userID).
		Str("test_id", testID.String()).
		Bool("auto", auto).
		Msg("Attempt submitted")
	return result, nil
}

// grade scores every objective section against the Redis answer key and
// computes bands. Sections without any keyed question (writing) get a nil
// band and push the result into PENDING_REVIEW.
func (s *AttemptService) grade(ctx context.Context, state *session.State, plan *session.Plan, auto bool) (*model.Result, error) {
	answerKey, err := s.testService.GetAnswerKey(ctx, state.TestID)
	if err != nil {
		return nil, err
	}

	status := model.ResultStatusCompleted
	sections := make([]model.SectionResult, 0, len(plan.Test.Sections))
	var bands []float64

	for i, sec := range plan.Test.Sections {
		qs := plan.SectionQuestions(i)
		sr := model.SectionResult{SectionID: sec.ID, TotalQuestions: len(qs)}
		keyed := 0

		for _, q := range qs {
			answer, answered := state.Answers[q.ID]
			if answered && !answer.IsZero() {
				sr.Answered++
			}
			correct, hasKey := answerKey[q.ID.String()]
			if !hasKey {
				continue
			}
			keyed++
			if answered && answer.Matches(correct) {
				sr.CorrectAnswers++
			}
		}

		if keyed > 0 {
			band := scoring.BandFromRaw(sr.CorrectAnswers, keyed)
			sr.Band = &band
			bands = append(bands, band)
		} else if len(qs) > 0 {
			status = model.ResultStatusPendingReview
		}

		sections = append(sections, sr)
	}

	return &model.Result{
		ID:            uuid.New(),
		UserID:        state.UserID,
		TestID:        state.TestID,
		Status:        status,
		StartedAt:     state.StartedAt,
		CompletedAt:   time.Now(),
		AutoSubmitted: auto,
		Sections:      sections,
		OverallBand:   scoring.Overall(bands),
	}, nil
}

// queueFinalize hands post-submit cleanup to the finalize worker: flip the
// assignment to COMPLETED and drop the Redis autosave buffer.
func (s *AttemptService) queueFinalize(ctx context.Context, userID int, testID uuid.UUID) {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"test_id": testID.String(),
	})
	s.rdb.RPush(ctx, config.WorkerKey.FinalizeAttemptsQueue, payload)
}

// ListResults returns the user's finalized attempts, newest first.
func (s *AttemptService) ListResults(ctx context.Context, userID int) ([]model.Result, error) {
	return s.resultRepo.ListByUser(ctx, userID)
}

// GetResult returns one result, scoped to its owner.
func (s *AttemptService) GetResult(ctx context.Context, userID int, resultID uuid.UUID) (*model.Result, error) {
	res, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, pgx.ErrNoRows // Hide other users' results
	}
	return res, nil
}

// verifyEligible checks the test is assigned to the user and not yet taken.
func (s *AttemptService) verifyEligible(ctx context.Context, userID int, testID uuid.UUID) error {
	if _, err := s.assignRepo.GetByTestAndUser(ctx, testID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTestNotAssigned
		}
		return fmt.Errorf("check assignment: %w", err)
	}
	if _, err := s.resultRepo.GetByTestAndUser(ctx, testID, userID); err == nil {
		return ErrTestAlreadyTaken
	}
	return nil
}
