package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/config"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is durable keyed storage for one State per (user, test) attempt.
// Load returns (nil, nil) when no attempt exists; Save must follow every
// mutation so a reload never loses more than the in-flight change; Clear is
// called exactly once, at submission.
type Store interface {
	Load(ctx context.Context, userID int, testID uuid.UUID) (*State, error)
	Save(ctx context.Context, state *State) error
	Clear(ctx context.Context, userID int, testID uuid.UUID) error
}

// RedisStore persists attempt state as JSON under a per-(user, test) key.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisStore creates a RedisStore. ttl of zero keeps attempts forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "session_store").Logger(),
	}
}

// Load fetches the persisted state. A corrupt payload is treated as absent —
// the attempt restarts fresh rather than failing the page load.
func (s *RedisStore) Load(ctx context.Context, userID int, testID uuid.UUID) (*State, error) {
	key := config.CacheKey.AttemptSessionKey(userID, testID.String())
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.log.Warn().
			Err(err).
			Int("user_id", userID).
			Str("test_id", testID.String()).
			Msg("Corrupt session payload, discarding")
		_ = s.rdb.Del(ctx, key)
		return nil, nil
	}

	if state.Answers == nil {
		state.Answers = make(map[uuid.UUID]model.Answer)
	}
	if state.Remaining == nil {
		state.Remaining = make(map[string]int)
	}
	return &state, nil
}

// Save overwrites the persisted state for state's (user, test) pair.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := config.CacheKey.AttemptSessionKey(state.UserID, state.TestID.String())
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the persisted state.
func (s *RedisStore) Clear(ctx context.Context, userID int, testID uuid.UUID) error {
	key := config.CacheKey.AttemptSessionKey(userID, testID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used by unit tests and local tooling.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func memKey(userID int, testID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", userID, testID)
}

// Load returns the stored state, or (nil, nil) when absent or corrupt.
func (m *MemoryStore) Load(_ context.Context, userID int, testID uuid.UUID) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[memKey(userID, testID)]
	if !ok {
		return nil, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		delete(m.data, memKey(userID, testID))
		return nil, nil
	}
	return &state, nil
}

// Save serializes through JSON so round-trip behavior matches RedisStore.
func (m *MemoryStore) Save(_ context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[memKey(state.UserID, state.TestID)] = raw
	return nil
}

// Clear removes the stored state.
func (m *MemoryStore) Clear(_ context.Context, userID int, testID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, memKey(userID, testID))
	return nil
}

// Corrupt overwrites a stored payload with garbage. Test helper for the
// corrupt-session fallback path.
func (m *MemoryStore) Corrupt(userID int, testID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[memKey(userID, testID)] = []byte("{not json")
}
