package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/model"
)

// ErrAttemptOver is returned by runner actions after the attempt has expired
// or been submitted.
var ErrAttemptOver = errors.New("attempt is already over")

// Phase enumerates the timer controller states.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"    // no attempt loaded
	PhaseRunning Phase = "RUNNING" // counting down the active section
	PhasePaused  Phase = "PAUSED"  // review screen shown, no decrement
	PhaseExpired Phase = "EXPIRED" // a section hit zero, attempt is over
)

// Tick advances the active section's countdown by one elapsed second.
// Returns true when the section is exhausted: the remaining time is clamped
// to zero and must never decrement again.
func Tick(s *State, p *Plan) (expired bool) {
	id := s.ActiveSectionID(p.Test)
	if id == "" {
		return false
	}
	r := s.Remaining[id]
	if r-1 <= 0 {
		s.Remaining[id] = 0
		return true
	}
	s.Remaining[id] = r - 1
	return false
}

// ExpireFunc is invoked exactly once when a section's timer reaches zero.
// It receives a snapshot of the final state; the attempt is auto-submitted
// as a whole, not just the exhausted section.
type ExpireFunc func(ctx context.Context, final *State)

// Runner drives the countdown for one live attempt. All mutation goes through
// its mutex, so ticks and user actions interleave on one logical thread.
// There is at most one Runner per attempt; the owner must call Stop (or cancel
// the Run context) before abandoning it so no orphaned tick can touch a
// cleared session.
type Runner struct {
	store    Store
	plan     *Plan
	onExpire ExpireFunc

	mu      sync.Mutex
	state   *State
	phase   Phase
	expired bool
	stop    chan struct{}
}

// NewRunner wires a runner around an already-loaded state. The phase starts
// Running: a runner only exists while the attempt is on screen.
func NewRunner(store Store, plan *Plan, state *State, onExpire ExpireFunc) *Runner {
	return &Runner{
		store:    store,
		plan:     plan,
		onExpire: onExpire,
		state:    state,
		phase:    PhaseRunning,
		stop:     make(chan struct{}),
	}
}

// Phase returns the current timer phase.
func (r *Runner) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Snapshot returns a deep copy of the current state.
func (r *Runner) Snapshot() *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// HandleTick applies one second of elapsed time. Outside the Running phase it
// is a no-op, which makes a late tick scheduled around a pause, submit, or
// expiry harmless. The state is persisted after every decrement.
func (r *Runner) HandleTick(ctx context.Context) error {
	r.mu.Lock()

	if r.phase != PhaseRunning {
		r.mu.Unlock()
		return nil
	}

	expired := Tick(r.state, r.plan)
	if err := r.store.Save(ctx, r.state); err != nil {
		r.mu.Unlock()
		return err
	}

	if !expired {
		r.mu.Unlock()
		return nil
	}

	r.phase = PhaseExpired
	fire := !r.expired
	r.expired = true
	final := r.state.Clone()
	r.mu.Unlock()

	if fire && r.onExpire != nil {
		r.onExpire(ctx, final)
	}
	return nil
}

// Pause freezes the countdown while the review screen is shown.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseRunning {
		r.phase = PhasePaused
	}
}

// Resume restarts the countdown from the last saved value after leaving review.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhasePaused {
		r.phase = PhaseRunning
	}
}

// Finish moves the runner to Expired without firing the expiry callback.
// Used after a manual submit so trailing ticks become no-ops.
func (r *Runner) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseExpired
	r.expired = true
}

// Answer records an answer under the lock and persists immediately.
func (r *Runner) Answer(ctx context.Context, questionID uuid.UUID, answer model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseExpired {
		return ErrAttemptOver
	}
	RecordAnswer(r.state, questionID, answer)
	return r.store.Save(ctx, r.state)
}

// Advance moves the cursor forward and persists. Completion is reported to
// the caller, which switches to the review flow.
func (r *Runner) Advance(ctx context.Context) (completed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseExpired {
		return false, ErrAttemptOver
	}
	completed = Advance(r.state, r.plan)
	if completed {
		return true, nil
	}
	return false, r.store.Save(ctx, r.state)
}

// Retreat moves the cursor back within the section and persists.
func (r *Runner) Retreat(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseExpired {
		return ErrAttemptOver
	}
	before := r.state.CurrentQuestion
	Retreat(r.state)
	if r.state.CurrentQuestion == before {
		return nil
	}
	return r.store.Save(ctx, r.state)
}

// Run ticks once per second until the context is cancelled, Stop is called,
// or the attempt expires. The single loop guarantees at most one outstanding
// tick per attempt.
func (r *Runner) Run(ctx context.Context) {
	r.RunEvery(ctx, time.Second)
}

// RunEvery is Run with an explicit interval, exposed for deterministic tests.
func (r *Runner) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			_ = r.HandleTick(ctx)
			if r.Phase() == PhaseExpired {
				return
			}
		}
	}
}

// Stop cancels the tick loop. Safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
}
