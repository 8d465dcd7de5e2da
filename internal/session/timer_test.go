package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prepkit/ielts-backend/internal/model"
)

func TestTickDecrementsOnlyActiveSection(t *testing.T) {
	test, _ := twoSectionTest()
	s := New(7, test, time.Now())

	if expired := Tick(s, NewPlan(test, nil)); expired {
		t.Fatal("first tick must not expire a 60s section")
	}
	if s.Remaining["listening"] != 59 {
		t.Errorf("listening remaining = %d, want 59", s.Remaining["listening"])
	}
	if s.Remaining["reading"] != 30 {
		t.Errorf("inactive reading decremented to %d", s.Remaining["reading"])
	}
}

func TestTickExpiryClampsToZero(t *testing.T) {
	test, _ := twoSectionTest()
	p := NewPlan(test, nil)
	s := New(7, test, time.Now())
	s.Remaining["listening"] = 1

	if expired := Tick(s, p); !expired {
		t.Fatal("tick at 1s remaining must expire")
	}
	if s.Remaining["listening"] != 0 {
		t.Errorf("expired section remaining = %d, want 0", s.Remaining["listening"])
	}

	// Further ticks stay clamped.
	Tick(s, p)
	if s.Remaining["listening"] != 0 {
		t.Errorf("post-expiry tick moved remaining to %d", s.Remaining["listening"])
	}
}

func TestRunnerTickPersists(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	store := NewMemoryStore()
	s := New(7, test, time.Now())

	r := NewRunner(store, p, s, nil)
	if err := r.HandleTick(ctx); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, 7, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.Remaining["listening"] != 59 {
		t.Fatalf("persisted remaining = %v, want 59", loaded)
	}
}

func TestRunnerExpiresExactlyOnce(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	store := NewMemoryStore()
	s := New(7, test, time.Now())
	s.Remaining["listening"] = 1

	var fired int32
	r := NewRunner(store, p, s, func(ctx context.Context, final *State) {
		atomic.AddInt32(&fired, 1)
		if final.Remaining["listening"] != 0 {
			t.Errorf("expiry snapshot remaining = %d, want 0", final.Remaining["listening"])
		}
	})

	for i := 0; i < 5; i++ {
		if err := r.HandleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("expiry callback fired %d times, want 1", got)
	}
	if r.Phase() != PhaseExpired {
		t.Errorf("phase = %s, want %s", r.Phase(), PhaseExpired)
	}
}

func TestRunnerPauseFreezesCountdown(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	r := NewRunner(NewMemoryStore(), p, s, nil)
	r.Pause()
	for i := 0; i < 10; i++ {
		if err := r.HandleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := r.Snapshot().Remaining["listening"]; got != 60 {
		t.Errorf("remaining after paused ticks = %d, want 60", got)
	}

	r.Resume()
	if err := r.HandleTick(ctx); err != nil {
		t.Fatal(err)
	}
	if got := r.Snapshot().Remaining["listening"]; got != 59 {
		t.Errorf("remaining after resume = %d, want 59", got)
	}
}

func TestRunnerActionsAfterFinish(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	r := NewRunner(NewMemoryStore(), p, s, nil)
	r.Finish()

	if err := r.Answer(ctx, qs[0].ID, model.TextAnswer("late")); err != ErrAttemptOver {
		t.Errorf("Answer after finish = %v, want ErrAttemptOver", err)
	}
	if _, err := r.Advance(ctx); err != ErrAttemptOver {
		t.Errorf("Advance after finish = %v, want ErrAttemptOver", err)
	}
	if err := r.Retreat(ctx); err != ErrAttemptOver {
		t.Errorf("Retreat after finish = %v, want ErrAttemptOver", err)
	}
}

func TestRunnerFinishSuppressesExpiry(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.Remaining["listening"] = 1

	var fired int32
	r := NewRunner(NewMemoryStore(), p, s, func(context.Context, *State) {
		atomic.AddInt32(&fired, 1)
	})

	r.Finish()
	for i := 0; i < 3; i++ {
		if err := r.HandleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("expiry fired %d times after manual finish, want 0", got)
	}
}

func TestRunnerFullCountdown(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	store := NewMemoryStore()
	s := New(7, test, time.Now())

	var fired int32
	r := NewRunner(store, p, s, func(context.Context, *State) {
		atomic.AddInt32(&fired, 1)
	})

	// 59 decrements, then the 60th tick expires the section.
	for i := 0; i < 60; i++ {
		if err := r.HandleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expiry fired %d times, want 1", got)
	}
	final := r.Snapshot()
	if final.Remaining["listening"] != 0 {
		t.Errorf("listening remaining = %d, want 0", final.Remaining["listening"])
	}
	// The second section never started, so its budget is untouched.
	if final.Remaining["reading"] != 30 {
		t.Errorf("reading remaining = %d, want 30", final.Remaining["reading"])
	}
}

func TestRunnerRunEveryStops(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.Remaining["listening"] = 2

	done := make(chan struct{})
	r := NewRunner(NewMemoryStore(), p, s, nil)
	go func() {
		r.RunEvery(context.Background(), time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunEvery did not stop after expiry")
	}
	if r.Phase() != PhaseExpired {
		t.Errorf("phase = %s, want %s", r.Phase(), PhaseExpired)
	}

	// Stop after exit is harmless.
	r.Stop()
	r.Stop()
}
