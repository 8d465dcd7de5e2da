package session

import (
	"context"
	"testing"
	"time"

	"github.com/prepkit/ielts-backend/internal/model"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	test, qs := twoSectionTest()
	store := NewMemoryStore()

	s := New(7, test, time.Now())
	s.CurrentSection = 1
	s.CurrentQuestion = 1
	s.Remaining["listening"] = 12
	s.Answers[qs[0].ID] = model.ChoiceAnswer(2)
	s.Answers[qs[3].ID] = model.TextAnswer("cotton")

	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, 7, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("saved state not found")
	}
	if loaded.CurrentSection != 1 || loaded.CurrentQuestion != 1 {
		t.Errorf("cursor = (%d, %d), want (1, 1)", loaded.CurrentSection, loaded.CurrentQuestion)
	}
	if loaded.Remaining["listening"] != 12 {
		t.Errorf("listening remaining = %d, want 12", loaded.Remaining["listening"])
	}
	if a := loaded.Answers[qs[0].ID]; a.Choice == nil || *a.Choice != 2 {
		t.Errorf("choice answer = %+v, want 2", a)
	}
	if a := loaded.Answers[qs[3].ID]; a.Text != "cotton" {
		t.Errorf("text answer = %q, want cotton", a.Text)
	}
}

func TestStoreLoadAbsent(t *testing.T) {
	ctx := context.Background()
	test, _ := twoSectionTest()
	store := NewMemoryStore()

	state, err := store.Load(ctx, 7, test.ID)
	if err != nil {
		t.Fatalf("absent load returned error: %v", err)
	}
	if state != nil {
		t.Fatal("absent load returned a state")
	}
}

func TestStoreCorruptPayloadTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	test, _ := twoSectionTest()
	store := NewMemoryStore()

	s := New(7, test, time.Now())
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	store.Corrupt(7, test.ID)

	state, err := store.Load(ctx, 7, test.ID)
	if err != nil {
		t.Fatalf("corrupt load returned error: %v", err)
	}
	if state != nil {
		t.Fatal("corrupt payload should read as absent")
	}
}

func TestStoreClearThenLoadAbsent(t *testing.T) {
	ctx := context.Background()
	test, _ := twoSectionTest()
	store := NewMemoryStore()

	s := New(7, test, time.Now())
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, 7, test.ID); err != nil {
		t.Fatal(err)
	}

	state, err := store.Load(ctx, 7, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Fatal("cleared attempt still loads")
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	test, _ := twoSectionTest()
	store := NewMemoryStore()

	s := New(7, test, time.Now())
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	s.Remaining["listening"] = 5
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, _ := store.Load(ctx, 7, test.ID)
	if loaded.Remaining["listening"] != 5 {
		t.Errorf("remaining = %d, want 5", loaded.Remaining["listening"])
	}
}
