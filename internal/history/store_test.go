package history

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1 := &Run{
		Dataset:    "dev_distractor",
		Model:      "claude",
		Queries:    10,
		ExactMatch: 0.5,
		F1:         0.75,
		EvalDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, r1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if r1.ID == 0 {
		t.Fatalf("ID not assigned")
	}

	r2 := &Run{
		Dataset:    "dev_fullwiki",
		Queries:    5,
		ExactMatch: 0.2,
		F1:         0.3,
		EvalDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, r2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if r2.Model != "unknown" {
		t.Fatalf("model default: got %q", r2.Model)
	}

	runs, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len: got %d want 2", len(runs))
	}
	// Newest first.
	if runs[0].Dataset != "dev_fullwiki" {
		t.Fatalf("order: got %q first", runs[0].Dataset)
	}
	if runs[1].ExactMatch != 0.5 || runs[1].F1 != 0.75 {
		t.Fatalf("scores: got %#v", runs[1])
	}
}

func TestStore_ListFiltersByDataset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ds := range []string{"dev_distractor", "dev_fullwiki", "dev_distractor"} {
		if err := s.Save(ctx, &Run{Dataset: ds, Model: "m", Queries: 1}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	runs, err := s.List(ctx, "dev_distractor", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len: got %d want 2", len(runs))
	}
	for _, r := range runs {
		if r.Dataset != "dev_distractor" {
			t.Fatalf("filter leaked: %q", r.Dataset)
		}
	}
}

func TestStore_SaveValidation(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil run")
	}
	if err := s.Save(context.Background(), &Run{Dataset: "  "}); err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}

func TestNewStore_EmptyPath(t *testing.T) {
	if _, err := NewStore("  "); err == nil {
		t.Fatalf("expected error")
	}
}
