package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"transplan/internal/results"
)

func TestMemoryRunLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}

	run := Run{ID: "r1", ScenarioName: "demo", Status: RunPending}
	if err := m.CreateRun(ctx, run); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := m.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != RunPending || got.CreatedAt.IsZero() {
		t.Fatalf("run = %+v", got)
	}

	got.Status = RunSolving
	got.Vars = 42
	if err := m.UpdateRun(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	upd, _ := m.GetRun(ctx, "r1")
	if upd.Status != RunSolving || upd.Vars != 42 {
		t.Fatalf("update lost: %+v", upd)
	}
	if !upd.CreatedAt.Equal(got.CreatedAt) {
		t.Fatal("update must preserve creation time")
	}

	if err := m.UpdateRun(ctx, Run{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestMemoryListPagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 5; i++ {
		if err := m.CreateRun(ctx, Run{ID: fmt.Sprintf("r%d", i), Status: RunPending}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, next, err := m.ListRuns(ctx, "", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != "r0" || page[1].ID != "r1" {
		t.Fatalf("page 1 = %+v", page)
	}
	if next != "r1" {
		t.Fatalf("cursor = %q", next)
	}

	page, next, err = m.ListRuns(ctx, next, 2)
	if err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if len(page) != 2 || page[0].ID != "r2" {
		t.Fatalf("page 2 = %+v", page)
	}

	page, next, err = m.ListRuns(ctx, next, 2)
	if err != nil {
		t.Fatalf("list 3: %v", err)
	}
	if len(page) != 1 || page[0].ID != "r4" {
		t.Fatalf("page 3 = %+v", page)
	}
	if next != "" {
		t.Fatalf("final cursor = %q, want empty", next)
	}
}

func TestMemoryListDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.CreateRun(ctx, Run{ID: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	page, _, err := m.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestMemoryResults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	res := &results.Result{Status: "optimal", Objective: 12.5}
	if err := m.SaveResult(ctx, "nope", res); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save for missing run: %v", err)
	}
	if err := m.CreateRun(ctx, Run{ID: "r1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.SaveResult(ctx, "r1", res); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := m.GetResult(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Objective != 12.5 || got.Status != "optimal" {
		t.Fatalf("result = %+v", got)
	}
	if _, err := m.GetResult(ctx, "r2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing result: %v", err)
	}
}
