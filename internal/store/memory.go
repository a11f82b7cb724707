package store

import (
	"context"
	"sync"
	"time"

	"transplan/internal/results"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu      sync.Mutex
	runs    map[string]Run
	order   []string // run ids in creation order, cursor pagination
	results map[string]*results.Result
}

func NewMemory() *Memory {
	return &Memory{
		runs:    map[string]Run{},
		results: map[string]*results.Result{},
	}
}

func (m *Memory) CreateRun(ctx context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) ListRuns(ctx context.Context, cursor string, limit int) ([]Run, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	start := 0
	if cursor != "" {
		for i, id := range m.order {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []Run{}
	var next string
	for i := start; i < len(m.order) && len(out) < limit; i++ {
		out = append(out, m.runs[m.order[i]])
		next = m.order[i]
	}
	if start+len(out) >= len(m.order) {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) UpdateRun(ctx context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.runs[run.ID]
	if !ok {
		return ErrNotFound
	}
	run.CreatedAt = prev.CreatedAt
	run.UpdatedAt = time.Now().UTC()
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) SaveResult(ctx context.Context, runID string, res *results.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return ErrNotFound
	}
	m.results[runID] = res
	return nil
}

func (m *Memory) GetResult(ctx context.Context, runID string) (*results.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.results[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

func (m *Memory) Close() error { return nil }
