package store

import (
	"context"
	"errors"
	"time"

	"transplan/internal/results"
)

type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunBuilding   RunStatus = "building"
	RunSolving    RunStatus = "solving"
	RunDone       RunStatus = "done"
	RunInfeasible RunStatus = "infeasible"
	RunFailed     RunStatus = "failed"
)

// Run is one planning job: a scenario submitted for assembly and solve.
type Run struct {
	ID           string    `json:"id"`
	ScenarioName string    `json:"scenarioName,omitempty"`
	Status       RunStatus `json:"status"`
	Error        string    `json:"error,omitempty"`

	Vars        int     `json:"vars,omitempty"`
	Constraints int     `json:"constraints,omitempty"`
	Objective   float64 `json:"objective,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the persistence interface used by the API server and CLI.
type Store interface {
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, cursor string, limit int) (items []Run, nextCursor string, err error)
	UpdateRun(ctx context.Context, run Run) error

	SaveResult(ctx context.Context, runID string, res *results.Result) error
	GetResult(ctx context.Context, runID string) (*results.Result, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
