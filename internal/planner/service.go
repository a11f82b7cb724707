// Package planner runs the full planning pipeline: scenario to reference
// model, index derivation, program assembly, solve, and result mapping.
// It owns run lifecycle state; transports (CLI, HTTP) stay thin.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"transplan/internal/assemble"
	"transplan/internal/config"
	"transplan/internal/indexset"
	"transplan/internal/metrics"
	"transplan/internal/model"
	"transplan/internal/notify"
	"transplan/internal/results"
	"transplan/internal/scenario"
	"transplan/internal/solver"
	"transplan/internal/store"
)

// EventSink receives run state changes for live streaming. Implementations
// must not block.
type EventSink interface {
	PublishRun(run store.Run)
}

type Service struct {
	Cfg      config.Planner
	Store    store.Store
	Solver   solver.Adapter
	Events   EventSink        // optional
	Notifier *notify.Notifier // optional
}

// BuildPlan assembles the program for one scenario without solving. Shared
// by the solve pipeline and the validate/export paths.
func BuildPlan(f *scenario.File, cfg config.Planner) (*assemble.Plan, *model.Reference, error) {
	h := f.ModelHorizon(cfg.Horizon())
	// a scenario horizon override wins over the planner config
	cfg.HorizonStart, cfg.HorizonYears, cfg.PreVintages = h.Start, h.Length, h.PreVintages
	ref, err := model.Build(f.Input(), h)
	if err != nil {
		return nil, nil, fmt.Errorf("build reference: %w", err)
	}
	sets := indexset.Build(ref)
	plan, err := assemble.New(ref, sets, cfg).Build()
	if err != nil {
		return nil, nil, fmt.Errorf("assemble: %w", err)
	}
	return plan, ref, nil
}

// Submit registers a run and executes it in the background.
func (s *Service) Submit(ctx context.Context, f *scenario.File) (store.Run, error) {
	run := store.Run{
		ID:           uuid.New().String(),
		ScenarioName: f.Name,
		Status:       store.RunPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.CreateRun(ctx, run); err != nil {
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}
	go s.Execute(context.Background(), run, f)
	return run, nil
}

// Execute drives one run to a terminal state. Errors are recorded on the
// run, never returned; the caller already has the run id.
func (s *Service) Execute(ctx context.Context, run store.Run, f *scenario.File) {
	run = s.transition(ctx, run, store.RunBuilding, nil)

	buildStart := time.Now()
	plan, _, err := BuildPlan(f, s.Cfg)
	if err != nil {
		s.transition(ctx, run, store.RunFailed, err)
		return
	}
	metrics.BuildDuration.Observe(time.Since(buildStart).Seconds())
	metrics.ModelVars.Set(float64(plan.Stats.Vars))
	metrics.ModelConstraints.Set(float64(plan.Stats.Constraints))

	run.Vars = plan.Stats.Vars
	run.Constraints = plan.Stats.Constraints
	run = s.transition(ctx, run, store.RunSolving, nil)
	log.Printf("run %s: solving, %d vars %d constraints", run.ID, plan.Stats.Vars, plan.Stats.Constraints)

	solveStart := time.Now()
	sol, err := s.Solver.Solve(ctx, plan.Model)
	metrics.SolveDuration.Observe(time.Since(solveStart).Seconds())
	if err != nil {
		s.transition(ctx, run, store.RunFailed, err)
		return
	}

	res, err := results.FromSolution(plan, sol)
	if err != nil {
		s.transition(ctx, run, store.RunFailed, err)
		return
	}
	if err := s.Store.SaveResult(ctx, run.ID, res); err != nil {
		s.transition(ctx, run, store.RunFailed, err)
		return
	}

	run.Objective = sol.Objective
	switch sol.Status {
	case solver.StatusOptimal, solver.StatusTimeLimit:
		s.transition(ctx, run, store.RunDone, nil)
	case solver.StatusInfeasible, solver.StatusUnbounded:
		s.transition(ctx, run, store.RunInfeasible, errors.New(string(sol.Status)))
	default:
		s.transition(ctx, run, store.RunFailed, errors.New("solver returned no usable status"))
	}
}

// transition persists a status change and fans it out to the event sink
// and webhook notifier. Terminal statuses also bump the run counter.
func (s *Service) transition(ctx context.Context, run store.Run, status store.RunStatus, cause error) store.Run {
	run.Status = status
	if cause != nil {
		run.Error = cause.Error()
		log.Printf("run %s: %s: %v", run.ID, status, cause)
	}
	if err := s.Store.UpdateRun(ctx, run); err != nil {
		log.Printf("run %s: persist %s: %v", run.ID, status, err)
	}
	if s.Events != nil {
		s.Events.PublishRun(run)
	}
	switch status {
	case store.RunDone, store.RunFailed, store.RunInfeasible:
		metrics.Runs.WithLabelValues(string(status)).Inc()
		s.Notifier.Emit("run."+string(status), run)
	}
	return run
}
