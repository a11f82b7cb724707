package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transplan/internal/config"
	"transplan/internal/scenario"
	"transplan/internal/solver"
	"transplan/internal/store"
)

const scenarioYAML = `
name: two-node
horizon:
  start: 2030
  years: 3
  preVintages: 2
geographicElements:
  - {id: 1, name: origin, kind: node}
  - {id: 2, name: destination, kind: node}
  - {id: 3, name: corridor, kind: edge, lengthKm: 100}
paths:
  - {id: 1, lengthKm: 100, elements: [1, 3, 2]}
products:
  - {id: 1, name: freight}
fuels:
  - {id: 1, name: diesel, costPerKWh: [0.1, 0.1, 0.1], emissionFactor: 0.0003}
technologies:
  - {id: 1, name: ice, fuel: 1}
modes:
  - {id: 1, name: road, quantifyByVehs: true, speedKph: 60}
vehicletypes:
  - {id: 1, name: truck, mode: 1, products: [1]}
techVehicles:
  - id: 1
    vehicletype: 1
    technology: 1
    capitalCost: [100000, 100000, 100000, 100000, 100000]
    subsidy: [0, 0, 0, 0, 0]
    maintAnnual: [1000, 1000, 1000, 1000, 1000]
    maintPerKm: [0.1, 0.1, 0.1, 0.1, 0.1]
    payload: [20, 20, 20, 20, 20]
    specCons: [3, 3, 3, 3, 3]
    lifetime: [8, 8, 8, 8, 8]
    annualRange: [100000, 100000, 100000, 100000, 100000]
    tankKWh: [1000, 1000, 1000, 1000, 1000]
    peakFuelKW: [500, 500, 500, 500, 500]
odpairs:
  - id: 1
    origin: 1
    destination: 2
    paths: [1]
    demand: [100000, 100000, 100000]
    product: 1
    financialStatus: 1
    regiontype: 1
financialStatus:
  - {id: 1, name: public}
regiontypes:
  - {id: 1, name: flat, speedFactor: 1}
`

type recordingSink struct {
	mu     sync.Mutex
	states []store.RunStatus
}

func (r *recordingSink) PublishRun(run store.Run) {
	r.mu.Lock()
	r.states = append(r.states, run.Status)
	r.mu.Unlock()
}

func (r *recordingSink) seen() []store.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.RunStatus(nil), r.states...)
}

func testCfg() config.Planner {
	cfg := config.Default()
	cfg.InfraPeriodYears = 3
	return cfg
}

func parseScenario(t *testing.T) *scenario.File {
	t.Helper()
	f, err := scenario.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	return f
}

func TestBuildPlanScenarioHorizonOverride(t *testing.T) {
	// the planner config has no horizon start; the scenario override must
	// carry the whole time axis
	plan, ref, err := BuildPlan(parseScenario(t), testCfg())
	require.NoError(t, err)
	assert.Equal(t, 2030, ref.Horizon().Start)
	assert.Equal(t, 3, ref.Horizon().Length)
	assert.Positive(t, plan.Stats.Vars)
}

func TestExecuteDoneLifecycle(t *testing.T) {
	sink := &recordingSink{}
	st := store.NewMemory()
	svc := &Service{Cfg: testCfg(), Store: st, Solver: &solver.Fake{Objective: 9.5}, Events: sink}

	ctx := context.Background()
	run := store.Run{ID: "r1", Status: store.RunPending}
	require.NoError(t, st.CreateRun(ctx, run))
	svc.Execute(ctx, run, parseScenario(t))

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, store.RunDone, got.Status)
	assert.Equal(t, 9.5, got.Objective)
	assert.Positive(t, got.Vars)
	assert.Empty(t, got.Error)

	res, err := st.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, res.Status)

	assert.Equal(t, []store.RunStatus{store.RunBuilding, store.RunSolving, store.RunDone}, sink.seen())
}

func TestExecuteInfeasible(t *testing.T) {
	st := store.NewMemory()
	svc := &Service{Cfg: testCfg(), Store: st, Solver: &solver.Fake{Status: solver.StatusInfeasible}}

	ctx := context.Background()
	require.NoError(t, st.CreateRun(ctx, store.Run{ID: "r1"}))
	svc.Execute(ctx, store.Run{ID: "r1"}, parseScenario(t))

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, store.RunInfeasible, got.Status)

	// the status-only result is still saved for inspection
	res, err := st.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
	assert.Empty(t, res.Flows)
}

func TestExecuteSolverError(t *testing.T) {
	st := store.NewMemory()
	svc := &Service{Cfg: testCfg(), Store: st, Solver: &solver.Fake{Err: errors.New("solver binary missing")}}

	ctx := context.Background()
	require.NoError(t, st.CreateRun(ctx, store.Run{ID: "r1"}))
	svc.Execute(ctx, store.Run{ID: "r1"}, parseScenario(t))

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, store.RunFailed, got.Status)
	assert.Contains(t, got.Error, "solver binary missing")
}

func TestExecuteBuildFailure(t *testing.T) {
	st := store.NewMemory()
	svc := &Service{Cfg: testCfg(), Store: st, Solver: &solver.Fake{}}

	f := parseScenario(t)
	f.Odpairs[0].Paths = []int{9} // dangling reference

	ctx := context.Background()
	require.NoError(t, st.CreateRun(ctx, store.Run{ID: "r1"}))
	svc.Execute(ctx, store.Run{ID: "r1"}, f)

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, store.RunFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestSubmitCreatesPendingRun(t *testing.T) {
	st := store.NewMemory()
	svc := &Service{Cfg: testCfg(), Store: st, Solver: &solver.Fake{}}

	run, err := svc.Submit(context.Background(), parseScenario(t))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "two-node", run.ScenarioName)

	require.Eventually(t, func() bool {
		got, err := st.GetRun(context.Background(), run.ID)
		return err == nil && got.Status == store.RunDone
	}, 5*time.Second, 10*time.Millisecond)
}
