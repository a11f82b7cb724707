package solver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"transplan/internal/lp"
)

const highsStyleSolution = `Model status
Optimal

# Primal solution values
Feasible
Objective 42.5
# Columns 3
x 1.5
y 2
z 0
# Rows 2
cap 8
link 0
`

func TestParseSolutionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.sol")
	if err := os.WriteFile(path, []byte(highsStyleSolution), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sol, err := parseSolutionFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %s, want optimal", sol.Status)
	}
	if sol.Objective != 42.5 {
		t.Fatalf("objective = %g, want 42.5", sol.Objective)
	}
	if len(sol.Values) != 3 {
		t.Fatalf("values = %v", sol.Values)
	}
	if sol.Values["x"] != 1.5 || sol.Values["y"] != 2 {
		t.Fatalf("values = %v", sol.Values)
	}
}

func TestParseSolutionFileInfeasible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.sol")
	if err := os.WriteFile(path, []byte("Model status\nInfeasible\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sol, err := parseSolutionFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %s, want infeasible", sol.Status)
	}
	if sol.Values != nil {
		t.Fatal("infeasible solution must not carry values")
	}
}

func TestFakeDefaultsToLowerBounds(t *testing.T) {
	m := lp.NewModel()
	m.AddContinuous("a")
	m.AddFixed("b", 3)

	sol, err := (&Fake{Objective: 1}).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %s", sol.Status)
	}
	if sol.Values["a"] != 0 || sol.Values["b"] != 3 {
		t.Fatalf("values = %v", sol.Values)
	}
}

func TestFakeErrorPassthrough(t *testing.T) {
	wantErr := os.ErrDeadlineExceeded
	_, err := (&Fake{Err: wantErr}).Solve(context.Background(), lp.NewModel())
	if err != wantErr {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
