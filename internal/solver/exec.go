package solver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"transplan/internal/lp"
)

// Exec drives a command-line solver (HiGHS by default): the model is
// written to a temp file in LP format, the command is invoked with a
// solution-file flag, and the solution file is parsed back.
type Exec struct {
	Command      string
	TimeLimitSec int
	KeepFiles    bool // leave the temp dir in place for debugging
}

func NewExec(command string, timeLimitSec int) *Exec {
	return &Exec{Command: command, TimeLimitSec: timeLimitSec}
}

func (e *Exec) Solve(ctx context.Context, m *lp.Model) (*Solution, error) {
	dir, err := os.MkdirTemp("", "transplan-solve-*")
	if err != nil {
		return nil, fmt.Errorf("solver: temp dir: %w", err)
	}
	if !e.KeepFiles {
		defer os.RemoveAll(dir)
	}

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")

	f, err := os.Create(modelPath)
	if err != nil {
		return nil, fmt.Errorf("solver: create model file: %w", err)
	}
	if err := WriteLP(f, m); err != nil {
		f.Close()
		return nil, fmt.Errorf("solver: write model: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("solver: close model file: %w", err)
	}

	if e.TimeLimitSec > 0 {
		var cancel context.CancelFunc
		// grace period so the solver can write its incumbent before we kill it
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.TimeLimitSec+30)*time.Second)
		defer cancel()
	}

	args := []string{modelPath, "--solution_file", solPath}
	if e.TimeLimitSec > 0 {
		args = append(args, "--time_limit", strconv.Itoa(e.TimeLimitSec))
	}
	cmd := exec.CommandContext(ctx, e.Command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("solver: %s: %w", e.Command, ctx.Err())
		}
		return nil, fmt.Errorf("solver: %s failed: %w: %s", e.Command, err, truncate(string(out), 512))
	}

	sol, err := parseSolutionFile(solPath)
	if err != nil {
		return nil, err
	}
	// objective constants cannot be expressed in the LP file
	if sol.Status == StatusOptimal || sol.Status == StatusTimeLimit {
		sol.Objective += m.Objective().Const
	}
	return sol, nil
}

// parseSolutionFile reads a HiGHS-style solution file: a "Model status"
// header followed by a "# Columns <n>" section of name/value pairs.
func parseSolutionFile(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("solver: open solution: %w", err)
	}
	defer f.Close()

	sol := &Solution{Status: StatusError, Values: map[string]float64{}}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inColumns := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "Model status":
			if sc.Scan() {
				sol.Status = mapStatus(strings.TrimSpace(sc.Text()))
			}
		case strings.HasPrefix(line, "Objective"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if v, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
					sol.Objective = v
				}
			}
		case strings.HasPrefix(line, "# Columns"):
			inColumns = true
		case strings.HasPrefix(line, "# Rows"):
			inColumns = false
		case inColumns && line != "":
			fields := strings.Fields(line)
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					sol.Values[fields[0]] = v
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("solver: read solution: %w", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusTimeLimit {
		sol.Values = nil
	}
	return sol, nil
}

func mapStatus(s string) Status {
	switch strings.ToLower(s) {
	case "optimal":
		return StatusOptimal
	case "infeasible":
		return StatusInfeasible
	case "unbounded", "primal unbounded":
		return StatusUnbounded
	case "time limit reached":
		return StatusTimeLimit
	default:
		return StatusError
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
