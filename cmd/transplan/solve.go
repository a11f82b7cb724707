package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transplan/internal/config"
	"transplan/internal/planner"
	"transplan/internal/results"
	"transplan/internal/scenario"
	"transplan/internal/solver"
)

func newSolveCmd() *cobra.Command {
	var outPath, lpPath string
	cmd := &cobra.Command{
		Use:   "solve <scenario.yaml>",
		Short: "Assemble a scenario, run the solver, and write results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			plan, _, err := planner.BuildPlan(f, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "assembled: vars=%d constraints=%d\n",
				plan.Stats.Vars, plan.Stats.Constraints)

			if lpPath != "" {
				w, err := os.Create(lpPath)
				if err != nil {
					return err
				}
				if err := solver.WriteLP(w, plan.Model); err != nil {
					w.Close()
					return err
				}
				if err := w.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", lpPath)
			}

			adapter := solver.NewExec(cfg.Solver.Command, cfg.Solver.TimeLimitSec)
			sol, err := adapter.Solve(cmd.Context(), plan.Model)
			if err != nil {
				return err
			}
			res, err := results.FromSolution(plan, sol)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "solver: %s objective=%g\n", sol.Status, sol.Objective)

			out := cmd.OutOrStdout()
			if outPath != "" {
				w, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer w.Close()
				out = w
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write results JSON to file (default stdout)")
	cmd.Flags().StringVar(&lpPath, "lp", "", "also export the assembled program in LP format")
	return cmd
}
