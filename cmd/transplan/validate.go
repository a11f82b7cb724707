package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transplan/internal/config"
	"transplan/internal/planner"
	"transplan/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Parse and assemble a scenario without solving",
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
			fmt.Printf("scenario ok: layout=%s vars=%d (int=%d bin=%d) constraints=%d nonzeros=%d\n",
				plan.Layout, plan.Stats.Vars, plan.Stats.Integers, plan.Stats.Binaries,
				plan.Stats.Constraints, plan.Stats.Nonzeros)
			return nil
		},
	}
}
