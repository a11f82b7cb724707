package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transplan/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := buildinfo.Info()
			fmt.Printf("transplan %s", info["version"])
			if info["commit"] != "" {
				fmt.Printf(" (%s)", info["commit"])
			}
			if info["builtAt"] != "" {
				fmt.Printf(" built %s", info["builtAt"])
			}
			fmt.Println()
		},
	}
}
