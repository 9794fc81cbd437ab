package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/technologiescollege/SweetEnergy3d-sub000/export"
)

var verifyClasses bool

var verifyCmd = &cobra.Command{
	Use:   "verify FILE...",
	Short: "Check scene files and count their containers and elements",
	Args:  cobra.MinimumNArgs(1),
	// verifying needs no distribution
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyClasses, "classes", false, "list instance counts per class")
}

func runVerify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		sum, err := export.Verify(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", render(errorStyle, "invalid"), path, err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", render(resultStyle, "ok"), path)
		fmt.Fprintf(out, "  root:       %s\n  containers: %d\n  elements:   %d\n  objects:    %d\n  bytes:      %d\n",
			render(typeStyle, sum.Root), sum.Containers, sum.Elements, sum.Objects, sum.Bytes)
		if verifyClasses {
			for _, name := range sum.ClassNames() {
				fmt.Fprintf(out, "    %5d %s\n", sum.Classes[name], name)
			}
		}
	}
	if failed > 0 {
		return failf(6, "%d of %d files invalid", failed, len(args))
	}
	return nil
}
