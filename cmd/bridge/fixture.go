package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/technologiescollege/SweetEnergy3d-sub000/internal/fixture"
)

var fixtureOpts fixture.Options

var fixtureCmd = &cobra.Command{
	Use:    "fixture DIR",
	Short:  "Write a synthetic Energy3D distribution for trying the bridge",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	// writing a distribution needs none
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := fixture.Write(args[0], fixtureOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "primary:      %s\n", d.Primary)
		fmt.Fprintf(out, "dependencies: %s\n", d.DependencyDir)
		if d.Engine != "" {
			fmt.Fprintf(out, "engine:       %s\n", d.Engine)
		}
		return nil
	},
}

func init() {
	f := fixtureCmd.Flags()
	f.BoolVar(&fixtureOpts.Current, "current", false, "build artifacts that need no patching")
	f.BoolVar(&fixtureOpts.OmitCameraSetters, "omit-camera-setters", false, "drop the scene's camera mutators")
	f.StringVar(&fixtureOpts.DependencyDir, "dependency-dir", "", "dependency directory name (default lib-legacy)")
	f.StringSliceVar(&fixtureOpts.OmitTypes, "omit", nil, "type names to leave out")
}
