package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/export"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
)

// SceneExt is the extension of Energy3D scene files.
const SceneExt = ".ng3"

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export PLAN",
	Short: "Export a floor plan (json, yaml or toml) as a scene file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "scene file to write (default PLAN with .ng3 extension)")
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}
	dest := exportOutput
	if dest == "" {
		dest = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + SceneExt
	}

	e := newExporter()
	defer e.Close(cmd.Context())

	res := e.Export(cmd.Context(), export.Job{Plan: p, Destination: dest})
	out := cmd.OutOrStdout()
	if !res.OK {
		fmt.Fprintln(cmd.ErrOrStderr(), render(errorStyle, res.Diagnostic))
		return failf(exitCode(res.Phase), "export failed")
	}
	fmt.Fprintf(out, "%s %s\n", render(titleStyle, "exported"), dest)
	fmt.Fprintf(out, "  walls: %d\n  bytes: %d\n  took:  %s\n  log:   %s\n",
		res.Walls, res.Bytes, res.Duration.Round(time.Millisecond), res.LogPath)
	return nil
}

// exitCode maps failure phases to process exit codes.
func exitCode(phase errors.Phase) int {
	switch phase {
	case errors.PhaseDiscovery:
		return 3
	case errors.PhaseResolve, errors.PhasePatch:
		return 4
	case errors.PhaseBuild:
		return 5
	case errors.PhaseSerialize, errors.PhaseDecode:
		return 6
	}
	return 1
}
