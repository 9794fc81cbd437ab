package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/export"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/internal/config"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/patch"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/scene"
)

// Version is set via -ldflags.
var Version = "dev"

var (
	cfgFile string
	hint    string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Export floor plans as Energy3D scenes",
	Long: `bridge loads the Energy3D distribution's compiled types, builds a scene
from a floor plan and writes it in Energy3D's native file format.

Examples:
  bridge export house.yaml -o house.ng3
  bridge verify house.ng3
  bridge inspect org.concord.energy3d.model.Wall
  bridge inspect -i`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./bridge.yaml or the user config directory)")
	rootCmd.PersistentFlags().StringVar(&hint, "hint", "", "directory the distribution search starts from")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(fixtureCmd)
}

func setup(*cobra.Command, []string) error {
	c, used, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if hint != "" {
		c.Distribution.Hint = hint
	}
	l, err := c.Logger(verbose)
	if err != nil {
		return err
	}
	cfg, log = c, l

	locate.SetLogger(l.Named("locate"))
	resolve.SetLogger(l.Named("resolve"))
	patch.SetLogger(l.Named("patch"))
	foreign.SetLogger(l.Named("foreign"))
	scene.SetLogger(l.Named("scene"))
	export.SetLogger(l.Named("export"))
	if used != "" {
		l.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// newExporter creates the exporter for the loaded configuration.
func newExporter() *export.Exporter {
	return export.New(export.Options{
		Hint:   cfg.Hint(),
		Layout: cfg.Layout(),
		Resolve: resolve.Options{
			RuntimeConfig: cfg.RuntimeConfig(),
			Logger:        log.Named("resolve"),
		},
		Scene:  cfg.SceneOptions(),
		Logger: log.Named("export"),
	})
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func failf(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}
