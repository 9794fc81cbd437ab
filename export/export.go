package export

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/scene"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// RequiredTypes are resolved before a graph is built. A failure here is a
// resolution failure rather than a build error.
var RequiredTypes = []string{
	typename.Scene,
	typename.Foundation,
	typename.Wall,
	typename.Vector3,
	typename.ColorRGBA,
}

// Job is one export.
type Job struct {
	Plan        *plan.Plan
	Destination string
	// LogPath defaults to Destination + LogSuffix.
	LogPath string
}

// Result reports the outcome of a job. Failures never escape as errors.
type Result struct {
	OK          bool
	Destination string
	LogPath     string
	// Phase is the phase that failed.
	Phase errors.Phase
	// Diagnostic is a human readable failure description.
	Diagnostic string
	Bytes      int64
	Walls      int
	Duration   time.Duration
	// Err is the failure in its structured form.
	Err error
}

// Options configure an Exporter.
type Options struct {
	// Hint is the directory the distribution search starts from.
	Hint    string
	Layout  locate.Layout
	Resolve resolve.Options
	Scene   scene.Options
	Logger  *zap.Logger
}

// Exporter runs jobs against one process-lifetime registry. Jobs are run
// one at a time.
type Exporter struct {
	boot *resolve.Bootstrap
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	factory *foreign.Factory
}

// New creates an exporter. The registry is created by the first job that
// locates the distribution.
func New(opts Options) *Exporter {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	if opts.Layout.PrimaryPath == "" {
		opts.Layout = locate.DefaultLayout()
	}
	if opts.Resolve.Logger == nil {
		opts.Resolve.Logger = log
	}
	return &Exporter{
		boot: resolve.NewBootstrap(opts.Hint, opts.Layout, opts.Resolve),
		opts: opts,
		log:  log,
	}
}

// Registry returns the shared registry, creating it if needed.
func (e *Exporter) Registry(ctx context.Context) (*resolve.Registry, error) {
	return e.boot.Registry(ctx)
}

// Close releases the registry.
func (e *Exporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.factory = nil
	return e.boot.Close(ctx)
}

// Export runs locate, resolve, build, serialize and verify for job. Every
// step is logged to the job's sidecar log.
func (e *Exporter) Export(ctx context.Context, job Job) (res Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res = Result{Destination: job.Destination, LogPath: job.LogPath}
	if res.LogPath == "" && job.Destination != "" {
		res.LogPath = job.Destination + LogSuffix
	}

	log := e.log
	if res.LogPath != "" {
		sc, err := openSidecar(res.LogPath, e.log)
		if err != nil {
			e.log.Warn("sidecar log unavailable", zap.Error(err))
			res.LogPath = ""
		} else {
			defer sc.Close()
			log = sc.log
		}
	}
	log = log.With(zap.String("destination", job.Destination))

	defer func() {
		if r := recover(); r != nil {
			res.fail(errors.New(errors.PhaseExport, errors.KindInvariant).
				Detail("panic: %v", r).
				Build())
		}
		res.Duration = time.Since(start)
		if res.OK {
			log.Info("export succeeded",
				zap.Int64("bytes", res.Bytes),
				zap.Int("walls", res.Walls),
				zap.Duration("duration", res.Duration))
			return
		}
		log.Error("export failed",
			zap.String("phase", string(res.Phase)),
			zap.Strings("chain", errors.Chain(res.Err)))
	}()

	if err := e.run(ctx, job, log, &res); err != nil {
		res.fail(err)
		return res
	}
	res.OK = true
	return res
}

func (e *Exporter) run(ctx context.Context, job Job, log *zap.Logger, res *Result) error {
	if job.Destination == "" {
		return errors.InvalidInput(errors.PhaseExport, "no destination")
	}
	dest, err := filepath.Abs(job.Destination)
	if err != nil {
		return errors.IO(errors.PhaseExport, job.Destination, err)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidInput, err, "canceled")
	}

	log.Info("locate", zap.String("hint", e.opts.Hint))
	reg, err := e.boot.Registry(ctx)
	if err != nil {
		return err
	}
	log.Info("located", zap.Strings("archives", reg.ModuleSet().Paths()))

	if e.factory == nil || e.factory.Registry() != reg {
		e.factory = foreign.NewFactory(reg, e.log)
	}

	log.Info("resolve", zap.Int("types", len(RequiredTypes)))
	for _, name := range RequiredTypes {
		t, err := reg.ResolveOuter(ctx, name)
		if err != nil {
			return err
		}
		if t.Patched {
			log.Info("patched", zap.String("type", name))
		}
	}

	log.Info("build")
	b := scene.NewBuilder(e.factory, e.opts.Scene, log)
	g, err := b.Build(ctx, job.Plan)
	if err == nil {
		err = g.Validate()
	}
	if err != nil {
		discard(dest, log)
		return err
	}
	res.Walls = len(g.Walls)
	log.Info("built", zap.Int("walls", len(g.Walls)), zap.Bool("default_wall", g.DefaultWall))

	log.Info("serialize", zap.String("path", dest))
	n, err := Serialize(g.Root, dest)
	res.Bytes = n
	if err != nil {
		return err
	}

	log.Info("verify")
	sum, err := Verify(dest)
	if err != nil {
		writeDiag(dest, err)
		return errors.Wrap(errors.PhaseSerialize, errors.KindVerification, err, "read back")
	}
	log.Info("verified", zap.Int("objects", sum.Objects), zap.Int("elements", sum.Elements))
	return nil
}

// discard removes a stale destination so a failed job leaves no file that
// looks valid.
func discard(dest string, log *zap.Logger) {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		log.Warn("stale destination not removed", zap.Error(err))
	}
}

func (r *Result) fail(err error) {
	r.OK = false
	r.Err = err
	r.Phase = errors.PhaseExport
	var e *errors.Error
	if stderrors.As(err, &e) {
		r.Phase = e.Phase
	}
	r.Diagnostic = Describe(r.Phase, err)
	if r.LogPath != "" {
		r.Diagnostic += fmt.Sprintf("\nsee %s", r.LogPath)
	}
}

// Describe renders the failure class of phase and the causal chain of
// err, outermost first.
func Describe(phase errors.Phase, err error) string {
	if err == nil {
		return ""
	}
	chain := errors.Chain(err)
	var b strings.Builder
	b.WriteString(failureName(phase))
	b.WriteString(": ")
	b.WriteString(chain[0])
	for _, c := range chain[1:] {
		b.WriteString("\n  caused by: ")
		b.WriteString(c)
	}
	return b.String()
}

func failureName(phase errors.Phase) string {
	switch phase {
	case errors.PhaseDiscovery:
		return "discovery failure"
	case errors.PhaseResolve:
		return "resolution failure"
	case errors.PhasePatch:
		return "patch failure"
	case errors.PhaseBuild:
		return "build error"
	case errors.PhaseSerialize, errors.PhaseDecode:
		return "serialize error"
	}
	return "export failure"
}
