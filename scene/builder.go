package scene

import (
	"context"
	stderrors "errors"
	"math"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
)

// Build steps, in order.
const (
	StepPrecache    = "precache"
	StepScene       = "scene"
	StepSingleton   = "singleton"
	StepAnnotation  = "annotation"
	StepGroundPlane = "ground plane"
	StepWalls       = "walls"
	StepAttach      = "attach"
	StepCamera      = "camera"
)

// Builder turns plans into foreign scene graphs.
type Builder struct {
	factory *foreign.Factory
	opts    Options
	log     *zap.Logger
}

// NewBuilder creates a builder over the classes of f. Zero option values
// take their defaults.
func NewBuilder(f *foreign.Factory, opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = Logger()
	}
	return &Builder{factory: f, opts: opts.withDefaults(), log: log}
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// Build creates the scene graph of p. Walls of levels the classifier does
// not export are skipped; a plan without exported walls yields the default
// ground plane carrying the default wall.
func (b *Builder) Build(ctx context.Context, p *plan.Plan) (*Graph, error) {
	g := &Graph{}
	b.precache(ctx, g)

	c, err := bind(ctx, b.factory)
	if err != nil {
		return nil, stepError(StepScene, err)
	}

	root, err := c.scene.New(ctx)
	if err != nil {
		return nil, stepError(StepScene, err)
	}
	g.Root = root.Object()

	installed, err := root.InstallSingleton()
	switch {
	case err != nil:
		b.log.Warn("scene singleton not installed", zap.Error(err))
	case !installed:
		b.log.Debug("scene singleton already present")
	}
	g.Singleton = installed

	if err := root.SetAnnotationScale(b.opts.AnnotationScale); err != nil {
		return nil, stepError(StepAnnotation, err)
	}

	walls := plan.ExportedWalls(p, b.opts.Classifier)
	origin, width, depth := b.layout(walls)
	if len(walls) == 0 {
		walls = []plan.Wall{b.opts.DefaultWall}
		g.DefaultWall = true
	}
	if skipped := planWalls(p) - len(walls); skipped > 0 && !g.DefaultWall {
		b.log.Debug("walls skipped by level", zap.Int("count", skipped))
	}

	ground, err := c.foundation.NewGroundPlane(ctx)
	if err != nil {
		return nil, stepError(StepGroundPlane, err)
	}
	if err := b.groundPlane(ctx, ground, width, depth); err != nil {
		return nil, stepError(StepGroundPlane, err)
	}
	g.GroundPlane = ground.Object()

	textured := false
	for i, w := range walls {
		el, err := b.wall(ctx, c, ground, origin, w)
		if err != nil {
			return nil, errors.New(errors.PhaseBuild, kindOf(err)).
				Detail("%s: wall %d", StepWalls, i).
				Cause(err).
				Build()
		}
		g.Walls = append(g.Walls, el.Object())
		textured = textured || b.opts.Converter.Convert(w).Texture != plan.TextureNone
	}

	if err := root.Add(ctx, ground.Object()); err != nil {
		return nil, stepError(StepAttach, err)
	}
	for _, w := range g.Walls {
		if err := root.Add(ctx, w); err != nil {
			return nil, stepError(StepAttach, err)
		}
	}
	if textured {
		if ok, err := root.SetTextureMode(ctx, "Full"); err != nil || !ok {
			b.log.Debug("texture mode unchanged", zap.Error(err))
		}
	}

	loc, dir := b.camera(width, depth)
	location, err := c.vector.New(ctx, loc)
	if err != nil {
		return nil, stepError(StepCamera, err)
	}
	direction, err := c.vector.New(ctx, dir)
	if err != nil {
		return nil, stepError(StepCamera, err)
	}
	mutators, err := root.SetCamera(ctx, location, direction)
	if err != nil {
		return nil, stepError(StepCamera, err)
	}
	if !mutators {
		b.log.Debug("camera mutators missing, assigned fields only")
	}
	g.CameraMutators = mutators

	b.log.Info("scene built",
		zap.Int("walls", len(g.Walls)),
		zap.Bool("default_wall", g.DefaultWall),
		zap.Bool("singleton", g.Singleton),
		zap.Int("precached", g.Precached),
		zap.Int("precache_failures", len(g.PrecacheFailures)))
	return g, nil
}

// precache loads the listed types. Failures only degrade the result.
func (b *Builder) precache(ctx context.Context, g *Graph) {
	for _, name := range b.opts.Precache {
		if err := b.precacheType(ctx, name); err != nil {
			b.log.Warn("precache failed", zap.String("type", name), zap.Error(err))
			g.PrecacheFailures = append(g.PrecacheFailures, name)
			continue
		}
		g.Precached++
	}
}

// precacheType resolves name and registers it when it is an image loader.
// A panicking entry point fails only this type.
func (b *Builder) precacheType(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseBuild, errors.KindInvocation).
				Type(name).
				Detail("precache panicked: %v", r).
				Build()
		}
	}()
	c, err := b.factory.Class(ctx, name)
	if err != nil {
		return err
	}
	if _, ok := c.Type().EntryPoint(loaderRegister); ok {
		return registerImageLoader(ctx, c)
	}
	return nil
}

// layout returns the plan point mapped to the scene origin and the ground
// plane size in scene units.
func (b *Builder) layout(walls []plan.Wall) (origin plan.Vec3, width, depth float64) {
	bounds, ok := plan.Extent(walls)
	if !ok {
		return plan.Vec3{}, b.opts.Size * b.opts.ScaleX, b.opts.Size * b.opts.ScaleY
	}
	w := max(bounds.Width()+2*b.opts.Margin, b.opts.MinExtent)
	d := max(bounds.Depth()+2*b.opts.Margin, b.opts.MinExtent)
	// center the walls when the minimum extent widens the plane
	origin = plan.Vec3{
		X: bounds.MinX - (w-bounds.Width())/2,
		Y: bounds.MinY - (d-bounds.Depth())/2,
	}
	return origin, w * b.opts.ScaleX, d * b.opts.ScaleY
}

// Corners returns the ground plane corners in point order.
func Corners(width, depth float64) [PointArity]plan.Vec3 {
	return [PointArity]plan.Vec3{
		{X: 0, Y: 0},
		{X: 0, Y: depth},
		{X: width, Y: 0},
		{X: width, Y: depth},
	}
}

func (b *Builder) groundPlane(ctx context.Context, ground *GroundPlane, width, depth float64) error {
	if err := ground.SetCorners(ctx, Corners(width, depth)); err != nil {
		return err
	}
	if err := ground.Complete(ctx); err != nil {
		return err
	}
	return ground.Draw(ctx)
}

// Transform maps a plan point to scene coordinates.
func (b *Builder) Transform(origin, p plan.Vec3) plan.Vec3 {
	return plan.Vec3{
		X: (p.X - origin.X) * b.opts.ScaleX,
		Y: (p.Y - origin.Y) * b.opts.ScaleY,
		Z: p.Z * b.opts.ScaleZ,
	}
}

func (b *Builder) wall(ctx context.Context, c *classes, ground *GroundPlane, origin plan.Vec3, w plan.Wall) (*WallElement, error) {
	geom := b.opts.Converter.Convert(w)
	el, err := c.wall.NewWall(ctx)
	if err != nil {
		return nil, err
	}
	if err := el.SetContainer(ctx, ground); err != nil {
		return nil, err
	}
	if err := el.SetThickness(ctx, w.Thickness*b.opts.ScaleX); err != nil {
		return nil, err
	}
	if err := el.SetHeight(ctx, w.Height*b.opts.ScaleZ); err != nil {
		return nil, err
	}
	var pts [PointArity]plan.Vec3
	for i, p := range geom.Points {
		pts[i] = b.Transform(origin, p)
	}
	if err := el.SetPoints(ctx, pts); err != nil {
		return nil, err
	}
	if err := el.SetColor(ctx, geom.Color, geom.Texture, c.color); err != nil {
		return nil, err
	}
	if err := el.SetThermal(ctx, b.opts.UValue, b.opts.HeatCapacity); err != nil {
		return nil, err
	}
	if err := el.Complete(ctx); err != nil {
		return nil, err
	}
	if err := el.Draw(ctx); err != nil {
		return nil, err
	}
	return el, nil
}

// camera returns a pose above the front edge looking at the plane center.
func (b *Builder) camera(width, depth float64) (location, direction plan.Vec3) {
	span := max(width, depth)
	center := plan.Vec3{X: width / 2, Y: depth / 2}
	location = plan.Vec3{X: center.X, Y: center.Y - 1.5*span, Z: span}
	return location, normalize(plan.Vec3{
		X: center.X - location.X,
		Y: center.Y - location.Y,
		Z: center.Z - location.Z,
	})
}

func normalize(v plan.Vec3) plan.Vec3 {
	n := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if n == 0 {
		return plan.Vec3{Y: 1}
	}
	return plan.Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

func planWalls(p *plan.Plan) int {
	if p == nil {
		return 0
	}
	return len(p.Walls)
}

func kindOf(err error) errors.Kind {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return errors.KindInvocation
}

func stepError(step string, err error) error {
	return errors.New(errors.PhaseBuild, kindOf(err)).
		Detail("%s", step).
		Cause(err).
		Build()
}
