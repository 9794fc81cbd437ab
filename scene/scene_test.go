package scene

import (
	"context"
	stderrors "errors"
	"math"
	"slices"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/internal/fixture"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/standin"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

func newFactory(t *testing.T, opts fixture.Options) *foreign.Factory {
	t.Helper()
	return newFactoryWith(t, opts, resolve.Options{})
}

func newFactoryWith(t *testing.T, opts fixture.Options, ropts resolve.Options) *foreign.Factory {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	if _, err := fixture.Write(root, opts); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	layout := locate.DefaultLayout()
	layout.WorkDir = root
	set, err := layout.Locate(root)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	ropts.RuntimeConfig = wazero.NewRuntimeConfigInterpreter()
	reg, err := resolve.New(ctx, set, ropts)
	if err != nil {
		t.Fatalf("resolve.New: %v", err)
	}
	t.Cleanup(func() { reg.Close(ctx) })
	return foreign.NewFactory(reg, nil)
}

func build(t *testing.T, f *foreign.Factory, p *plan.Plan) (*Builder, *Graph) {
	t.Helper()
	b := NewBuilder(f, DefaultOptions(), nil)
	g, err := b.Build(context.Background(), p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b, g
}

func enclosure(width, depth float64) *plan.Plan {
	wall := func(x0, y0, x1, y1 float64) plan.Wall {
		return plan.Wall{XStart: x0, YStart: y0, XEnd: x1, YEnd: y1, Thickness: 20, Height: 250, Color: 0xCC8844}
	}
	return &plan.Plan{
		Name: "enclosure",
		Walls: []plan.Wall{
			wall(0, 0, width, 0),
			wall(width, 0, width, depth),
			wall(width, depth, 0, depth),
			wall(0, depth, 0, 0),
		},
	}
}

func points(t *testing.T, obj *foreign.Object) []plan.Vec3 {
	t.Helper()
	v, err := obj.Get(fieldPoints)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	var out []plan.Vec3
	for _, it := range v.(*foreign.Object).Items() {
		vec := it.(*foreign.Object)
		out = append(out, plan.Vec3{X: getFloat(t, vec, "_x"), Y: getFloat(t, vec, "_y"), Z: getFloat(t, vec, "_z")})
	}
	return out
}

func getFloat(t *testing.T, obj *foreign.Object, name string) float64 {
	t.Helper()
	v, err := obj.Get(name)
	if err != nil {
		t.Fatalf("Get(%s): %v", name, err)
	}
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("%s is %T", name, v)
	}
	return f
}

func TestBuildEmptyPlan(t *testing.T) {
	for _, p := range []*plan.Plan{nil, {}, {Levels: []plan.Level{{Name: "Roof"}}, Walls: []plan.Wall{{XEnd: 100, Thickness: 10, Height: 10, Level: "Roof"}}}} {
		f := newFactory(t, fixture.Options{})
		b, g := build(t, f, p)
		if !g.DefaultWall || len(g.Walls) != 1 {
			t.Fatalf("default wall = %v, walls = %d", g.DefaultWall, len(g.Walls))
		}
		if n := g.Elements(); n != 2 {
			t.Errorf("Elements() = %d, want 2", n)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
		opts := b.Options()
		want := Corners(opts.Size*opts.ScaleX, opts.Size*opts.ScaleY)
		if got := points(t, g.GroundPlane); !slices.Equal(got, want[:]) {
			t.Errorf("ground plane = %v, want %v", got, want)
		}
	}
}

func TestBuildUndeclaredLevelsKeepAllWalls(t *testing.T) {
	p := enclosure(400, 300)
	p.Walls[3].Level = "Roof"
	_, g := build(t, newFactory(t, fixture.Options{}), p)
	if g.DefaultWall || len(g.Walls) != 4 {
		t.Errorf("default wall = %v, walls = %d", g.DefaultWall, len(g.Walls))
	}

	p.Levels = []plan.Level{{Name: "Roof"}}
	_, g = build(t, newFactory(t, fixture.Options{}), p)
	if len(g.Walls) != 3 {
		t.Errorf("declared roof level: walls = %d, want 3", len(g.Walls))
	}
}

func TestBuildPerimeter(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	b, g := build(t, f, enclosure(1200, 1000))
	if len(g.Walls) != 4 || g.DefaultWall {
		t.Fatalf("walls = %d, default = %v", len(g.Walls), g.DefaultWall)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	opts := b.Options()
	perimeter := 0.0
	for i, w := range g.Walls {
		pts := points(t, w)
		if len(pts) != PointArity {
			t.Fatalf("wall %d has %d points", i, len(pts))
		}
		// vertical rectangle: bottom and top share their plan position
		if pts[0].X != pts[1].X || pts[0].Y != pts[1].Y || pts[2].X != pts[3].X || pts[2].Y != pts[3].Y {
			t.Errorf("wall %d is not coplanar: %v", i, pts)
		}
		if pts[0].Z != 0 || pts[2].Z != 0 {
			t.Errorf("wall %d bottom above ground: %v", i, pts)
		}
		if h := 250 * opts.ScaleZ; pts[1].Z != h || pts[3].Z != h {
			t.Errorf("wall %d top = %v, want %v", i, pts[1].Z, h)
		}
		perimeter += math.Hypot(pts[2].X-pts[0].X, pts[2].Y-pts[0].Y)

		if got := getFloat(t, w, "wallThickness"); got != 20*opts.ScaleX {
			t.Errorf("thickness = %v", got)
		}
		if got := getFloat(t, w, "uValue"); got != DefaultUValue {
			t.Errorf("uValue = %v", got)
		}
		if got := getFloat(t, w, "volumetricHeatCapacity"); got != DefaultHeatCapacity {
			t.Errorf("heat capacity = %v", got)
		}
		container, _ := w.Get("container")
		if container != g.GroundPlane {
			t.Errorf("wall %d container = %v", i, container)
		}
	}

	source := 2.0 * (1200 + 1000)
	lo := source * min(opts.ScaleX, opts.ScaleY)
	hi := source * max(opts.ScaleX, opts.ScaleY)
	if perimeter < lo-1e-9 || perimeter > hi+1e-9 {
		t.Errorf("perimeter = %v, want within [%v, %v]", perimeter, lo, hi)
	}

	// walls sit inside the ground plane
	corners := points(t, g.GroundPlane)
	width, depth := corners[3].X, corners[3].Y
	for _, w := range g.Walls {
		for _, p := range points(t, w) {
			if p.X < 0 || p.X > width || p.Y < 0 || p.Y > depth {
				t.Errorf("point %v outside %vx%v", p, width, depth)
			}
		}
	}
	if want := (1200 + 2*DefaultMargin) * opts.ScaleX; math.Abs(width-want) > 1e-9 {
		t.Errorf("ground width = %v, want %v", width, want)
	}
}

func TestBuildMinExtent(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	p := &plan.Plan{Walls: []plan.Wall{{XStart: 500, YStart: 500, XEnd: 600, YEnd: 500, Thickness: 10, Height: 200}}}
	b, g := build(t, f, p)
	opts := b.Options()
	corners := points(t, g.GroundPlane)
	if got, want := corners[3].X, opts.MinExtent*opts.ScaleX; math.Abs(got-want) > 1e-9 {
		t.Errorf("width = %v, want %v", got, want)
	}
	if got, want := corners[3].Y, opts.MinExtent*opts.ScaleY; math.Abs(got-want) > 1e-9 {
		t.Errorf("depth = %v, want %v", got, want)
	}
	wall := points(t, g.Walls[0])
	mid := (wall[0].X + wall[2].X) / 2
	if math.Abs(mid-corners[3].X/2) > 1e-9 {
		t.Errorf("wall not centered: mid %v, width %v", mid, corners[3].X)
	}
}

func TestBuildCamera(t *testing.T) {
	tests := []struct {
		name     string
		opts     fixture.Options
		mutators bool
	}{
		{"with mutators", fixture.Options{}, true},
		{"fields only", fixture.Options{OmitCameraSetters: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFactory(t, tt.opts)
			_, g := build(t, f, enclosure(1200, 1000))
			if g.CameraMutators != tt.mutators {
				t.Errorf("CameraMutators = %v, want %v", g.CameraMutators, tt.mutators)
			}
			loc, _ := g.Root.Get(fieldCameraLocation)
			dir, _ := g.Root.Get(fieldCameraDirection)
			l, ok1 := loc.(*foreign.Object)
			d, ok2 := dir.(*foreign.Object)
			if !ok1 || !ok2 || l == nil || d == nil {
				t.Fatalf("camera not assigned: %v %v", loc, dir)
			}
			x, y, z := getFloat(t, d, "_x"), getFloat(t, d, "_y"), getFloat(t, d, "_z")
			if n := math.Sqrt(x*x + y*y + z*z); math.Abs(n-1) > 1e-9 {
				t.Errorf("direction length = %v", n)
			}
			if getFloat(t, l, "_z") <= 0 {
				t.Error("camera below ground")
			}
		})
	}
}

func TestBuildSceneState(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	_, g := build(t, f, enclosure(400, 300))
	if got := getFloat(t, g.Root, fieldAnnotationScale); got != DefaultAnnotationScale {
		t.Errorf("annotation scale = %v", got)
	}
	if !g.Singleton {
		t.Error("first scene not installed as singleton")
	}
	if g.Precached != len(DefaultPrecache) || len(g.PrecacheFailures) != 0 {
		t.Errorf("precached %d, failures %v", g.Precached, g.PrecacheFailures)
	}

	_, second := build(t, f, enclosure(400, 300))
	if second.Singleton {
		t.Error("second scene replaced the singleton")
	}
	c, err := f.Class(context.Background(), typename.Scene)
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Static(staticInstance)
	if err != nil {
		t.Fatal(err)
	}
	if s.Get() != g.Root {
		t.Error("singleton is not the first scene")
	}
}

func TestBuildTextureMode(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	p := enclosure(400, 300)
	p.Walls[0].Texture = "brick"
	_, g := build(t, f, p)
	mode, _ := g.Root.Get("textureMode")
	if m, ok := mode.(*foreign.Object); !ok || m.Name() != "Full" {
		t.Errorf("texture mode = %v", mode)
	}
	if v, _ := g.Walls[0].Get("textureType"); v != plan.TextureBrick {
		t.Errorf("texture type = %v", v)
	}
}

func TestBuildPrecacheDegrades(t *testing.T) {
	f := newFactory(t, fixture.Options{OmitTypes: []string{typename.LightState}})
	_, g := build(t, f, enclosure(400, 300))
	if !slices.Contains(g.PrecacheFailures, typename.LightState) {
		t.Errorf("failures = %v", g.PrecacheFailures)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildPrecacheSurvivesPanickingLoader(t *testing.T) {
	hosts := standin.NewRegistry()
	for _, d := range append(standin.Builtins(), standin.Compat()...) {
		if d.Name() == typename.AWTImageLoader {
			continue
		}
		if err := hosts.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	loader := &standin.Definition{
		Desc: &artifact.Descriptor{
			Name:     typename.AWTImageLoader,
			Ancestor: typename.Object,
			Methods:  []artifact.Method{{Name: loaderRegister, Sig: "()V", Binding: artifact.BindExport}},
		},
		Funcs: []standin.Func{{
			Name: loaderRegister,
			Fn: api.GoModuleFunc(func(context.Context, api.Module, []uint64) {
				panic("no display")
			}),
		}},
	}
	if err := hosts.Register(loader); err != nil {
		t.Fatal(err)
	}

	f := newFactoryWith(t, fixture.Options{}, resolve.Options{Hosts: hosts})
	_, g := build(t, f, &plan.Plan{})
	if !slices.Contains(g.PrecacheFailures, typename.AWTImageLoader) {
		t.Errorf("failures = %v", g.PrecacheFailures)
	}
	if g.Precached != len(DefaultPrecache)-1 {
		t.Errorf("precached %d", g.Precached)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildRejectsNonFinite(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	p := enclosure(400, 300)
	p.Walls = append(p.Walls, plan.Wall{XStart: 0, XEnd: math.Inf(1), Thickness: 10, Height: 10})
	_, err := NewBuilder(f, DefaultOptions(), nil).Build(context.Background(), p)
	if !stderrors.Is(err, errors.BuildError) {
		t.Fatalf("err = %v, want build error", err)
	}
}

func TestBuildMissingScene(t *testing.T) {
	f := newFactory(t, fixture.Options{OmitTypes: []string{typename.Scene}})
	_, err := NewBuilder(f, DefaultOptions(), nil).Build(context.Background(), enclosure(400, 300))
	if !stderrors.Is(err, errors.BuildError) {
		t.Fatalf("err = %v, want build error", err)
	}
}

func TestValidate(t *testing.T) {
	f := newFactory(t, fixture.Options{})
	_, g := build(t, f, enclosure(400, 300))

	list, _ := g.Walls[0].Get(fieldPoints)
	list.(*foreign.Object).Clear()
	err := g.Validate()
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvariant {
		t.Errorf("Validate = %v, want invariant", err)
	}

	if err := (&Graph{}).Validate(); !stderrors.Is(err, errors.BuildError) {
		t.Errorf("empty graph: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want plan.Vec3
	}{
		{plan.Vec3{X: 3, Y: 4}, plan.Vec3{X: 0.6, Y: 0.8}},
		{plan.Vec3{Z: -2}, plan.Vec3{Z: -1}},
		{plan.Vec3{}, plan.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		got := normalize(tt.in)
		if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 || math.Abs(got.Z-tt.want.Z) > 1e-12 {
			t.Errorf("normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
