package foreign

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/internal/fixture"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

func newFactory(t *testing.T) *Factory {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	if _, err := fixture.Write(root, fixture.Options{}); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	layout := locate.DefaultLayout()
	layout.WorkDir = root
	set, err := layout.Locate(root)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	reg, err := resolve.New(ctx, set, resolve.Options{RuntimeConfig: wazero.NewRuntimeConfigInterpreter()})
	if err != nil {
		t.Fatalf("resolve.New: %v", err)
	}
	t.Cleanup(func() { reg.Close(ctx) })
	return NewFactory(reg, nil)
}

func mustClass(t *testing.T, f *Factory, name string) *Class {
	t.Helper()
	c, err := f.Class(context.Background(), name)
	if err != nil {
		t.Fatalf("Class(%s): %v", name, err)
	}
	return c
}

func mustMethod(t *testing.T, c *Class, name, sig string) *Method {
	t.Helper()
	m, err := c.Method(name, sig)
	if err != nil {
		t.Fatalf("Method(%s%s): %v", name, sig, err)
	}
	return m
}

func TestClassIdentity(t *testing.T) {
	f := newFactory(t)
	a := mustClass(t, f, typename.Wall)
	b := mustClass(t, f, typename.Wall)
	if a != b {
		t.Error("class handles must be shared")
	}
	if a.Ancestor() != mustClass(t, f, typename.HousePart) {
		t.Error("ancestor handle differs")
	}
	if _, err := f.Class(context.Background(), "org.concord.energy3d.model.Roof"); !stderrors.Is(err, errors.BuildError) {
		t.Errorf("unknown class: %v", err)
	}
}

func TestConstructorInitialisesFields(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)

	wall, err := f.New(ctx, typename.Wall)
	if err != nil {
		t.Fatalf("New(Wall): %v", err)
	}
	tests := []struct {
		field string
		want  any
	}{
		{"height", float64(0)},
		{"id", int64(0)},
		{"drawCompleted", false},
		{"textureType", int32(0)},
		{"wallThickness", float64(0)},
	}
	for _, tt := range tests {
		got, err := wall.Get(tt.field)
		if err != nil || got != tt.want {
			t.Errorf("%s = %#v, %v; want %#v", tt.field, got, err, tt.want)
		}
	}

	points, _ := wall.Get("points")
	list, ok := points.(*Object)
	if !ok || !list.Class().IsList() || list.Len() != 0 {
		t.Fatalf("points = %#v", points)
	}
	edit, _ := wall.Get("editPoints")
	if edit == points {
		t.Error("list fields must get distinct instances")
	}

	material, err := f.New(ctx, typename.MaterialState)
	if err != nil {
		t.Fatalf("New(MaterialState): %v", err)
	}
	cm, _ := material.Get("colorMaterial")
	none, err := mustClass(t, f, typename.ColorMaterial).Constant("None")
	if err != nil {
		t.Fatal(err)
	}
	if cm != none {
		t.Errorf("colorMaterial = %v, want the shared None constant", cm)
	}
}

func TestConstructorAssignsArguments(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	vec := mustClass(t, f, typename.Vector3)

	ctor, err := vec.Constructor("(DDD)V")
	if err != nil {
		t.Fatal(err)
	}
	v, err := ctor.New(ctx, 1, float32(2.5), 3.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for field, want := range map[string]float64{"_x": 1, "_y": 2.5, "_z": 3} {
		if got, _ := v.Get(field); got != want {
			t.Errorf("%s = %v, want %v", field, got, want)
		}
	}

	if _, err := ctor.New(ctx, 1.0); err == nil {
		t.Error("wrong arity accepted")
	}
	if _, err := ctor.New(ctx, "x", 0.0, 0.0); !stderrors.Is(err, errors.BuildError) {
		t.Errorf("string argument: %v", err)
	}
	if _, err := vec.Constructor("(I)V"); err == nil {
		t.Error("undeclared constructor found")
	}

	part := mustClass(t, f, typename.HousePart)
	if ctor, err := part.Constructor("()V"); err == nil {
		if _, err := ctor.New(ctx); err == nil {
			t.Error("abstract class instantiated")
		}
	}
}

func TestFieldBoundMethods(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	wallClass := mustClass(t, f, typename.Wall)
	wall, err := f.New(ctx, typename.Wall)
	if err != nil {
		t.Fatal(err)
	}
	foundation, err := f.New(ctx, typename.Foundation)
	if err != nil {
		t.Fatal(err)
	}
	vec, err := f.New(ctx, typename.Vector3)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mustMethod(t, wallClass, "setHeight", "(D)V").Invoke(ctx, wall, 15); err != nil {
		t.Fatal(err)
	}
	h, err := mustMethod(t, wallClass, "getHeight", "()D").Invoke(ctx, wall)
	if err != nil || h != 15.0 {
		t.Errorf("getHeight = %v, %v", h, err)
	}

	setContainer := mustMethod(t, wallClass, "setContainer", "("+typename.Signature(typename.HousePart)+")V")
	if _, err := setContainer.Invoke(ctx, wall, foundation); err != nil {
		t.Errorf("setContainer(foundation): %v", err)
	}
	_, err = setContainer.Invoke(ctx, wall, vec)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindTypeMismatch {
		t.Errorf("setContainer(vector) = %v", err)
	}

	if _, err := mustMethod(t, wallClass, "complete", "()V").Invoke(ctx, wall); err != nil {
		t.Fatal(err)
	}
	if done, _ := wall.Get("drawCompleted"); done != true {
		t.Error("complete must mark drawCompleted")
	}

	if _, err := mustMethod(t, wallClass, "setTextureType", "(I)V").Invoke(ctx, wall, 1<<40); err == nil {
		t.Error("out of range int accepted")
	}
	if _, err := mustMethod(t, wallClass, "setHeight", "(D)V").Invoke(ctx, vec, 1.0); err == nil {
		t.Error("method invoked on an unrelated receiver")
	}

	sceneClass := mustClass(t, f, typename.Scene)
	scene, err := f.New(ctx, typename.Scene)
	if err != nil {
		t.Fatal(err)
	}
	add := mustMethod(t, sceneClass, "add", "("+typename.Signature(typename.HousePart)+"Z)V")
	for _, p := range []*Object{foundation, wall} {
		if _, err := add.Invoke(ctx, scene, p, false); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	parts, err := mustMethod(t, sceneClass, "getParts", "()"+typename.Signature(typename.ArrayList)).Invoke(ctx, scene)
	if err != nil {
		t.Fatal(err)
	}
	items := parts.(*Object).Items()
	if len(items) != 2 || items[0] != foundation || items[1] != wall {
		t.Errorf("parts = %v", items)
	}
}

func TestEntryPointMethods(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)

	scene := mustClass(t, f, typename.Scene)
	allowed, err := mustMethod(t, scene, "isRedrawAllowed", "()Z").Invoke(ctx, nil)
	if err != nil || allowed != false {
		t.Errorf("isRedrawAllowed = %v, %v", allowed, err)
	}

	wall := mustClass(t, f, typename.Wall)
	if _, err := mustMethod(t, wall, "draw", "()V").Invoke(ctx, nil); err != nil {
		t.Errorf("inherited draw: %v", err)
	}
	update := mustMethod(t, wall, "updateEditShapes", "()V")
	if update.Owner() != wall || update.Binding().String() != "export" {
		t.Errorf("updateEditShapes bound to %s/%s", update.Owner().Name(), update.Binding())
	}
	if _, err := update.Invoke(ctx, nil); err != nil {
		t.Errorf("updateEditShapes: %v", err)
	}

	vec := mustClass(t, f, typename.Vector3)
	isValid := mustMethod(t, vec, "isValid", "(DDD)Z")
	tests := []struct {
		x, y, z float64
		want    bool
	}{
		{1, 2, 3, true},
		{0, math.NaN(), 0, false},
		{math.Inf(1), 0, 0, false},
		{0, 0, math.Inf(-1), false},
	}
	for _, tt := range tests {
		got, err := isValid.Invoke(ctx, nil, tt.x, tt.y, tt.z)
		if err != nil || got != tt.want {
			t.Errorf("isValid(%v,%v,%v) = %v, %v", tt.x, tt.y, tt.z, got, err)
		}
	}

	if _, err := wall.Method("updateEditShapes", "(I)V"); !stderrors.Is(err, errors.BuildError) {
		t.Errorf("wrong signature: %v", err)
	}
	if _, err := wall.Method("rebuild", "()V"); err == nil {
		t.Error("missing method found")
	}
}

func TestStatics(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	sceneClass := mustClass(t, f, typename.Scene)
	instance, err := sceneClass.Static("instance")
	if err != nil {
		t.Fatal(err)
	}
	if instance.Get() != nil {
		t.Fatal("singleton must start empty")
	}
	first, _ := f.New(ctx, typename.Scene)
	second, _ := f.New(ctx, typename.Scene)

	if ok, err := instance.SetIfAbsent(first); !ok || err != nil {
		t.Errorf("first install = %v, %v", ok, err)
	}
	if ok, _ := instance.SetIfAbsent(second); ok {
		t.Error("second install replaced the singleton")
	}
	if instance.Get() != first {
		t.Error("singleton changed")
	}
	wall, _ := f.New(ctx, typename.Wall)
	if err := instance.Set(wall); err == nil {
		t.Error("wall stored in the scene singleton")
	}
}

func TestStreamDescriptors(t *testing.T) {
	f := newFactory(t)

	wall := mustClass(t, f, typename.Wall).StreamDesc()
	if wall == nil || wall.Super == nil || wall.Super.Name != typename.HousePart {
		t.Fatalf("wall descriptor = %+v", wall)
	}
	if wall.Super.Super != nil {
		t.Error("non-serializable root must end the descriptor chain")
	}
	for _, fd := range wall.Super.Fields {
		if fd.Name == "editPoints" {
			t.Error("transient field streamed")
		}
	}

	cm := mustClass(t, f, typename.ColorMaterial).StreamDesc()
	if !cm.IsEnum() || cm.SerialUID != 0 || cm.Super == nil || cm.Super.Name != typename.Enum {
		t.Errorf("enum descriptor = %+v", cm)
	}

	list := mustClass(t, f, typename.ArrayList).StreamDesc()
	if list.Flags != objstream.SCSerializable|objstream.SCWriteMethod {
		t.Errorf("list flags = %#x", list.Flags)
	}

	if mustClass(t, f, typename.SceneManager).StreamDesc() != nil {
		t.Error("scene manager is not serializable")
	}
}

func TestObjectsStream(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	wall, _ := f.New(ctx, typename.Wall)
	vecCtor, _ := mustClass(t, f, typename.Vector3).Constructor("(DDD)V")
	points, _ := wall.Get("points")
	p, _ := vecCtor.New(ctx, 1.0, 2.0, 3.0)
	if err := points.(*Object).Append(p, p); err != nil {
		t.Fatal(err)
	}
	if err := wall.Set("height", 12.5); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	enc, _ := objstream.NewEncoder(&buf)
	if err := enc.Encode(wall); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := objstream.NewDecoder(&buf)
	if err != nil {
		t.Fatal(err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := v.(*objstream.Instance)
	if h, _ := got.Field("height"); h != 12.5 {
		t.Errorf("height = %v", h)
	}
	pts, _ := got.Field("points")
	items := pts.(*objstream.Instance).Items
	if len(items) != 2 || items[0] != items[1] {
		t.Errorf("points = %v", items)
	}
	if size, _ := pts.(*objstream.Instance).Field("size"); size != int32(2) {
		t.Errorf("size = %v", size)
	}
}

func TestCoercePrimitive(t *testing.T) {
	tests := []struct {
		code byte
		in   any
		want any
		ok   bool
	}{
		{'D', 3, 3.0, true},
		{'D', float32(0.5), 0.5, true},
		{'F', 2.0, float32(2), true},
		{'I', int64(7), int32(7), true},
		{'I', 7.0, nil, false},
		{'B', 200, nil, false},
		{'C', uint16('a'), uint16('a'), true},
		{'C', -1, nil, false},
		{'J', uint32(5), int64(5), true},
		{'Z', true, true, true},
		{'Z', 1, nil, false},
	}
	for _, tt := range tests {
		got, err := coercePrimitive(tt.code, tt.in, nil)
		if (err == nil) != tt.ok {
			t.Errorf("coerce(%c, %#v) error = %v", tt.code, tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("coerce(%c, %#v) = %#v, want %#v", tt.code, tt.in, got, tt.want)
		}
	}
}
