package scene

import (
	"context"
	"fmt"
	"math"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Member names of the foreign scene model. Nothing outside this file looks
// members up by name.
const (
	fieldPoints          = "points"
	fieldFirstPoint      = "firstPointInserted"
	fieldDrawCompleted   = "drawCompleted"
	fieldAnnotationScale = "annotationScale"
	fieldCameraLocation  = "cameraLocation"
	fieldCameraDirection = "cameraDirection"
	staticInstance       = "instance"
	loaderRegister       = "registerLoader"
)

var (
	vecSig   = typename.Signature(typename.Vector3)
	partSig  = typename.Signature(typename.HousePart)
	colorSig = typename.Signature(typename.ColorRGBA)
)

// PointArity is the number of points of a completed element.
const PointArity = 4

// classes holds the member handles of one registry, looked up once.
type classes struct {
	scene      *sceneClass
	foundation *partClass
	wall       *partClass
	vector     *vectorClass
	color      *colorClass
}

func bind(ctx context.Context, f *foreign.Factory) (*classes, error) {
	var c classes
	var err error
	if c.vector, err = bindVector(ctx, f); err != nil {
		return nil, err
	}
	if c.color, err = bindColor(ctx, f); err != nil {
		return nil, err
	}
	if c.scene, err = bindScene(ctx, f); err != nil {
		return nil, err
	}
	if c.foundation, err = bindPart(ctx, f, typename.Foundation, c.vector); err != nil {
		return nil, err
	}
	if c.wall, err = bindPart(ctx, f, typename.Wall, c.vector); err != nil {
		return nil, err
	}
	return &c, nil
}

type vectorClass struct {
	ctor    *foreign.Constructor
	isValid *foreign.Method
}

func bindVector(ctx context.Context, f *foreign.Factory) (*vectorClass, error) {
	c, err := f.Class(ctx, typename.Vector3)
	if err != nil {
		return nil, err
	}
	v := &vectorClass{}
	if v.ctor, err = c.Constructor("(DDD)V"); err != nil {
		return nil, err
	}
	// older engines lack the check unless it was injected
	v.isValid, _ = c.Method("isValid", "(DDD)Z")
	return v, nil
}

// New creates a vector after checking its components.
func (v *vectorClass) New(ctx context.Context, p plan.Vec3) (*foreign.Object, error) {
	valid := !anyNonFinite(p.X, p.Y, p.Z)
	if v.isValid != nil {
		res, err := v.isValid.Invoke(ctx, nil, p.X, p.Y, p.Z)
		if err != nil {
			return nil, err
		}
		valid = res == true
	}
	if !valid {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidData).
			Type(typename.Vector3).
			Value(p).
			Detail("point (%g, %g, %g) is not finite", p.X, p.Y, p.Z).
			Build()
	}
	return v.ctor.New(ctx, p.X, p.Y, p.Z)
}

func anyNonFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

type colorClass struct {
	ctor *foreign.Constructor
}

func bindColor(ctx context.Context, f *foreign.Factory) (*colorClass, error) {
	c, err := f.Class(ctx, typename.ColorRGBA)
	if err != nil {
		return nil, err
	}
	ctor, err := c.Constructor("(FFFF)V")
	if err != nil {
		return nil, err
	}
	return &colorClass{ctor: ctor}, nil
}

// New creates a color from a packed 0xRRGGBB value.
func (c *colorClass) New(ctx context.Context, packed uint32) (*foreign.Object, error) {
	r, g, b, a := plan.RGBA(packed)
	return c.ctor.New(ctx, r, g, b, a)
}

type sceneClass struct {
	class    *foreign.Class
	ctor     *foreign.Constructor
	instance *foreign.Static
	add      *foreign.Method

	annotationScale *foreign.Field
	cameraLocation  *foreign.Field
	cameraDirection *foreign.Field

	// optional mutators
	setCameraLocation  *foreign.Method
	setCameraDirection *foreign.Method
	setTextureMode     *foreign.Method
	textureMode        *foreign.Class
}

func bindScene(ctx context.Context, f *foreign.Factory) (*sceneClass, error) {
	c, err := f.Class(ctx, typename.Scene)
	if err != nil {
		return nil, err
	}
	s := &sceneClass{class: c}
	if s.ctor, err = c.Constructor("()V"); err != nil {
		return nil, err
	}
	if s.add, err = c.Method("add", "("+partSig+"Z)V"); err != nil {
		return nil, err
	}
	if s.annotationScale, err = c.Field(fieldAnnotationScale); err != nil {
		return nil, err
	}
	if s.cameraLocation, err = c.Field(fieldCameraLocation); err != nil {
		return nil, err
	}
	if s.cameraDirection, err = c.Field(fieldCameraDirection); err != nil {
		return nil, err
	}
	s.instance, _ = c.Static(staticInstance)
	s.setCameraLocation, _ = c.Method("setCameraLocation", "("+vecSig+")V")
	s.setCameraDirection, _ = c.Method("setCameraDirection", "("+vecSig+")V")
	if mode, err := c.Field("textureMode"); err == nil {
		if s.textureMode, err = f.Class(ctx, mode.Decl().ClassName()); err == nil {
			s.setTextureMode, _ = c.Method("setTextureMode", "("+mode.Decl().Class+")V")
		}
	}
	return s, nil
}

// SceneRoot is the exported scene.
type SceneRoot struct {
	c   *sceneClass
	obj *foreign.Object
}

func (c *sceneClass) New(ctx context.Context) (*SceneRoot, error) {
	obj, err := c.ctor.New(ctx)
	if err != nil {
		return nil, err
	}
	return &SceneRoot{c: c, obj: obj}, nil
}

// Object returns the foreign scene object.
func (s *SceneRoot) Object() *foreign.Object { return s.obj }

// InstallSingleton makes the scene the process-wide current scene unless
// one is installed. It reports whether this scene was installed.
func (s *SceneRoot) InstallSingleton() (bool, error) {
	if s.c.instance == nil {
		return false, errors.FieldMissing(errors.PhaseBuild, typename.Scene, staticInstance)
	}
	return s.c.instance.SetIfAbsent(s.obj)
}

// SetAnnotationScale assigns the display scale field directly.
func (s *SceneRoot) SetAnnotationScale(v float64) error {
	return s.c.annotationScale.Set(s.obj, v)
}

// SetTextureMode selects a texture mode constant when the scene supports
// texture modes. It reports whether the mode was set.
func (s *SceneRoot) SetTextureMode(ctx context.Context, mode string) (bool, error) {
	if s.c.setTextureMode == nil {
		return false, nil
	}
	constant, err := s.c.textureMode.Constant(mode)
	if err != nil {
		return false, err
	}
	_, err = s.c.setTextureMode.Invoke(ctx, s.obj, constant)
	return err == nil, err
}

// Add attaches an element without triggering a redraw.
func (s *SceneRoot) Add(ctx context.Context, part *foreign.Object) error {
	_, err := s.c.add.Invoke(ctx, s.obj, part, false)
	return err
}

// SetCamera writes the camera pose through the mutators when the scene has
// them, and always through direct field assignment. It reports whether the
// mutators were used.
func (s *SceneRoot) SetCamera(ctx context.Context, location, direction *foreign.Object) (bool, error) {
	mutators := s.c.setCameraLocation != nil && s.c.setCameraDirection != nil
	if mutators {
		if _, err := s.c.setCameraLocation.Invoke(ctx, s.obj, location); err != nil {
			return false, err
		}
		if _, err := s.c.setCameraDirection.Invoke(ctx, s.obj, direction); err != nil {
			return false, err
		}
	}
	if err := s.c.cameraLocation.Set(s.obj, location); err != nil {
		return mutators, err
	}
	return mutators, s.c.cameraDirection.Set(s.obj, direction)
}

type partClass struct {
	name   string
	ctor   *foreign.Constructor
	vector *vectorClass

	setContainer     *foreign.Method
	setHeight        *foreign.Method
	setColor         *foreign.Method
	setUValue        *foreign.Method
	setHeatCapacity  *foreign.Method
	setTextureType   *foreign.Method
	complete         *foreign.Method
	draw             *foreign.Method
	updateEditShapes *foreign.Method
	setThickness     *foreign.Method

	points     *foreign.Field
	firstPoint *foreign.Field
}

func bindPart(ctx context.Context, f *foreign.Factory, name string, vector *vectorClass) (*partClass, error) {
	c, err := f.Class(ctx, name)
	if err != nil {
		return nil, err
	}
	p := &partClass{name: name, vector: vector}
	if p.ctor, err = c.Constructor("()V"); err != nil {
		return nil, err
	}
	required := []struct {
		dst       **foreign.Method
		name, sig string
	}{
		{&p.setContainer, "setContainer", "(" + partSig + ")V"},
		{&p.setHeight, "setHeight", "(D)V"},
		{&p.setColor, "setColor", "(" + colorSig + ")V"},
		{&p.setUValue, "setUValue", "(D)V"},
		{&p.setHeatCapacity, "setVolumetricHeatCapacity", "(D)V"},
		{&p.setTextureType, "setTextureType", "(I)V"},
		{&p.complete, "complete", "()V"},
		{&p.draw, "draw", "()V"},
	}
	for _, m := range required {
		if *m.dst, err = c.Method(m.name, m.sig); err != nil {
			return nil, err
		}
	}
	p.updateEditShapes, _ = c.Method("updateEditShapes", "()V")
	p.setThickness, _ = c.Method("setThickness", "(D)V")

	if p.points, err = c.Field(fieldPoints); err != nil {
		return nil, err
	}
	if p.firstPoint, err = c.Field(fieldFirstPoint); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *partClass) newElement(ctx context.Context) (*element, error) {
	obj, err := c.ctor.New(ctx)
	if err != nil {
		return nil, err
	}
	return &element{c: c, obj: obj}, nil
}

// element carries the operations shared by ground planes and walls.
type element struct {
	c   *partClass
	obj *foreign.Object
}

func (e *element) Object() *foreign.Object { return e.obj }

// SetPoints replaces the point list with vectors in the given order.
func (e *element) SetPoints(ctx context.Context, pts [PointArity]plan.Vec3) error {
	list, err := e.list()
	if err != nil {
		return err
	}
	list.Clear()
	for _, p := range pts {
		v, err := e.c.vector.New(ctx, p)
		if err != nil {
			return err
		}
		if err := list.Append(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *element) list() (*foreign.Object, error) {
	v, err := e.c.points.Get(e.obj)
	if err != nil {
		return nil, err
	}
	list, ok := v.(*foreign.Object)
	if !ok || list == nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindNotInitialized).
			Type(e.c.name).
			Path(fieldPoints).
			Detail("point list missing").
			Build()
	}
	return list, nil
}

func (e *element) SetHeight(ctx context.Context, h float64) error {
	_, err := e.c.setHeight.Invoke(ctx, e.obj, h)
	return err
}

// Complete checks the point arity and marks the element complete.
func (e *element) Complete(ctx context.Context) error {
	if err := checkArity(e.obj); err != nil {
		return err
	}
	_, err := e.c.complete.Invoke(ctx, e.obj)
	return err
}

// Draw rebuilds the element geometry; it must follow Complete.
func (e *element) Draw(ctx context.Context) error {
	if _, err := e.c.draw.Invoke(ctx, e.obj); err != nil {
		return err
	}
	if e.c.updateEditShapes == nil {
		return nil
	}
	_, err := e.c.updateEditShapes.Invoke(ctx, e.obj)
	return err
}

// GroundPlane is the container the walls stand on.
type GroundPlane struct {
	element
}

func (c *partClass) NewGroundPlane(ctx context.Context) (*GroundPlane, error) {
	e, err := c.newElement(ctx)
	if err != nil {
		return nil, err
	}
	return &GroundPlane{element: *e}, nil
}

// SetCorners writes the corners and then raises the first-point flag.
func (g *GroundPlane) SetCorners(ctx context.Context, corners [PointArity]plan.Vec3) error {
	if err := g.SetPoints(ctx, corners); err != nil {
		return err
	}
	return g.c.firstPoint.Set(g.obj, true)
}

// WallElement is one wall.
type WallElement struct {
	element
}

func (c *partClass) NewWall(ctx context.Context) (*WallElement, error) {
	e, err := c.newElement(ctx)
	if err != nil {
		return nil, err
	}
	return &WallElement{element: *e}, nil
}

func (w *WallElement) SetContainer(ctx context.Context, g *GroundPlane) error {
	_, err := w.c.setContainer.Invoke(ctx, w.obj, g.obj)
	return err
}

func (w *WallElement) SetThickness(ctx context.Context, t float64) error {
	if w.c.setThickness == nil {
		return errors.MethodMissing(errors.PhaseBuild, w.c.name, "setThickness", "(D)V")
	}
	_, err := w.c.setThickness.Invoke(ctx, w.obj, t)
	return err
}

func (w *WallElement) SetColor(ctx context.Context, packed uint32, texture int32, colors *colorClass) error {
	color, err := colors.New(ctx, packed)
	if err != nil {
		return err
	}
	if _, err := w.c.setColor.Invoke(ctx, w.obj, color); err != nil {
		return err
	}
	_, err = w.c.setTextureType.Invoke(ctx, w.obj, texture)
	return err
}

// SetThermal assigns the U-value and the volumetric heat capacity.
func (w *WallElement) SetThermal(ctx context.Context, uValue, heatCapacity float64) error {
	if _, err := w.c.setUValue.Invoke(ctx, w.obj, uValue); err != nil {
		return err
	}
	_, err := w.c.setHeatCapacity.Invoke(ctx, w.obj, heatCapacity)
	return err
}

// checkArity verifies the fixed point count of an element.
func checkArity(obj *foreign.Object) error {
	v, err := obj.Get(fieldPoints)
	if err != nil {
		return err
	}
	list, _ := v.(*foreign.Object)
	n := 0
	if list != nil {
		n = list.Len()
	}
	if n != PointArity {
		return errors.Invariant(errors.PhaseBuild, obj.Class().Name(),
			fmt.Sprintf("element has %d points, want %d", n, PointArity))
	}
	return nil
}

// completed reports whether an element was marked complete.
func completed(obj *foreign.Object) bool {
	v, err := obj.Get(fieldDrawCompleted)
	return err == nil && v == true
}

// sceneParts returns the elements attached to a scene object.
func sceneParts(obj *foreign.Object) ([]any, error) {
	v, err := obj.Get("parts")
	if err != nil {
		return nil, err
	}
	list, ok := v.(*foreign.Object)
	if !ok || list == nil {
		return nil, nil
	}
	return list.Items(), nil
}

// registerImageLoader calls the compatibility image loader's registration
// entry point.
func registerImageLoader(ctx context.Context, c *foreign.Class) error {
	m, err := c.Method(loaderRegister, "()V")
	if err != nil {
		return err
	}
	_, err = m.Invoke(ctx, nil)
	return err
}
