package fixture

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Stream version UIDs of the generated types.
const (
	SceneUID      int64 = 1
	HousePartUID  int64 = 1
	WallUID       int64 = 1
	FoundationUID int64 = 1
	Vector3UID    int64 = 1
	ColorRGBAUID  int64 = 1
	StateUID      int64 = 1
)

// TextureMode is the enumeration carried by the scene.
const TextureMode = "org.concord.energy3d.scene.Scene$TextureMode"

var (
	void      = artifact.FuncType{}
	predicate = artifact.FuncType{Results: []api.ValueType{api.ValueTypeI32}}
)

func sig(name string) string {
	return typename.Signature(name)
}

func bind(name, s string, b artifact.Binding, target string) artifact.Method {
	return artifact.Method{Name: name, Sig: s, Binding: b, Target: target}
}

func vector3(opts Options) []byte {
	b := artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.Vector3,
		Ancestor:  typename.Object,
		Flags:     artifact.FlagSerializable,
		SerialUID: Vector3UID,
		Fields: []artifact.Field{
			{Name: "_x", Code: 'D'},
			{Name: "_y", Code: 'D'},
			{Name: "_z", Code: 'D'},
		},
		Constructors: []artifact.Constructor{
			{Sig: "()V"},
			{Sig: "(DDD)V", Assign: []string{"_x", "_y", "_z"}},
		},
		Methods: []artifact.Method{
			bind("getX", "()D", artifact.BindGet, "_x"),
			bind("getY", "()D", artifact.BindGet, "_y"),
			bind("getZ", "()D", artifact.BindGet, "_z"),
			bind("setX", "(D)V", artifact.BindSet, "_x"),
			bind("setY", "(D)V", artifact.BindSet, "_y"),
			bind("setZ", "(D)V", artifact.BindSet, "_z"),
		},
	})
	if opts.Current {
		body, _ := artifact.FiniteCheckBody(vec3Predicate)
		b.Func("isValid", vec3Predicate, body)
	}
	return b.Build()
}

var vec3Predicate = artifact.FuncType{
	Params:  []api.ValueType{api.ValueTypeF64, api.ValueTypeF64, api.ValueTypeF64},
	Results: []api.ValueType{api.ValueTypeI32},
}

func colorRGBA() []byte {
	return artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.ColorRGBA,
		Ancestor:  typename.Object,
		Flags:     artifact.FlagSerializable,
		SerialUID: ColorRGBAUID,
		Fields: []artifact.Field{
			{Name: "_r", Code: 'F'},
			{Name: "_g", Code: 'F'},
			{Name: "_b", Code: 'F'},
			{Name: "_a", Code: 'F'},
		},
		Constructors: []artifact.Constructor{
			{Sig: "()V"},
			{Sig: "(FFFF)V", Assign: []string{"_r", "_g", "_b", "_a"}},
		},
		Methods: []artifact.Method{
			bind("getRed", "()F", artifact.BindGet, "_r"),
			bind("getGreen", "()F", artifact.BindGet, "_g"),
			bind("getBlue", "()F", artifact.BindGet, "_b"),
			bind("getAlpha", "()F", artifact.BindGet, "_a"),
		},
	}).Build()
}

func materialState() []byte {
	return artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.MaterialState,
		Ancestor:  typename.RenderState,
		Flags:     artifact.FlagSerializable,
		SerialUID: StateUID,
		Fields: []artifact.Field{
			{Name: "colorMaterial", Code: 'L', Class: sig(typename.ColorMaterial), Init: artifact.InitNew},
		},
		Constructors: []artifact.Constructor{{Sig: "()V"}},
		Methods: []artifact.Method{
			bind("setColorMaterial", "("+sig(typename.ColorMaterial)+")V", artifact.BindSet, "colorMaterial"),
			bind("getColorMaterial", "()"+sig(typename.ColorMaterial), artifact.BindGet, "colorMaterial"),
		},
	}).Build()
}

func enumeration(name string, constants ...string) []byte {
	return artifact.NewBuilder(&artifact.Descriptor{
		Name:      name,
		Ancestor:  typename.Enum,
		Flags:     artifact.FlagSerializable | artifact.FlagEnum,
		Constants: constants,
	}).Build()
}

// state builds a rendering-state type. Legacy builds declare the universal
// base as ancestor although setEnabled binds to the root's field.
func state(name string, opts Options) []byte {
	ancestor := typename.Object
	if opts.Current {
		ancestor = typename.RenderState
	}
	return artifact.NewBuilder(&artifact.Descriptor{
		Name:         name,
		Ancestor:     ancestor,
		Flags:        artifact.FlagSerializable,
		SerialUID:    StateUID,
		Constructors: []artifact.Constructor{{Sig: "()V"}},
		Methods: []artifact.Method{
			bind("setEnabled", "(Z)V", artifact.BindSet, "enabled"),
		},
	}).Build()
}

func housePart() []byte {
	part := sig(typename.HousePart)
	list := sig(typename.ArrayList)
	b := artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.HousePart,
		Ancestor:  typename.Object,
		Flags:     artifact.FlagSerializable | artifact.FlagAbstract,
		SerialUID: HousePartUID,
		Fields: []artifact.Field{
			{Name: "color", Code: 'L', Class: sig(typename.ColorRGBA)},
			{Name: "container", Code: 'L', Class: part},
			{Name: "drawCompleted", Code: 'Z'},
			{Name: "firstPointInserted", Code: 'Z'},
			{Name: "height", Code: 'D'},
			{Name: "id", Code: 'J'},
			{Name: "points", Code: 'L', Class: list, Init: artifact.InitNew},
			{Name: "textureType", Code: 'I'},
			{Name: "uValue", Code: 'D'},
			{Name: "volumetricHeatCapacity", Code: 'D'},
			{Name: "editPoints", Code: 'L', Class: list, Init: artifact.InitNew, Transient: true},
		},
		Methods: []artifact.Method{
			bind("setContainer", "("+part+")V", artifact.BindSet, "container"),
			bind("getContainer", "()"+part, artifact.BindGet, "container"),
			bind("setHeight", "(D)V", artifact.BindSet, "height"),
			bind("getHeight", "()D", artifact.BindGet, "height"),
			bind("setColor", "("+sig(typename.ColorRGBA)+")V", artifact.BindSet, "color"),
			bind("setUValue", "(D)V", artifact.BindSet, "uValue"),
			bind("setVolumetricHeatCapacity", "(D)V", artifact.BindSet, "volumetricHeatCapacity"),
			bind("setTextureType", "(I)V", artifact.BindSet, "textureType"),
			bind("getPoints", "()"+list, artifact.BindGet, "points"),
			bind("complete", "()V", artifact.BindMark, "drawCompleted"),
			bind("isDrawCompleted", "()Z", artifact.BindGet, "drawCompleted"),
			bind("draw", "()V", artifact.BindExport, ""),
		},
	})
	b.Func("draw", void, artifact.NopBody(void))
	return b.Build()
}

func foundation() []byte {
	return artifact.NewBuilder(&artifact.Descriptor{
		Name:         typename.Foundation,
		Ancestor:     typename.HousePart,
		Flags:        artifact.FlagSerializable,
		SerialUID:    FoundationUID,
		Constructors: []artifact.Constructor{{Sig: "()V"}},
	}).Build()
}

func wall(opts Options) []byte {
	b := artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.Wall,
		Ancestor:  typename.HousePart,
		Flags:     artifact.FlagSerializable,
		SerialUID: WallUID,
		Fields: []artifact.Field{
			{Name: "wallThickness", Code: 'D'},
		},
		Constructors: []artifact.Constructor{{Sig: "()V"}},
		Methods: []artifact.Method{
			bind("setThickness", "(D)V", artifact.BindSet, "wallThickness"),
			bind("getThickness", "()D", artifact.BindGet, "wallThickness"),
		},
	})
	if opts.Current {
		b.Func("updateEditShapes", void, artifact.NopBody(void))
	}
	return b.Build()
}

// scene builds the scene root. Its redraw check asks the scene manager
// whether a display exists.
func scene(opts Options) []byte {
	vec := sig(typename.Vector3)
	methods := []artifact.Method{
		bind("add", "("+sig(typename.HousePart)+"Z)V", artifact.BindAppend, "parts"),
		bind("getParts", "()"+sig(typename.ArrayList), artifact.BindGet, "parts"),
		bind("setAnnotationScale", "(D)V", artifact.BindSet, "annotationScale"),
		bind("setTextureMode", "("+sig(TextureMode)+")V", artifact.BindSet, "textureMode"),
		bind("isRedrawAllowed", "()Z", artifact.BindExport, ""),
	}
	if !opts.OmitCameraSetters {
		methods = append(methods,
			bind("setCameraLocation", "("+vec+")V", artifact.BindSet, "cameraLocation"),
			bind("setCameraDirection", "("+vec+")V", artifact.BindSet, "cameraDirection"),
		)
	}

	b := artifact.NewBuilder(&artifact.Descriptor{
		Name:      typename.Scene,
		Ancestor:  typename.Object,
		Flags:     artifact.FlagSerializable,
		SerialUID: SceneUID,
		Fields: []artifact.Field{
			{Name: "annotationScale", Code: 'D'},
			{Name: "cameraDirection", Code: 'L', Class: vec},
			{Name: "cameraLocation", Code: 'L', Class: vec},
			{Name: "parts", Code: 'L', Class: sig(typename.ArrayList), Init: artifact.InitNew},
			{Name: "textureMode", Code: 'L', Class: sig(TextureMode), Init: artifact.InitNew},
		},
		Statics: []artifact.Field{
			{Name: "instance", Code: 'L', Class: sig(typename.Scene)},
		},
		Constructors: []artifact.Constructor{{Sig: "()V"}},
		Methods:      methods,
	})
	headless := b.Import(typename.SceneManager, "isHeadless", predicate)
	b.Func("isRedrawAllowed", predicate, artifact.NewBody().Call(headless).Eqz().End())
	return b.Build()
}
