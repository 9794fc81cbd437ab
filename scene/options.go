package scene

import (
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Default conversion parameters.
const (
	DefaultAnnotationScale = 0.2
	DefaultScale           = 0.05
	// DefaultDepthCorrection compensates the slight stretch of the target
	// along its depth axis.
	DefaultDepthCorrection = 0.9925
	DefaultMargin          = 100.0
	DefaultMinExtent       = 400.0
	DefaultSize            = 1000.0
	DefaultUValue          = 0.28
	DefaultHeatCapacity    = 0.5
)

// DefaultPrecache lists the types loaded before building. The state types
// are loaded in this order so their shared ancestor is in place first.
var DefaultPrecache = []string{
	typename.RenderState,
	typename.MaterialState,
	typename.ColorMaterial,
	typename.TextureState,
	typename.BlendState,
	typename.LightState,
	typename.AWTImageLoader,
}

// Options configure a Builder. Lengths are in plan units unless noted.
type Options struct {
	AnnotationScale float64 `mapstructure:"annotation_scale"`
	// ScaleX, ScaleY and ScaleZ convert plan units to scene units.
	ScaleX float64 `mapstructure:"scale_x"`
	ScaleY float64 `mapstructure:"scale_y"`
	ScaleZ float64 `mapstructure:"scale_z"`
	// Margin surrounds the walls on the ground plane.
	Margin float64 `mapstructure:"margin"`
	// MinExtent is the smallest ground plane side.
	MinExtent float64 `mapstructure:"min_extent"`
	// Size is the ground plane side of an empty plan.
	Size float64 `mapstructure:"size"`
	// DefaultWall stands on the ground plane of an empty plan.
	DefaultWall plan.Wall `mapstructure:"-"`
	// UValue and HeatCapacity are assigned to every wall.
	UValue       float64 `mapstructure:"u_value"`
	HeatCapacity float64 `mapstructure:"heat_capacity"`
	// Precache types are loaded first; failures are logged.
	Precache []string `mapstructure:"precache"`

	Classifier plan.Classifier `mapstructure:"-"`
	Converter  plan.Converter  `mapstructure:"-"`
}

// DefaultOptions returns the standard conversion parameters.
func DefaultOptions() Options {
	return Options{
		AnnotationScale: DefaultAnnotationScale,
		ScaleX:          DefaultScale,
		ScaleY:          DefaultScale * DefaultDepthCorrection,
		ScaleZ:          DefaultScale,
		Margin:          DefaultMargin,
		MinExtent:       DefaultMinExtent,
		Size:            DefaultSize,
		DefaultWall: plan.Wall{
			XStart:    DefaultMargin,
			YStart:    DefaultMargin,
			XEnd:      DefaultSize - DefaultMargin,
			YEnd:      DefaultMargin,
			Thickness: 20,
			Height:    250,
		},
		UValue:       DefaultUValue,
		HeatCapacity: DefaultHeatCapacity,
		Precache:     append([]string(nil), DefaultPrecache...),
		Classifier:   plan.DefaultClassifier(),
		Converter:    plan.DefaultConverter(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AnnotationScale == 0 {
		o.AnnotationScale = d.AnnotationScale
	}
	if o.ScaleX == 0 {
		o.ScaleX = d.ScaleX
	}
	if o.ScaleY == 0 {
		o.ScaleY = d.ScaleY
	}
	if o.ScaleZ == 0 {
		o.ScaleZ = d.ScaleZ
	}
	if o.MinExtent == 0 {
		o.MinExtent = d.MinExtent
	}
	if o.Size == 0 {
		o.Size = d.Size
	}
	if o.DefaultWall == (plan.Wall{}) {
		o.DefaultWall = d.DefaultWall
	}
	if o.UValue == 0 {
		o.UValue = d.UValue
	}
	if o.HeatCapacity == 0 {
		o.HeatCapacity = d.HeatCapacity
	}
	if o.Precache == nil {
		o.Precache = d.Precache
	}
	if o.Classifier == nil {
		o.Classifier = d.Classifier
	}
	if o.Converter == nil {
		o.Converter = d.Converter
	}
	return o
}
