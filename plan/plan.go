package plan

import (
	"fmt"
	"math"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Plan is an immutable snapshot of the architectural elements of a source
// plan. Lengths are in source units (centimetres).
type Plan struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Levels []Level `json:"levels,omitempty" yaml:"levels,omitempty" toml:"levels,omitempty"`
	Walls  []Wall  `json:"walls" yaml:"walls" toml:"walls"`
}

// Level is a named subdivision of the plan.
type Level struct {
	Name      string  `json:"name" yaml:"name" toml:"name"`
	Elevation float64 `json:"elevation,omitempty" yaml:"elevation,omitempty" toml:"elevation,omitempty"`
}

// Wall is a wall given by its 2D centerline.
type Wall struct {
	XStart    float64 `json:"xStart" yaml:"xStart" toml:"xStart"`
	YStart    float64 `json:"yStart" yaml:"yStart" toml:"yStart"`
	XEnd      float64 `json:"xEnd" yaml:"xEnd" toml:"xEnd"`
	YEnd      float64 `json:"yEnd" yaml:"yEnd" toml:"yEnd"`
	Thickness float64 `json:"thickness" yaml:"thickness" toml:"thickness"`
	Height    float64 `json:"height" yaml:"height" toml:"height"`
	// Color is a packed 0xRRGGBB value.
	Color   uint32 `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Texture string `json:"texture,omitempty" yaml:"texture,omitempty" toml:"texture,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`
}

// Length returns the centerline length.
func (w Wall) Length() float64 {
	return math.Hypot(w.XEnd-w.XStart, w.YEnd-w.YStart)
}

// Empty reports whether the plan has no walls.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Walls) == 0
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the extent along x.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Depth returns the extent along y.
func (b Bounds) Depth() float64 { return b.MaxY - b.MinY }

// Extent returns the bounding box of the wall centerlines. ok is false for
// an empty plan.
func Extent(walls []Wall) (b Bounds, ok bool) {
	if len(walls) == 0 {
		return Bounds{}, false
	}
	b = Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, w := range walls {
		b.MinX = min(b.MinX, w.XStart, w.XEnd)
		b.MinY = min(b.MinY, w.YStart, w.YEnd)
		b.MaxX = max(b.MaxX, w.XStart, w.XEnd)
		b.MaxY = max(b.MaxY, w.YStart, w.YEnd)
	}
	return b, true
}

// Validate checks that every wall has finite coordinates, a positive
// thickness and height, and a level the plan declares when it declares
// any.
func (p *Plan) Validate() error {
	if p == nil {
		return errors.InvalidInput(errors.PhaseParse, "nil plan")
	}
	levels := make(map[string]bool, len(p.Levels))
	for _, l := range p.Levels {
		levels[l.Name] = true
	}
	for i, w := range p.Walls {
		path := []string{"walls", fmt.Sprintf("[%d]", i)}
		for _, v := range []float64{w.XStart, w.YStart, w.XEnd, w.YEnd, w.Thickness, w.Height} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.InvalidData(errors.PhaseParse, path, "non-finite coordinate")
			}
		}
		if w.Thickness <= 0 || w.Height <= 0 {
			return errors.InvalidData(errors.PhaseParse, path, fmt.Sprintf("thickness %g and height %g must be positive", w.Thickness, w.Height))
		}
		if w.Color > 0xFFFFFF {
			return errors.InvalidData(errors.PhaseParse, path, fmt.Sprintf("color 0x%x is not a 24-bit value", w.Color))
		}
		if len(levels) > 0 && w.Level != "" && !levels[w.Level] {
			return errors.InvalidData(errors.PhaseParse, path, fmt.Sprintf("undeclared level %q", w.Level))
		}
	}
	return nil
}
