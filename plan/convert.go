package plan

import (
	"sort"
	"strings"
)

// Vec3 is a point in scene coordinates; Z is up.
type Vec3 struct {
	X, Y, Z float64
}

// Geometry is the converted form of one wall: the vertical rectangle over
// its centerline in the order start-bottom, start-top, end-bottom, end-top,
// a packed 0xRRGGBB color and a texture code.
type Geometry struct {
	Points  [4]Vec3
	Color   uint32
	Texture int32
}

// Converter turns a wall into scene geometry.
type Converter interface {
	Convert(w Wall) Geometry
}

// Texture codes of the foreign wall model.
const (
	TextureNone    int32 = 0
	TextureDefault int32 = 1
	TextureBrick   int32 = 2
	TextureStone   int32 = 3
	TextureWood    int32 = 4
)

// DefaultColor is used for walls without a color.
const DefaultColor uint32 = 0xFFFFFF

// RectConverter builds the rectangle directly over the centerline.
type RectConverter struct {
	// Textures maps keywords of texture names to codes; unmatched named
	// textures get TextureDefault.
	Textures map[string]int32
}

// DefaultConverter returns a RectConverter with the standard texture table.
func DefaultConverter() *RectConverter {
	return &RectConverter{Textures: map[string]int32{
		"brick":  TextureBrick,
		"brique": TextureBrick,
		"stone":  TextureStone,
		"pierre": TextureStone,
		"wood":   TextureWood,
		"bois":   TextureWood,
	}}
}

func (c *RectConverter) Convert(w Wall) Geometry {
	g := Geometry{
		Points: [4]Vec3{
			{X: w.XStart, Y: w.YStart},
			{X: w.XStart, Y: w.YStart, Z: w.Height},
			{X: w.XEnd, Y: w.YEnd},
			{X: w.XEnd, Y: w.YEnd, Z: w.Height},
		},
		Color:   w.Color,
		Texture: c.texture(w.Texture),
	}
	if g.Color == 0 {
		g.Color = DefaultColor
	}
	return g
}

func (c *RectConverter) texture(name string) int32 {
	name = strings.ToLower(name)
	if name == "" {
		return TextureNone
	}
	keys := make([]string, 0, len(c.Textures))
	for kw := range c.Textures {
		keys = append(keys, kw)
	}
	sort.Strings(keys)
	for _, kw := range keys {
		if strings.Contains(name, kw) {
			return c.Textures[kw]
		}
	}
	return TextureDefault
}

// RGBA splits a packed color into components in [0,1] with opaque alpha.
func RGBA(packed uint32) (r, g, b, a float32) {
	r = float32((packed>>16)&0xFF) / 255
	g = float32((packed>>8)&0xFF) / 255
	b = float32(packed&0xFF) / 255
	return r, g, b, 1
}
