// Package typename names the foreign and host types the bridge works with.
package typename

import "strings"

// Reserved naming prefixes of the foreign application.
const (
	ApplicationPrefix = "org.concord.energy3d."
	EnginePrefix      = "com.ardor3d."
)

// Host built-ins.
const (
	Object    = "java.lang.Object"
	Enum      = "java.lang.Enum"
	ArrayList = "java.util.ArrayList"
)

// Foreign application types.
const (
	Scene        = "org.concord.energy3d.scene.Scene"
	SceneManager = "org.concord.energy3d.scene.SceneManager"
	HousePart    = "org.concord.energy3d.model.HousePart"
	Foundation   = "org.concord.energy3d.model.Foundation"
	Wall         = "org.concord.energy3d.model.Wall"
	SelectUtil   = "org.concord.energy3d.util.SelectUtil"
)

// Engine types.
const (
	Vector3        = "com.ardor3d.math.Vector3"
	ColorRGBA      = "com.ardor3d.math.ColorRGBA"
	RenderState    = "com.ardor3d.renderer.state.RenderState"
	MaterialState  = "com.ardor3d.renderer.state.MaterialState"
	ColorMaterial  = "com.ardor3d.renderer.state.MaterialState$ColorMaterial"
	TextureState   = "com.ardor3d.renderer.state.TextureState"
	BlendState     = "com.ardor3d.renderer.state.BlendState"
	LightState     = "com.ardor3d.renderer.state.LightState"
	AWTImageLoader = "com.ardor3d.image.util.awt.AWTImageLoader"
)

// Foreign reports whether name lies in one of the reserved prefixes.
func Foreign(name string) bool {
	return strings.HasPrefix(name, ApplicationPrefix) || strings.HasPrefix(name, EnginePrefix)
}

// Entry returns the archive entry path of the artifact defining name.
func Entry(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".wasm"
}

// FromEntry is the inverse of Entry; ok is false for non-artifact entries.
func FromEntry(entry string) (name string, ok bool) {
	base, found := strings.CutSuffix(entry, ".wasm")
	if !found || base == "" {
		return "", false
	}
	return strings.ReplaceAll(base, "/", "."), true
}

// Signature returns the field type signature of a class: Lpkg/Name;
func Signature(name string) string {
	return "L" + strings.ReplaceAll(name, ".", "/") + ";"
}

// Simple returns the unqualified name.
func Simple(name string) string {
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}
