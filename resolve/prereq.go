package resolve

import "github.com/technologiescollege/SweetEnergy3d-sub000/typename"

// DefaultPrerequisites lists, per dependent type, the types that must be
// resolved before it: ancestors before descendants, the rendering-state
// root before every state type, and the types a hierarchy's fields refer to.
func DefaultPrerequisites() map[string][]string {
	states := []string{typename.RenderState}
	return map[string][]string{
		typename.MaterialState: states,
		typename.ColorMaterial: {typename.Enum, typename.MaterialState},
		typename.TextureState:  states,
		typename.BlendState:    states,
		typename.LightState:    states,
		typename.HousePart:     {typename.Vector3, typename.ColorRGBA, typename.ArrayList},
		typename.Foundation:    {typename.HousePart},
		typename.Wall:          {typename.HousePart},
		typename.Scene:         {typename.SceneManager, typename.HousePart},
	}
}
