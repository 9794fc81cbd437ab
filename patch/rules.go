package patch

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Entry point names the bridge calls that older distributions lack.
const (
	MethodUpdateEditShapes = "updateEditShapes"
	MethodIsValid          = "isValid"
)

// Vec3Predicate is the signature of the injected vector validity check.
var Vec3Predicate = artifact.FuncType{
	Params:  []api.ValueType{api.ValueTypeF64, api.ValueTypeF64, api.ValueTypeF64},
	Results: []api.ValueType{api.ValueTypeI32},
}

// DefaultRules is the allow-list for the supported foreign distributions.
//
// The state types compiled before the compatibility layer introduced a
// rendering-state root declare the universal base as ancestor. The edit
// shape refresh and the vector validity check are called by the builder but
// missing from older archives.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: RelinkAncestor, Target: typename.TextureState, Ancestor: typename.RenderState},
		{Kind: RelinkAncestor, Target: typename.BlendState, Ancestor: typename.RenderState},
		{Kind: RelinkAncestor, Target: typename.LightState, Ancestor: typename.RenderState},
		{Kind: InjectMethod, Target: typename.Wall, Method: MethodUpdateEditShapes},
		{Kind: InjectMethod, Target: typename.Foundation, Method: MethodUpdateEditShapes},
		{Kind: InjectMethodWithBody, Target: typename.Vector3, Method: MethodIsValid, Type: Vec3Predicate, Body: artifact.FiniteCheckBody},
	}
}
