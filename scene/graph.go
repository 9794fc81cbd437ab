package scene

import (
	"fmt"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
)

// Graph is a built scene.
type Graph struct {
	Root        *foreign.Object
	GroundPlane *foreign.Object
	Walls       []*foreign.Object

	// DefaultWall is set when the plan had no exported walls.
	DefaultWall bool
	// Singleton reports whether Root became the current scene.
	Singleton bool
	// CameraMutators reports whether the camera went through the scene's
	// mutators in addition to direct assignment.
	CameraMutators bool

	Precached        int
	PrecacheFailures []string
}

// Elements returns the number of elements attached to the root.
func (g *Graph) Elements() int {
	parts, _ := sceneParts(g.Root)
	return len(parts)
}

// Validate checks that every element attached to the root is a completed
// element with exactly four points.
func (g *Graph) Validate() error {
	if g == nil || g.Root == nil {
		return errors.NotInitialized(errors.PhaseBuild, "scene graph")
	}
	parts, err := sceneParts(g.Root)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return errors.Invariant(errors.PhaseBuild, g.Root.Class().Name(), "scene has no elements")
	}
	for i, p := range parts {
		obj, ok := p.(*foreign.Object)
		if !ok || obj == nil {
			return errors.InvalidData(errors.PhaseBuild, []string{"parts", fmt.Sprint(i)},
				fmt.Sprintf("element is %T", p))
		}
		if err := checkArity(obj); err != nil {
			return errors.Wrap(errors.PhaseBuild, errors.KindInvariant, err, fmt.Sprintf("element %d", i))
		}
		if !completed(obj) {
			return errors.Invariant(errors.PhaseBuild, obj.Class().Name(),
				fmt.Sprintf("element %d is not complete", i))
		}
	}
	return nil
}
