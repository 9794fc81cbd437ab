// Package foreign builds and mutates objects of resolved foreign types
// without compile-time bindings.
//
// A Factory resolves class names through the outer tier of a
// resolve.Registry and returns Class handles. Members are located by name
// and signature over the ancestor chain:
//
//	f := foreign.NewFactory(reg, log)
//	wallClass, err := f.Class(ctx, "org.concord.energy3d.model.Wall")
//	ctor, err := wallClass.Constructor("()V")
//	wall, err := ctor.New(ctx)
//	setHeight, err := wallClass.Method("setHeight", "(D)V")
//	_, err = setHeight.Invoke(ctx, wall, 15.0)
//
// Declared methods are bound to a field (set, get, mark, append, clear) or
// to an entry point of the type's module. Entry point arguments and results
// cross as core values; reference types cannot.
//
// Objects implement objstream.Object, so a built graph is written to the
// object stream directly.
package foreign
