// Package artifact is a small structural editor for foreign module artifacts.
//
// An artifact is a core WebAssembly binary that defines one foreign type.
// Its entry points are the exported functions; its structural header is the
// "foreign.type" custom section (see Descriptor).
//
// # Parsing
//
// Parse splits the binary into raw sections without decoding them:
//
//	m, err := artifact.Parse(data)
//	desc, err := m.Descriptor()
//	eps, err := m.EntryPoints()
//
// # Editing
//
// Edits touch only the sections they need. Untouched sections, including
// their original size prefixes, are re-emitted byte-for-byte:
//
//	err := m.SetAncestor("com.ardor3d.renderer.state.RenderState")
//	idx, err := m.AddFunction("updateEditShapes", artifact.FuncType{}, artifact.NopBody(artifact.FuncType{}))
//	patched := m.Encode()
//
// # Building
//
// Builder assembles artifacts from scratch, mainly for compatibility layers
// and test distributions:
//
//	b := artifact.NewBuilder(desc)
//	b.Func("init", artifact.FuncType{}, artifact.NopBody(artifact.FuncType{}))
//	data := b.Build()
package artifact
