// Package patch rewrites foreign artifacts before they are installed.
//
// Rules are keyed by target type name and applied only to their target:
//
//   - relink-ancestor: an artifact whose header names the universal base as
//     ancestor is relinked to a compatibility ancestor;
//   - inject-method: a missing entry point is added with a no-op body;
//   - inject-method-with-body: a missing entry point is added with a
//     generated body (see artifact.FiniteCheckBody).
//
// Patching is best effort. Patch logs a failed rule and hands back the
// original bytes; a rule whose condition already holds returns its input
// unchanged, byte for byte.
//
//	p := patch.New(patch.DefaultRules(), log)
//	data = p.Patch("com.ardor3d.math.Vector3", data)
package patch
