// Package resolve turns foreign type names into installed types.
//
// A Registry has two tiers. The isolated tier defines types only from the
// bytes of the module set archives, first archive in load order wins. The
// outer tier tries the isolated tier for names under the reserved foreign
// prefixes and falls back to the host types of package standin; every other
// name is a host type. Declared ancestors, interfaces and prerequisites are
// resolved through the outer tier, which is how stand-ins enter foreign
// hierarchies.
//
// Installing an artifact runs, in order: patching for allow-listed names,
// parsing the structural header, linking the ancestor chain, verifying the
// declared members against that chain, and compiling with wazero. Both
// tiers memoise successes, so a name always yields the same *Type. Modules
// are instantiated lazily, after the types they import from.
//
// The registry is process-lifetime state. Create it through a Bootstrap and
// pass it explicitly to whatever builds foreign objects:
//
//	boot := resolve.NewBootstrap(installDir, locate.DefaultLayout(), resolve.Options{})
//	reg, err := boot.Registry(ctx)
//	wall, err := reg.ResolveOuter(ctx, "org.concord.energy3d.model.Wall")
package resolve
