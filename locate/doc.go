// Package locate finds the foreign application's module set on disk.
//
// The primary archive is probed at a fixed relative path from an ordered
// list of base directories: the hint (usually the running program's install
// location), its ancestors, the working directory and explicit fallbacks.
// Dependency archives are enumerated from the first existing dependency
// directory next to the primary archive and sorted by name. Archives of an
// optional newer distribution are loaded first.
//
//	set, err := locate.DefaultLayout().Locate(installDir)
//	if errors.Is(err, bridgeerrors.DiscoveryFailure) {
//		// nothing to export against
//	}
package locate
