// Package fixture generates foreign distributions for tests and demos.
//
// The generated layout matches locate.DefaultLayout: the application types
// in energy3d/Energy3D.jar, the engine types in a dependency archive, and
// an unreadable native-binding archive that resolvers must skip.
package fixture

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/technologiescollege/SweetEnergy3d-sub000/archive"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Options selects the generated variant.
type Options struct {
	// DependencyDir defaults to "lib-legacy".
	DependencyDir string
	// Current builds artifacts that already carry every compatibility
	// fix, so no patch rule changes them.
	Current bool
	// OmitCameraSetters drops the scene's camera mutators, as in older
	// builds that persist the camera only through direct assignment.
	OmitCameraSetters bool
	// OmitEngine leaves out the required engine archive.
	OmitEngine bool
	// OmitTypes drops artifacts by type name.
	OmitTypes []string
}

// Distribution describes a generated layout.
type Distribution struct {
	Root          string
	Primary       string
	DependencyDir string
	Engine        string
}

// ApplicationTypes returns the artifacts of the primary archive.
func ApplicationTypes(opts Options) map[string][]byte {
	return filter(map[string][]byte{
		typename.HousePart:  housePart(),
		typename.Foundation: foundation(),
		typename.Wall:       wall(opts),
		typename.Scene:      scene(opts),
		TextureMode:         enumeration(TextureMode, "None", "Simple", "Full"),
	}, opts)
}

// EngineTypes returns the artifacts of the engine archive.
func EngineTypes(opts Options) map[string][]byte {
	return filter(map[string][]byte{
		typename.Vector3:       vector3(opts),
		typename.ColorRGBA:     colorRGBA(),
		typename.MaterialState: materialState(),
		typename.ColorMaterial: enumeration(typename.ColorMaterial,
			"None", "Ambient", "Diffuse", "AmbientAndDiffuse", "Emissive", "Specular"),
		typename.TextureState: state(typename.TextureState, opts),
		typename.BlendState:   state(typename.BlendState, opts),
		typename.LightState:   state(typename.LightState, opts),
	}, opts)
}

func filter(types map[string][]byte, opts Options) map[string][]byte {
	for _, name := range opts.OmitTypes {
		delete(types, name)
	}
	return types
}

// Write generates a distribution under root.
func Write(root string, opts Options) (*Distribution, error) {
	depDir := opts.DependencyDir
	if depDir == "" {
		depDir = "lib-legacy"
	}
	d := &Distribution{
		Root:          root,
		Primary:       filepath.Join(root, "energy3d", "Energy3D.jar"),
		DependencyDir: filepath.Join(root, "energy3d", depDir),
	}
	if err := os.MkdirAll(d.DependencyDir, 0o755); err != nil {
		return nil, err
	}

	if err := writeArchive(d.Primary, ApplicationTypes(opts)); err != nil {
		return nil, err
	}
	if !opts.OmitEngine {
		d.Engine = filepath.Join(d.DependencyDir, "ardor3d-core.jar")
		if err := writeArchive(d.Engine, EngineTypes(opts)); err != nil {
			return nil, err
		}
	}
	natives := filepath.Join(d.DependencyDir, "swt-natives-linux.jar")
	if err := os.WriteFile(natives, []byte("not an archive"), 0o644); err != nil {
		return nil, err
	}
	return d, nil
}

// WriteArchive stores artifacts keyed by type name into a new archive.
func WriteArchive(path string, types map[string][]byte) error {
	return writeArchive(path, types)
}

func writeArchive(path string, types map[string][]byte) error {
	w, err := archive.Create(path)
	if err != nil {
		return err
	}
	if err := w.AddFile("META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\n")); err != nil {
		w.Close()
		return err
	}
	for _, name := range sortedKeys(types) {
		if err := w.Add(name, types[name]); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
