package locate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Layout describes where a foreign distribution is expected on disk.
type Layout struct {
	// PrimaryPath is the primary archive, relative to a candidate base.
	PrimaryPath string
	// DependencyDirs are probed relative to the primary archive's directory,
	// most preferred first. The first one that exists is used.
	DependencyDirs []string
	// NewerDir, when set and present, holds archives loaded ahead of
	// everything else.
	NewerDir string
	// WorkDir overrides the process working directory.
	WorkDir string
	// Fallbacks are probed after the hint, its ancestors and WorkDir.
	Fallbacks []string
	// Required lists dependency archive base names that must be present.
	Required []string
	// Optional lists base name patterns (filepath.Match syntax) of archives
	// a resolver may skip when they cannot be read.
	Optional []string
	// MaxLevels bounds the upward walk from the hint.
	MaxLevels int
}

// DefaultLayout matches the published foreign distribution.
func DefaultLayout() Layout {
	return Layout{
		PrimaryPath:    filepath.Join("energy3d", "Energy3D.jar"),
		DependencyDirs: []string{"lib-legacy", "lib-patched"},
		Required:       []string{"ardor3d-core.jar"},
		Optional:       []string{"*-natives-*", "swt*", "jogl*"},
		MaxLevels:      4,
	}
}

// Origin tells why an archive is part of a module set.
type Origin int

const (
	OriginNewer Origin = iota
	OriginPrimary
	OriginDependency
)

func (o Origin) String() string {
	switch o {
	case OriginNewer:
		return "newer"
	case OriginPrimary:
		return "primary"
	case OriginDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// ArchiveRef is one archive of a module set.
type ArchiveRef struct {
	Path     string
	Origin   Origin
	Optional bool
}

// ModuleSet is the ordered list of archives types are loaded from. The
// first archive defining a type wins.
type ModuleSet struct {
	Primary       string
	DependencyDir string
	Archives      []ArchiveRef
}

// Paths returns the archive paths in load order.
func (s *ModuleSet) Paths() []string {
	out := make([]string, len(s.Archives))
	for i, a := range s.Archives {
		out[i] = a.Path
	}
	return out
}

// Locate searches with the default layout.
func Locate(hint string) (*ModuleSet, error) {
	return DefaultLayout().Locate(hint)
}

// Locate builds the module set for the distribution nearest to hint.
func (l Layout) Locate(hint string) (*ModuleSet, error) {
	log := Logger()

	if l.PrimaryPath == "" {
		return nil, errors.InvalidInput(errors.PhaseDiscovery, "layout has no primary path")
	}

	var primary string
	for _, base := range l.Candidates(hint) {
		p := filepath.Join(base, l.PrimaryPath)
		if isFile(p) {
			primary = p
			break
		}
		log.Debug("primary archive not at candidate", zap.String("path", p))
	}
	if primary == "" {
		return nil, errors.New(errors.PhaseDiscovery, errors.KindNotFound).
			Archive(l.PrimaryPath).
			Detail("primary archive not found from %q", hint).
			Build()
	}

	set := &ModuleSet{Primary: primary}

	if l.NewerDir != "" && isDir(l.NewerDir) {
		newer, err := l.listArchives(l.NewerDir, OriginNewer)
		if err != nil {
			return nil, err
		}
		set.Archives = append(set.Archives, newer...)
	}

	set.Archives = append(set.Archives, ArchiveRef{Path: primary, Origin: OriginPrimary})

	root := filepath.Dir(primary)
	for _, d := range l.DependencyDirs {
		dir := filepath.Join(root, d)
		if isDir(dir) {
			set.DependencyDir = dir
			break
		}
	}
	if set.DependencyDir != "" {
		deps, err := l.listArchives(set.DependencyDir, OriginDependency)
		if err != nil {
			return nil, err
		}
		set.Archives = append(set.Archives, deps...)
	}

	if err := l.checkRequired(set); err != nil {
		return nil, err
	}

	log.Info("module set located",
		zap.String("primary", primary),
		zap.String("dependencies", set.DependencyDir),
		zap.Int("archives", len(set.Archives)))
	return set, nil
}

// Candidates returns the deduplicated base directories probed for the
// primary archive: the hint, up to MaxLevels of its ancestors, the working
// directory, then the fallbacks.
func (l Layout) Candidates(hint string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" {
			return
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		seen[dir] = true
		out = append(out, dir)
	}

	if hint != "" {
		dir := hint
		add(dir)
		for i := 0; i < l.MaxLevels; i++ {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
			add(dir)
		}
	}

	wd := l.WorkDir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	add(wd)

	for _, f := range l.Fallbacks {
		add(f)
	}
	return out
}

func (l Layout) listArchives(dir string, origin Origin) ([]ArchiveRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.IO(errors.PhaseDiscovery, dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jar" || ext == ".zip" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]ArchiveRef, 0, len(names))
	for _, n := range names {
		out = append(out, ArchiveRef{
			Path:     filepath.Join(dir, n),
			Origin:   origin,
			Optional: l.isOptional(n),
		})
	}
	return out, nil
}

func (l Layout) isOptional(name string) bool {
	for _, p := range l.Optional {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (l Layout) checkRequired(set *ModuleSet) error {
	var missing []string
	for _, req := range l.Required {
		found := false
		for _, a := range set.Archives {
			if filepath.Base(a.Path) == req {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	where := set.DependencyDir
	if where == "" {
		where = filepath.Dir(set.Primary)
	}
	return errors.New(errors.PhaseDiscovery, errors.KindNotFound).
		Archive(strings.Join(missing, ", ")).
		Detail("required archive missing near %s", where).
		Build()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
