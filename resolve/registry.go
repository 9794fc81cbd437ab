package resolve

import (
	"bytes"
	"context"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/archive"
	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/patch"
	"github.com/technologiescollege/SweetEnergy3d-sub000/standin"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Options configures a Registry. Zero values select the defaults.
type Options struct {
	RuntimeConfig wazero.RuntimeConfig
	Patcher       *patch.Patcher
	Hosts         *standin.Registry
	Logger        *zap.Logger
	// Prerequisites maps a type name to the types resolved through the
	// outer tier before it.
	Prerequisites map[string][]string
}

// Stats reports registry activity.
type Stats struct {
	Probes       int
	Isolated     int
	Host         int
	Instantiated int
}

// Registry is the process-lifetime two-tier type resolver. It owns the
// wazero runtime every foreign type is compiled and instantiated in.
type Registry struct {
	runtime  wazero.Runtime
	set      *locate.ModuleSet
	patcher  *patch.Patcher
	hosts    *standin.Registry
	prereqs  map[string][]string
	log      *zap.Logger
	archives []*archive.Archive
	optional map[*archive.Archive]bool

	isolated map[string]*Type
	outer    map[string]*Type
	host     map[string]*Type
	pending  map[string]bool
	linking  map[*Type]bool

	probes       int
	instantiated int

	mu sync.Mutex
}

// New opens the module set's archives and creates the runtime. Unreadable
// optional archives are skipped; an unreadable required archive is a
// discovery failure.
func New(ctx context.Context, set *locate.ModuleSet, opts Options) (*Registry, error) {
	if set == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "nil module set")
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}

	r := &Registry{
		set:      set,
		patcher:  opts.Patcher,
		hosts:    opts.Hosts,
		prereqs:  opts.Prerequisites,
		log:      log,
		optional: make(map[*archive.Archive]bool),
		isolated: make(map[string]*Type),
		outer:    make(map[string]*Type),
		host:     make(map[string]*Type),
		pending:  make(map[string]bool),
		linking:  make(map[*Type]bool),
	}
	if r.patcher == nil {
		r.patcher = patch.New(patch.DefaultRules(), log)
	}
	if r.hosts == nil {
		r.hosts = standin.Default()
	}
	if r.prereqs == nil {
		r.prereqs = DefaultPrerequisites()
	}

	for _, ref := range set.Archives {
		a, err := archive.Open(ref.Path)
		if err != nil {
			if ref.Optional {
				log.Warn("skipping unreadable optional archive",
					zap.String("archive", ref.Path),
					zap.Error(err))
				continue
			}
			r.closeArchives()
			return nil, errors.New(errors.PhaseDiscovery, errors.KindIO).
				Archive(ref.Path).
				Detail("required archive unreadable").
				Cause(err).
				Build()
		}
		r.archives = append(r.archives, a)
		r.optional[a] = ref.Optional
	}

	cfg := opts.RuntimeConfig
	if cfg == nil {
		cfg = wazero.NewRuntimeConfig()
	}
	r.runtime = wazero.NewRuntimeWithConfig(ctx, cfg)

	log.Debug("registry created", zap.Int("archives", len(r.archives)))
	return r, nil
}

// ModuleSet returns the module set the registry loads from.
func (r *Registry) ModuleSet() *locate.ModuleSet {
	return r.set
}

// ResolveIsolated resolves name from module set bytes only.
func (r *Registry) ResolveIsolated(ctx context.Context, name string) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveIsolated(ctx, name)
}

// ResolveOuter resolves name through the outer tier: names with a reserved
// foreign prefix try the isolated tier first and fall back to host types
// when no archive defines them; every other name is a host type.
func (r *Registry) ResolveOuter(ctx context.Context, name string) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveOuter(ctx, name)
}

func (r *Registry) resolveOuter(ctx context.Context, name string) (*Type, error) {
	if t, ok := r.outer[name]; ok {
		return t, nil
	}

	var isolatedErr error
	if typename.Foreign(name) {
		t, err := r.resolveIsolated(ctx, name)
		if err == nil {
			r.outer[name] = t
			return t, nil
		}
		if !undefined(err, name) {
			return nil, err
		}
		isolatedErr = err
	}

	t, err := r.resolveHost(ctx, name)
	if err != nil {
		if isolatedErr != nil && isNotFound(err) {
			return nil, errors.TypeNotFound(name, isolatedErr)
		}
		return nil, err
	}
	r.outer[name] = t
	return t, nil
}

func (r *Registry) resolveIsolated(ctx context.Context, name string) (*Type, error) {
	if t, ok := r.isolated[name]; ok {
		return t, nil
	}
	if r.pending[name] {
		return nil, errors.Invariant(errors.PhaseResolve, name, "circular resolution")
	}
	r.pending[name] = true
	defer delete(r.pending, name)

	for _, pre := range r.prereqs[name] {
		if _, err := r.resolveOuter(ctx, pre); err != nil {
			return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
				Type(name).
				Detail("prerequisite %s", pre).
				Cause(err).
				Build()
		}
	}

	raw, a, err := r.probe(name)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(name).
			Cause(errUndefined).
			Build()
	}

	t, err := r.install(ctx, name, raw, a)
	if err != nil {
		return nil, err
	}
	r.isolated[name] = t
	r.log.Debug("type resolved",
		zap.String("type", name),
		zap.String("tier", t.Tier.String()),
		zap.String("archive", t.Archive),
		zap.Bool("patched", t.Patched))
	return t, nil
}

// probe returns the first artifact defining name in load order.
func (r *Registry) probe(name string) ([]byte, *archive.Archive, error) {
	for _, a := range r.archives {
		r.probes++
		data, ok, err := a.Lookup(name)
		if err != nil {
			if r.optional[a] {
				r.log.Warn("skipping unreadable entry in optional archive",
					zap.String("type", name),
					zap.String("archive", a.Path()),
					zap.Error(err))
				continue
			}
			return nil, nil, err
		}
		if ok {
			return data, a, nil
		}
	}
	return nil, nil, nil
}

// install patches, parses, links and verifies an artifact.
func (r *Registry) install(ctx context.Context, name string, raw []byte, a *archive.Archive) (*Type, error) {
	data := raw
	if r.patcher.Targets(name) {
		data = r.patcher.Patch(name, raw)
	}

	m, err := artifact.Parse(data)
	if err != nil {
		return nil, installError(name, a, errors.KindInvalidData, "parse artifact", err)
	}
	desc, err := m.Descriptor()
	if err != nil {
		return nil, installError(name, a, errors.KindInvalidData, "read structural header", err)
	}
	if desc.Name != name {
		return nil, installError(name, a, errors.KindInvalidData, "artifact defines "+desc.Name, nil)
	}

	t := &Type{
		Name:    name,
		Desc:    desc,
		Tier:    TierIsolated,
		Archive: a.Path(),
		Patched: !bytes.Equal(data, raw),
	}

	if err := r.link(ctx, t); err != nil {
		return nil, err
	}

	if t.EntryPoints, err = m.EntryPoints(); err != nil {
		return nil, installError(name, a, errors.KindInvalidData, "read entry points", err)
	}
	imports, err := m.Imports()
	if err != nil {
		return nil, installError(name, a, errors.KindInvalidData, "read imports", err)
	}
	seen := make(map[string]bool)
	for _, imp := range imports {
		if !seen[imp.Module] {
			seen[imp.Module] = true
			t.Links = append(t.Links, imp.Module)
		}
	}

	if err := verify(t); err != nil {
		return nil, installError(name, a, errors.KindVerification, "verify", err)
	}
	compiled, err := r.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, installError(name, a, errors.KindVerification, "compile", err)
	}
	t.compiled = compiled

	if t.Patched {
		r.log.Info("installed patched artifact", zap.String("type", name))
	}
	return t, nil
}

// link resolves the declared ancestor and interfaces through the outer tier.
func (r *Registry) link(ctx context.Context, t *Type) error {
	var missing []string
	resolveRef := func(ref string) (*Type, error) {
		lt, err := r.resolveOuter(ctx, ref)
		if err != nil {
			if isNotFound(err) {
				missing = append(missing, t.Name+"#"+ref)
				return nil, nil
			}
			return nil, err
		}
		return lt, nil
	}

	if t.Desc.Ancestor != "" {
		anc, err := resolveRef(t.Desc.Ancestor)
		if err != nil {
			return err
		}
		t.Ancestor = anc
	}
	for _, iface := range t.Desc.Interfaces {
		it, err := resolveRef(iface)
		if err != nil {
			return err
		}
		if it != nil {
			t.Interfaces = append(t.Interfaces, it)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(t.Name).
			Detail("linked types missing").
			Cause(errors.NewMissingTypesError(missing)).
			Build()
	}
	return nil
}

func (r *Registry) resolveHost(ctx context.Context, name string) (*Type, error) {
	if t, ok := r.host[name]; ok {
		return t, nil
	}
	def, ok := r.hosts.Lookup(name)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(name).
			Detail("no host type").
			Build()
	}
	if r.pending[name] {
		return nil, errors.Invariant(errors.PhaseResolve, name, "circular resolution")
	}
	r.pending[name] = true
	defer delete(r.pending, name)

	t := &Type{
		Name:        name,
		Desc:        def.Desc,
		Tier:        TierHost,
		host:        def,
		EntryPoints: def.EntryPoints(),
	}
	if err := r.link(ctx, t); err != nil {
		return nil, err
	}
	if err := verify(t); err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindVerification).
			Type(name).
			Detail("verify host type").
			Cause(err).
			Build()
	}
	r.host[name] = t
	return t, nil
}

// Instance returns the live module of t, instantiating it and the types it
// links against on first use.
func (r *Registry) Instance(ctx context.Context, t *Type) (api.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instance(ctx, t)
}

func (r *Registry) instance(ctx context.Context, t *Type) (api.Module, error) {
	t.mu.Lock()
	mod := t.module
	t.mu.Unlock()
	if mod != nil {
		return mod, nil
	}
	if r.linking[t] {
		return nil, errors.Invariant(errors.PhaseResolve, t.Name, "circular linkage")
	}
	r.linking[t] = true
	defer delete(r.linking, t)

	for _, link := range t.Links {
		lt, err := r.resolveOuter(ctx, link)
		if err != nil {
			return nil, errors.Instantiation(t.Name, errors.New(errors.PhaseResolve, errors.KindNotFound).
				Detail("linked type").
				Cause(errors.NewMissingTypesError([]string{t.Name + "#" + link})).
				Build())
		}
		if _, err := r.instance(ctx, lt); err != nil {
			return nil, errors.Instantiation(t.Name, err)
		}
	}

	var err error
	switch t.Tier {
	case TierHost:
		mod, err = t.host.Instantiate(ctx, r.runtime)
	default:
		mod, err = r.runtime.InstantiateModule(ctx, t.compiled, wazero.NewModuleConfig().WithName(t.Name))
	}
	if err != nil {
		return nil, errors.Instantiation(t.Name, err)
	}

	t.mu.Lock()
	t.module = mod
	t.mu.Unlock()
	r.instantiated++
	r.log.Debug("type instantiated", zap.String("type", t.Name))
	return mod, nil
}

// Call invokes an entry point of t with raw core values.
func (r *Registry) Call(ctx context.Context, t *Type, name string, args ...uint64) ([]uint64, error) {
	mod, err := r.Instance(ctx, t)
	if err != nil {
		return nil, err
	}
	if t.Tier == TierHost {
		return t.host.Call(ctx, mod, name, args...)
	}
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindMethodMissing).
			Type(t.Name).
			Detail("no entry point %q", name).
			Build()
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvocation).
			Type(t.Name).
			Detail("call %s", name).
			Cause(err).
			Build()
	}
	return res, nil
}

// Types lists every resolved type, sorted by name.
func (r *Registry) Types() []*Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Type
	for _, t := range r.isolated {
		out = append(out, t)
	}
	for _, t := range r.host {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Archives lists the archives that were opened, in load order.
func (r *Registry) Archives() []*archive.Archive {
	return r.archives
}

// Stats returns activity counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Probes:       r.probes,
		Isolated:     len(r.isolated),
		Host:         len(r.host),
		Instantiated: r.instantiated,
	}
}

// Close releases the runtime and the archives.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.runtime.Close(ctx)
	if cerr := r.closeArchives(); err == nil {
		err = cerr
	}
	return err
}

func (r *Registry) closeArchives() error {
	var first error
	for _, a := range r.archives {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.archives = nil
	return first
}

func installError(name string, a *archive.Archive, kind errors.Kind, step string, cause error) error {
	return errors.New(errors.PhaseResolve, kind).
		Type(name).
		Archive(a.Path()).
		Detail("%s", step).
		Cause(cause).
		Build()
}

// errUndefined marks an isolated lookup that no archive could answer. Only
// that outcome lets the outer tier fall back to a host type; a foreign type
// whose links or prerequisites are missing stays an error.
var errUndefined = stderrors.New("not defined by any archive of the module set")

func undefined(err error, name string) bool {
	var e *errors.Error
	return stderrors.As(err, &e) && e.Type == name && e.Cause == errUndefined
}

func isNotFound(err error) bool {
	var e *errors.Error
	return stderrors.As(err, &e) && e.Phase == errors.PhaseResolve && e.Kind == errors.KindNotFound
}
