package standin

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Func is a Go-implemented entry point of a host type.
type Func struct {
	Fn   api.GoModuleFunc
	Name string
	Type artifact.FuncType
}

// Definition is a host type: a structural header and its entry points.
type Definition struct {
	Desc  *artifact.Descriptor
	Funcs []Func
}

// Name returns the defined type name.
func (d *Definition) Name() string {
	return d.Desc.Name
}

// EntryPoints lists the Go-implemented entry points.
func (d *Definition) EntryPoints() []artifact.EntryPoint {
	out := make([]artifact.EntryPoint, len(d.Funcs))
	for i, f := range d.Funcs {
		out[i] = artifact.EntryPoint{Name: f.Name, Type: f.Type}
	}
	return out
}

// Instantiate installs the entry points as a host module named after the
// type, so foreign artifacts importing from the type link against it.
func (d *Definition) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(d.Desc.Name)
	for _, f := range d.Funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.Fn, f.Type.Params, f.Type.Results).
			Export(f.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(d.Desc.Name, err)
	}
	return mod, nil
}

// Func returns the entry point called name.
func (d *Definition) Func(name string) (Func, bool) {
	for _, f := range d.Funcs {
		if f.Name == name {
			return f, true
		}
	}
	return Func{}, false
}

// Call runs the entry point called name directly on a value stack. Host
// module exports cannot be called through the runtime, so callers use this
// instead of api.Module.ExportedFunction.
func (d *Definition) Call(ctx context.Context, mod api.Module, name string, args ...uint64) ([]uint64, error) {
	f, ok := d.Func(name)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindMethodMissing).
			Type(d.Desc.Name).
			Detail("no entry point %q", name).
			Build()
	}
	if len(args) != len(f.Type.Params) {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Type(d.Desc.Name).
			Detail("%s takes %d arguments, got %d", name, len(f.Type.Params), len(args)).
			Build()
	}
	stack := make([]uint64, max(len(f.Type.Params), len(f.Type.Results)))
	copy(stack, args)
	f.Fn.Call(ctx, mod, stack)
	return stack[:len(f.Type.Results)], nil
}

// Registry holds the host types the outer resolution tier falls back to.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Default returns a registry with the built-in types and every
// compatibility stand-in.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range Builtins() {
		r.mustRegister(d)
	}
	for _, d := range Compat() {
		r.mustRegister(d)
	}
	return r
}

// Register adds a definition. Names are unique.
func (r *Registry) Register(d *Definition) error {
	if d == nil || d.Desc == nil || d.Desc.Name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "host type without a name")
	}
	if _, exists := r.defs[d.Desc.Name]; exists {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Type(d.Desc.Name).
			Detail("host type already registered").
			Build()
	}
	r.defs[d.Desc.Name] = d
	return nil
}

func (r *Registry) mustRegister(d *Definition) {
	if err := r.Register(d); err != nil {
		panic(fmt.Sprintf("standin: %v", err))
	}
}

// Lookup returns the definition of name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names lists the registered type names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for n := range r.defs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
