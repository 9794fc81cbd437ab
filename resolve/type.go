package resolve

import (
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/standin"
)

// Tier is the resolution tier a type was defined by.
type Tier int

const (
	// TierIsolated types are defined from module set archive bytes.
	TierIsolated Tier = iota
	// TierHost types are Go-defined stand-ins and built-ins.
	TierHost
)

func (t Tier) String() string {
	if t == TierHost {
		return "host"
	}
	return "isolated"
}

// Type is a resolved, installed type. A registry hands out exactly one
// *Type per name, so pointer equality is type identity.
type Type struct {
	compiled wazero.CompiledModule
	host     *standin.Definition
	module   api.Module

	statics map[string]any

	Desc        *artifact.Descriptor
	Ancestor    *Type
	Interfaces  []*Type
	Name        string
	Archive     string
	EntryPoints []artifact.EntryPoint
	// Links are the types this type imports entry points from.
	Links   []string
	Tier    Tier
	Patched bool

	mu sync.Mutex
}

// Chain returns the type followed by its ancestors, most derived first.
func (t *Type) Chain() []*Type {
	var out []*Type
	for c := t; c != nil; c = c.Ancestor {
		out = append(out, c)
	}
	return out
}

// Is reports whether t is name or inherits from or implements name.
func (t *Type) Is(name string) bool {
	for c := t; c != nil; c = c.Ancestor {
		if c.Name == name {
			return true
		}
		for _, i := range c.Interfaces {
			if i.Is(name) {
				return true
			}
		}
	}
	return false
}

// EntryPoint returns the exported entry point with the given name.
func (t *Type) EntryPoint(name string) (artifact.EntryPoint, bool) {
	for _, ep := range t.EntryPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return artifact.EntryPoint{}, false
}

// Static returns the value of a static field.
func (t *Type) Static(name string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.statics[name]
	return v, ok
}

// SetStatic assigns a static field.
func (t *Type) SetStatic(name string, v any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statics == nil {
		t.statics = make(map[string]any)
	}
	t.statics[name] = v
}

// SetStaticIfAbsent assigns a static field unless it already holds a
// non-nil value. It reports whether v was stored.
func (t *Type) SetStaticIfAbsent(name string, v any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.statics[name]; ok && cur != nil {
		return false
	}
	if t.statics == nil {
		t.statics = make(map[string]any)
	}
	t.statics[name] = v
	return true
}

// Instantiated reports whether the type's module is live.
func (t *Type) Instantiated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.module != nil
}
