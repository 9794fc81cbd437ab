package foreign

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
)

// Factory hands out reflective class handles for resolved types. Handles
// are cached per type, so a class name always yields the same *Class.
type Factory struct {
	reg     *resolve.Registry
	log     *zap.Logger
	classes map[*resolve.Type]*Class
	mu      sync.Mutex
}

// NewFactory creates a factory over reg. A nil logger selects the package
// logger.
func NewFactory(reg *resolve.Registry, log *zap.Logger) *Factory {
	if log == nil {
		log = Logger()
	}
	return &Factory{
		reg:     reg,
		log:     log,
		classes: make(map[*resolve.Type]*Class),
	}
}

// Registry returns the registry classes are resolved from.
func (f *Factory) Registry() *resolve.Registry {
	return f.reg
}

// Class resolves name through the outer tier.
func (f *Factory) Class(ctx context.Context, name string) (*Class, error) {
	if f.reg == nil {
		return nil, errors.NotInitialized(errors.PhaseBuild, "type registry")
	}
	t, err := f.reg.ResolveOuter(ctx, name)
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindNotFound).
			Type(name).
			Detail("resolve class").
			Cause(err).
			Build()
	}
	return f.ClassOf(t), nil
}

// ClassOf returns the handle of an already resolved type.
func (f *Factory) ClassOf(t *resolve.Type) *Class {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.classes[t]; ok {
		return c
	}
	c := &Class{factory: f, t: t}
	f.classes[t] = c
	return c
}

// New instantiates name through its no-argument constructor.
func (f *Factory) New(ctx context.Context, name string) (*Object, error) {
	c, err := f.Class(ctx, name)
	if err != nil {
		return nil, err
	}
	ctor, err := c.Constructor("()V")
	if err != nil {
		return nil, err
	}
	return ctor.New(ctx)
}
