package resolve

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
)

// Bootstrap creates the registry at most once. A failed attempt is not
// remembered, so a later call locates the module set again.
type Bootstrap struct {
	reg     *Registry
	Layout  locate.Layout
	Hint    string
	Options Options
	mu      sync.Mutex
}

// NewBootstrap prepares a get-or-create for the distribution nearest hint.
func NewBootstrap(hint string, layout locate.Layout, opts Options) *Bootstrap {
	return &Bootstrap{Hint: hint, Layout: layout, Options: opts}
}

// Registry returns the registry, locating the module set and creating the
// registry on first success.
func (b *Bootstrap) Registry(ctx context.Context) (*Registry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reg != nil {
		return b.reg, nil
	}

	set, err := b.Layout.Locate(b.Hint)
	if err != nil {
		return nil, err
	}
	reg, err := New(ctx, set, b.Options)
	if err != nil {
		return nil, err
	}
	b.reg = reg

	log := b.Options.Logger
	if log == nil {
		log = Logger()
	}
	log.Info("registry ready", zap.String("primary", set.Primary))
	return reg, nil
}

// Created reports whether the registry exists.
func (b *Bootstrap) Created() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg != nil
}

// Close closes the registry if it was created.
func (b *Bootstrap) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reg == nil {
		return nil
	}
	err := b.reg.Close(ctx)
	b.reg = nil
	return err
}
