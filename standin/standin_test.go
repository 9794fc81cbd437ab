package standin

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	for _, name := range []string{
		typename.Object,
		typename.Enum,
		typename.ArrayList,
		typename.RenderState,
		typename.SceneManager,
		typename.SelectUtil,
		typename.AWTImageLoader,
	} {
		d, ok := r.Lookup(name)
		if !ok {
			t.Errorf("%s not registered", name)
			continue
		}
		if d.Name() != name {
			t.Errorf("Name() = %q, want %q", d.Name(), name)
		}
	}
	if _, ok := r.Lookup(typename.Wall); ok {
		t.Error("foreign application types must not have stand-ins")
	}
	if len(r.Names()) != 7 {
		t.Errorf("Names() = %v", r.Names())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	d := &Definition{Desc: &artifact.Descriptor{Name: "x.Y"}}
	if err := r.Register(d); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(d); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := r.Register(&Definition{Desc: &artifact.Descriptor{}}); err == nil {
		t.Error("expected nameless registration to fail")
	}
}

func TestHostEntryPoints(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	r := Default()
	tests := []struct {
		typ  string
		fn   string
		args []uint64
		want []uint64
	}{
		{typename.SceneManager, "isHeadless", nil, []uint64{1}},
		{typename.SelectUtil, "pick", []uint64{10, 20}, []uint64{api.EncodeI32(NoPick)}},
		{typename.AWTImageLoader, "registerLoader", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			d, _ := r.Lookup(tt.typ)
			mod, err := d.Instantiate(ctx, rt)
			if err != nil {
				t.Fatalf("Instantiate: %v", err)
			}
			if mod.Name() != tt.typ {
				t.Errorf("module name = %q", mod.Name())
			}
			res, err := d.Call(ctx, mod, tt.fn, tt.args...)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if len(res) != len(tt.want) {
				t.Fatalf("results = %v, want %v", res, tt.want)
			}
			for i := range res {
				if uint32(res[i]) != uint32(tt.want[i]) {
					t.Errorf("result[%d] = %d, want %d", i, int32(res[i]), int32(tt.want[i]))
				}
			}
		})
	}
}

func TestEntryPointsMatchDescriptor(t *testing.T) {
	for _, d := range Compat() {
		for _, ep := range d.EntryPoints() {
			found := false
			for _, m := range d.Desc.Methods {
				if m.Name == ep.Name && m.Binding == artifact.BindExport {
					found = true
				}
			}
			if !found {
				t.Errorf("%s.%s has no declared method", d.Name(), ep.Name)
			}
		}
	}
}
