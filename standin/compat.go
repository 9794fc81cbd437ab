package standin

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// NoPick is returned by the picking stand-in.
const NoPick int32 = -1

var (
	predicate = artifact.FuncType{Results: []api.ValueType{api.ValueTypeI32}}
	pick      = artifact.FuncType{
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
	}
	void = artifact.FuncType{}
)

// Compat returns the compatibility stand-ins: types the foreign archives
// lack or that must not touch rendering hardware.
func Compat() []*Definition {
	return []*Definition{
		renderState(),
		sceneManager(),
		selectUtil(),
		imageLoader(),
	}
}

// renderState is the root of the rendering-state hierarchy. State types
// compiled against it reach the enabled flag through it.
func renderState() *Definition {
	return &Definition{Desc: &artifact.Descriptor{
		Name:      typename.RenderState,
		Ancestor:  typename.Object,
		Flags:     artifact.FlagSerializable | artifact.FlagAbstract,
		SerialUID: 1,
		Fields:    []artifact.Field{{Name: "enabled", Code: 'Z'}},
		Methods: []artifact.Method{
			{Name: "setEnabled", Sig: "(Z)V", Binding: artifact.BindSet, Target: "enabled"},
			{Name: "isEnabled", Sig: "()Z", Binding: artifact.BindGet, Target: "enabled"},
		},
	}}
}

// sceneManager reports a headless environment so nothing waits on a frame.
func sceneManager() *Definition {
	return &Definition{
		Desc: &artifact.Descriptor{
			Name:     typename.SceneManager,
			Ancestor: typename.Object,
			Methods: []artifact.Method{
				{Name: "isHeadless", Sig: "()Z", Binding: artifact.BindExport},
			},
		},
		Funcs: []Func{{
			Name: "isHeadless",
			Type: predicate,
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = 1
			}),
		}},
	}
}

func selectUtil() *Definition {
	return &Definition{
		Desc: &artifact.Descriptor{
			Name:     typename.SelectUtil,
			Ancestor: typename.Object,
			Methods: []artifact.Method{
				{Name: "pick", Sig: "(II)I", Binding: artifact.BindExport},
			},
		},
		Funcs: []Func{{
			Name: "pick",
			Type: pick,
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeI32(NoPick)
			}),
		}},
	}
}

func imageLoader() *Definition {
	return &Definition{
		Desc: &artifact.Descriptor{
			Name:     typename.AWTImageLoader,
			Ancestor: typename.Object,
			Methods: []artifact.Method{
				{Name: "registerLoader", Sig: "()V", Binding: artifact.BindExport},
			},
		},
		Funcs: []Func{{
			Name: "registerLoader",
			Type: void,
			Fn:   api.GoModuleFunc(func(context.Context, api.Module, []uint64) {}),
		}},
	}
}
