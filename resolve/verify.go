package resolve

import (
	"fmt"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// FieldOwner returns the type in t's chain declaring instance field name,
// most derived first.
func (t *Type) FieldOwner(name string) (*Type, artifact.Field, bool) {
	for c := t; c != nil; c = c.Ancestor {
		if f, ok := c.Desc.Field(name); ok {
			return c, f, true
		}
	}
	return nil, artifact.Field{}, false
}

// verify checks that every declared member can be carried out against the
// linked hierarchy: bound fields exist with a fitting type and exported
// methods have a matching entry point. A header compiled against a
// different ancestor fails here.
func verify(t *Type) error {
	d := t.Desc
	if t.Ancestor != nil && t.Ancestor.Desc.Flags.Has(artifact.FlagInterface) {
		return fmt.Errorf("ancestor %s is an interface", t.Ancestor.Name)
	}
	if d.Flags.Has(artifact.FlagEnum) && len(d.Constants) == 0 && !d.Flags.Has(artifact.FlagAbstract) {
		return fmt.Errorf("enumeration without constants")
	}

	for _, c := range d.Constructors {
		s, err := artifact.ParseSig(c.Sig)
		if err != nil {
			return err
		}
		if len(c.Assign) > len(s.Params) {
			return fmt.Errorf("constructor %s assigns %d fields from %d arguments", c.Sig, len(c.Assign), len(s.Params))
		}
		for _, name := range c.Assign {
			if _, _, ok := t.FieldOwner(name); !ok {
				return errors.FieldMissing(errors.PhaseResolve, t.Name, name)
			}
		}
	}

	for _, m := range d.Methods {
		if err := verifyMethod(t, m); err != nil {
			return err
		}
	}
	return nil
}

func verifyMethod(t *Type, m artifact.Method) error {
	s, err := artifact.ParseSig(m.Sig)
	if err != nil {
		return err
	}

	if m.Binding == artifact.BindExport {
		ft, err := s.FuncType()
		if err != nil {
			return err
		}
		name := m.Target
		if name == "" {
			name = m.Name
		}
		ep, ok := t.EntryPoint(name)
		if !ok || !ep.Type.Equal(ft) {
			return errors.MethodMissing(errors.PhaseResolve, t.Name, name, m.Sig)
		}
		return nil
	}

	_, f, ok := t.FieldOwner(m.Target)
	if !ok {
		return fmt.Errorf("method %s%s: %w", m.Name, m.Sig, errors.FieldMissing(errors.PhaseResolve, t.Name, m.Target))
	}
	want := func(params int, ret string) error {
		if len(s.Params) != params || (ret != "" && s.Return != ret) {
			return fmt.Errorf("method %s%s does not fit %s binding of field %s", m.Name, m.Sig, m.Binding, f.Name)
		}
		return nil
	}
	switch m.Binding {
	case artifact.BindSet:
		return want(1, "")
	case artifact.BindGet:
		return want(0, "")
	case artifact.BindMark:
		if f.Code != 'Z' {
			return fmt.Errorf("method %s marks non-boolean field %s", m.Name, f.Name)
		}
		return want(0, "")
	case artifact.BindAppend:
		if f.Code != 'L' {
			return fmt.Errorf("method %s appends to non-list field %s", m.Name, f.Name)
		}
		if len(s.Params) == 0 {
			return fmt.Errorf("method %s%s appends nothing", m.Name, m.Sig)
		}
		return nil
	case artifact.BindClear:
		if f.Code != 'L' {
			return fmt.Errorf("method %s clears non-list field %s", m.Name, f.Name)
		}
		return want(0, "")
	}
	return fmt.Errorf("method %s: unknown binding %s", m.Name, m.Binding)
}
