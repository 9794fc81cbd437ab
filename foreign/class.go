package foreign

import (
	"sort"
	"sync"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Class is the reflective handle of a resolved type.
type Class struct {
	factory *Factory
	t       *resolve.Type

	descOnce sync.Once
	desc     *objstream.ClassDesc

	constOnce sync.Once
	constants []*Object
}

// Name returns the type name.
func (c *Class) Name() string { return c.t.Name }

// Type returns the resolved type.
func (c *Class) Type() *resolve.Type { return c.t }

// Ancestor returns the class of the declared ancestor, or nil at the root.
func (c *Class) Ancestor() *Class {
	if c.t.Ancestor == nil {
		return nil
	}
	return c.factory.ClassOf(c.t.Ancestor)
}

// Is reports whether the class is name or inherits from or implements it.
func (c *Class) Is(name string) bool { return c.t.Is(name) }

// IsEnum reports whether the class is an enumeration.
func (c *Class) IsEnum() bool { return c.t.Desc.Flags.Has(artifact.FlagEnum) }

// IsList reports whether instances carry list elements.
func (c *Class) IsList() bool { return c.t.Is(typename.ArrayList) }

// IsAbstract reports whether the class cannot be instantiated.
func (c *Class) IsAbstract() bool {
	f := c.t.Desc.Flags
	return f.Has(artifact.FlagAbstract) || f.Has(artifact.FlagInterface)
}

// Constructor returns the declared constructor with signature sig.
func (c *Class) Constructor(sig string) (*Constructor, error) {
	for _, decl := range c.t.Desc.Constructors {
		if decl.Sig != sig {
			continue
		}
		s, err := artifact.ParseSig(sig)
		if err != nil {
			return nil, buildError(c, "parse constructor signature", err)
		}
		return &Constructor{class: c, decl: decl, sig: s}, nil
	}
	return nil, errors.MethodMissing(errors.PhaseBuild, c.t.Name, "<init>", sig)
}

// Field returns the instance field name declared by the class or an
// ancestor, most derived first.
func (c *Class) Field(name string) (*Field, error) {
	owner, decl, ok := c.t.FieldOwner(name)
	if !ok {
		return nil, errors.FieldMissing(errors.PhaseBuild, c.t.Name, name)
	}
	return &Field{owner: c.factory.ClassOf(owner), decl: decl}, nil
}

// Fields lists every instance field of the class and its ancestors, top
// of the hierarchy first.
func (c *Class) Fields() []*Field {
	chain := c.t.Chain()
	var out []*Field
	for i := len(chain) - 1; i >= 0; i-- {
		owner := c.factory.ClassOf(chain[i])
		for _, decl := range chain[i].Desc.Fields {
			out = append(out, &Field{owner: owner, decl: decl})
		}
	}
	return out
}

// Static returns the static field name declared in the hierarchy.
func (c *Class) Static(name string) (*Static, error) {
	for _, t := range c.t.Chain() {
		for _, decl := range t.Desc.Statics {
			if decl.Name == name {
				return &Static{owner: c.factory.ClassOf(t), decl: decl}, nil
			}
		}
	}
	return nil, errors.FieldMissing(errors.PhaseBuild, c.t.Name, name)
}

// Method returns the method name with signature sig. Declared methods are
// searched first, most derived first; then entry points whose core
// signature implements sig.
func (c *Class) Method(name, sig string) (*Method, error) {
	s, err := artifact.ParseSig(sig)
	if err != nil {
		return nil, buildError(c, "parse method signature", err)
	}
	chain := c.t.Chain()
	for _, t := range chain {
		for _, decl := range t.Desc.Methods {
			if decl.Name == name && decl.Sig == sig {
				return newMethod(c.factory.ClassOf(t), decl, s)
			}
		}
	}

	ft, err := s.FuncType()
	if err != nil {
		return nil, errors.MethodMissing(errors.PhaseBuild, c.t.Name, name, sig)
	}
	for _, t := range chain {
		if ep, ok := t.EntryPoint(name); ok && ep.Type.Equal(ft) {
			decl := artifact.Method{Name: name, Sig: sig, Binding: artifact.BindExport}
			return newMethod(c.factory.ClassOf(t), decl, s)
		}
	}
	return nil, errors.MethodMissing(errors.PhaseBuild, c.t.Name, name, sig)
}

// Methods lists the declared methods of the hierarchy followed by entry
// points no declaration binds, most derived first.
func (c *Class) Methods() []artifact.Method {
	var out []artifact.Method
	bound := make(map[string]bool)
	for _, t := range c.t.Chain() {
		for _, m := range t.Desc.Methods {
			out = append(out, m)
			if m.Binding == artifact.BindExport {
				target := m.Target
				if target == "" {
					target = m.Name
				}
				bound[target] = true
			}
		}
	}
	var extra []artifact.Method
	for _, t := range c.t.Chain() {
		for _, ep := range t.EntryPoints {
			if bound[ep.Name] {
				continue
			}
			bound[ep.Name] = true
			extra = append(extra, artifact.Method{Name: ep.Name, Binding: artifact.BindExport})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	return append(out, extra...)
}

// Constants returns the enumeration constants in declaration order. The
// same *Object is returned for a constant on every call.
func (c *Class) Constants() []*Object {
	c.constOnce.Do(func() {
		for i, name := range c.t.Desc.Constants {
			c.constants = append(c.constants, &Object{class: c, constant: name, ordinal: i})
		}
	})
	return c.constants
}

// Constant returns the enumeration constant name.
func (c *Class) Constant(name string) (*Object, error) {
	if !c.IsEnum() {
		return nil, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Type(c.t.Name).
			Detail("not an enumeration").
			Build()
	}
	for _, o := range c.Constants() {
		if o.constant == name {
			return o, nil
		}
	}
	return nil, errors.New(errors.PhaseBuild, errors.KindFieldMissing).
		Type(c.t.Name).
		Detail("no constant %q", name).
		Build()
}

// StreamDesc returns the object stream class descriptor, or nil when the
// class is not serializable. Transient fields are not streamed; the
// descriptor chain stops at the first non-serializable ancestor.
func (c *Class) StreamDesc() *objstream.ClassDesc {
	c.descOnce.Do(func() {
		d := c.t.Desc
		if !d.Flags.Has(artifact.FlagSerializable) {
			return
		}
		desc := &objstream.ClassDesc{
			Name:      c.t.Name,
			SerialUID: d.SerialUID,
			Flags:     objstream.SCSerializable,
		}
		if d.Flags.Has(artifact.FlagWriteMethod) {
			desc.Flags |= objstream.SCWriteMethod
		}
		if d.Flags.Has(artifact.FlagEnum) {
			desc.Flags |= objstream.SCEnum
			desc.SerialUID = 0
		} else {
			for _, f := range d.Fields {
				if f.Transient {
					continue
				}
				desc.Fields = append(desc.Fields, objstream.FieldDesc{Name: f.Name, Class: f.Class, Code: f.Code})
			}
		}
		if a := c.Ancestor(); a != nil {
			desc.Super = a.StreamDesc()
		}
		c.desc = desc
	})
	return c.desc
}

func buildError(c *Class, detail string, cause error) error {
	return errors.New(errors.PhaseBuild, errors.KindInvalidData).
		Type(c.t.Name).
		Detail("%s", detail).
		Cause(cause).
		Build()
}
