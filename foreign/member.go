package foreign

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// maxInitDepth bounds nested field initialisation.
const maxInitDepth = 16

// Constructor creates instances of a class.
type Constructor struct {
	class *Class
	decl  artifact.Constructor
	sig   artifact.Sig
}

// Sig returns the constructor signature.
func (c *Constructor) Sig() string { return c.decl.Sig }

// New creates an instance. Fields start at their zero value, fields
// declared with a fresh-instance initialiser get a new instance of their
// class (the first constant for enumerations), then the arguments are
// assigned to the fields the constructor declares.
func (c *Constructor) New(ctx context.Context, args ...any) (*Object, error) {
	return c.construct(ctx, args, 0)
}

func (c *Constructor) construct(ctx context.Context, args []any, depth int) (*Object, error) {
	cls := c.class
	if cls.IsAbstract() || cls.IsEnum() {
		return nil, errors.New(errors.PhaseBuild, errors.KindInstantiation).
			Type(cls.Name()).
			Detail("class cannot be instantiated").
			Build()
	}
	if len(args) != len(c.sig.Params) {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Type(cls.Name()).
			Detail("constructor %s takes %d arguments, got %d", c.decl.Sig, len(c.sig.Params), len(args)).
			Build()
	}
	if depth > maxInitDepth {
		return nil, errors.Invariant(errors.PhaseBuild, cls.Name(), "field initialisation does not terminate")
	}

	o := &Object{class: cls, fields: make(map[fieldKey]any)}
	chain := cls.t.Chain()
	for i := len(chain) - 1; i >= 0; i-- {
		t := chain[i]
		for _, decl := range t.Desc.Fields {
			v := zeroValue(decl.Code)
			if decl.Init == artifact.InitNew {
				var err error
				if v, err = cls.factory.initial(ctx, decl, depth+1); err != nil {
					return nil, errors.New(errors.PhaseBuild, errors.KindInstantiation).
						Type(cls.Name()).
						Path(t.Name, decl.Name).
						Detail("initialise field").
						Cause(err).
						Build()
				}
			}
			o.fields[fieldKey{t.Name, decl.Name}] = v
		}
	}

	for i, p := range c.sig.Params {
		path := []string{cls.Name(), fmt.Sprintf("arg%d", i)}
		v, err := coerceParam(p, args[i], path)
		if err != nil {
			return nil, err
		}
		if i < len(c.decl.Assign) {
			if err := o.Set(c.decl.Assign[i], v); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

// initial returns a fresh value for a field declared with InitNew.
func (f *Factory) initial(ctx context.Context, decl artifact.Field, depth int) (any, error) {
	name := decl.ClassName()
	if name == "" {
		return nil, errors.Unsupported(errors.PhaseBuild, "fresh instance of "+decl.Class)
	}
	c, err := f.Class(ctx, name)
	if err != nil {
		return nil, err
	}
	if c.IsEnum() {
		consts := c.Constants()
		if len(consts) == 0 {
			return nil, errors.Invariant(errors.PhaseBuild, name, "enumeration without constants")
		}
		return consts[0], nil
	}
	ctor, err := c.Constructor("()V")
	if err != nil {
		return nil, err
	}
	return ctor.construct(ctx, nil, depth)
}

// Field is an instance field handle.
type Field struct {
	owner *Class
	decl  artifact.Field
}

// Name returns the field name.
func (f *Field) Name() string { return f.decl.Name }

// Owner returns the declaring class.
func (f *Field) Owner() *Class { return f.owner }

// Decl returns the field declaration.
func (f *Field) Decl() artifact.Field { return f.decl }

// Get returns the field value of o.
func (f *Field) Get(o *Object) (any, error) {
	if err := f.check(o); err != nil {
		return nil, err
	}
	return o.fields[fieldKey{f.owner.Name(), f.decl.Name}], nil
}

// Set coerces v to the field type and stores it in o.
func (f *Field) Set(o *Object, v any) error {
	if err := f.check(o); err != nil {
		return err
	}
	cv, err := coerceField(f.decl, v, []string{f.owner.Name(), f.decl.Name})
	if err != nil {
		return err
	}
	o.fields[fieldKey{f.owner.Name(), f.decl.Name}] = cv
	return nil
}

func (f *Field) check(o *Object) error {
	if o == nil {
		return errors.InvalidInput(errors.PhaseBuild, "field access on nil object")
	}
	if o.class.Is(f.owner.Name()) {
		return nil
	}
	return errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
		Type(o.class.Name()).
		Detail("field %s belongs to %s", f.decl.Name, f.owner.Name()).
		Build()
}

// Static is a static field handle. Values live on the declaring type.
type Static struct {
	owner *Class
	decl  artifact.Field
}

// Get returns the current value.
func (s *Static) Get() any {
	v, ok := s.owner.t.Static(s.decl.Name)
	if !ok {
		return zeroValue(s.decl.Code)
	}
	return v
}

// Set assigns the value.
func (s *Static) Set(v any) error {
	cv, err := coerceField(s.decl, v, []string{s.owner.Name(), s.decl.Name})
	if err != nil {
		return err
	}
	s.owner.t.SetStatic(s.decl.Name, cv)
	return nil
}

// SetIfAbsent assigns the value unless the field already holds one. It
// reports whether v was stored.
func (s *Static) SetIfAbsent(v any) (bool, error) {
	cv, err := coerceField(s.decl, v, []string{s.owner.Name(), s.decl.Name})
	if err != nil {
		return false, err
	}
	return s.owner.t.SetStaticIfAbsent(s.decl.Name, cv), nil
}

// Method is a method handle: a field-bound accessor or an entry point.
type Method struct {
	owner *Class
	decl  artifact.Method
	sig   artifact.Sig
}

func newMethod(owner *Class, decl artifact.Method, sig artifact.Sig) (*Method, error) {
	if decl.Binding == artifact.BindExport {
		if _, err := sig.FuncType(); err != nil {
			return nil, errors.New(errors.PhaseBuild, errors.KindUnsupported).
				Type(owner.Name()).
				Detail("method %s%s", decl.Name, decl.Sig).
				Cause(err).
				Build()
		}
	}
	return &Method{owner: owner, decl: decl, sig: sig}, nil
}

// Name returns the method name.
func (m *Method) Name() string { return m.decl.Name }

// Sig returns the method signature.
func (m *Method) Sig() string { return m.decl.Sig }

// Binding returns how the method is carried out.
func (m *Method) Binding() artifact.Binding { return m.decl.Binding }

// Owner returns the declaring class.
func (m *Method) Owner() *Class { return m.owner }

// Invoke calls the method on recv. Entry point methods ignore recv and
// may be invoked with nil.
func (m *Method) Invoke(ctx context.Context, recv *Object, args ...any) (any, error) {
	if len(args) != len(m.sig.Params) {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Type(m.owner.Name()).
			Detail("%s%s takes %d arguments, got %d", m.decl.Name, m.decl.Sig, len(m.sig.Params), len(args)).
			Build()
	}
	coerced := make([]any, len(args))
	for i, p := range m.sig.Params {
		v, err := coerceParam(p, args[i], []string{m.owner.Name(), m.decl.Name, fmt.Sprintf("arg%d", i)})
		if err != nil {
			return nil, err
		}
		coerced[i] = v
	}

	if m.decl.Binding == artifact.BindExport {
		return m.call(ctx, coerced)
	}

	f, err := m.owner.Field(m.decl.Target)
	if err != nil {
		return nil, err
	}
	switch m.decl.Binding {
	case artifact.BindSet:
		return nil, f.Set(recv, coerced[0])
	case artifact.BindGet:
		return f.Get(recv)
	case artifact.BindMark:
		return nil, f.Set(recv, true)
	case artifact.BindAppend, artifact.BindClear:
		v, err := f.Get(recv)
		if err != nil {
			return nil, err
		}
		list, ok := v.(*Object)
		if !ok || list == nil || !list.class.IsList() {
			return nil, errors.New(errors.PhaseBuild, errors.KindNotInitialized).
				Type(recv.class.Name()).
				Path(f.owner.Name(), f.decl.Name).
				Detail("list field holds %T", v).
				Build()
		}
		if m.decl.Binding == artifact.BindClear {
			list.Clear()
			return nil, nil
		}
		return nil, list.Append(coerced[0])
	}
	return nil, errors.New(errors.PhaseBuild, errors.KindUnsupported).
		Type(m.owner.Name()).
		Detail("binding %s", m.decl.Binding).
		Build()
}

func (m *Method) call(ctx context.Context, args []any) (any, error) {
	name := m.decl.Target
	if name == "" {
		name = m.decl.Name
	}
	raw := make([]uint64, len(args))
	for i, a := range args {
		raw[i] = lower(m.sig.Params[i], a)
	}
	res, err := m.owner.factory.reg.Call(ctx, m.owner.t, name, raw...)
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvocation).
			Type(m.owner.Name()).
			Detail("invoke %s%s", m.decl.Name, m.decl.Sig).
			Cause(err).
			Build()
	}
	m.owner.factory.log.Debug("entry point invoked",
		zap.String("type", m.owner.Name()),
		zap.String("method", name))
	return lift(m.sig.Return, res), nil
}
