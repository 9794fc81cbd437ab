package foreign

import (
	"fmt"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

type fieldKey struct {
	owner string
	name  string
}

// Object is an instance of a foreign class. Field values are stored per
// declaring class, list classes carry elements and enumeration constants
// carry their name. Objects are written to the object stream as they are.
type Object struct {
	class    *Class
	fields   map[fieldKey]any
	items    []any
	constant string
	ordinal  int
}

// Class returns the object's class.
func (o *Object) Class() *Class { return o.class }

// Get returns the value of instance field name.
func (o *Object) Get(name string) (any, error) {
	f, err := o.class.Field(name)
	if err != nil {
		return nil, err
	}
	return f.Get(o)
}

// Set assigns instance field name after coercing v to the field type.
func (o *Object) Set(name string, v any) error {
	f, err := o.class.Field(name)
	if err != nil {
		return err
	}
	return f.Set(o, v)
}

// Items returns the elements of a list object.
func (o *Object) Items() []any { return o.items }

// Len returns the number of list elements.
func (o *Object) Len() int { return len(o.items) }

// Append adds elements to a list object.
func (o *Object) Append(vs ...any) error {
	if !o.class.IsList() {
		return errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Type(o.class.Name()).
			Detail("append to a non-list object").
			Build()
	}
	for i, v := range vs {
		cv, err := coerceReference(typename.Object, v, []string{o.class.Name(), fmt.Sprintf("[%d]", len(o.items)+i)})
		if err != nil {
			return err
		}
		vs[i] = cv
	}
	o.items = append(o.items, vs...)
	return nil
}

// Clear removes every list element.
func (o *Object) Clear() { o.items = nil }

// Name returns the constant name of an enumeration value.
func (o *Object) Name() string { return o.constant }

// Ordinal returns the position of an enumeration constant.
func (o *Object) Ordinal() int { return o.ordinal }

func (o *Object) String() string {
	if o.constant != "" {
		return o.class.Name() + "." + o.constant
	}
	return fmt.Sprintf("%s@%p", typename.Simple(o.class.Name()), o)
}

func (o *Object) StreamDesc() *objstream.ClassDesc { return o.class.StreamDesc() }

func (o *Object) StreamField(class, name string) any {
	if class == typename.ArrayList && name == "size" {
		return int32(len(o.items))
	}
	return o.fields[fieldKey{class, name}]
}

func (o *Object) StreamItems() []any { return o.items }

func (o *Object) ConstantName() string { return o.constant }
