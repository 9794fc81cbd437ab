package artifact

import (
	"fmt"
	"strings"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// DescriptorSection is the custom section holding a type's structural header.
const DescriptorSection = "foreign.type"

// RootType is the universal base type every hierarchy ends in.
const RootType = "java.lang.Object"

const descriptorVersion = 1

// Flags describe how a type participates in the object stream.
type Flags uint8

const (
	FlagSerializable Flags = 1 << iota
	FlagEnum
	FlagAbstract
	FlagInterface
	// FlagWriteMethod marks types that append custom data to their fields
	// in the object stream.
	FlagWriteMethod
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Binding tells how a declared method is carried out.
type Binding uint8

const (
	// BindExport invokes the entry point named by Target (or the method name).
	BindExport Binding = iota
	// BindSet assigns the single argument to field Target.
	BindSet
	// BindGet returns field Target.
	BindGet
	// BindMark sets boolean field Target to true.
	BindMark
	// BindAppend appends the first argument to list field Target.
	BindAppend
	// BindClear empties list field Target.
	BindClear
)

func (b Binding) String() string {
	switch b {
	case BindExport:
		return "export"
	case BindSet:
		return "set"
	case BindGet:
		return "get"
	case BindMark:
		return "mark"
	case BindAppend:
		return "append"
	case BindClear:
		return "clear"
	default:
		return fmt.Sprintf("binding(%d)", uint8(b))
	}
}

// Field initialisers applied by constructors.
const (
	InitZero byte = iota
	// InitNew assigns a fresh instance of the field's class.
	InitNew
)

// Field is a declared instance or static field. Code is the stream type
// code ('B','C','D','F','I','J','S','Z','L','['); Class is the field's
// type signature for 'L' and '[' fields.
type Field struct {
	Name      string
	Class     string
	Code      byte
	Init      byte
	Transient bool
}

// IsPrimitive reports whether the field holds a primitive value.
func (f Field) IsPrimitive() bool {
	return f.Code != 'L' && f.Code != '['
}

// ClassName returns the dotted class name of an 'L' field.
func (f Field) ClassName() string {
	if f.Code != 'L' {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(f.Class, "L"), ";"), "/", ".")
}

// Constructor declares a constructor signature. Assign lists the fields the
// arguments are stored into, in order.
type Constructor struct {
	Sig    string
	Assign []string
}

// Method is a declared method with its binding.
type Method struct {
	Name    string
	Sig     string
	Target  string
	Binding Binding
}

// Descriptor is the structural header of a foreign type.
type Descriptor struct {
	Name         string
	Ancestor     string
	Interfaces   []string
	Fields       []Field
	Statics      []Field
	Constants    []string
	Constructors []Constructor
	Methods      []Method
	SerialUID    int64
	Flags        Flags
}

// Field returns the declared instance field with the given name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Encode serialises the descriptor as a custom section payload.
func (d *Descriptor) Encode() []byte {
	w := binary.NewWriter()
	w.Byte(descriptorVersion)
	w.WriteName(d.Name)
	w.WriteName(d.Ancestor)
	writeNames(w, d.Interfaces)
	w.Byte(byte(d.Flags))
	w.WriteS64(d.SerialUID)
	writeFields(w, d.Fields)
	writeFields(w, d.Statics)
	writeNames(w, d.Constants)
	w.WriteU32(uint32(len(d.Constructors)))
	for _, c := range d.Constructors {
		w.WriteName(c.Sig)
		writeNames(w, c.Assign)
	}
	w.WriteU32(uint32(len(d.Methods)))
	for _, m := range d.Methods {
		w.WriteName(m.Name)
		w.WriteName(m.Sig)
		w.Byte(byte(m.Binding))
		w.WriteName(m.Target)
	}
	return w.Bytes()
}

func writeNames(w *binary.Writer, names []string) {
	w.WriteU32(uint32(len(names)))
	for _, n := range names {
		w.WriteName(n)
	}
}

func writeFields(w *binary.Writer, fields []Field) {
	w.WriteU32(uint32(len(fields)))
	for _, f := range fields {
		w.WriteName(f.Name)
		w.Byte(f.Code)
		w.WriteName(f.Class)
		w.Byte(f.Init)
		if f.Transient {
			w.Byte(1)
		} else {
			w.Byte(0)
		}
	}
}

// DecodeDescriptor parses a custom section payload.
func DecodeDescriptor(payload []byte) (*Descriptor, error) {
	r := binary.NewReader(payload)
	version, err := r.ReadByte()
	if err != nil {
		return nil, errors.ParseFailed("descriptor version", err)
	}
	if version != descriptorVersion {
		return nil, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("descriptor version %d", version))
	}

	d := &Descriptor{}
	if d.Name, err = r.ReadName(); err != nil {
		return nil, errors.ParseFailed("descriptor name", err)
	}
	if d.Ancestor, err = r.ReadName(); err != nil {
		return nil, errors.ParseFailed("descriptor ancestor", err)
	}
	if d.Interfaces, err = readNames(r); err != nil {
		return nil, errors.ParseFailed("descriptor interfaces", err)
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, errors.ParseFailed("descriptor flags", err)
	}
	d.Flags = Flags(flags)
	if d.SerialUID, err = r.ReadS64(); err != nil {
		return nil, errors.ParseFailed("descriptor serial uid", err)
	}
	if d.Fields, err = readFields(r); err != nil {
		return nil, errors.ParseFailed("descriptor fields", err)
	}
	if d.Statics, err = readFields(r); err != nil {
		return nil, errors.ParseFailed("descriptor statics", err)
	}
	if d.Constants, err = readNames(r); err != nil {
		return nil, errors.ParseFailed("descriptor constants", err)
	}

	n, err := r.ReadU32()
	if err != nil {
		return nil, errors.ParseFailed("descriptor constructors", err)
	}
	for i := uint32(0); i < n; i++ {
		var c Constructor
		if c.Sig, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("constructor signature", err)
		}
		if c.Assign, err = readNames(r); err != nil {
			return nil, errors.ParseFailed("constructor assignments", err)
		}
		d.Constructors = append(d.Constructors, c)
	}

	if n, err = r.ReadU32(); err != nil {
		return nil, errors.ParseFailed("descriptor methods", err)
	}
	for i := uint32(0); i < n; i++ {
		var m Method
		if m.Name, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("method name", err)
		}
		if m.Sig, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("method signature", err)
		}
		b, err := r.ReadByte()
		if err != nil {
			return nil, errors.ParseFailed("method binding", err)
		}
		if Binding(b) > BindClear {
			return nil, errors.InvalidData(errors.PhaseParse, []string{d.Name, m.Name}, fmt.Sprintf("unknown binding %d", b))
		}
		m.Binding = Binding(b)
		if m.Target, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("method target", err)
		}
		d.Methods = append(d.Methods, m)
	}

	if r.Len() != 0 {
		return nil, errors.InvalidData(errors.PhaseParse, []string{d.Name}, "trailing bytes after descriptor")
	}
	return d, nil
}

func readNames(r *binary.Reader) ([]string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func readFields(r *binary.Reader) ([]Field, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Field, 0, n)
	for i := uint32(0); i < n; i++ {
		var f Field
		if f.Name, err = r.ReadName(); err != nil {
			return nil, err
		}
		if f.Code, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if !validTypeCode(f.Code) {
			return nil, fmt.Errorf("field %s: invalid type code %q", f.Name, f.Code)
		}
		if f.Class, err = r.ReadName(); err != nil {
			return nil, err
		}
		if f.Init, err = r.ReadByte(); err != nil {
			return nil, err
		}
		t, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		f.Transient = t != 0
		out = append(out, f)
	}
	return out, nil
}

func validTypeCode(c byte) bool {
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'L', '[':
		return true
	}
	return false
}

// Descriptor decodes the artifact's structural header.
func (m *Module) Descriptor() (*Descriptor, error) {
	payload, ok := m.Custom(DescriptorSection)
	if !ok {
		return nil, errors.New(errors.PhaseParse, errors.KindFieldMissing).
			Detail("no %s section", DescriptorSection).
			Build()
	}
	return DecodeDescriptor(payload)
}

// SetDescriptor replaces the artifact's structural header.
func (m *Module) SetDescriptor(d *Descriptor) {
	m.SetCustom(DescriptorSection, d.Encode())
}

// SetAncestor rewrites only the declared-ancestor name inside the structural
// header, leaving every other byte of the section untouched.
func (m *Module) SetAncestor(name string) error {
	for _, s := range m.Sections {
		if s.ID != SectionCustom {
			continue
		}
		r := binary.NewReader(s.Data)
		secName, err := r.ReadName()
		if err != nil || secName != DescriptorSection {
			continue
		}
		if _, err := r.ReadByte(); err != nil {
			return errors.ParseFailed("descriptor version", err)
		}
		if _, err := r.ReadName(); err != nil {
			return errors.ParseFailed("descriptor name", err)
		}
		start := r.Position()
		if _, err := r.ReadName(); err != nil {
			return errors.ParseFailed("descriptor ancestor", err)
		}
		end := r.Position()

		w := binary.NewWriter()
		w.WriteName(name)
		data := make([]byte, 0, len(s.Data)-(end-start)+w.Len())
		data = append(data, s.Data[:start]...)
		data = append(data, w.Bytes()...)
		data = append(data, s.Data[end:]...)
		s.Data = data
		s.size = nil
		return nil
	}
	return errors.New(errors.PhasePatch, errors.KindFieldMissing).
		Detail("no %s section", DescriptorSection).
		Build()
}
