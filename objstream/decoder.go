package objstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// maxLength bounds array and string lengths read from a stream.
const maxLength = 1 << 28

// Instance is a decoded TC_OBJECT. Values holds field values per declaring
// class. Instances implement Object and List and re-encode to the bytes
// they were read from.
type Instance struct {
	Desc   *ClassDesc
	Values map[string]map[string]any
	Items  []any
}

func (i *Instance) StreamDesc() *ClassDesc { return i.Desc }

func (i *Instance) StreamField(class, name string) any {
	return i.Values[class][name]
}

func (i *Instance) StreamItems() []any { return i.Items }

// Field returns the value of the named field declared closest to the most
// derived class.
func (i *Instance) Field(name string) (any, bool) {
	for d := i.Desc; d != nil; d = d.Super {
		if v, ok := i.Values[d.Name][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Is reports whether the instance's class or one of its serializable
// ancestors is named class.
func (i *Instance) Is(class string) bool {
	for d := i.Desc; d != nil; d = d.Super {
		if d.Name == class {
			return true
		}
	}
	return false
}

// EnumValue is a decoded TC_ENUM.
type EnumValue struct {
	Desc *ClassDesc
	Name string
}

func (e *EnumValue) StreamDesc() *ClassDesc            { return e.Desc }
func (e *EnumValue) StreamField(class, name string) any { return nil }
func (e *EnumValue) ConstantName() string               { return e.Name }

// Decoder reads an object stream.
type Decoder struct {
	r       *bufio.Reader
	handles []any
	read    int64
}

// NewDecoder reads and checks the stream header.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{r: bufio.NewReader(r)}
	magic, err := d.u16()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read stream header")
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(magic).
			Detail("bad stream magic 0x%04x", magic).
			Build()
	}
	version, err := d.u16()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read stream version")
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Value(version).
			Detail("stream version %d", version).
			Build()
	}
	return d, nil
}

// Decode reads the next top-level value. It returns io.EOF when the stream
// ends between values.
func (d *Decoder) Decode() (any, error) {
	if _, err := d.r.Peek(1); err == io.EOF {
		return nil, io.EOF
	}
	return d.content(nil)
}

// Read returns the number of bytes consumed so far.
func (d *Decoder) Read() int64 {
	return d.read
}

func (d *Decoder) ioError(err error, path []string) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.New(errors.PhaseDecode, errors.KindIO).
		Path(path...).
		Cause(err).
		Detail("truncated stream at offset %d", d.Read()).
		Build()
}

func (d *Decoder) full(n int) ([]byte, error) {
	b := make([]byte, n)
	m, err := io.ReadFull(d.r, b)
	d.read += int64(m)
	return b, err
}

func (d *Decoder) byte1() (byte, error) {
	c, err := d.r.ReadByte()
	if err == nil {
		d.read++
	}
	return c, err
}

func (d *Decoder) u16() (uint16, error) {
	b, err := d.full(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) u32() (uint32, error) {
	b, err := d.full(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) u64() (uint64, error) {
	b, err := d.full(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) utf(path []string) (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", d.ioError(err, path)
	}
	return d.utfBody(int(n), path)
}

func (d *Decoder) utfBody(n int, path []string) (string, error) {
	b, err := d.full(n)
	if err != nil {
		return "", d.ioError(err, path)
	}
	s, err := decodeModifiedUTF8(b)
	if err != nil {
		return "", errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path...).
			Cause(err).
			Detail("malformed string").
			Build()
	}
	return s, nil
}

func (d *Decoder) assign(v any) int {
	d.handles = append(d.handles, v)
	return len(d.handles) - 1
}

func (d *Decoder) lookup(path []string) (any, error) {
	h, err := d.u32()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	i := int64(int32(h)) - int64(BaseHandle)
	if i < 0 || i >= int64(len(d.handles)) {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path(path...).
			Value(h).
			Detail("handle 0x%x out of range (%d assigned)", h, len(d.handles)).
			Build()
	}
	return d.handles[i], nil
}

func (d *Decoder) content(path []string) (any, error) {
	tc, err := d.byte1()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	switch tc {
	case TCNull:
		return nil, nil
	case TCReference:
		return d.lookup(path)
	case TCString:
		s, err := d.utf(path)
		if err != nil {
			return nil, err
		}
		d.assign(s)
		return s, nil
	case TCLongString:
		n, err := d.u64()
		if err != nil {
			return nil, d.ioError(err, path)
		}
		if n > maxLength {
			return nil, errors.OutOfBounds(errors.PhaseDecode, path, int(min(n, math.MaxInt32)), maxLength)
		}
		s, err := d.utfBody(int(n), path)
		if err != nil {
			return nil, err
		}
		d.assign(s)
		return s, nil
	case TCClassDesc:
		return d.classDescBody(path)
	case TCClass:
		desc, err := d.classDesc(path)
		if err != nil {
			return nil, err
		}
		d.assign(desc)
		return desc, nil
	case TCObject:
		return d.object(path)
	case TCEnum:
		return d.enum(path)
	case TCArray:
		return d.array(path)
	case TCReset:
		d.handles = d.handles[:0]
		return d.content(path)
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Value(tc).
			Detail("record type 0x%02x at offset %d", tc, d.Read()-1).
			Build()
	}
}

// classDesc reads a descriptor position: a new descriptor, a reference to
// one or null.
func (d *Decoder) classDesc(path []string) (*ClassDesc, error) {
	tc, err := d.byte1()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	switch tc {
	case TCNull:
		return nil, nil
	case TCClassDesc:
		return d.classDescBody(path)
	case TCReference:
		v, err := d.lookup(path)
		if err != nil {
			return nil, err
		}
		desc, ok := v.(*ClassDesc)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseDecode, path, "", v, "class descriptor")
		}
		return desc, nil
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Value(tc).
			Detail("class descriptor record 0x%02x", tc).
			Build()
	}
}

func (d *Decoder) classDescBody(path []string) (*ClassDesc, error) {
	desc := &ClassDesc{}
	d.assign(desc)

	name, err := d.utf(path)
	if err != nil {
		return nil, err
	}
	desc.Name = name
	path = append(path, name)

	uid, err := d.u64()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	desc.SerialUID = int64(uid)
	if desc.Flags, err = d.byte1(); err != nil {
		return nil, d.ioError(err, path)
	}
	count, err := d.u16()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	desc.Fields = make([]FieldDesc, 0, count)
	for range count {
		code, err := d.byte1()
		if err != nil {
			return nil, d.ioError(err, path)
		}
		fname, err := d.utf(path)
		if err != nil {
			return nil, err
		}
		f := FieldDesc{Name: fname, Code: code}
		if !f.Primitive() {
			v, err := d.content(append(path, fname))
			if err != nil {
				return nil, err
			}
			class, ok := v.(string)
			if !ok {
				return nil, errors.TypeMismatch(errors.PhaseDecode, append(path, fname), name, v, "type string")
			}
			f.Class = class
		}
		desc.Fields = append(desc.Fields, f)
	}
	if _, _, err := d.annotation(path); err != nil {
		return nil, err
	}
	if desc.Super, err = d.classDesc(path); err != nil {
		return nil, err
	}
	return desc, nil
}

// annotation reads block data and values up to TC_ENDBLOCKDATA.
func (d *Decoder) annotation(path []string) ([]byte, []any, error) {
	var block []byte
	var values []any
	for {
		tc, err := d.r.Peek(1)
		if err != nil {
			return nil, nil, d.ioError(err, path)
		}
		switch tc[0] {
		case TCEndBlockData:
			d.byte1()
			return block, values, nil
		case TCBlockData:
			d.byte1()
			n, err := d.byte1()
			if err != nil {
				return nil, nil, d.ioError(err, path)
			}
			b, err := d.full(int(n))
			if err != nil {
				return nil, nil, d.ioError(err, path)
			}
			block = append(block, b...)
		case TCBlockDataLong:
			d.byte1()
			n, err := d.u32()
			if err != nil {
				return nil, nil, d.ioError(err, path)
			}
			if n > maxLength {
				return nil, nil, errors.OutOfBounds(errors.PhaseDecode, path, int(n), maxLength)
			}
			b, err := d.full(int(n))
			if err != nil {
				return nil, nil, d.ioError(err, path)
			}
			block = append(block, b...)
		default:
			v, err := d.content(append(path, fmt.Sprintf("[%d]", len(values))))
			if err != nil {
				return nil, nil, err
			}
			values = append(values, v)
		}
	}
}

func (d *Decoder) object(path []string) (any, error) {
	desc, err := d.classDesc(path)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path, "object without class descriptor")
	}
	obj := &Instance{Desc: desc, Values: make(map[string]map[string]any)}
	d.assign(obj)

	for _, cd := range desc.Hierarchy() {
		if cd.Flags&SCExternalizable != 0 {
			return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
				Path(path...).
				Type(cd.Name).
				Detail("externalizable class").
				Build()
		}
		values := make(map[string]any, len(cd.Fields))
		obj.Values[cd.Name] = values
		fields := cd.Sorted()
		for _, f := range fields {
			if f.Primitive() {
				v, err := d.primitive(f.Code, append(path, cd.Name, f.Name))
				if err != nil {
					return nil, err
				}
				values[f.Name] = v
			}
		}
		for _, f := range fields {
			if !f.Primitive() {
				v, err := d.content(append(path, f.Name))
				if err != nil {
					return nil, err
				}
				values[f.Name] = v
			}
		}
		if cd.Flags&SCWriteMethod == 0 {
			continue
		}
		block, items, err := d.annotation(append(path, cd.Name))
		if err != nil {
			return nil, err
		}
		if cd.Name == ArrayListClass {
			if len(block) != 4 {
				return nil, errors.InvalidData(errors.PhaseDecode, path, fmt.Sprintf("list capacity block of %d bytes", len(block)))
			}
			if size, ok := values["size"].(int32); ok && int(size) != len(items) {
				return nil, errors.InvalidData(errors.PhaseDecode, path, fmt.Sprintf("list size %d with %d elements", size, len(items)))
			}
			obj.Items = items
		}
	}
	return obj, nil
}

func (d *Decoder) enum(path []string) (any, error) {
	desc, err := d.classDesc(path)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path, "enumeration without class descriptor")
	}
	e := &EnumValue{Desc: desc}
	d.assign(e)
	v, err := d.content(append(path, desc.Name))
	if err != nil {
		return nil, err
	}
	name, ok := v.(string)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, path, desc.Name, v, "constant name")
	}
	e.Name = name
	return e, nil
}

func (d *Decoder) primitive(code byte, path []string) (any, error) {
	var size int
	switch code {
	case 'Z', 'B':
		size = 1
	case 'C', 'S':
		size = 2
	case 'I', 'F':
		size = 4
	case 'J', 'D':
		size = 8
	default:
		return nil, errors.InvalidData(errors.PhaseDecode, path, fmt.Sprintf("unknown type code %q", code))
	}
	b, err := d.full(size)
	if err != nil {
		return nil, d.ioError(err, path)
	}
	return primitiveValue(code, b), nil
}

func primitiveValue(code byte, b []byte) any {
	switch code {
	case 'Z':
		return b[0] != 0
	case 'B':
		return int8(b[0])
	case 'C':
		return binary.BigEndian.Uint16(b)
	case 'S':
		return int16(binary.BigEndian.Uint16(b))
	case 'I':
		return int32(binary.BigEndian.Uint32(b))
	case 'F':
		return math.Float32frombits(binary.BigEndian.Uint32(b))
	case 'J':
		return int64(binary.BigEndian.Uint64(b))
	default:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	}
}

func (d *Decoder) array(path []string) (any, error) {
	desc, err := d.classDesc(path)
	if err != nil {
		return nil, err
	}
	if desc == nil || len(desc.Name) != 2 || desc.Name[0] != '[' {
		name := "<nil>"
		if desc != nil {
			name = desc.Name
		}
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Type(name).
			Detail("only primitive arrays are supported").
			Build()
	}
	h := d.assign(nil)
	n, err := d.u32()
	if err != nil {
		return nil, d.ioError(err, path)
	}
	if n > maxLength {
		return nil, errors.OutOfBounds(errors.PhaseDecode, path, int(n), maxLength)
	}
	count := int(n)

	var v any
	code := desc.Name[1]
	switch code {
	case 'B':
		b, err := d.full(count)
		if err != nil {
			return nil, d.ioError(err, path)
		}
		v = b
	default:
		elems := make([]any, count)
		for i := range elems {
			if elems[i], err = d.primitive(code, path); err != nil {
				return nil, err
			}
		}
		v = typedSlice(code, elems)
	}
	d.handles[h] = v
	return v, nil
}

func typedSlice(code byte, elems []any) any {
	switch code {
	case 'C':
		return collect[uint16](elems)
	case 'S':
		return collect[int16](elems)
	case 'I':
		return collect[int32](elems)
	case 'J':
		return collect[int64](elems)
	case 'F':
		return collect[float32](elems)
	case 'D':
		return collect[float64](elems)
	default:
		return collect[bool](elems)
	}
}

func collect[T any](elems []any) []T {
	out := make([]T, len(elems))
	for i, e := range elems {
		out[i] = e.(T)
	}
	return out
}

// Walk visits every Instance reachable from v once, depth first, including
// list elements. Returning false from fn stops the walk.
func Walk(v any, fn func(*Instance) bool) {
	seen := make(map[*Instance]bool)
	var visit func(any) bool
	visit = func(v any) bool {
		obj, ok := v.(*Instance)
		if !ok || seen[obj] {
			return true
		}
		seen[obj] = true
		if !fn(obj) {
			return false
		}
		for _, cd := range obj.Desc.Hierarchy() {
			for _, f := range cd.Sorted() {
				if !f.Primitive() && !visit(obj.Values[cd.Name][f.Name]) {
					return false
				}
			}
		}
		for _, item := range obj.Items {
			if !visit(item) {
				return false
			}
		}
		return true
	}
	visit(v)
}
