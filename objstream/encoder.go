package objstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Encoder writes an object stream. Objects are written once and referenced
// by handle afterwards; class descriptors are shared by class name and
// strings by value.
type Encoder struct {
	w       *bufio.Writer
	objects map[any]int32
	strings map[string]int32
	descs   map[string]int32
	block   []byte
	next    int32
	written int64
}

// NewEncoder writes the stream header to w.
func NewEncoder(w io.Writer) (*Encoder, error) {
	e := &Encoder{
		w:       bufio.NewWriter(w),
		objects: make(map[any]int32),
		strings: make(map[string]int32),
		descs:   make(map[string]int32),
		next:    BaseHandle,
	}
	e.u16(Magic)
	e.u16(Version)
	return e, nil
}

// Encode writes v and flushes. v is nil, a string, a primitive slice or
// an Object.
func (e *Encoder) Encode(v any) error {
	if err := e.value(v, nil); err != nil {
		return err
	}
	if err := e.flushBlock(); err != nil {
		return err
	}
	if err := e.w.Flush(); err != nil {
		return errors.Wrap(errors.PhaseSerialize, errors.KindIO, err, "flush stream")
	}
	return nil
}

// Written returns the number of bytes produced so far.
func (e *Encoder) Written() int64 {
	return e.written
}

func (e *Encoder) raw(b ...byte) {
	n, _ := e.w.Write(b)
	e.written += int64(n)
}

func (e *Encoder) u16(v uint16) {
	e.raw(byte(v>>8), byte(v))
}

func (e *Encoder) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.raw(b[:]...)
}

func (e *Encoder) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.raw(b[:]...)
}

func (e *Encoder) utf(s string) error {
	b := appendModifiedUTF8(nil, s)
	if len(b) > math.MaxUint16 {
		return errors.New(errors.PhaseSerialize, errors.KindOutOfBounds).
			Detail("name of %d bytes exceeds 65535", len(b)).
			Build()
	}
	e.u16(uint16(len(b)))
	e.raw(b...)
	return nil
}

func (e *Encoder) handle(h int32) {
	e.raw(TCReference)
	e.u32(uint32(h))
}

func (e *Encoder) assign() int32 {
	h := e.next
	e.next++
	return h
}

// flushBlock frames pending custom data as TC_BLOCKDATA records.
func (e *Encoder) flushBlock() error {
	for len(e.block) > 0 {
		n := min(len(e.block), 255)
		e.raw(TCBlockData, byte(n))
		e.raw(e.block[:n]...)
		e.block = e.block[n:]
	}
	e.block = nil
	return nil
}

func (e *Encoder) value(v any, path []string) error {
	if err := e.flushBlock(); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		e.raw(TCNull)
		return nil
	case string:
		if h, ok := e.strings[x]; ok {
			e.handle(h)
			return nil
		}
		return e.newString(x)
	case []byte, []int8, []uint16, []int16, []int32, []int64, []float32, []float64, []bool:
		return e.array(x, path)
	case Object:
		if h, ok := e.objects[x]; ok {
			e.handle(h)
			return nil
		}
		d := x.StreamDesc()
		if d == nil {
			return errors.New(errors.PhaseSerialize, errors.KindUnsupported).
				Path(path...).
				Value(v).
				Detail("value of %T is not serializable", v).
				Build()
		}
		if d.IsEnum() {
			return e.enum(x, d, path)
		}
		return e.object(x, d, path)
	default:
		return errors.New(errors.PhaseSerialize, errors.KindUnsupported).
			Path(path...).
			Value(v).
			Detail("cannot write %T", v).
			Build()
	}
}

func (e *Encoder) newString(s string) error {
	n := modifiedUTF8Len(s)
	if n > math.MaxUint16 {
		e.raw(TCLongString)
		e.strings[s] = e.assign()
		e.u64(uint64(n))
		e.raw(appendModifiedUTF8(nil, s)...)
		return nil
	}
	e.raw(TCString)
	e.strings[s] = e.assign()
	return e.utf(s)
}

func (e *Encoder) classDesc(d *ClassDesc) error {
	if d == nil {
		e.raw(TCNull)
		return nil
	}
	if h, ok := e.descs[d.Name]; ok {
		e.handle(h)
		return nil
	}
	e.raw(TCClassDesc)
	e.descs[d.Name] = e.assign()
	if err := e.utf(d.Name); err != nil {
		return err
	}
	e.u64(uint64(d.SerialUID))
	e.raw(d.Flags)

	fields := d.Sorted()
	e.u16(uint16(len(fields)))
	for _, f := range fields {
		e.raw(f.Code)
		if err := e.utf(f.Name); err != nil {
			return err
		}
		if !f.Primitive() {
			if h, ok := e.strings[f.Class]; ok {
				e.handle(h)
			} else if err := e.newString(f.Class); err != nil {
				return err
			}
		}
	}
	e.raw(TCEndBlockData)
	return e.classDesc(d.Super)
}

func (e *Encoder) enum(x Object, d *ClassDesc, path []string) error {
	c, ok := x.(Constant)
	if !ok {
		return errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
			Path(path...).
			Type(d.Name).
			Detail("enumeration value has no constant name").
			Build()
	}
	e.raw(TCEnum)
	if err := e.classDesc(d); err != nil {
		return err
	}
	e.objects[x] = e.assign()
	// constant names are always written as new strings
	return e.newString(c.ConstantName())
}

func (e *Encoder) object(x Object, d *ClassDesc, path []string) error {
	e.raw(TCObject)
	if err := e.classDesc(d); err != nil {
		return err
	}
	e.objects[x] = e.assign()

	for _, cd := range d.Hierarchy() {
		fields := cd.Sorted()
		for _, f := range fields {
			if !f.Primitive() {
				continue
			}
			if err := e.primitive(f.Code, x.StreamField(cd.Name, f.Name), append(path, cd.Name, f.Name)); err != nil {
				return err
			}
		}
		for _, f := range fields {
			if f.Primitive() {
				continue
			}
			if err := e.value(x.StreamField(cd.Name, f.Name), append(path, f.Name)); err != nil {
				return err
			}
		}
		if cd.Flags&SCWriteMethod != 0 {
			if err := e.custom(x, cd, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// custom writes the data a class appends after its fields.
func (e *Encoder) custom(x Object, cd *ClassDesc, path []string) error {
	if cd.Name == ArrayListClass {
		l, ok := x.(List)
		if !ok {
			return errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
				Path(path...).
				Type(cd.Name).
				Detail("list class without elements").
				Build()
		}
		items := l.StreamItems()
		e.block = binary.BigEndian.AppendUint32(e.block, uint32(len(items)))
		for i, item := range items {
			if err := e.value(item, append(path, fmt.Sprintf("[%d]", i))); err != nil {
				return err
			}
		}
	}
	if err := e.flushBlock(); err != nil {
		return err
	}
	e.raw(TCEndBlockData)
	return nil
}

func (e *Encoder) primitive(code byte, v any, path []string) error {
	mismatch := func(want string) error {
		return errors.TypeMismatch(errors.PhaseSerialize, path, "", v, want)
	}
	switch code {
	case 'Z':
		b, ok := v.(bool)
		if !ok {
			return mismatch("boolean")
		}
		if b {
			e.raw(1)
		} else {
			e.raw(0)
		}
	case 'B':
		b, ok := v.(int8)
		if !ok {
			return mismatch("byte")
		}
		e.raw(byte(b))
	case 'C':
		c, ok := v.(uint16)
		if !ok {
			return mismatch("char")
		}
		e.u16(c)
	case 'S':
		s, ok := v.(int16)
		if !ok {
			return mismatch("short")
		}
		e.u16(uint16(s))
	case 'I':
		i, ok := v.(int32)
		if !ok {
			return mismatch("int")
		}
		e.u32(uint32(i))
	case 'J':
		j, ok := v.(int64)
		if !ok {
			return mismatch("long")
		}
		e.u64(uint64(j))
	case 'F':
		f, ok := v.(float32)
		if !ok {
			return mismatch("float")
		}
		e.u32(math.Float32bits(f))
	case 'D':
		d, ok := v.(float64)
		if !ok {
			return mismatch("double")
		}
		e.u64(math.Float64bits(d))
	default:
		return errors.InvalidData(errors.PhaseSerialize, path, fmt.Sprintf("unknown type code %q", code))
	}
	return nil
}

func (e *Encoder) array(v any, path []string) error {
	var name string
	var n int
	switch x := v.(type) {
	case []byte:
		name, n = "[B", len(x)
	case []int8:
		name, n = "[B", len(x)
	case []uint16:
		name, n = "[C", len(x)
	case []int16:
		name, n = "[S", len(x)
	case []int32:
		name, n = "[I", len(x)
	case []int64:
		name, n = "[J", len(x)
	case []float32:
		name, n = "[F", len(x)
	case []float64:
		name, n = "[D", len(x)
	case []bool:
		name, n = "[Z", len(x)
	}
	e.raw(TCArray)
	if err := e.classDesc(arrayDescs[name]); err != nil {
		return err
	}
	e.assign()
	e.u32(uint32(n))

	switch x := v.(type) {
	case []byte:
		e.raw(x...)
	case []int8:
		for _, b := range x {
			e.raw(byte(b))
		}
	case []uint16:
		for _, c := range x {
			e.u16(c)
		}
	case []int16:
		for _, s := range x {
			e.u16(uint16(s))
		}
	case []int32:
		for _, i := range x {
			e.u32(uint32(i))
		}
	case []int64:
		for _, j := range x {
			e.u64(uint64(j))
		}
	case []float32:
		for _, f := range x {
			e.u32(math.Float32bits(f))
		}
	case []float64:
		for _, d := range x {
			e.u64(math.Float64bits(d))
		}
	case []bool:
		for _, b := range x {
			if b {
				e.raw(1)
			} else {
				e.raw(0)
			}
		}
	}
	return nil
}
