package objstream

import (
	"sort"
)

// Stream header.
const (
	Magic   uint16 = 0xACED
	Version uint16 = 5
)

// Record type codes.
const (
	TCNull           byte = 0x70
	TCReference      byte = 0x71
	TCClassDesc      byte = 0x72
	TCObject         byte = 0x73
	TCString         byte = 0x74
	TCArray          byte = 0x75
	TCClass          byte = 0x76
	TCBlockData      byte = 0x77
	TCEndBlockData   byte = 0x78
	TCReset          byte = 0x79
	TCBlockDataLong  byte = 0x7A
	TCException      byte = 0x7B
	TCLongString     byte = 0x7C
	TCProxyClassDesc byte = 0x7D
	TCEnum           byte = 0x7E
)

// BaseHandle is the wire handle of the first shared record.
const BaseHandle int32 = 0x7E0000

// Class descriptor flags.
const (
	SCWriteMethod    byte = 0x01
	SCSerializable   byte = 0x02
	SCExternalizable byte = 0x04
	SCBlockData      byte = 0x08
	SCEnum           byte = 0x10
)

// Class names with custom stream data.
const (
	ArrayListClass = "java.util.ArrayList"
	EnumClass      = "java.lang.Enum"
)

// FieldDesc is a serializable field. Code is the type code; Class is the
// type signature of reference fields ("Lcom/ardor3d/math/Vector3;").
type FieldDesc struct {
	Name  string
	Class string
	Code  byte
}

// Primitive reports whether the field holds primitive data.
func (f FieldDesc) Primitive() bool {
	return f.Code != 'L' && f.Code != '['
}

// ClassDesc describes one class level of a serialized object.
type ClassDesc struct {
	Super     *ClassDesc
	Name      string
	Fields    []FieldDesc
	SerialUID int64
	Flags     byte
}

// Sorted returns the fields in stream order: primitive fields sorted by
// name, then reference fields sorted by name.
func (d *ClassDesc) Sorted() []FieldDesc {
	out := append([]FieldDesc(nil), d.Fields...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Primitive(), out[j].Primitive()
		if pi != pj {
			return pi
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Hierarchy returns the serializable class levels, top-most first.
func (d *ClassDesc) Hierarchy() []*ClassDesc {
	var out []*ClassDesc
	for c := d; c != nil; c = c.Super {
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsEnum reports whether the descriptor describes an enumeration.
func (d *ClassDesc) IsEnum() bool {
	return d.Flags&SCEnum != 0
}

// Object is a value the encoder writes as TC_OBJECT or TC_ENUM. The
// dynamic type must be comparable; identical values are written once and
// referenced afterwards.
type Object interface {
	// StreamDesc returns the most derived serializable class, or nil.
	StreamDesc() *ClassDesc
	// StreamField returns the value of field name declared by class.
	StreamField(class, name string) any
}

// List is an Object carrying list elements, written after the fields of
// java.util.ArrayList.
type List interface {
	Object
	StreamItems() []any
}

// Constant is an Object of an enumeration class.
type Constant interface {
	Object
	ConstantName() string
}

// Array class descriptors of the primitive arrays.
var arrayDescs = map[string]*ClassDesc{
	"[B": {Name: "[B", SerialUID: -5984413125824719648, Flags: SCSerializable},
	"[C": {Name: "[C", SerialUID: -5753798564021173076, Flags: SCSerializable},
	"[D": {Name: "[D", SerialUID: 4514449696888150558, Flags: SCSerializable},
	"[F": {Name: "[F", SerialUID: 836686056779680834, Flags: SCSerializable},
	"[I": {Name: "[I", SerialUID: 5600894804908749477, Flags: SCSerializable},
	"[J": {Name: "[J", SerialUID: 8655923659555304851, Flags: SCSerializable},
	"[S": {Name: "[S", SerialUID: -1188055269542874886, Flags: SCSerializable},
	"[Z": {Name: "[Z", SerialUID: 6309297032502205922, Flags: SCSerializable},
}

// ArrayDesc returns the class descriptor of a primitive array class.
func ArrayDesc(name string) (*ClassDesc, bool) {
	d, ok := arrayDescs[name]
	return d, ok
}

// EnumDesc returns the descriptor of enumeration class name, whose super
// descriptor is java.lang.Enum.
func EnumDesc(name string) *ClassDesc {
	return &ClassDesc{
		Name:  name,
		Flags: SCSerializable | SCEnum,
		Super: &ClassDesc{Name: EnumClass, Flags: SCSerializable | SCEnum},
	}
}
