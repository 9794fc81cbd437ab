package artifact

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Opcodes used by generated bodies.
const (
	opIf       byte = 0x04
	opEnd      byte = 0x0b
	opReturn   byte = 0x0f
	opCall     byte = 0x10
	opLocalGet byte = 0x20
	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF32Const byte = 0x43
	opF64Const byte = 0x44
	opI32Eqz   byte = 0x45
	opF32Eq    byte = 0x5b
	opF32Ne    byte = 0x5c
	opF64Eq    byte = 0x61
	opF64Ne    byte = 0x62
	opF32Abs   byte = 0x8b
	opF64Abs   byte = 0x99

	blockVoid byte = 0x40
)

// BodyWriter assembles a function body: locals declaration followed by
// instructions. Only the handful of instructions needed by generated
// entry points are supported.
type BodyWriter struct {
	w *binary.Writer
}

// NewBody starts a body with no declared locals.
func NewBody() *BodyWriter {
	w := binary.NewWriter()
	w.WriteU32(0)
	return &BodyWriter{w: w}
}

func (b *BodyWriter) LocalGet(i uint32) *BodyWriter {
	b.w.Byte(opLocalGet)
	b.w.WriteU32(i)
	return b
}

func (b *BodyWriter) Call(funcIdx uint32) *BodyWriter {
	b.w.Byte(opCall)
	b.w.WriteU32(funcIdx)
	return b
}

func (b *BodyWriter) I32(v int32) *BodyWriter {
	b.w.Byte(opI32Const)
	b.w.WriteS64(int64(v))
	return b
}

func (b *BodyWriter) I64(v int64) *BodyWriter {
	b.w.Byte(opI64Const)
	b.w.WriteS64(v)
	return b
}

func (b *BodyWriter) F32(v float32) *BodyWriter {
	b.w.Byte(opF32Const)
	bits := math.Float32bits(v)
	b.w.WriteBytes([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
	return b
}

func (b *BodyWriter) F64(v float64) *BodyWriter {
	b.w.Byte(opF64Const)
	b.w.WriteF64(v)
	return b
}

// Zero pushes the zero value of vt.
func (b *BodyWriter) Zero(vt api.ValueType) *BodyWriter {
	switch vt {
	case api.ValueTypeI64:
		return b.I64(0)
	case api.ValueTypeF32:
		return b.F32(0)
	case api.ValueTypeF64:
		return b.F64(0)
	default:
		return b.I32(0)
	}
}

// Op appends raw opcode bytes.
func (b *BodyWriter) Op(ops ...byte) *BodyWriter {
	b.w.WriteBytes(ops)
	return b
}

// ReturnIf returns the i32 constant v when the condition on the stack holds.
func (b *BodyWriter) ReturnIf(v int32) *BodyWriter {
	b.w.Byte(opIf)
	b.w.Byte(blockVoid)
	b.I32(v)
	b.w.Byte(opReturn)
	b.w.Byte(opEnd)
	return b
}

// Eqz replaces the i32 on the stack with 1 if it is zero and 0 otherwise.
func (b *BodyWriter) Eqz() *BodyWriter {
	b.w.Byte(opI32Eqz)
	return b
}

func (b *BodyWriter) Return() *BodyWriter {
	b.w.Byte(opReturn)
	return b
}

// End terminates the body and returns its bytes.
func (b *BodyWriter) End() []byte {
	b.w.Byte(opEnd)
	return b.w.Bytes()
}

// NopBody returns a body that immediately returns zero values for ft's results.
func NopBody(ft FuncType) []byte {
	b := NewBody()
	for _, r := range ft.Results {
		b.Zero(r)
	}
	return b.Return().End()
}

// FiniteCheckBody returns a predicate body for ft that yields 1 when every
// float parameter is neither NaN nor infinite, and 0 otherwise. ft must
// take only f32/f64 parameters and return a single i32.
func FiniteCheckBody(ft FuncType) ([]byte, error) {
	if len(ft.Results) != 1 || ft.Results[0] != api.ValueTypeI32 {
		return nil, errors.InvalidInput(errors.PhasePatch, "finite check must return a single i32")
	}
	b := NewBody()
	for i, p := range ft.Params {
		idx := uint32(i)
		switch p {
		case api.ValueTypeF64:
			// x != x holds only for NaN
			b.LocalGet(idx).LocalGet(idx).Op(opF64Ne).ReturnIf(0)
			b.LocalGet(idx).Op(opF64Abs).F64(math.Inf(1)).Op(opF64Eq).ReturnIf(0)
		case api.ValueTypeF32:
			b.LocalGet(idx).LocalGet(idx).Op(opF32Ne).ReturnIf(0)
			b.LocalGet(idx).Op(opF32Abs).F32(float32(math.Inf(1))).Op(opF32Eq).ReturnIf(0)
		default:
			return nil, errors.InvalidInput(errors.PhasePatch, "finite check parameters must be f32 or f64")
		}
	}
	return b.I32(1).End(), nil
}
