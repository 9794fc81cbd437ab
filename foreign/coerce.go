package foreign

import (
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

const stringClass = "java.lang.String"

// zeroValue returns the initial value of a field of the given type code.
func zeroValue(code byte) any {
	switch code {
	case 'Z':
		return false
	case 'B':
		return int8(0)
	case 'C':
		return uint16(0)
	case 'S':
		return int16(0)
	case 'I':
		return int32(0)
	case 'J':
		return int64(0)
	case 'F':
		return float32(0)
	case 'D':
		return float64(0)
	default:
		return nil
	}
}

// coerceField converts v to the representation of field f.
func coerceField(f artifact.Field, v any, path []string) (any, error) {
	switch f.Code {
	case 'L':
		return coerceReference(f.ClassName(), v, path)
	case '[':
		return coerceArray(f.Class, v, path)
	default:
		return coercePrimitive(f.Code, v, path)
	}
}

// coerceParam converts v to the field type descriptor desc of a parameter.
func coerceParam(desc string, v any, path []string) (any, error) {
	switch desc[0] {
	case 'L':
		return coerceReference(artifact.Field{Code: 'L', Class: desc}.ClassName(), v, path)
	case '[':
		return coerceArray(desc, v, path)
	default:
		return coercePrimitive(desc[0], v, path)
	}
}

func coercePrimitive(code byte, v any, path []string) (any, error) {
	if code == 'Z' {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseBuild, path, "", v, "boolean")
		}
		return b, nil
	}

	i, isInt := integer(v)
	if !isInt {
		f, isFloat := floating(v)
		switch {
		case isFloat && code == 'F':
			return float32(f), nil
		case isFloat && code == 'D':
			return f, nil
		default:
			return nil, errors.TypeMismatch(errors.PhaseBuild, path, "", v, typeCodeName(code))
		}
	}

	inRange := func(lo, hi int64) error {
		if i < lo || i > hi {
			return errors.New(errors.PhaseBuild, errors.KindOutOfBounds).
				Path(path...).
				Value(v).
				Detail("%d does not fit %s", i, typeCodeName(code)).
				Build()
		}
		return nil
	}
	switch code {
	case 'B':
		return int8(i), inRange(math.MinInt8, math.MaxInt8)
	case 'C':
		return uint16(i), inRange(0, math.MaxUint16)
	case 'S':
		return int16(i), inRange(math.MinInt16, math.MaxInt16)
	case 'I':
		return int32(i), inRange(math.MinInt32, math.MaxInt32)
	case 'J':
		return i, nil
	case 'F':
		return float32(i), nil
	case 'D':
		return float64(i), nil
	}
	return nil, errors.InvalidData(errors.PhaseBuild, path, fmt.Sprintf("unknown type code %q", code))
}

func integer(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func floating(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func coerceReference(class string, v any, path []string) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *Object:
		if x == nil {
			return nil, nil
		}
		if class == typename.Object || x.class.Is(class) {
			return x, nil
		}
		return nil, errors.TypeMismatch(errors.PhaseBuild, path, x.class.Name(), v, class)
	case string:
		if class == stringClass || class == typename.Object {
			return x, nil
		}
	case []byte, []uint16, []int16, []int32, []int64, []float32, []float64, []bool:
		if class == typename.Object {
			return x, nil
		}
	}
	return nil, errors.TypeMismatch(errors.PhaseBuild, path, "", v, class)
}

func coerceArray(desc string, v any, path []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	ok := false
	switch v.(type) {
	case []byte:
		ok = desc == "[B"
	case []uint16:
		ok = desc == "[C"
	case []int16:
		ok = desc == "[S"
	case []int32:
		ok = desc == "[I"
	case []int64:
		ok = desc == "[J"
	case []float32:
		ok = desc == "[F"
	case []float64:
		ok = desc == "[D"
	case []bool:
		ok = desc == "[Z"
	}
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseBuild, path, "", v, desc)
	}
	return v, nil
}

// lower encodes a coerced primitive argument as a core value.
func lower(desc string, v any) uint64 {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case int8:
		return api.EncodeI32(int32(x))
	case uint16:
		return api.EncodeU32(uint32(x))
	case int16:
		return api.EncodeI32(int32(x))
	case int32:
		return api.EncodeI32(x)
	case int64:
		return api.EncodeI64(x)
	case float32:
		return api.EncodeF32(x)
	case float64:
		return api.EncodeF64(x)
	}
	panic(fmt.Sprintf("foreign: cannot lower %T as %s", v, desc))
}

// lift decodes an entry point result of descriptor desc.
func lift(desc string, res []uint64) any {
	if desc == "V" || len(res) == 0 {
		return nil
	}
	r := res[0]
	switch desc {
	case "Z":
		return uint32(r) != 0
	case "B":
		return int8(api.DecodeI32(r))
	case "C":
		return uint16(api.DecodeU32(r))
	case "S":
		return int16(api.DecodeI32(r))
	case "I":
		return api.DecodeI32(r)
	case "J":
		return int64(r)
	case "F":
		return api.DecodeF32(r)
	case "D":
		return api.DecodeF64(r)
	}
	return nil
}

func typeCodeName(code byte) string {
	switch code {
	case 'Z':
		return "boolean"
	case 'B':
		return "byte"
	case 'C':
		return "char"
	case 'S':
		return "short"
	case 'I':
		return "int"
	case 'J':
		return "long"
	case 'F':
		return "float"
	case 'D':
		return "double"
	}
	return string(code)
}
