package artifact

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Sig is a parsed method signature such as "(DDLcom/ardor3d/math/Vector3;)Z".
// Params and Return hold field type descriptors; Return is "V" for void.
type Sig struct {
	Params []string
	Return string
}

// ParseSig parses a method signature.
func ParseSig(sig string) (Sig, error) {
	rest, ok := strings.CutPrefix(sig, "(")
	if !ok {
		return Sig{}, sigError(sig, "missing '('")
	}
	var s Sig
	for !strings.HasPrefix(rest, ")") {
		if rest == "" {
			return Sig{}, sigError(sig, "missing ')'")
		}
		t, n, err := fieldType(rest)
		if err != nil {
			return Sig{}, sigError(sig, err.Error())
		}
		s.Params = append(s.Params, t)
		rest = rest[n:]
	}
	rest = rest[1:]
	if rest == "V" {
		s.Return = "V"
		return s, nil
	}
	t, n, err := fieldType(rest)
	if err != nil {
		return Sig{}, sigError(sig, err.Error())
	}
	if n != len(rest) {
		return Sig{}, sigError(sig, "trailing characters")
	}
	s.Return = t
	return s, nil
}

func fieldType(s string) (string, int, error) {
	if s == "" {
		return "", 0, fmt.Errorf("empty type")
	}
	switch s[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return s[:1], 1, nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 2 {
			return "", 0, fmt.Errorf("unterminated class type")
		}
		return s[:end+1], end + 1, nil
	case '[':
		t, n, err := fieldType(s[1:])
		if err != nil {
			return "", 0, err
		}
		return "[" + t, n + 1, nil
	default:
		return "", 0, fmt.Errorf("invalid type %q", s[0])
	}
}

func sigError(sig, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Value(sig).
		Detail("signature %q: %s", sig, detail).
		Build()
}

// ValueType maps a primitive field descriptor to its core value type.
// Reference types have no core representation.
func ValueType(desc string) (api.ValueType, bool) {
	switch desc {
	case "Z", "B", "C", "S", "I":
		return api.ValueTypeI32, true
	case "J":
		return api.ValueTypeI64, true
	case "F":
		return api.ValueTypeF32, true
	case "D":
		return api.ValueTypeF64, true
	default:
		return 0, false
	}
}

// FuncType returns the entry point signature implementing s. Only
// primitive parameters and results can cross into an artifact.
func (s Sig) FuncType() (FuncType, error) {
	var ft FuncType
	for _, p := range s.Params {
		vt, ok := ValueType(p)
		if !ok {
			return FuncType{}, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("reference parameter %s in entry point", p))
		}
		ft.Params = append(ft.Params, vt)
	}
	if s.Return != "V" {
		vt, ok := ValueType(s.Return)
		if !ok {
			return FuncType{}, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("reference result %s in entry point", s.Return))
		}
		ft.Results = []api.ValueType{vt}
	}
	return ft, nil
}

// SigFuncType parses sig and maps it to an entry point signature.
func SigFuncType(sig string) (FuncType, error) {
	s, err := ParseSig(sig)
	if err != nil {
		return FuncType{}, err
	}
	return s.FuncType()
}
