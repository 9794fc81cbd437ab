package artifact

import (
	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// AddFunction appends a locally defined function with the given signature
// and body (locals declaration plus instructions, terminated by end) and
// exports it under name. It returns the new function index.
//
// Existing entries of every touched section stay byte-identical; an equal
// signature already present in the type section is reused.
func (m *Module) AddFunction(name string, ft FuncType, body []byte) (uint32, error) {
	types, err := m.Types()
	if err != nil {
		return 0, err
	}
	local, err := m.FuncTypeIndices()
	if err != nil {
		return 0, err
	}
	imported, err := m.ImportedFuncCount()
	if err != nil {
		return 0, err
	}
	if err := m.checkCodeCount(len(local)); err != nil {
		return 0, err
	}
	exports, err := m.Exports()
	if err != nil {
		return 0, err
	}
	for _, exp := range exports {
		if exp.Name == name {
			return 0, errors.InvalidData(errors.PhasePatch, nil, "export "+name+" already present with another signature")
		}
	}

	typeIdx := -1
	for i, t := range types {
		if t.Equal(ft) {
			typeIdx = i
			break
		}
	}
	if typeIdx < 0 {
		typeIdx = len(types)
		if err := m.appendTo(SectionType, ft.encode()); err != nil {
			return 0, err
		}
	}

	funcIdx := imported + uint32(len(local))
	if err := m.appendTo(SectionFunction, binary.AppendU32(nil, uint32(typeIdx))); err != nil {
		return 0, err
	}

	code := binary.AppendU32(nil, uint32(len(body)))
	code = append(code, body...)
	if err := m.appendTo(SectionCode, code); err != nil {
		return 0, err
	}

	w := binary.NewWriter()
	w.WriteName(name)
	w.Byte(ExternFunc)
	w.WriteU32(funcIdx)
	if err := m.appendTo(SectionExport, w.Bytes()); err != nil {
		return 0, err
	}

	return funcIdx, nil
}

func (m *Module) appendTo(id byte, entry []byte) error {
	var data []byte
	if s := m.Section(id); s != nil {
		data = s.Data
	}
	out, err := appendEntry(data, entry)
	if err != nil {
		return errors.Wrap(errors.PhasePatch, errors.KindInvalidData, err, "append section entry")
	}
	m.SetSection(id, out)
	return nil
}

func (m *Module) checkCodeCount(funcs int) error {
	s := m.Section(SectionCode)
	if s == nil {
		if funcs != 0 {
			return errors.InvalidData(errors.PhaseParse, nil, "function section without code section")
		}
		return nil
	}
	n, err := binary.NewReader(s.Data).ReadU32()
	if err != nil {
		return errors.ParseFailed("code count", err)
	}
	if int(n) != funcs {
		return errors.InvalidData(errors.PhaseParse, nil, "function and code section counts differ")
	}
	return nil
}
