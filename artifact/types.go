package artifact

import (
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero/api"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// External kinds used by imports and exports.
const (
	ExternFunc   byte = 0x00
	ExternTable  byte = 0x01
	ExternMemory byte = 0x02
	ExternGlobal byte = 0x03
	ExternTag    byte = 0x04
)

// FuncType is a core function signature.
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Equal reports whether two signatures are identical.
func (f FuncType) Equal(o FuncType) bool {
	return slices.Equal(f.Params, o.Params) && slices.Equal(f.Results, o.Results)
}

func (f FuncType) String() string {
	return fmt.Sprintf("%s -> %s", valueTypeNames(f.Params), valueTypeNames(f.Results))
}

func valueTypeNames(vts []api.ValueType) string {
	s := "("
	for i, vt := range vts {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(vt)
	}
	return s + ")"
}

func (f FuncType) encode() []byte {
	w := binary.NewWriter()
	w.Byte(0x60)
	w.WriteU32(uint32(len(f.Params)))
	for _, p := range f.Params {
		w.Byte(p)
	}
	w.WriteU32(uint32(len(f.Results)))
	for _, r := range f.Results {
		w.Byte(r)
	}
	return w.Bytes()
}

// Import is a module import. TypeIndex is set for function imports.
type Import struct {
	Module    string
	Name      string
	Kind      byte
	TypeIndex uint32
}

// Export is a module export.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Types decodes the type section. Only plain function types are supported.
func (m *Module) Types() ([]FuncType, error) {
	s := m.Section(SectionType)
	if s == nil {
		return nil, nil
	}
	r := binary.NewReader(s.Data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.ParseFailed("type count", err)
	}
	types := make([]FuncType, 0, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return nil, errors.ParseFailed("type form", err)
		}
		if form != 0x60 {
			return nil, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("type form 0x%02x", form))
		}
		params, err := readValTypes(r)
		if err != nil {
			return nil, errors.ParseFailed("param types", err)
		}
		results, err := readValTypes(r)
		if err != nil {
			return nil, errors.ParseFailed("result types", err)
		}
		types = append(types, FuncType{Params: params, Results: results})
	}
	return types, nil
}

func readValTypes(r *binary.Reader) ([]api.ValueType, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	raw, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]api.ValueType, n)
	for i, b := range raw {
		switch b {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64,
			api.ValueTypeExternref, 0x70:
			out[i] = b
		default:
			return nil, fmt.Errorf("unsupported value type 0x%02x", b)
		}
	}
	return out, nil
}

// Imports decodes the import section.
func (m *Module) Imports() ([]Import, error) {
	s := m.Section(SectionImport)
	if s == nil {
		return nil, nil
	}
	r := binary.NewReader(s.Data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.ParseFailed("import count", err)
	}
	imports := make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		var imp Import
		if imp.Module, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("import module", err)
		}
		if imp.Name, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("import name", err)
		}
		if imp.Kind, err = r.ReadByte(); err != nil {
			return nil, errors.ParseFailed("import kind", err)
		}
		if err := skipImportDesc(r, &imp); err != nil {
			return nil, errors.ParseFailed("import "+imp.Module+"."+imp.Name, err)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

func skipImportDesc(r *binary.Reader, imp *Import) error {
	var err error
	switch imp.Kind {
	case ExternFunc:
		imp.TypeIndex, err = r.ReadU32()
		return err
	case ExternTable:
		if _, err = r.ReadByte(); err != nil {
			return err
		}
		return skipLimits(r)
	case ExternMemory:
		return skipLimits(r)
	case ExternGlobal:
		_, err = r.ReadBytes(2)
		return err
	case ExternTag:
		if _, err = r.ReadByte(); err != nil {
			return err
		}
		_, err = r.ReadU32()
		return err
	default:
		return fmt.Errorf("unknown import kind 0x%02x", imp.Kind)
	}
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if _, err := r.ReadU32(); err != nil {
		return err
	}
	if flags&0x01 != 0 {
		_, err = r.ReadU32()
	}
	return err
}

// ImportedFuncCount returns the number of imported functions, which
// offsets the index of every locally defined function.
func (m *Module) ImportedFuncCount() (uint32, error) {
	imports, err := m.Imports()
	if err != nil {
		return 0, err
	}
	var n uint32
	for _, imp := range imports {
		if imp.Kind == ExternFunc {
			n++
		}
	}
	return n, nil
}

// FuncTypeIndices decodes the function section.
func (m *Module) FuncTypeIndices() ([]uint32, error) {
	s := m.Section(SectionFunction)
	if s == nil {
		return nil, nil
	}
	r := binary.NewReader(s.Data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.ParseFailed("function count", err)
	}
	out := make([]uint32, count)
	for i := range out {
		if out[i], err = r.ReadU32(); err != nil {
			return nil, errors.ParseFailed("function type index", err)
		}
	}
	return out, nil
}

// Exports decodes the export section.
func (m *Module) Exports() ([]Export, error) {
	s := m.Section(SectionExport)
	if s == nil {
		return nil, nil
	}
	r := binary.NewReader(s.Data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.ParseFailed("export count", err)
	}
	exports := make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		var exp Export
		if exp.Name, err = r.ReadName(); err != nil {
			return nil, errors.ParseFailed("export name", err)
		}
		if exp.Kind, err = r.ReadByte(); err != nil {
			return nil, errors.ParseFailed("export kind", err)
		}
		if exp.Index, err = r.ReadU32(); err != nil {
			return nil, errors.ParseFailed("export index", err)
		}
		exports = append(exports, exp)
	}
	return exports, nil
}

// FuncType returns the signature of the function at funcIdx, counting
// imported functions first.
func (m *Module) FuncType(funcIdx uint32) (FuncType, error) {
	types, err := m.Types()
	if err != nil {
		return FuncType{}, err
	}
	imports, err := m.Imports()
	if err != nil {
		return FuncType{}, err
	}

	var typeIdx uint32
	found := false
	var n uint32
	for _, imp := range imports {
		if imp.Kind != ExternFunc {
			continue
		}
		if n == funcIdx {
			typeIdx, found = imp.TypeIndex, true
			break
		}
		n++
	}
	if !found {
		local, err := m.FuncTypeIndices()
		if err != nil {
			return FuncType{}, err
		}
		i := int(funcIdx - n)
		if funcIdx < n || i >= len(local) {
			return FuncType{}, errors.OutOfBounds(errors.PhaseParse, []string{"functions"}, int(funcIdx), int(n)+len(local))
		}
		typeIdx = local[i]
	}
	if int(typeIdx) >= len(types) {
		return FuncType{}, errors.OutOfBounds(errors.PhaseParse, []string{"types"}, int(typeIdx), len(types))
	}
	return types[typeIdx], nil
}

// EntryPoint is an exported function with its resolved signature.
type EntryPoint struct {
	Name string
	Type FuncType
}

// EntryPoints lists every exported function.
func (m *Module) EntryPoints() ([]EntryPoint, error) {
	exports, err := m.Exports()
	if err != nil {
		return nil, err
	}
	var out []EntryPoint
	for _, exp := range exports {
		if exp.Kind != ExternFunc {
			continue
		}
		ft, err := m.FuncType(exp.Index)
		if err != nil {
			return nil, err
		}
		out = append(out, EntryPoint{Name: exp.Name, Type: ft})
	}
	return out, nil
}

// HasEntryPoint reports whether a function with exactly this name and
// signature is exported.
func (m *Module) HasEntryPoint(name string, ft FuncType) (bool, error) {
	eps, err := m.EntryPoints()
	if err != nil {
		return false, err
	}
	for _, ep := range eps {
		if ep.Name == name && ep.Type.Equal(ft) {
			return true, nil
		}
	}
	return false, nil
}
