package artifact

import (
	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
)

// Builder assembles artifacts from scratch: a descriptor, function imports
// from other types, and exported entry points.
type Builder struct {
	desc    *Descriptor
	types   []FuncType
	imports []builderImport
	funcs   []builderFunc
}

type builderImport struct {
	module  string
	name    string
	typeIdx uint32
}

type builderFunc struct {
	name    string
	body    []byte
	typeIdx uint32
}

// NewBuilder creates a builder for a type with the given descriptor.
// A nil descriptor produces an artifact without a structural header.
func NewBuilder(desc *Descriptor) *Builder {
	return &Builder{desc: desc}
}

func (b *Builder) typeIndex(ft FuncType) uint32 {
	for i, t := range b.types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	b.types = append(b.types, ft)
	return uint32(len(b.types) - 1)
}

// Import declares a function imported from module and returns its function
// index. All imports must be declared before the first Func call.
func (b *Builder) Import(module, name string, ft FuncType) uint32 {
	b.imports = append(b.imports, builderImport{module: module, name: name, typeIdx: b.typeIndex(ft)})
	return uint32(len(b.imports) - 1)
}

// Func adds an exported function and returns its function index.
func (b *Builder) Func(name string, ft FuncType, body []byte) uint32 {
	b.funcs = append(b.funcs, builderFunc{name: name, body: body, typeIdx: b.typeIndex(ft)})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Build generates the artifact bytes.
func (b *Builder) Build() []byte {
	m := &Module{}

	if len(b.types) > 0 {
		w := binary.NewWriter()
		w.WriteU32(uint32(len(b.types)))
		for _, t := range b.types {
			w.WriteBytes(t.encode())
		}
		m.SetSection(SectionType, w.Bytes())
	}

	if len(b.imports) > 0 {
		w := binary.NewWriter()
		w.WriteU32(uint32(len(b.imports)))
		for _, imp := range b.imports {
			w.WriteName(imp.module)
			w.WriteName(imp.name)
			w.Byte(ExternFunc)
			w.WriteU32(imp.typeIdx)
		}
		m.SetSection(SectionImport, w.Bytes())
	}

	if len(b.funcs) > 0 {
		fw := binary.NewWriter()
		ew := binary.NewWriter()
		cw := binary.NewWriter()
		fw.WriteU32(uint32(len(b.funcs)))
		ew.WriteU32(uint32(len(b.funcs)))
		cw.WriteU32(uint32(len(b.funcs)))
		for i, f := range b.funcs {
			fw.WriteU32(f.typeIdx)
			ew.WriteName(f.name)
			ew.Byte(ExternFunc)
			ew.WriteU32(uint32(len(b.imports) + i))
			cw.WriteU32(uint32(len(f.body)))
			cw.WriteBytes(f.body)
		}
		m.SetSection(SectionFunction, fw.Bytes())
		m.SetSection(SectionExport, ew.Bytes())
		m.SetSection(SectionCode, cw.Bytes())
	}

	if b.desc != nil {
		m.SetDescriptor(b.desc)
	}
	return m.Encode()
}
