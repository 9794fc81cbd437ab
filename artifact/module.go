package artifact

import (
	"bytes"
	"fmt"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact/internal/binary"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Section IDs of the core binary format.
const (
	SectionCustom    byte = 0x00
	SectionType      byte = 0x01
	SectionImport    byte = 0x02
	SectionFunction  byte = 0x03
	SectionTable     byte = 0x04
	SectionMemory    byte = 0x05
	SectionGlobal    byte = 0x06
	SectionExport    byte = 0x07
	SectionStart     byte = 0x08
	SectionElement   byte = 0x09
	SectionCode      byte = 0x0a
	SectionData      byte = 0x0b
	SectionDataCount byte = 0x0c
	SectionTag       byte = 0x0d
)

// Header is the magic number and version every artifact starts with.
var Header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Section is one raw section of an artifact. Data excludes the ID and the
// size prefix; for custom sections it starts with the section name.
type Section struct {
	Data []byte
	// size is the original size prefix, kept so that untouched sections
	// re-encode byte-identical even when the producer padded the LEB128.
	size []byte
	ID   byte
}

// Module is a section-level view of an artifact. Only sections that are
// edited are re-encoded; all others keep their original bytes.
type Module struct {
	Sections []*Section
}

// Parse splits an artifact into its sections.
func Parse(data []byte) (*Module, error) {
	if len(data) < len(Header) || !bytes.Equal(data[:len(Header)], Header) {
		return nil, errors.InvalidData(errors.PhaseParse, nil, "missing module header")
	}

	r := binary.NewReader(data)
	_ = r.Seek(len(Header))

	m := &Module{}
	lastOrder := 0
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errors.ParseFailed("section id", err)
		}
		size, raw, err := r.ReadU32Raw()
		if err != nil {
			return nil, errors.ParseFailed("section size", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.ParseFailed(fmt.Sprintf("section %d payload", id), err)
		}

		if id != SectionCustom {
			order := sectionOrder(id)
			if order == 0 {
				return nil, errors.InvalidData(errors.PhaseParse, nil, fmt.Sprintf("unknown section id %d", id))
			}
			if order <= lastOrder {
				return nil, errors.InvalidData(errors.PhaseParse, nil, fmt.Sprintf("section %d out of order", id))
			}
			lastOrder = order
		}

		m.Sections = append(m.Sections, &Section{ID: id, size: raw, Data: payload})
	}
	return m, nil
}

// Encode re-emits the artifact.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.WriteBytes(Header)
	for _, s := range m.Sections {
		w.Byte(s.ID)
		if s.size != nil {
			w.WriteBytes(s.size)
		} else {
			w.WriteU32(uint32(len(s.Data)))
		}
		w.WriteBytes(s.Data)
	}
	return w.Bytes()
}

// Section returns the first non-custom section with the given ID.
func (m *Module) Section(id byte) *Section {
	for _, s := range m.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Custom returns the payload of the named custom section.
func (m *Module) Custom(name string) ([]byte, bool) {
	for _, s := range m.Sections {
		if s.ID != SectionCustom {
			continue
		}
		n, payload, err := splitCustom(s.Data)
		if err == nil && n == name {
			return payload, true
		}
	}
	return nil, false
}

// SetSection replaces the section with the given ID, or inserts it at its
// canonical position.
func (m *Module) SetSection(id byte, data []byte) {
	if s := m.Section(id); s != nil {
		s.Data = data
		s.size = nil
		return
	}

	order := sectionOrder(id)
	insertAt := 0
	for i, s := range m.Sections {
		if s.ID != SectionCustom && sectionOrder(s.ID) < order {
			insertAt = i + 1
		}
	}
	m.Sections = append(m.Sections, nil)
	copy(m.Sections[insertAt+1:], m.Sections[insertAt:])
	m.Sections[insertAt] = &Section{ID: id, Data: data}
}

// SetCustom replaces the payload of the named custom section, or appends
// a new custom section at the end.
func (m *Module) SetCustom(name string, payload []byte) {
	w := binary.NewWriter()
	w.WriteName(name)
	w.WriteBytes(payload)

	for _, s := range m.Sections {
		if s.ID != SectionCustom {
			continue
		}
		if n, _, err := splitCustom(s.Data); err == nil && n == name {
			s.Data = w.Bytes()
			s.size = nil
			return
		}
	}
	m.Sections = append(m.Sections, &Section{ID: SectionCustom, Data: w.Bytes()})
}

func splitCustom(data []byte) (string, []byte, error) {
	r := binary.NewReader(data)
	name, err := r.ReadName()
	if err != nil {
		return "", nil, err
	}
	return name, r.ReadRemaining(), nil
}

func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

// appendEntry adds one entry to a vector-encoded section payload, keeping
// every existing entry byte-identical.
func appendEntry(vec []byte, entry []byte) ([]byte, error) {
	if len(vec) == 0 {
		out := binary.AppendU32(nil, 1)
		return append(out, entry...), nil
	}
	r := binary.NewReader(vec)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	rest := r.ReadRemaining()
	out := binary.AppendU32(make([]byte, 0, len(vec)+len(entry)+1), count+1)
	out = append(out, rest...)
	return append(out, entry...), nil
}
