package standin

import (
	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Stream version UIDs of the platform types that appear in foreign files.
const (
	ArrayListUID int64 = 8683452581122892189
	EnumUID      int64 = 0
)

// Builtins returns the platform types the object stream and the foreign
// hierarchies rely on.
func Builtins() []*Definition {
	return []*Definition{
		{Desc: &artifact.Descriptor{
			Name:         typename.Object,
			Constructors: []artifact.Constructor{{Sig: "()V"}},
		}},
		{Desc: &artifact.Descriptor{
			Name:      typename.Enum,
			Ancestor:  typename.Object,
			Flags:     artifact.FlagSerializable | artifact.FlagEnum | artifact.FlagAbstract,
			SerialUID: EnumUID,
		}},
		{Desc: &artifact.Descriptor{
			Name:         typename.ArrayList,
			Ancestor:     typename.Object,
			Flags:        artifact.FlagSerializable | artifact.FlagWriteMethod,
			SerialUID:    ArrayListUID,
			Fields:       []artifact.Field{{Name: "size", Code: 'I'}},
			Constructors: []artifact.Constructor{{Sig: "()V"}},
		}},
	}
}
