// Package standin defines the host types of the bridge.
//
// Host types are Go-defined: platform built-ins the object stream depends
// on (the universal base, the enumeration base and the growable list) and
// compatibility stand-ins for foreign types that are missing from older
// archives or would need rendering hardware. Stand-ins with entry points
// are installed as wazero host modules named after the type, which is what
// foreign artifacts importing from that type link against.
//
// Host types are only ever reached through the outer resolution tier.
package standin
