// Package objstream reads and writes the foreign application's native
// object stream.
//
// A stream starts with the magic 0xACED and version 5, followed by
// type-coded records. Every class descriptor, object, string, array and
// enumeration constant is assigned a handle starting at 0x7E0000; later
// occurrences of the same value are written as TC_REFERENCE records.
//
// The encoder writes values implementing Object:
//
//	enc, err := objstream.NewEncoder(f)
//	err = enc.Encode(scene)
//
// Field values must use the Go type of their type code: bool (Z), int8 (B),
// uint16 (C), int16 (S), int32 (I), int64 (J), float32 (F) and float64 (D).
// Reference fields hold nil, string, primitive slices or other Objects.
//
// The decoder produces a generic graph of *Instance and *EnumValue values
// that encodes back to the same bytes.
package objstream
