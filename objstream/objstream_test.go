package objstream

import (
	"bytes"
	"encoding/hex"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

type testObject struct {
	desc   *ClassDesc
	fields map[string]map[string]any
	items  []any
}

func (o *testObject) StreamDesc() *ClassDesc { return o.desc }
func (o *testObject) StreamField(class, name string) any {
	return o.fields[class][name]
}
func (o *testObject) StreamItems() []any { return o.items }

type testConstant struct {
	desc *ClassDesc
	name string
}

func (c *testConstant) StreamDesc() *ClassDesc            { return c.desc }
func (c *testConstant) StreamField(class, name string) any { return nil }
func (c *testConstant) ConstantName() string               { return c.name }

var listDesc = &ClassDesc{
	Name:      ArrayListClass,
	SerialUID: 8683452581122892189,
	Flags:     SCSerializable | SCWriteMethod,
	Fields:    []FieldDesc{{Name: "size", Code: 'I'}},
}

func newList(items ...any) *testObject {
	return &testObject{
		desc:   listDesc,
		fields: map[string]map[string]any{ArrayListClass: {"size": int32(len(items))}},
		items:  items,
	}
}

func encode(t *testing.T, vs ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for _, v := range vs {
		if err := enc.Encode(v); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	if enc.Written() != int64(buf.Len()) {
		t.Errorf("Written = %d, buffer holds %d", enc.Written(), buf.Len())
	}
	return buf.Bytes()
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestEncoder_KnownStreams(t *testing.T) {
	point := &testObject{
		desc: &ClassDesc{
			Name:      "T",
			SerialUID: 1,
			Flags:     SCSerializable,
			Fields:    []FieldDesc{{Name: "x", Code: 'I'}},
		},
		fields: map[string]map[string]any{"T": {"x": int32(1)}},
	}
	constant := &testConstant{desc: EnumDesc("E"), name: "A"}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "null",
			value: nil,
			want:  "aced0005 70",
		},
		{
			name:  "string",
			value: "ab",
			want:  "aced0005 74 0002 6162",
		},
		{
			name:  "object with int field",
			value: point,
			want:  "aced0005 73 72 0001 54 0000000000000001 02 0001 49 0001 78 78 70 00000001",
		},
		{
			name:  "empty list",
			value: newList(),
			want: "aced0005 73 72 0013 6a6176612e7574696c2e41727261794c697374 7881d21d99c7619d 03 0001 49 0004 73697a65 78 70" +
				" 00000000 77 04 00000000 78",
		},
		{
			name:  "enumeration constant",
			value: constant,
			want: "aced0005 7e 72 0001 45 0000000000000000 12 0000 78" +
				" 72 000e 6a6176612e6c616e672e456e756d 0000000000000000 12 0000 78 70" +
				" 74 0001 41",
		},
		{
			name:  "int array",
			value: []int32{1, 2},
			want:  "aced0005 75 72 0002 5b49 4dba602676eab2a5 02 0000 78 70 00000002 00000001 00000002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, tt.value)
			want := mustHex(t, tt.want)
			if !bytes.Equal(got, want) {
				t.Errorf("stream mismatch\n got: %x\nwant: %x", got, want)
			}
		})
	}
}

func TestEncoder_BackReferences(t *testing.T) {
	shared := &testObject{
		desc:   &ClassDesc{Name: "P", SerialUID: 7, Flags: SCSerializable},
		fields: map[string]map[string]any{},
	}
	data := encode(t, newList(shared, shared, "s", "s"))

	// second P and second "s"
	refs := bytes.Count(data, []byte{TCReference, 0x00, 0x7E, 0x00})
	if refs != 2 {
		t.Errorf("expected 2 back-references, found %d in %x", refs, data)
	}

	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	list := v.(*Instance)
	if len(list.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(list.Items))
	}
	if list.Items[0] != list.Items[1] {
		t.Error("shared object decoded as two instances")
	}
	if list.Items[2] != "s" || list.Items[3] != "s" {
		t.Errorf("strings = %v %v", list.Items[2], list.Items[3])
	}
}

func TestEncoder_DescriptorSharedAcrossObjects(t *testing.T) {
	desc := &ClassDesc{
		Name:      "com.example.Pair",
		SerialUID: 3,
		Flags:     SCSerializable,
		Fields: []FieldDesc{
			{Name: "b", Code: 'L', Class: "Ljava/lang/String;"},
			{Name: "a", Code: 'L', Class: "Ljava/lang/String;"},
		},
	}
	one := &testObject{desc: desc, fields: map[string]map[string]any{desc.Name: {"a": "x", "b": "y"}}}
	two := &testObject{desc: desc, fields: map[string]map[string]any{desc.Name: {"a": "y", "b": "x"}}}
	data := encode(t, newList(one, two))

	if n := bytes.Count(data, []byte("com.example.Pair")); n != 1 {
		t.Errorf("class name written %d times", n)
	}
	if n := bytes.Count(data, []byte("Ljava/lang/String;")); n != 1 {
		t.Errorf("type string written %d times", n)
	}
	// fields in name order: a then b
	ia, ib := bytes.Index(data, []byte{0x00, 0x01, 'a'}), bytes.Index(data, []byte{0x00, 0x01, 'b'})
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("field order: a at %d, b at %d", ia, ib)
	}
}

func TestEncoder_FieldOrder(t *testing.T) {
	desc := &ClassDesc{
		Name:      "O",
		SerialUID: 1,
		Flags:     SCSerializable,
		Fields: []FieldDesc{
			{Name: "z", Code: 'L', Class: "Ljava/lang/String;"},
			{Name: "b", Code: 'D'},
			{Name: "a", Code: 'L', Class: "Ljava/lang/String;"},
			{Name: "c", Code: 'Z'},
		},
	}
	var names []string
	for _, f := range desc.Sorted() {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "b,c,a,z" {
		t.Errorf("Sorted = %s, want b,c,a,z", got)
	}
}

func TestEncoder_ClassHierarchy(t *testing.T) {
	base := &ClassDesc{Name: "Base", SerialUID: 1, Flags: SCSerializable, Fields: []FieldDesc{{Name: "id", Code: 'J'}}}
	derived := &ClassDesc{Name: "Derived", SerialUID: 2, Flags: SCSerializable, Super: base, Fields: []FieldDesc{{Name: "h", Code: 'D'}}}
	obj := &testObject{
		desc: derived,
		fields: map[string]map[string]any{
			"Base":    {"id": int64(9)},
			"Derived": {"h": 2.5},
		},
	}
	data := encode(t, obj)

	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	inst := v.(*Instance)
	if !inst.Is("Base") || inst.Is("Other") {
		t.Error("Is does not follow the descriptor chain")
	}
	if id, _ := inst.Field("id"); id != int64(9) {
		t.Errorf("id = %v", id)
	}
	if h, _ := inst.Field("h"); h != 2.5 {
		t.Errorf("h = %v", h)
	}
	// super class data precedes subclass data
	tail := data[len(data)-16:]
	want := mustHex(t, "0000000000000009 4004000000000000")
	if !bytes.Equal(tail, want) {
		t.Errorf("class data = %x, want %x", tail, want)
	}
}

func TestRoundTrip_ByteIdentical(t *testing.T) {
	vecDesc := &ClassDesc{
		Name:      "com.ardor3d.math.Vector3",
		SerialUID: 1,
		Flags:     SCSerializable,
		Fields:    []FieldDesc{{Name: "_x", Code: 'D'}, {Name: "_y", Code: 'D'}, {Name: "_z", Code: 'D'}},
	}
	vec := func(x, y, z float64) *testObject {
		return &testObject{desc: vecDesc, fields: map[string]map[string]any{vecDesc.Name: {"_x": x, "_y": y, "_z": z}}}
	}
	mode := &testConstant{desc: EnumDesc("Mode"), name: "Full"}
	partDesc := &ClassDesc{
		Name:      "Part",
		SerialUID: -42,
		Flags:     SCSerializable,
		Fields: []FieldDesc{
			{Name: "points", Code: 'L', Class: "Ljava/util/ArrayList;"},
			{Name: "mode", Code: 'L', Class: "LMode;"},
			{Name: "label", Code: 'L', Class: "Ljava/lang/String;"},
			{Name: "raw", Code: '[', Class: "[B"},
			{Name: "flag", Code: 'Z'},
			{Name: "ch", Code: 'C'},
			{Name: "sh", Code: 'S'},
			{Name: "by", Code: 'B'},
			{Name: "fl", Code: 'F'},
		},
	}
	p := vec(1, 2, 3)
	part := &testObject{
		desc: partDesc,
		fields: map[string]map[string]any{partDesc.Name: {
			"points": newList(p, vec(4, 5, 6), p),
			"mode":   mode,
			"label":  "naïve \x00 😀",
			"raw":    []byte{1, 2, 3},
			"flag":   true,
			"ch":     uint16('x'),
			"sh":     int16(-3),
			"by":     int8(-1),
			"fl":     float32(0.5),
		}},
	}
	data := encode(t, part, mode, []float64{1.5}, []bool{true, false})

	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	var values []any
	for {
		v, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		values = append(values, v)
	}
	if len(values) != 4 {
		t.Fatalf("decoded %d values, want 4", len(values))
	}
	if dec.Read() != int64(len(data)) {
		t.Errorf("Read = %d, stream holds %d bytes", dec.Read(), len(data))
	}

	got := values[0].(*Instance)
	if label, _ := got.Field("label"); label != "naïve \x00 😀" {
		t.Errorf("label = %q", label)
	}
	if m, _ := got.Field("mode"); m != values[1] {
		t.Error("enumeration constant not shared")
	}
	pts, _ := got.Field("points")
	items := pts.(*Instance).Items
	if len(items) != 3 || items[0] != items[2] {
		t.Fatalf("points = %v", items)
	}
	if x, _ := items[1].(*Instance).Field("_x"); x != 4.0 {
		t.Errorf("_x = %v", x)
	}

	if again := encode(t, values...); !bytes.Equal(again, data) {
		t.Errorf("re-encoded stream differs\n got: %x\nwant: %x", again, data)
	}
}

func TestModifiedUTF8(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"a", []byte{'a'}},
		{"\x00", []byte{0xC0, 0x80}},
		{"é", []byte{0xC3, 0xA9}},
		{"€", []byte{0xE2, 0x82, 0xAC}},
		{"😀", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		got := appendModifiedUTF8(nil, tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("encode %q = %x, want %x", tt.in, got, tt.want)
		}
		back, err := decodeModifiedUTF8(got)
		if err != nil || back != tt.in {
			t.Errorf("decode %x = %q, %v", got, back, err)
		}
	}
	if _, err := decodeModifiedUTF8([]byte{0xC3}); err == nil {
		t.Error("truncated sequence accepted")
	}
}

func TestLongString(t *testing.T) {
	s := strings.Repeat("a", 70000)
	data := encode(t, s)
	if data[4] != TCLongString {
		t.Fatalf("record = 0x%02x, want TC_LONGSTRING", data[4])
	}
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if v != s {
		t.Errorf("decoded string of %d bytes", len(v.(string)))
	}
}

func TestEncoder_Errors(t *testing.T) {
	desc := &ClassDesc{Name: "N", Flags: SCSerializable, Fields: []FieldDesc{{Name: "n", Code: 'I'}}}
	tests := []struct {
		name  string
		value any
		kind  errors.Kind
	}{
		{
			name:  "wrong primitive type",
			value: &testObject{desc: desc, fields: map[string]map[string]any{"N": {"n": 5}}},
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "missing primitive",
			value: &testObject{desc: desc, fields: map[string]map[string]any{}},
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "not serializable",
			value: &testObject{},
			kind:  errors.KindUnsupported,
		},
		{
			name:  "plain go value",
			value: 3.5,
			kind:  errors.KindUnsupported,
		},
		{
			name:  "enumeration without name",
			value: &testObject{desc: EnumDesc("E")},
			kind:  errors.KindTypeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, _ := NewEncoder(io.Discard)
			err := enc.Encode(tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, errors.SerializeError) {
				t.Errorf("error %v is not a SerializeError", err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != tt.kind {
				t.Errorf("error %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind errors.Kind
	}{
		{"bad magic", "cafe0005", errors.KindInvalidData},
		{"bad version", "aced0004", errors.KindUnsupported},
		{"truncated header", "ac", errors.KindIO},
		{"truncated object", "aced0005 73 72 0001", errors.KindIO},
		{"dangling reference", "aced0005 71 007e0009", errors.KindOutOfBounds},
		{"exception record", "aced0005 7b", errors.KindUnsupported},
		{"proxy descriptor", "aced0005 73 7d", errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewDecoder(bytes.NewReader(mustHex(t, tt.data)))
			if err == nil {
				_, err = dec.Decode()
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not structured", err)
			}
			if e.Phase != errors.PhaseDecode || e.Kind != tt.kind {
				t.Errorf("error %v, want decode/%s", err, tt.kind)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	leafDesc := &ClassDesc{Name: "Leaf", SerialUID: 1, Flags: SCSerializable}
	leaf := &testObject{desc: leafDesc}
	rootDesc := &ClassDesc{
		Name:      "Root",
		SerialUID: 1,
		Flags:     SCSerializable,
		Fields:    []FieldDesc{{Name: "kids", Code: 'L', Class: "Ljava/util/ArrayList;"}, {Name: "first", Code: 'L', Class: "LLeaf;"}},
	}
	root := &testObject{
		desc:   rootDesc,
		fields: map[string]map[string]any{"Root": {"kids": newList(leaf, &testObject{desc: leafDesc}), "first": leaf}},
	}
	dec, err := NewDecoder(bytes.NewReader(encode(t, root)))
	if err != nil {
		t.Fatal(err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	Walk(v, func(i *Instance) bool {
		counts[i.Desc.Name]++
		return true
	})
	if counts["Leaf"] != 2 || counts["Root"] != 1 || counts[ArrayListClass] != 1 {
		t.Errorf("counts = %v", counts)
	}

	visited := 0
	Walk(v, func(*Instance) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("walk continued after stop: %d", visited)
	}
}
