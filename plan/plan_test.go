package plan

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

func enclosure() *Plan {
	return &Plan{
		Name:   "box",
		Levels: []Level{{Name: "Ground"}, {Name: "Roof"}},
		Walls: []Wall{
			{XStart: 0, YStart: 0, XEnd: 1200, YEnd: 0, Thickness: 20, Height: 250, Color: 0xCC8844, Level: "Ground"},
			{XStart: 1200, YStart: 0, XEnd: 1200, YEnd: 1000, Thickness: 20, Height: 250, Texture: "Red brick", Level: "Ground"},
			{XStart: 1200, YStart: 1000, XEnd: 0, YEnd: 1000, Thickness: 20, Height: 250, Level: "Ground"},
			{XStart: 0, YStart: 1000, XEnd: 0, YEnd: 0, Thickness: 20, Height: 250, Level: "Ground"},
			{XStart: 0, YStart: 0, XEnd: 1200, YEnd: 1000, Thickness: 10, Height: 100, Level: "Roof"},
		},
	}
}

func TestLoadFormats(t *testing.T) {
	want := enclosure()
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(want, format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			path := filepath.Join(t.TempDir(), "plan."+string(format))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got.Walls) != len(want.Walls) || got.Name != want.Name {
				t.Fatalf("loaded %+v", got)
			}
			for i := range want.Walls {
				if got.Walls[i] != want.Walls[i] {
					t.Errorf("wall %d = %+v, want %+v", i, got.Walls[i], want.Walls[i])
				}
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"unknown field", `{"walls":[],"doors":[]}`, FormatJSON},
		{"zero thickness", `{"walls":[{"xStart":0,"yStart":0,"xEnd":1,"yEnd":0,"thickness":0,"height":1}]}`, FormatJSON},
		{"wide color", "walls:\n  - {xEnd: 1, thickness: 1, height: 1, color: 0x1000000}\n", FormatYAML},
		{"undeclared level", "[[levels]]\nname = \"A\"\n[[walls]]\nxEnd = 1.0\nthickness = 1.0\nheight = 1.0\nlevel = \"B\"\n", FormatTOML},
		{"syntax", `{"walls":`, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseParse {
				t.Errorf("Parse = %v, want a parse error", err)
			}
		})
	}

	if _, err := Load("plan.xml"); err == nil {
		t.Error("unknown extension accepted")
	}
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse(nil, FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Empty() {
		t.Error("empty document must give an empty plan")
	}
}

func TestClassifier(t *testing.T) {
	c := DefaultClassifier()
	tests := []struct {
		level string
		want  Category
	}{
		{"", Exterior},
		{"Ground floor", Exterior},
		{"Murs extérieurs", Exterior},
		{"Interior partitions", Interior},
		{"Toiture", Roof},
		{"Roof", Roof},
		{"Fondations", Foundation},
		{"Arbres", Tree},
		{"Hedge row", Bush},
		{"hidden", None},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.level); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.level, got, tt.want)
		}
	}

	walls := ExportedWalls(enclosure(), nil)
	if len(walls) != 4 {
		t.Errorf("exported %d walls, want 4", len(walls))
	}
	all := ExportedWalls(enclosure(), ClassifierFunc(func(string) Category { return Interior }))
	if len(all) != 5 {
		t.Errorf("custom classifier exported %d walls", len(all))
	}

	flat := enclosure()
	flat.Levels = nil
	if got := ExportedWalls(flat, nil); len(got) != len(flat.Walls) {
		t.Errorf("plan without levels exported %d of %d walls", len(got), len(flat.Walls))
	}
}

func TestExtent(t *testing.T) {
	if _, ok := Extent(nil); ok {
		t.Error("empty extent reported")
	}
	b, ok := Extent(enclosure().Walls[:4])
	if !ok || b != (Bounds{0, 0, 1200, 1000}) {
		t.Errorf("Extent = %+v", b)
	}
	if b.Width() != 1200 || b.Depth() != 1000 {
		t.Errorf("size = %gx%g", b.Width(), b.Depth())
	}
}

func TestRectConverter(t *testing.T) {
	c := DefaultConverter()
	walls := enclosure().Walls

	g := c.Convert(walls[0])
	want := [4]Vec3{{0, 0, 0}, {0, 0, 250}, {1200, 0, 0}, {1200, 0, 250}}
	if g.Points != want {
		t.Errorf("points = %v", g.Points)
	}
	if g.Color != 0xCC8844 || g.Texture != TextureNone {
		t.Errorf("color %x texture %d", g.Color, g.Texture)
	}

	g = c.Convert(walls[1])
	if g.Color != DefaultColor || g.Texture != TextureBrick {
		t.Errorf("color %x texture %d", g.Color, g.Texture)
	}
	if got := c.Convert(Wall{Texture: "Plaster"}).Texture; got != TextureDefault {
		t.Errorf("unknown texture = %d", got)
	}

	r, gr, b, a := RGBA(0xFF8000)
	if r != 1 || gr != float32(0x80)/255 || b != 0 || a != 1 {
		t.Errorf("RGBA = %v %v %v %v", r, gr, b, a)
	}
}
