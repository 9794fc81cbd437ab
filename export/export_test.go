package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/internal/fixture"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

func newExporter(t *testing.T, root string) *Exporter {
	t.Helper()
	layout := locate.DefaultLayout()
	layout.WorkDir = root
	e := New(Options{
		Hint:    root,
		Layout:  layout,
		Resolve: resolve.Options{RuntimeConfig: wazero.NewRuntimeConfigInterpreter()},
	})
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func distribution(t *testing.T, opts fixture.Options) string {
	t.Helper()
	root := t.TempDir()
	if _, err := fixture.Write(root, opts); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return root
}

func enclosure() *plan.Plan {
	wall := func(x0, y0, x1, y1 float64) plan.Wall {
		return plan.Wall{XStart: x0, YStart: y0, XEnd: x1, YEnd: y1, Thickness: 20, Height: 250}
	}
	return &plan.Plan{Walls: []plan.Wall{
		wall(0, 0, 1200, 0),
		wall(1200, 0, 1200, 1000),
		wall(1200, 1000, 0, 1000),
		wall(0, 1000, 0, 0),
	}}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestExport(t *testing.T) {
	root := distribution(t, fixture.Options{})
	e := newExporter(t, root)
	dest := filepath.Join(t.TempDir(), "house.ng3")

	res := e.Export(context.Background(), Job{Plan: enclosure(), Destination: dest})
	if !res.OK {
		t.Fatalf("Export failed: %s", res.Diagnostic)
	}
	if res.Walls != 4 || res.Bytes <= 4 {
		t.Errorf("walls = %d, bytes = %d", res.Walls, res.Bytes)
	}
	if res.LogPath != dest+LogSuffix {
		t.Errorf("LogPath = %q", res.LogPath)
	}

	sum, err := Verify(dest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sum.Root != typename.Scene || sum.Containers != 1 || sum.Elements != 4 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Bytes != res.Bytes {
		t.Errorf("read %d bytes, wrote %d", sum.Bytes, res.Bytes)
	}
	if sum.Classes[typename.Vector3] == 0 {
		t.Errorf("no vectors in %v", sum.ClassNames())
	}
	if exists(dest + DiagSuffix) {
		t.Error("diagnostic file left after success")
	}

	data, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	for _, step := range []string{"locate", "resolve", "build", "serialize", "verify", "export succeeded"} {
		if !bytes.Contains(data, []byte(step)) {
			t.Errorf("sidecar lacks %q:\n%s", step, data)
		}
	}
}

func TestExportEmptyPlan(t *testing.T) {
	e := newExporter(t, distribution(t, fixture.Options{}))
	dest := filepath.Join(t.TempDir(), "empty.ng3")
	res := e.Export(context.Background(), Job{Plan: &plan.Plan{}, Destination: dest})
	if !res.OK {
		t.Fatalf("Export failed: %s", res.Diagnostic)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xAC || data[1] != 0xED {
		t.Fatalf("file starts with % x, want ac ed", data[:min(len(data), 2)])
	}
	if res.Bytes != int64(len(data)) {
		t.Errorf("Bytes = %d, file holds %d", res.Bytes, len(data))
	}
	sum, err := Verify(dest)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Containers != 1 || sum.Elements != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Bytes != res.Bytes {
		t.Errorf("read %d bytes, wrote %d", sum.Bytes, res.Bytes)
	}
}

func TestExportSharesRegistry(t *testing.T) {
	e := newExporter(t, distribution(t, fixture.Options{}))
	ctx := context.Background()
	dir := t.TempDir()
	dest := filepath.Join(dir, "house.ng3")

	// stale content is replaced
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	first := e.Export(ctx, Job{Plan: enclosure(), Destination: dest})
	reg, err := e.Registry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second := e.Export(ctx, Job{Plan: enclosure(), Destination: dest})
	if !first.OK || !second.OK {
		t.Fatalf("exports failed: %s / %s", first.Diagnostic, second.Diagnostic)
	}
	again, _ := e.Registry(ctx)
	if again != reg {
		t.Error("registry recreated between jobs")
	}
	if first.Bytes != second.Bytes {
		t.Errorf("sizes differ: %d, %d", first.Bytes, second.Bytes)
	}
	if err := VerifyHeader(dest); err != nil {
		t.Error(err)
	}

	data, _ := os.ReadFile(dest + LogSuffix)
	if n := strings.Count(string(data), "export succeeded"); n != 2 {
		t.Errorf("sidecar has %d success lines, want 2", n)
	}
}

func TestExportFailures(t *testing.T) {
	tests := []struct {
		name    string
		fixture *fixture.Options
		plan    *plan.Plan
		phase   errors.Phase
		label   string
	}{
		{"no distribution", nil, enclosure(), errors.PhaseDiscovery, "discovery failure"},
		{"missing engine", &fixture.Options{OmitEngine: true}, enclosure(), errors.PhaseDiscovery, "discovery failure"},
		{"missing wall type", &fixture.Options{OmitTypes: []string{typename.Wall}}, enclosure(), errors.PhaseResolve, "resolution failure"},
		{"non-finite plan", &fixture.Options{}, &plan.Plan{Walls: []plan.Wall{
			{XEnd: math.NaN(), Thickness: 10, Height: 10},
		}}, errors.PhaseBuild, "build error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.fixture != nil {
				if _, err := fixture.Write(root, *tt.fixture); err != nil {
					t.Fatal(err)
				}
			}
			e := newExporter(t, root)
			dest := filepath.Join(t.TempDir(), "out.ng3")
			if tt.phase == errors.PhaseBuild {
				if err := os.WriteFile(dest, []byte{0xAC, 0xED, 0, 5}, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			res := e.Export(context.Background(), Job{Plan: tt.plan, Destination: dest})
			if res.OK {
				t.Fatal("export succeeded")
			}
			if res.Phase != tt.phase {
				t.Errorf("phase = %s, want %s (%s)", res.Phase, tt.phase, res.Diagnostic)
			}
			if !strings.HasPrefix(res.Diagnostic, tt.label) || !strings.Contains(res.Diagnostic, res.LogPath) {
				t.Errorf("diagnostic = %q", res.Diagnostic)
			}
			if exists(dest) {
				t.Error("destination left after failure")
			}
			data, err := os.ReadFile(res.LogPath)
			if err != nil || !bytes.Contains(data, []byte("export failed")) {
				t.Errorf("sidecar: %v\n%s", err, data)
			}
		})
	}
}

func TestExportNoDestination(t *testing.T) {
	e := newExporter(t, t.TempDir())
	res := e.Export(context.Background(), Job{Plan: enclosure()})
	if res.OK || res.Phase != errors.PhaseExport || res.LogPath != "" {
		t.Errorf("result = %+v", res)
	}
}

func TestVerifyHeader(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		ok   bool
	}{
		{"valid", []byte{0xAC, 0xED, 0x00, 0x05}, true},
		{"empty", nil, false},
		{"short", []byte{0xAC}, false},
		{"bad magic", []byte{0xCA, 0xFE, 0x00, 0x05}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			err := VerifyHeader(path)
			if tt.ok {
				if err != nil {
					t.Errorf("VerifyHeader: %v", err)
				}
				return
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != errors.KindVerification || !stderrors.Is(err, errors.SerializeError) {
				t.Errorf("VerifyHeader = %v, want verification failure", err)
			}
		})
	}
}

func TestSerializeFailureLeavesDiagnostic(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bad.ng3")
	root := &objstream.Instance{
		Desc: &objstream.ClassDesc{
			Name:      "Broken",
			SerialUID: 1,
			Flags:     objstream.SCSerializable,
			Fields:    []objstream.FieldDesc{{Name: "n", Code: 'I'}},
		},
		Values: map[string]map[string]any{"Broken": {"n": "not an int"}},
	}
	if _, err := Serialize(root, dest); err == nil {
		t.Fatal("Serialize succeeded")
	}
	if !exists(dest) {
		t.Error("partial output removed")
	}
	diag, err := os.ReadFile(dest + DiagSuffix)
	if err != nil || !bytes.Contains(diag, []byte("failed")) {
		t.Errorf("diagnostic: %v\n%s", err, diag)
	}
	if _, err := Serialize(nil, dest); !stderrors.Is(err, errors.SerializeError) {
		t.Errorf("nil root: %v", err)
	}
}

func TestVerifyRejectsForeignRoot(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "string.ser")
	f, err := os.Create(dest)
	if err != nil {
		t.Fatal(err)
	}
	enc, _ := objstream.NewEncoder(f)
	if err := enc.Encode("not a scene"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if _, err := Verify(dest); err == nil {
		t.Error("Verify accepted a string stream")
	}
}
