package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	bridgeerrors "github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

func TestWriteAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.jar")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Add("com.ardor3d.math.Vector3", []byte("vec")); err != nil {
		t.Fatal(err)
	}
	if err := w.Add("org.concord.energy3d.model.Wall", []byte("wall")); err != nil {
		t.Fatal(err)
	}
	if err := w.AddFile("META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	data, ok, err := a.Lookup("org.concord.energy3d.model.Wall")
	if err != nil || !ok || !bytes.Equal(data, []byte("wall")) {
		t.Errorf("Lookup(Wall) = %q, %v, %v", data, ok, err)
	}
	if _, ok, err := a.Lookup("org.concord.energy3d.model.Roof"); ok || err != nil {
		t.Errorf("Lookup(Roof) = %v, %v", ok, err)
	}

	types := a.Types()
	want := []string{"com.ardor3d.math.Vector3", "org.concord.energy3d.model.Wall"}
	if len(types) != len(want) {
		t.Fatalf("Types() = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Types()[%d] = %q, want %q", i, types[i], want[i])
		}
	}
	if a.Name() != "core.jar" {
		t.Errorf("Name() = %q", a.Name())
	}
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "natives.jar")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error")
	}
	var be *bridgeerrors.Error
	if !errors.As(err, &be) || be.Kind != bridgeerrors.KindIO || be.Archive != path {
		t.Errorf("unexpected error: %v", err)
	}
}
