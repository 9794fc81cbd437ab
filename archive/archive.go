// Package archive reads and writes the zip containers a foreign module set
// is distributed in. Each artifact entry defines one foreign type and is
// stored under the path derived from the type name.
package archive

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Archive is an open module archive.
type Archive struct {
	zr      *zip.ReadCloser
	entries map[string]*zip.File
	path    string
}

// Open opens the archive at path and indexes its entries.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindIO).
			Archive(path).
			Detail("open archive").
			Cause(err).
			Build()
	}
	a := &Archive{zr: zr, path: path, entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.entries[f.Name] = f
	}
	return a, nil
}

// Path returns the archive's filesystem location.
func (a *Archive) Path() string {
	return a.path
}

// Name returns the archive's base name.
func (a *Archive) Name() string {
	return filepath.Base(a.path)
}

// Lookup returns the artifact bytes defining typeName. ok is false when the
// archive has no such entry.
func (a *Archive) Lookup(typeName string) (data []byte, ok bool, err error) {
	f, found := a.entries[typename.Entry(typeName)]
	if !found {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, a.readError(typeName, err)
	}
	defer rc.Close()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, false, a.readError(typeName, err)
	}
	return data, true, nil
}

func (a *Archive) readError(typeName string, cause error) error {
	return errors.New(errors.PhaseResolve, errors.KindIO).
		Type(typeName).
		Archive(a.path).
		Detail("read artifact").
		Cause(cause).
		Build()
}

// Types lists the foreign types defined by the archive, sorted by name.
func (a *Archive) Types() []string {
	var names []string
	for entry := range a.entries {
		if name, ok := typename.FromEntry(entry); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.zr.Close()
}
