package archive

import (
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Writer creates a module archive.
type Writer struct {
	f    *os.File
	zw   *zip.Writer
	path string
}

// Create creates or truncates the archive at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseResolve, path, err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f), path: path}, nil
}

// Add stores the artifact defining typeName.
func (w *Writer) Add(typeName string, data []byte) error {
	dst, err := w.zw.Create(typename.Entry(typeName))
	if err != nil {
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	if _, err := dst.Write(data); err != nil {
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	return nil
}

// AddFile stores an arbitrary entry such as a manifest.
func (w *Writer) AddFile(name string, data []byte) error {
	dst, err := w.zw.Create(name)
	if err != nil {
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	if _, err := dst.Write(data); err != nil {
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	return nil
}

// Close finishes the zip directory and closes the file.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return errors.IO(errors.PhaseResolve, w.path, err)
	}
	return nil
}
