package export

import (
	"io"
	"os"
	"sort"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// Summary describes an exported scene file.
type Summary struct {
	Path       string
	Bytes      int64
	Root       string
	Objects    int
	Containers int
	Elements   int
	// Classes counts instances per class name.
	Classes map[string]int
}

// ClassNames returns the instantiated class names, sorted.
func (s *Summary) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for n := range s.Classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Verify reads a scene file back. The file must hold exactly one object
// whose class is the scene root.
func Verify(path string) (*Summary, error) {
	if err := VerifyHeader(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseDecode, path, err)
	}
	defer f.Close()

	dec, err := objstream.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	v, err := dec.Decode()
	if err != nil {
		if err == io.EOF {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{path}, "stream holds no object")
		}
		return nil, err
	}
	if _, err := dec.Decode(); err != io.EOF {
		if err == nil {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{path}, "stream holds more than one object")
		}
		return nil, err
	}

	root, ok := v.(*objstream.Instance)
	if !ok || !root.Is(typename.Scene) {
		return nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(path).
			Value(v).
			Detail("root is not a scene").
			Build()
	}
	return summarize(path, dec.Read(), root), nil
}

// summarize counts the objects reachable from root.
func summarize(path string, n int64, root *objstream.Instance) *Summary {
	s := &Summary{Path: path, Bytes: n, Root: root.Desc.Name, Classes: make(map[string]int)}
	objstream.Walk(root, func(i *objstream.Instance) bool {
		s.Objects++
		s.Classes[i.Desc.Name]++
		switch {
		case i.Is(typename.Foundation):
			s.Containers++
		case i.Is(typename.HousePart):
			s.Elements++
		}
		return true
	})
	return s
}
