package plan

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Format is a plan file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf selects the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(path).
			Detail("unknown plan format %q", filepath.Ext(path)).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseParse, path, err)
	}
	return Parse(data, format)
}

// Parse decodes and validates a plan. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Plan, error) {
	var p Plan
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&p); stderrors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	default:
		return nil, errors.Unsupported(errors.PhaseParse, "plan format "+string(format))
	}
	if err != nil {
		return nil, errors.ParseFailed(string(format)+" plan", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode writes a plan in the given format.
func Encode(p *Plan, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	case FormatYAML:
		return yaml.Marshal(p)
	case FormatTOML:
		return toml.Marshal(p)
	}
	return nil, errors.Unsupported(errors.PhaseParse, "plan format "+string(format))
}
