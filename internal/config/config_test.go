package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/scene"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultMatchesScene(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	opts := cfg.SceneOptions()
	want := scene.DefaultOptions()
	if opts.ScaleX != want.ScaleX || opts.ScaleY != want.ScaleY || opts.UValue != want.UValue {
		t.Errorf("scene options = %+v", opts)
	}
	if got := cfg.Layout().PrimaryPath; got != filepath.Join("energy3d", "Energy3D.jar") {
		t.Errorf("primary = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "bridge.yaml", `
distribution:
  hint: /opt/energy3d
  interpreter: true
scene:
  margin: 50
levels:
  - category: none
    keywords: [draft]
log:
  level: debug
`},
		{"toml", "bridge.toml", `
[distribution]
hint = "/opt/energy3d"
interpreter = true

[scene]
margin = 50.0

[[levels]]
category = "none"
keywords = ["draft"]

[log]
level = "debug"
`},
		{"json", "bridge.json", `{
  "distribution": {"hint": "/opt/energy3d", "interpreter": true},
  "scene": {"margin": 50},
  "levels": [{"category": "none", "keywords": ["draft"]}],
  "log": {"level": "debug"}
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			cfg, used, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if used != path {
				t.Errorf("used = %q", used)
			}
			if cfg.Hint() != "/opt/energy3d" || !cfg.Distribution.Interpreter {
				t.Errorf("distribution = %+v", cfg.Distribution)
			}
			if cfg.Scene.Margin != 50 {
				t.Errorf("margin = %v", cfg.Scene.Margin)
			}
			// unset keys keep their defaults
			if cfg.Scene.ScaleX != scene.DefaultScale || cfg.Distribution.Primary == "" {
				t.Errorf("defaults lost: %+v", cfg)
			}
			if got := cfg.Classifier().Classify("Draft walls"); got != plan.None {
				t.Errorf("Classify = %s", got)
			}
			if cfg.Log.Level != "debug" {
				t.Errorf("log level = %q", cfg.Log.Level)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "bridge.yaml", "scene:\n  margin: 50\n")
	t.Setenv("BRIDGE_SCENE_MARGIN", "75")
	t.Setenv("BRIDGE_DISTRIBUTION_DEPENDENCY_DIRS", "lib-a,lib-b")
	t.Setenv("BRIDGE_LOG_FORMAT", "json")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene.Margin != 75 {
		t.Errorf("margin = %v, want env value", cfg.Scene.Margin)
	}
	dirs := cfg.Layout().DependencyDirs
	if len(dirs) != 2 || dirs[0] != "lib-a" || dirs[1] != "lib-b" {
		t.Errorf("dependency dirs = %v", dirs)
	}
	if _, err := cfg.Logger(false); err != nil {
		t.Errorf("Logger: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		env     map[string]string
	}{
		{"missing file", "", "", nil},
		{"bad syntax", "bridge.yaml", "scene: [", nil},
		{"zero scale", "bridge.yaml", "scene:\n  scale_x: 0\n", nil},
		{"negative margin", "bridge.yaml", "scene:\n  margin: -1\n", nil},
		{"bad level", "bridge.yaml", "log:\n  level: loud\n", nil},
		{"bad format", "bridge.yaml", "log:\n  format: xml\n", nil},
		{"empty rule", "bridge.yaml", "levels:\n  - category: roof\n", nil},
		{"bad env", "bridge.yaml", "", map[string]string{"BRIDGE_SCENE_MARGIN": "wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := Load(path)
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseParse {
				t.Errorf("Load = %v, want parse error", err)
			}
		})
	}
}
