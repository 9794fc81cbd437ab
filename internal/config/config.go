// Package config loads the bridge command configuration: built-in
// defaults, then an optional config file, then environment overrides.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/locate"
	"github.com/technologiescollege/SweetEnergy3d-sub000/plan"
	"github.com/technologiescollege/SweetEnergy3d-sub000/scene"
)

const (
	// AppName names the per-user configuration directory.
	AppName = "sweetenergy3d"
	// FileName is the config file name without extension.
	FileName = "bridge"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BRIDGE_"
)

// Config is the command configuration.
type Config struct {
	Distribution Distribution `mapstructure:"distribution" envPrefix:"DISTRIBUTION_"`
	Scene        Scene        `mapstructure:"scene" envPrefix:"SCENE_"`
	// Levels replaces the level classification rules when set.
	Levels []plan.KeywordRule `mapstructure:"levels"`
	Log    Log                `mapstructure:"log" envPrefix:"LOG_"`
}

// Distribution locates the foreign distribution.
type Distribution struct {
	// Hint is where the search starts; the executable's directory when
	// empty.
	Hint           string   `mapstructure:"hint" env:"HINT"`
	Primary        string   `mapstructure:"primary" env:"PRIMARY"`
	DependencyDirs []string `mapstructure:"dependency_dirs" env:"DEPENDENCY_DIRS" envSeparator:","`
	NewerDir       string   `mapstructure:"newer_dir" env:"NEWER_DIR"`
	Fallbacks      []string `mapstructure:"fallbacks" env:"FALLBACKS" envSeparator:","`
	Required       []string `mapstructure:"required" env:"REQUIRED" envSeparator:","`
	Optional       []string `mapstructure:"optional" env:"OPTIONAL" envSeparator:","`
	// Interpreter selects the wazero interpreter instead of the compiler.
	Interpreter bool `mapstructure:"interpreter" env:"INTERPRETER"`
}

// Scene holds the conversion parameters.
type Scene struct {
	AnnotationScale float64  `mapstructure:"annotation_scale" env:"ANNOTATION_SCALE"`
	ScaleX          float64  `mapstructure:"scale_x" env:"SCALE_X"`
	ScaleY          float64  `mapstructure:"scale_y" env:"SCALE_Y"`
	ScaleZ          float64  `mapstructure:"scale_z" env:"SCALE_Z"`
	Margin          float64  `mapstructure:"margin" env:"MARGIN"`
	MinExtent       float64  `mapstructure:"min_extent" env:"MIN_EXTENT"`
	Size            float64  `mapstructure:"size" env:"SIZE"`
	UValue          float64  `mapstructure:"u_value" env:"U_VALUE"`
	HeatCapacity    float64  `mapstructure:"heat_capacity" env:"HEAT_CAPACITY"`
	Precache        []string `mapstructure:"precache" env:"PRECACHE" envSeparator:","`
}

// Log configures the command logger.
type Log struct {
	Level string `mapstructure:"level" env:"LEVEL"`
	// Format is "console" or "json".
	Format string `mapstructure:"format" env:"FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	layout := locate.DefaultLayout()
	opts := scene.DefaultOptions()
	return &Config{
		Distribution: Distribution{
			Primary:        layout.PrimaryPath,
			DependencyDirs: layout.DependencyDirs,
			NewerDir:       layout.NewerDir,
			Required:       layout.Required,
			Optional:       layout.Optional,
		},
		Scene: Scene{
			AnnotationScale: opts.AnnotationScale,
			ScaleX:          opts.ScaleX,
			ScaleY:          opts.ScaleY,
			ScaleZ:          opts.ScaleZ,
			Margin:          opts.Margin,
			MinExtent:       opts.MinExtent,
			Size:            opts.Size,
			UValue:          opts.UValue,
			HeatCapacity:    opts.HeatCapacity,
			Precache:        opts.Precache,
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// Load reads the configuration. An explicit path must exist; otherwise
// bridge.{yaml,toml,json} is looked up in the working directory and the
// per-user directory, and a missing file leaves the defaults. It returns
// the file used, if any.
func Load(path string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, "", errors.ParseFailed("config "+path, err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, used, errors.ParseFailed("config", err)
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, used, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, used, err
	}
	return cfg, used, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("distribution.primary", d.Distribution.Primary)
	v.SetDefault("distribution.dependency_dirs", d.Distribution.DependencyDirs)
	v.SetDefault("distribution.newer_dir", d.Distribution.NewerDir)
	v.SetDefault("distribution.required", d.Distribution.Required)
	v.SetDefault("distribution.optional", d.Distribution.Optional)
	v.SetDefault("distribution.interpreter", d.Distribution.Interpreter)
	v.SetDefault("scene.annotation_scale", d.Scene.AnnotationScale)
	v.SetDefault("scene.scale_x", d.Scene.ScaleX)
	v.SetDefault("scene.scale_y", d.Scene.ScaleY)
	v.SetDefault("scene.scale_z", d.Scene.ScaleZ)
	v.SetDefault("scene.margin", d.Scene.Margin)
	v.SetDefault("scene.min_extent", d.Scene.MinExtent)
	v.SetDefault("scene.size", d.Scene.Size)
	v.SetDefault("scene.u_value", d.Scene.UValue)
	v.SetDefault("scene.heat_capacity", d.Scene.HeatCapacity)
	v.SetDefault("scene.precache", d.Scene.Precache)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks values a run cannot work with.
func (c *Config) Validate() error {
	if c.Distribution.Primary == "" {
		return errors.InvalidInput(errors.PhaseParse, "distribution.primary is empty")
	}
	s := c.Scene
	for name, v := range map[string]float64{
		"scale_x": s.ScaleX, "scale_y": s.ScaleY, "scale_z": s.ScaleZ,
		"min_extent": s.MinExtent, "size": s.Size,
	} {
		if v <= 0 {
			return errors.InvalidInput(errors.PhaseParse, "scene."+name+" must be positive")
		}
	}
	if s.Margin < 0 {
		return errors.InvalidInput(errors.PhaseParse, "scene.margin is negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.ParseFailed("log.level", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseParse, "log.format must be console or json")
	}
	for _, r := range c.Levels {
		if len(r.Keywords) == 0 {
			return errors.InvalidInput(errors.PhaseParse, "level rule "+string(r.Category)+" has no keywords")
		}
	}
	return nil
}

// Layout returns the distribution layout.
func (c *Config) Layout() locate.Layout {
	l := locate.DefaultLayout()
	d := c.Distribution
	l.PrimaryPath = d.Primary
	if len(d.DependencyDirs) > 0 {
		l.DependencyDirs = d.DependencyDirs
	}
	l.NewerDir = d.NewerDir
	l.Fallbacks = d.Fallbacks
	l.Required = d.Required
	l.Optional = d.Optional
	return l
}

// Hint returns the search start directory.
func (c *Config) Hint() string {
	if c.Distribution.Hint != "" {
		return c.Distribution.Hint
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// RuntimeConfig returns the wazero configuration.
func (c *Config) RuntimeConfig() wazero.RuntimeConfig {
	if c.Distribution.Interpreter {
		return wazero.NewRuntimeConfigInterpreter()
	}
	return wazero.NewRuntimeConfig()
}

// Classifier returns the level classifier.
func (c *Config) Classifier() plan.Classifier {
	k := plan.DefaultClassifier()
	if len(c.Levels) > 0 {
		k.Rules = c.Levels
	}
	return k
}

// SceneOptions returns the builder options.
func (c *Config) SceneOptions() scene.Options {
	opts := scene.DefaultOptions()
	s := c.Scene
	opts.AnnotationScale = s.AnnotationScale
	opts.ScaleX, opts.ScaleY, opts.ScaleZ = s.ScaleX, s.ScaleY, s.ScaleZ
	opts.Margin = s.Margin
	opts.MinExtent = s.MinExtent
	opts.Size = s.Size
	opts.UValue = s.UValue
	opts.HeatCapacity = s.HeatCapacity
	opts.Precache = s.Precache
	opts.Classifier = c.Classifier()
	return opts
}

// Logger builds the command logger. verbose forces debug level.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.ParseFailed("log.level", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewDevelopmentConfig()
	if strings.EqualFold(c.Log.Format, "json") {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = !verbose
	return zc.Build()
}
