// Package config loads extractor settings.
//
// Precedence, highest first:
//  1. Command-line flags that were set explicitly (Overrides)
//  2. Environment variables with the LRIM_ prefix (LRIM_SAMPLES=5, LRIM_LOG_FORMAT=json)
//  3. An optional YAML file
//  4. Default()
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Noofbiz/lrimviz/datasets"
	"github.com/Noofbiz/lrimviz/jsmodule"
	"github.com/Noofbiz/lrimviz/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "LRIM_"

const maxConfigFileSize = 1024 * 1024

// Config holds everything one extraction run needs.
type Config struct {
	DataDir       string `koanf:"data_dir"`
	PatternSuffix string `koanf:"pattern_suffix"`
	MaxSize       int    `koanf:"max_size"`
	Samples       int    `koanf:"samples"`
	Output        string `koanf:"output"`
	Compact       bool   `koanf:"compact"`
	Export        string `koanf:"export"`
	PreviewDir    string `koanf:"preview_dir"`
	Verbose       bool   `koanf:"verbose"`

	Log logging.Config `koanf:"log"`
}

// Default returns the settings the extractor uses with no flags.
func Default() *Config {
	return &Config{
		DataDir:       "../data/raw",
		PatternSuffix: datasets.DefaultSuffix,
		MaxSize:       datasets.DefaultMaxSize,
		Samples:       10,
		Output:        "lrim_dataset.js",
		Compact:       true,
		Export:        string(jsmodule.Global),
		Log:           *logging.NewDefaultConfig(),
	}
}

// Load layers an optional YAML file and LRIM_* environment variables over
// Default. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// LRIM_DATA_DIR -> data_dir, LRIM_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if rest, ok := strings.CutPrefix(key, "log_"); ok {
			return "log." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	return io.ReadAll(f)
}

// Overrides carries command-line values; nil fields were not given.
type Overrides struct {
	DataDir       *string
	PatternSuffix *string
	MaxSize       *int
	Samples       *int
	Output        *string
	Compact       *bool
	Export        *string
	PreviewDir    *string
	Verbose       *bool
	LogFormat     *string
}

// Apply copies every non-nil override into c.
func (o Overrides) Apply(c *Config) {
	setIf(&c.DataDir, o.DataDir)
	setIf(&c.PatternSuffix, o.PatternSuffix)
	setIf(&c.MaxSize, o.MaxSize)
	setIf(&c.Samples, o.Samples)
	setIf(&c.Output, o.Output)
	setIf(&c.Compact, o.Compact)
	setIf(&c.Export, o.Export)
	setIf(&c.PreviewDir, o.PreviewDir)
	setIf(&c.Verbose, o.Verbose)
	setIf(&c.Log.Format, o.LogFormat)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate rejects settings no run can use. A negative sample count is not
// an error; it is clamped to zero, which extracts nothing.
func (c *Config) Validate() error {
	if c.Samples < 0 {
		c.Samples = 0
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max size must be > 0, got %d", c.MaxSize)
	}
	if c.PatternSuffix == "" {
		return fmt.Errorf("pattern suffix must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if _, err := jsmodule.ParseExport(c.Export); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// LogConfig is the logging configuration for the run; Verbose forces the
// debug level.
func (c *Config) LogConfig() *logging.Config {
	lc := c.Log
	if c.Verbose {
		lc.Level = "debug"
	}
	return &lc
}

// EncodeOptions maps the output settings onto the encoder's options.
func (c *Config) EncodeOptions() jsmodule.Options {
	opts := jsmodule.Options{Style: jsmodule.Pretty}
	if c.Compact {
		opts.Style = jsmodule.Compact
	}
	opts.Export, _ = jsmodule.ParseExport(c.Export)
	return opts
}
