package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/lrimviz/jsmodule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lrim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/lrim
samples: 3
compact: false
export: module
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/lrim", cfg.DataDir)
	assert.Equal(t, 3, cfg.Samples)
	assert.False(t, cfg.Compact)
	assert.Equal(t, "module", cfg.Export)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 256, cfg.MaxSize, "unset keys keep their defaults")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "samples: 3\n")
	t.Setenv("LRIM_SAMPLES", "7")
	t.Setenv("LRIM_PATTERN_SUFFIX", "_1k.pt")
	t.Setenv("LRIM_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Samples)
	assert.Equal(t, "_1k.pt", cfg.PatternSuffix)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(t.TempDir())
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "samples: [1, 2\n"))
	assert.Error(t, err)
}

func TestOverrides_Apply(t *testing.T) {
	cfg := Default()
	samples := 2
	verbose := true
	dir := "testdata"
	Overrides{Samples: &samples, Verbose: &verbose, DataDir: &dir}.Apply(cfg)

	assert.Equal(t, 2, cfg.Samples)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "testdata", cfg.DataDir)
	assert.Equal(t, "lrim_dataset.js", cfg.Output)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero samples", func(c *Config) { c.Samples = 0 }, false},
		{"zero max size", func(c *Config) { c.MaxSize = 0 }, true},
		{"empty suffix", func(c *Config) { c.PatternSuffix = "" }, true},
		{"empty output", func(c *Config) { c.Output = "" }, true},
		{"unknown export", func(c *Config) { c.Export = "esm" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ClampsNegativeSamples(t *testing.T) {
	cfg := Default()
	cfg.Samples = -4
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.Samples)
}

func TestLogConfig_VerboseForcesDebug(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogConfig().Level)
	cfg.Verbose = true
	assert.Equal(t, "debug", cfg.LogConfig().Level)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEncodeOptions(t *testing.T) {
	cfg := Default()
	assert.Equal(t, jsmodule.Options{Style: jsmodule.Compact, Export: jsmodule.Global}, cfg.EncodeOptions())

	cfg.Compact = false
	cfg.Export = "module"
	assert.Equal(t, jsmodule.Options{Style: jsmodule.Pretty, Export: jsmodule.Module}, cfg.EncodeOptions())
}
