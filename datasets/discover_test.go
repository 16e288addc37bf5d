package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestDiscover_SizeThreshold(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "lrim_64_0.5_10k.pt")
	touch(t, dir, "lrim_256_0.6_10k.pt")
	touch(t, dir, "lrim_257_0.6_10k.pt")
	touch(t, dir, "lrim_300_0.5_10k.pt")
	touch(t, dir, "lrim_big_0.5_10k.pt")

	files, err := Discover(dir, DefaultSuffix, DefaultMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrim_256_0.6_10k.pt", "lrim_64_0.5_10k.pt"}, basenames(files))
}

func TestDiscover_SuffixAndTag(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "lrim_32_0.5_10k.pt")
	touch(t, dir, "lrim_32_0.5_1k.pt")
	touch(t, dir, "lrim_32_0.5_10k.npz")
	touch(t, dir, "ising_32_0.5_10k.pt")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lrim_16_0.5_10k.pt"), 0o755))

	files, err := Discover(dir, DefaultSuffix, DefaultMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrim_32_0.5_10k.pt"}, basenames(files))

	files, err = Discover(dir, "_10k.npz", DefaultMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrim_32_0.5_10k.npz"}, basenames(files))
}

func TestDiscover_ShortNamesStillDiscovered(t *testing.T) {
	// Only the size segment matters here; ParseName rejects these later.
	dir := t.TempDir()
	touch(t, dir, "lrim_16_10k.pt")

	files, err := Discover(dir, DefaultSuffix, DefaultMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"lrim_16_10k.pt"}, basenames(files))
}

func TestDiscover_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"lrim_64_0.6_10k.pt", "lrim_128_0.5_10k.pt", "lrim_16_0.5_10k.pt", "lrim_32_0.6_10k.pt"} {
		touch(t, dir, name)
	}

	files, err := Discover(dir, DefaultSuffix, DefaultMaxSize)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lrim_128_0.5_10k.pt",
		"lrim_16_0.5_10k.pt",
		"lrim_32_0.6_10k.pt",
		"lrim_64_0.6_10k.pt",
	}, basenames(files))
}

func TestDiscover_EmptyAndMissingDir(t *testing.T) {
	files, err := Discover(t.TempDir(), DefaultSuffix, DefaultMaxSize)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), DefaultSuffix, DefaultMaxSize)
	assert.Error(t, err)
}
