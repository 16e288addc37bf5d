package preview

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/lrimviz/datasets"
	"github.com/Noofbiz/lrimviz/jsmodule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(size int) []any {
	out := make([]any, size*size)
	for i := range out {
		if (i/size+i%size)%2 == 0 {
			out[i] = 1.0
		} else {
			out[i] = -1.0
		}
	}
	return out
}

func ramp(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(i) - 2
	}
	return out
}

func TestRender_WritesAllPlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "previews")
	b := jsmodule.Bundle{Size: "4", Sigma: "0.5", Samples: []datasets.Extracted{
		{Index: 0, X: checkerboard(4), Y: ramp(16)},
	}}

	res, err := Render(dir, "lrim_4_0.5_10k", b)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Written, 3)

	for _, name := range []string{"lrim_4_0.5_10k_spins.png", "lrim_4_0.5_10k_energy.png", "lrim_4_0.5_10k_hist.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestRender_ScalarEnergySkipsGridAndHist(t *testing.T) {
	dir := t.TempDir()
	b := jsmodule.Bundle{Size: "2", Samples: []datasets.Extracted{
		{Index: 0, X: checkerboard(2), Y: -3.0},
	}}

	res, err := Render(dir, "k", b)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "k_spins.png")}, res.Written)
	assert.Len(t, res.Skipped, 2)
}

func TestRender_WrongLengthIsSkipped(t *testing.T) {
	b := jsmodule.Bundle{Size: "8", Samples: []datasets.Extracted{
		{Index: 0, X: checkerboard(2), Y: nil},
	}}

	res, err := Render(t.TempDir(), "k", b)
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Len(t, res.Skipped, 3)
}

func TestRender_NoSamplesAndBadSize(t *testing.T) {
	res, err := Render(t.TempDir(), "k", jsmodule.Bundle{Size: "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"no samples"}, res.Skipped)

	_, err = Render(t.TempDir(), "k", jsmodule.Bundle{Size: "big", Samples: []datasets.Extracted{{}}})
	assert.Error(t, err)
}

func TestNewGrid(t *testing.T) {
	g, ok := newGrid([]any{1.0, 2.0, nil, 4.0}, 2)
	require.True(t, ok)
	assert.Equal(t, 1.0, g.Min())
	assert.Equal(t, 4.0, g.Max())
	// Row 0 of the data is the top row of the plot.
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 4.0, g.Z(1, 0))
	assert.True(t, math.IsNaN(g.Z(0, 0)))

	flat, ok := newGrid([]any{1.0, 1.0, 1.0, 1.0}, 2)
	require.True(t, ok)
	assert.Less(t, flat.Min(), flat.Max())

	big, ok := newGrid([]any{json.Number("9007199254740993"), 0.0, 0.0, 0.0}, 2)
	require.True(t, ok)
	assert.Equal(t, 9007199254740992.0, big.Max())

	_, ok = newGrid([]any{nil, nil, nil, nil}, 2)
	assert.False(t, ok)
	_, ok = newGrid([]any{[]any{1.0}, 1.0, 1.0, 1.0}, 2)
	assert.False(t, ok)
	_, ok = newGrid(1.0, 1)
	assert.False(t, ok)
}
