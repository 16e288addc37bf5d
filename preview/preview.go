// Package preview renders PNG snapshots of extracted datasets: the spin grid
// and energy grid of the first sample, and a histogram of its energies. They
// are quick checks of an export without opening the browser visualizer.
package preview

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/Noofbiz/lrimviz/datasets"
	"github.com/Noofbiz/lrimviz/jsmodule"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistBins matches the energy histogram drawn by the visualizer.
const HistBins = 30

// Result lists the files written for one dataset and the plots that were
// skipped, with the reason.
type Result struct {
	Written []string
	Skipped []string
}

// Render writes <key>_spins.png, <key>_energy.png and <key>_hist.png for the
// first sample of b into dir. Grids need exactly size*size values; anything
// else is skipped rather than failed.
func Render(dir, key string, b jsmodule.Bundle) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: %v", key, r)
		}
	}()

	if len(b.Samples) == 0 {
		res.Skipped = append(res.Skipped, "no samples")
		return res, nil
	}
	size, err := datasets.Name{Size: b.Size}.GridSize()
	if err != nil || size <= 0 {
		return res, fmt.Errorf("render %s: invalid grid size %q", key, b.Size)
	}
	if err := ensureDir(dir); err != nil {
		return res, err
	}
	first := b.Samples[0]

	plots := []struct {
		name  string
		title string
		value any
	}{
		{"spins", "Spins", first.X},
		{"energy", "Energy", first.Y},
	}
	for _, p := range plots {
		g, ok := newGrid(p.value, size)
		if !ok {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: not a %dx%d grid", p.name, size, size))
			continue
		}
		out := filepath.Join(dir, key+"_"+p.name+".png")
		if err := plotGrid(out, fmt.Sprintf("%s %s (sample %d)", key, p.title, first.Index), g); err != nil {
			return res, fmt.Errorf("plot %s: %w", out, err)
		}
		res.Written = append(res.Written, out)
	}

	energies := datasets.Floats(first.Y)
	if !spread(energies) {
		res.Skipped = append(res.Skipped, "hist: fewer than two distinct energies")
		return res, nil
	}
	out := filepath.Join(dir, key+"_hist.png")
	if err := plotHist(out, key+" energy distribution", energies); err != nil {
		return res, fmt.Errorf("plot %s: %w", out, err)
	}
	res.Written = append(res.Written, out)
	return res, nil
}

// grid adapts a flat row-major size*size list to plotter.GridXYZ. Row 0 is
// drawn at the top, as in the visualizer. Nulls become NaN.
type grid struct {
	size     int
	cells    []float64
	min, max float64
}

func newGrid(v any, size int) (*grid, bool) {
	list, ok := v.([]any)
	if !ok || len(list) != size*size {
		return nil, false
	}
	g := &grid{size: size, cells: make([]float64, len(list)), min: math.Inf(1), max: math.Inf(-1)}
	for i, e := range list {
		f, ok := e.(float64)
		if n, isNum := e.(json.Number); isNum {
			var err error
			f, err = n.Float64()
			ok = err == nil
		}
		if !ok {
			if e != nil {
				return nil, false
			}
			f = math.NaN()
		} else {
			g.min = math.Min(g.min, f)
			g.max = math.Max(g.max, f)
		}
		g.cells[i] = f
	}
	if math.IsInf(g.min, 1) {
		return nil, false
	}
	if g.min == g.max {
		g.min -= 0.5
		g.max += 0.5
	}
	return g, true
}

func (g *grid) Dims() (c, r int)   { return g.size, g.size }
func (g *grid) X(c int) float64    { return float64(c) }
func (g *grid) Y(r int) float64    { return float64(r) }
func (g *grid) Min() float64       { return g.min }
func (g *grid) Max() float64       { return g.max }
func (g *grid) Z(c, r int) float64 { return g.cells[(g.size-1-r)*g.size+c] }

func plotGrid(path, title string, g *grid) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"

	hm := plotter.NewHeatMap(g, palette.Heat(16, 1))
	hm.Min, hm.Max = g.min, g.max
	hm.NaN = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(hm)

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func plotHist(path, title string, vals []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "energy"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(vals), HistBins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 20, G: 80, B: 200, A: 200}
	p.Add(h)
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func spread(vals []float64) bool {
	for _, v := range vals[min(1, len(vals)):] {
		if v != vals[0] {
			return true
		}
	}
	return false
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
