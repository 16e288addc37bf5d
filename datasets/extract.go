package datasets

import (
	"encoding/json"
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Extracted is one sample in the form written to lrim_dataset.js. X and Y are
// nil, a float64, or nested []any of float64 (and nil for non-finite values).
// Integers beyond 2^53 appear as json.Number so no digits are lost.
// The short JSON keys are what the visualizer reads.
type Extracted struct {
	Index int `json:"i"`
	X     any `json:"x"`
	Y     any `json:"y"`
}

// Extract reads the first min(n, ds.Len()) samples of ds in index order.
// Any failure aborts the whole dataset: callers get either every requested
// sample or an error, never a partial list.
func Extract(ds Dataset, n int) (samples []Extracted, err error) {
	defer func() {
		if r := recover(); r != nil {
			samples = nil
			err = fmt.Errorf("extract samples: %v", r)
		}
	}()

	count := min(n, ds.Len())
	if count <= 0 {
		return []Extracted{}, nil
	}

	samples = make([]Extracted, 0, count)
	for i := range count {
		s, err := ds.Example(i)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		e := Extracted{Index: i}
		if s.X != nil {
			if e.X, err = FeatureValue(s.X); err != nil {
				return nil, fmt.Errorf("sample %d: x: %w", i, err)
			}
		}
		if s.Y != nil {
			if e.Y, err = TargetValue(s.Y); err != nil {
				return nil, fmt.Errorf("sample %d: y: %w", i, err)
			}
		}
		samples = append(samples, e)
	}
	return samples, nil
}

// FeatureValue converts a feature tensor to its list form, collapsing a
// column of single-element rows ([[1], [-1], [1]]) to a flat list ([1, -1, 1]).
func FeatureValue(t *tensors.Tensor) (any, error) {
	flat, err := flatNumbers(t)
	if err != nil {
		return nil, err
	}
	return nest(flat, flattenedDims(t.Shape().Dimensions)), nil
}

// TargetValue is FeatureValue, except that a target holding exactly one
// element is unwrapped to a bare number.
func TargetValue(t *tensors.Tensor) (any, error) {
	flat, err := flatNumbers(t)
	if err != nil {
		return nil, err
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	return nest(flat, flattenedDims(t.Shape().Dimensions)), nil
}

// flattenedDims drops axis 1 when it has size 1 and axis 0 is non-empty: that
// is exactly the case where every top-level element is a one-item list.
func flattenedDims(dims []int) []int {
	if len(dims) >= 2 && dims[0] > 0 && dims[1] == 1 {
		out := make([]int, 0, len(dims)-1)
		out = append(out, dims[0])
		return append(out, dims[2:]...)
	}
	return dims
}

// ValueShape reports the nesting of an extracted value, e.g. [1024] for a
// flat grid, [] for a scalar and nil for a missing field.
func ValueShape(v any) []int {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		shape := []int{len(x)}
		if len(x) > 0 {
			if inner := ValueShape(x[0]); len(inner) > 0 {
				shape = append(shape, inner...)
			}
		}
		return shape
	default:
		return []int{}
	}
}

// Floats flattens an extracted value into its numeric leaves, skipping nulls.
func Floats(v any) []float64 {
	var out []float64
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case float64:
			out = append(out, x)
		case json.Number:
			if f, err := x.Float64(); err == nil {
				out = append(out, f)
			}
		case []any:
			for _, e := range x {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}
