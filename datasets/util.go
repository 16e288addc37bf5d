package datasets

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Stem returns the file name of path without directory and extension,
// e.g. "data/raw/lrim_128_0.6_10k.pt" -> "lrim_128_0.6_10k".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// numElements is the product of dims (1 for a scalar).
func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// newTensor wraps flat row-major data with the given dimensions. gomlx panics
// on inconsistent shapes, so the panic is turned into an error here.
func newTensor(flat any, dims []int) (t *tensors.Tensor, err error) {
	if n := flatLen(flat); n != numElements(dims) {
		return nil, fmt.Errorf("tensor data has %d elements, shape %v needs %d", n, dims, numElements(dims))
	}
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = fmt.Errorf("building tensor of shape %v: %v", dims, r)
		}
	}()
	switch v := flat.(type) {
	case []float32:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []float64:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []int64:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []int32:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []int16:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []int8:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []uint8:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []uint16:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []uint32:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []uint64:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	case []bool:
		return tensors.FromFlatDataAndDimensions(v, dims...), nil
	default:
		return nil, fmt.Errorf("unsupported element type %T", flat)
	}
}

// flatLen is len(flat) for any slice, -1 for anything else.
func flatLen(flat any) int {
	v := reflect.ValueOf(flat)
	if v.Kind() != reflect.Slice {
		return -1
	}
	return v.Len()
}

// sliceFlat returns flat[lo:hi] keeping the element type.
func sliceFlat(flat any, lo, hi int) any {
	return reflect.ValueOf(flat).Slice(lo, hi).Interface()
}

// flatNumbers copies the elements of t in row-major order. Elements are
// returned as float64, which is also how the browser sees numbers; booleans
// become 0/1 and non-finite floats become nil. Integers too large for a
// float64 to hold exactly are kept as json.Number with all their digits.
func flatNumbers(t *tensors.Tensor) (out []any, err error) {
	t.ConstFlatData(func(flat any) {
		switch v := flat.(type) {
		case []float32:
			out = make([]any, len(v))
			for i, f := range v {
				out[i] = finite(float64(f))
			}
		case []float64:
			out = make([]any, len(v))
			for i, f := range v {
				out[i] = finite(f)
			}
		case []int64:
			out = convertInts(v)
		case []int32:
			out = convertInts(v)
		case []int16:
			out = convertInts(v)
		case []int8:
			out = convertInts(v)
		case []uint8:
			out = convertInts(v)
		case []uint16:
			out = convertInts(v)
		case []uint32:
			out = convertInts(v)
		case []uint64:
			out = convertInts(v)
		case []bool:
			out = make([]any, len(v))
			for i, b := range v {
				if b {
					out[i] = 1.0
				} else {
					out[i] = 0.0
				}
			}
		default:
			err = fmt.Errorf("unsupported tensor dtype %s", t.DType())
		}
	})
	return out, err
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// maxExactInt is 2^53; every integer of smaller magnitude is exact in a float64.
const maxExactInt = 1 << 53

func convertInts[T integer](v []T) []any {
	out := make([]any, len(v))
	for i, n := range v {
		out[i] = intNumber(n)
	}
	return out
}

func intNumber[T integer](n T) any {
	f := float64(n)
	if math.Abs(f) < maxExactInt {
		return f
	}
	return json.Number(fmt.Sprint(n))
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// nest rebuilds a nested list from row-major flat data, the same shape
// torch's tolist() produces. A rank-0 shape yields the bare element.
func nest(flat []any, dims []int) any {
	if len(dims) == 0 {
		return flat[0]
	}
	out := make([]any, dims[0])
	if dims[0] == 0 {
		return out
	}
	stride := len(flat) / dims[0]
	for i := range dims[0] {
		out[i] = nest(flat[i*stride:(i+1)*stride], dims[1:])
	}
	return out
}
