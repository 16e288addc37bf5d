package datasets

import (
	"io"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/pkg/errors"
)

// TorchDataset is a dataset file written with torch.save: a pickled list of
// records, typically torch_geometric Data objects. Records are decoded once
// on load; tensors are converted on access.
type TorchDataset struct {
	path    string
	records []any
}

// OpenTorch loads a .pt file. Classes other than torch's own (e.g. the graph
// Data class) are reconstructed as generic attribute bags.
func OpenTorch(path string) (Dataset, error) {
	obj, err := pytorch.LoadWithUnpickler(path, func(r io.Reader) pickle.Unpickler {
		u := pickle.NewUnpickler(r)
		u.FindClass = findClass
		return u
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpickle %s", path)
	}
	seq, ok := obj.(sequence)
	if !ok {
		return nil, errors.Errorf("%s: expected a list of records, got %T", path, obj)
	}
	records := make([]any, seq.Len())
	for i := range records {
		records[i] = seq.Get(i)
	}
	return &TorchDataset{path: path, records: records}, nil
}

// Len returns the number of records.
func (d *TorchDataset) Len() int {
	return len(d.records)
}

// Example converts the x and y fields of record i.
func (d *TorchDataset) Example(i int) (Sample, error) {
	if i < 0 || i >= len(d.records) {
		return Sample{}, errors.Errorf("index %d out of range [0, %d)", i, len(d.records))
	}
	rec := d.records[i]
	var s Sample
	var err error
	if s.X, err = fieldTensor(rec, "x"); err != nil {
		return Sample{}, errors.Wrap(err, "field x")
	}
	if s.Y, err = fieldTensor(rec, "y"); err != nil {
		return Sample{}, errors.Wrap(err, "field y")
	}
	return s, nil
}

// sequence matches pickled lists and tuples.
type sequence interface {
	Len() int
	Get(i int) interface{}
}

// mapping matches pickled dicts and ordered dicts.
type mapping interface {
	Get(key interface{}) (interface{}, bool)
}

// pyClass stands in for any class the pickle references that gopickle and
// its torch support do not know about.
type pyClass struct {
	Module string
	Name   string
}

var (
	_ types.PyNewable      = (*pyClass)(nil)
	_ types.Callable       = (*pyClass)(nil)
	_ types.PyDictSettable = (*pyObject)(nil)
	_ types.PyAttrSettable = (*pyObject)(nil)
)

func findClass(module, name string) (interface{}, error) {
	return &pyClass{Module: module, Name: name}, nil
}

func (c *pyClass) PyNew(args ...interface{}) (interface{}, error) {
	return &pyObject{Class: c, Attrs: map[string]any{}, Args: args}, nil
}

func (c *pyClass) Call(args ...interface{}) (interface{}, error) {
	return c.PyNew(args...)
}

// pyObject is an instance of a pyClass; BUILD fills Attrs from the pickled
// state dict.
type pyObject struct {
	Class *pyClass
	Attrs map[string]any
	Args  []interface{}
}

func (o *pyObject) PyDictSet(key, value interface{}) error {
	k, ok := key.(string)
	if !ok {
		return errors.Errorf("%s.%s: non-string attribute key %v", o.Class.Module, o.Class.Name, key)
	}
	o.Attrs[k] = value
	return nil
}

func (o *pyObject) PySetAttr(key string, value interface{}) error {
	o.Attrs[key] = value
	return nil
}

// maxFieldDepth bounds the walk through nested storage objects. Graph Data
// keeps fields at Data._store._mapping, two levels down.
const maxFieldDepth = 4

// lookupField finds a named field on a record: a plain attribute, a dict
// key, or the same inside the record's _store / _mapping.
func lookupField(rec any, name string, depth int) (any, bool) {
	if depth > maxFieldDepth {
		return nil, false
	}
	switch r := rec.(type) {
	case *pyObject:
		if v, ok := r.Attrs[name]; ok {
			return v, true
		}
		for _, inner := range []string{"_store", "_mapping"} {
			if sub, ok := r.Attrs[inner]; ok {
				if v, ok := lookupField(sub, name, depth+1); ok {
					return v, true
				}
			}
		}
	case mapping:
		return r.Get(name)
	}
	return nil, false
}

// fieldTensor returns field name of rec as a tensor, or nil when the field is
// missing or None.
func fieldTensor(rec any, name string) (*tensors.Tensor, error) {
	v, ok := lookupField(rec, name, 0)
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case *pytorch.Tensor:
		return torchToTensor(x)
	case float64:
		return newTensor([]float64{x}, nil)
	case int:
		return newTensor([]int64{int64(x)}, nil)
	case int64:
		return newTensor([]int64{x}, nil)
	case bool:
		return newTensor([]bool{x}, nil)
	default:
		return nil, errors.Errorf("unsupported value of type %T", v)
	}
}

// torchToTensor copies a (possibly strided) torch tensor into a dense gomlx
// tensor of the same shape.
func torchToTensor(t *pytorch.Tensor) (*tensors.Tensor, error) {
	dims := append([]int(nil), t.Size...)
	var (
		flat any
		err  error
	)
	switch s := t.Source.(type) {
	case *pytorch.FloatStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.HalfStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.BFloat16Storage:
		flat, err = gather(s.Data, t)
	case *pytorch.DoubleStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.LongStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.IntStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.ShortStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.CharStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.ByteStorage:
		flat, err = gather(s.Data, t)
	case *pytorch.BoolStorage:
		flat, err = gather(s.Data, t)
	default:
		return nil, errors.Errorf("unsupported tensor storage %T", t.Source)
	}
	if err != nil {
		return nil, err
	}
	return newTensor(flat, dims)
}

// gather walks the tensor's index space in row-major order and picks each
// element from storage through offset and strides.
func gather[T any](data []T, t *pytorch.Tensor) ([]T, error) {
	size := t.Size
	stride := t.Stride
	if len(stride) != len(size) {
		stride = contiguousStrides(size)
	}
	n := numElements(size)
	out := make([]T, 0, n)
	idx := make([]int, len(size))
	for range n {
		off := t.StorageOffset
		for d, i := range idx {
			off += i * stride[d]
		}
		if off < 0 || off >= len(data) {
			return nil, errors.Errorf("tensor element offset %d outside storage of %d elements", off, len(data))
		}
		out = append(out, data[off])
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out, nil
}

func contiguousStrides(size []int) []int {
	stride := make([]int, len(size))
	acc := 1
	for d := len(size) - 1; d >= 0; d-- {
		stride[d] = acc
		acc *= size[d]
	}
	return stride
}
