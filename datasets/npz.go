package datasets

import (
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
)

// NPZDataset is a dataset stored as a NumPy archive with arrays "x" and/or
// "y" whose first axis indexes records. Both arrays are read eagerly; records
// are sliced out on access.
type NPZDataset struct {
	path string
	n    int
	x    *ndarray
	y    *ndarray
}

// ndarray is a dense row-major array read from an .npy member.
type ndarray struct {
	dims []int
	flat any
}

// OpenNPZ loads a .npz dataset file.
func OpenNPZ(path string) (Dataset, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive %s", path)
	}
	defer r.Close()

	ds := &NPZDataset{path: path}
	if ds.x, err = readArray(r, "x"); err != nil {
		return nil, err
	}
	if ds.y, err = readArray(r, "y"); err != nil {
		return nil, err
	}
	switch {
	case ds.x == nil && ds.y == nil:
		return nil, errors.Errorf("%s: archive has neither x nor y", path)
	case ds.x != nil && ds.y != nil && ds.x.dims[0] != ds.y.dims[0]:
		return nil, errors.Errorf("%s: x has %d records but y has %d", path, ds.x.dims[0], ds.y.dims[0])
	case ds.x != nil:
		ds.n = ds.x.dims[0]
	default:
		ds.n = ds.y.dims[0]
	}
	return ds, nil
}

// Len returns the number of records.
func (d *NPZDataset) Len() int {
	return d.n
}

// Example returns record i of each array present in the archive.
func (d *NPZDataset) Example(i int) (Sample, error) {
	if i < 0 || i >= d.n {
		return Sample{}, errors.Errorf("index %d out of range [0, %d)", i, d.n)
	}
	var s Sample
	var err error
	if d.x != nil {
		if s.X, err = d.x.row(i); err != nil {
			return Sample{}, errors.Wrap(err, "field x")
		}
	}
	if d.y != nil {
		if s.Y, err = d.y.row(i); err != nil {
			return Sample{}, errors.Wrap(err, "field y")
		}
	}
	return s, nil
}

func (a *ndarray) row(i int) (*tensors.Tensor, error) {
	rowDims := a.dims[1:]
	size := numElements(rowDims)
	return newTensor(sliceFlat(a.flat, i*size, (i+1)*size), rowDims)
}

// readArray reads member name ("x" or "x.npy") from the archive. A missing
// member is not an error: the field is simply absent from every record.
func readArray(r *npz.Reader, name string) (*ndarray, error) {
	key := ""
	for _, k := range r.Keys() {
		if k == name || k == name+".npy" {
			key = k
			break
		}
	}
	if key == "" {
		return nil, nil
	}

	hdr := r.Header(key)
	if hdr == nil {
		return nil, errors.Errorf("member %s: missing header", key)
	}
	dims := append([]int(nil), hdr.Descr.Shape...)
	if len(dims) == 0 {
		return nil, errors.Errorf("member %s: records need a leading axis, got a scalar", key)
	}
	if hdr.Descr.Fortran && len(dims) > 1 {
		return nil, errors.Errorf("member %s: Fortran-ordered arrays are not supported", key)
	}

	// Drop the byte-order mark: "<f4" -> "f4".
	kind := strings.TrimLeft(hdr.Descr.Type, "<>|=")
	var flat any
	var err error
	switch kind {
	case "f4":
		flat, err = readInto[float32](r, key)
	case "f8":
		flat, err = readInto[float64](r, key)
	case "i1":
		flat, err = readInto[int8](r, key)
	case "i2":
		flat, err = readInto[int16](r, key)
	case "i4":
		flat, err = readInto[int32](r, key)
	case "i8":
		flat, err = readInto[int64](r, key)
	case "u1":
		flat, err = readInto[uint8](r, key)
	case "u2":
		flat, err = readInto[uint16](r, key)
	case "u4":
		flat, err = readInto[uint32](r, key)
	case "u8":
		flat, err = readInto[uint64](r, key)
	case "b1":
		flat, err = readInto[bool](r, key)
	default:
		return nil, errors.Errorf("member %s: unsupported dtype %q", key, hdr.Descr.Type)
	}
	if err != nil {
		return nil, err
	}
	if n := flatLen(flat); n != numElements(dims) {
		return nil, errors.Errorf("member %s: read %d elements for shape %v", key, n, dims)
	}
	return &ndarray{dims: dims, flat: flat}, nil
}

func readInto[T any](r *npz.Reader, key string) ([]T, error) {
	var data []T
	if err := r.Read(key, &data); err != nil {
		return nil, errors.Wrapf(err, "failed to read member %s", key)
	}
	return data, nil
}
