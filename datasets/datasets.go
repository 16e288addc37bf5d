package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package reads lrim dataset files and pulls a few leading samples out
// of them for the browser visualizer.
//
// Layout:
//
// Dataset
//   - An indexable, finite sequence of samples with a known length.
//   - Concrete containers (PyTorch .pt pickles, NumPy .npz archives) are
//     adapters behind this interface; see Open.
//
// Sample
//   - X: node features, usually one spin per grid cell.
//   - Y: targets, either one scalar or one value per grid cell.
//   - Either field may be missing, in which case it is nil.
//
// Extract turns the first N samples into plain nested lists (see Extracted),
// which is the only shape the JavaScript side understands.

// Sample is a single record of a dataset file. Fields are gomlx tensors and a
// nil tensor means the record does not carry that field.
type Sample struct {
	X *tensors.Tensor
	Y *tensors.Tensor
}

// Dataset is the capability the extractor needs from a dataset file: a length
// known upfront and random access by index.
type Dataset interface {
	Len() int
	Example(i int) (Sample, error)
}
