package datasets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for extensions without a loader.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// OpenFunc loads one dataset file.
type OpenFunc func(path string) (Dataset, error)

var openers = map[string]OpenFunc{
	".pt":  OpenTorch,
	".pth": OpenTorch,
	".npz": OpenNPZ,
}

// Open loads the dataset at path with the loader registered for its
// extension. Decoders that panic on malformed input surface as errors.
func Open(path string) (ds Dataset, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := openers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	defer func() {
		if r := recover(); r != nil {
			ds = nil
			err = fmt.Errorf("failed to load %s: %v", filepath.Base(path), r)
		}
	}()
	return open(path)
}
