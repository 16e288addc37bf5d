package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultSuffix matches the 10k-sample dataset files.
	DefaultSuffix = "_10k.pt"
	// DefaultMaxSize is the largest grid the visualizer can draw.
	DefaultMaxSize = 256
)

// Discover lists the dataset files directly inside dir whose name ends with
// suffix and whose size segment is an integer no larger than maxSize. Names
// that do not parse are skipped. Paths are returned sorted by file name so
// the generated module does not depend on directory order.
func Discover(dir, suffix string, maxSize int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		size, ok := sizeOf(Stem(name))
		if !ok || size > maxSize {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
