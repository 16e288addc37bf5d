package datasets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tag is the literal first segment of every dataset file name.
const Tag = "lrim"

// ErrUnrecognizedName is returned by ParseName for stems that are not
// lrim_<size>_<sigma>_<suffix>.
var ErrUnrecognizedName = errors.New("unrecognized dataset file name")

// Name holds the fields encoded in a dataset file name. Size and Sigma are
// kept as the raw text so "0.6" stays "0.6".
type Name struct {
	Size   string
	Sigma  string
	Suffix string
}

// ParseName splits a file stem such as "lrim_128_0.6_10k" into its fields.
// Segments past the fourth are ignored.
func ParseName(stem string) (Name, error) {
	parts := strings.Split(stem, "_")
	if len(parts) < 4 || parts[0] != Tag {
		return Name{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, stem)
	}
	return Name{Size: parts[1], Sigma: parts[2], Suffix: parts[3]}, nil
}

// Key is the bundle key used in the generated module.
func (n Name) Key() string {
	return strings.Join([]string{Tag, n.Size, n.Sigma, n.Suffix}, "_")
}

// GridSize parses Size. Datasets are square grids of GridSize x GridSize spins.
func (n Name) GridSize() (int, error) {
	return strconv.Atoi(n.Size)
}

// sizeOf returns the size segment of a stem, if the stem starts with the tag
// and the segment is an integer.
func sizeOf(stem string) (int, bool) {
	parts := strings.Split(stem, "_")
	if len(parts) < 2 || parts[0] != Tag {
		return 0, false
	}
	size, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return size, true
}
