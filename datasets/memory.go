package datasets

import "fmt"

// MemoryDataset is a Dataset backed by a slice of samples.
type MemoryDataset struct {
	Samples []Sample
}

// NewMemoryDataset returns a dataset holding samples in order.
func NewMemoryDataset(samples ...Sample) *MemoryDataset {
	return &MemoryDataset{Samples: samples}
}

// Len returns the number of samples.
func (m *MemoryDataset) Len() int {
	return len(m.Samples)
}

// Example returns sample i.
func (m *MemoryDataset) Example(i int) (Sample, error) {
	if i < 0 || i >= len(m.Samples) {
		return Sample{}, fmt.Errorf("index %d out of range [0, %d)", i, len(m.Samples))
	}
	return m.Samples[i], nil
}
