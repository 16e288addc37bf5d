package pipeline

// Stats tracks what happened to each discovered file in a run.
type Stats struct {
	Found     int
	Processed int
	Empty     int
	Failed    int
	Skipped   int
	// Replaced counts keys produced by more than one file; the later file wins.
	Replaced    int
	Previews    int
	OutputBytes int64
}

// Wrote reports whether the run produced an output file.
func (s *Stats) Wrote() bool {
	return s.OutputBytes > 0
}
