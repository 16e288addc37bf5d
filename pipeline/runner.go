// Package pipeline runs one extraction batch: discover dataset files, pull
// samples from each, and write the combined JavaScript data file.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Noofbiz/lrimviz/config"
	"github.com/Noofbiz/lrimviz/datasets"
	"github.com/Noofbiz/lrimviz/jsmodule"
	"github.com/Noofbiz/lrimviz/logging"
	"github.com/Noofbiz/lrimviz/preview"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSamples marks a dataset that loaded but yielded no samples.
var ErrNoSamples = errors.New("no samples")

// Run discovers dataset files under cfg.DataDir, extracts up to cfg.Samples
// samples from each and writes cfg.Output. Failures are logged per file and
// never stop the batch; the returned stats say what happened.
func Run(cfg *config.Config, log *logging.Logger) Stats {
	var stats Stats
	log = log.With(zap.String("run_id", uuid.NewString()))

	files, err := datasets.Discover(cfg.DataDir, cfg.PatternSuffix, cfg.MaxSize)
	if err != nil {
		log.Error("Dataset discovery failed", zap.String("dir", cfg.DataDir), zap.Error(err))
		log.Info("No dataset files found")
		return stats
	}
	stats.Found = len(files)
	log.Info(fmt.Sprintf("Found %d dataset files", len(files)))

	if len(files) == 0 {
		log.Info("No dataset files found")
		return stats
	}

	coll := jsmodule.NewCollection()
	for _, path := range files {
		processFile(cfg, log, path, coll, &stats)
	}

	if coll.Len() == 0 {
		log.Info("No datasets were processed successfully")
		return stats
	}

	n, err := jsmodule.WriteFile(cfg.Output, coll, cfg.EncodeOptions())
	if err != nil {
		log.Error("Failed to write output", zap.String("output", cfg.Output), zap.Error(err))
		return stats
	}
	stats.OutputBytes = n
	log.Info(fmt.Sprintf("Generated %s with %d datasets", cfg.Output, coll.Len()))
	log.Info("File size: " + humanize.Bytes(uint64(n)))

	logSummary(log, coll)

	if cfg.PreviewDir != "" {
		renderPreviews(cfg.PreviewDir, log, coll, &stats)
	}
	return stats
}

// processFile handles one dataset file: name → open → extract → collect.
func processFile(cfg *config.Config, log *logging.Logger, path string, coll *jsmodule.Collection, stats *Stats) {
	base := filepath.Base(path)

	name, err := datasets.ParseName(datasets.Stem(path))
	if err != nil {
		log.Debug("Could not parse filename format: " + base)
		stats.Skipped++
		return
	}

	log.Debug(fmt.Sprintf("Processing dataset: %s...", base))
	samples, err := extractFile(path, cfg.Samples, log)
	switch {
	case errors.Is(err, ErrNoSamples):
		log.Debug("No samples found in " + base)
		stats.Empty++
		return
	case err != nil:
		log.Error(fmt.Sprintf("Error processing %s: %v", path, err))
		stats.Failed++
		return
	}
	log.Debug(fmt.Sprintf("Extracted %d samples from %s", len(samples), base))

	key := name.Key()
	if coll.Add(key, jsmodule.Bundle{Size: name.Size, Sigma: name.Sigma, Samples: samples}) {
		log.Warn("Replacing dataset with a later file", zap.String("key", key), zap.String("file", base))
		stats.Replaced++
	}
	stats.Processed++
}

func extractFile(path string, n int, log *logging.Logger) ([]datasets.Extracted, error) {
	ds, err := datasets.Open(path)
	if err != nil {
		return nil, err
	}
	log.Debug("Dataset loaded", zap.String("type", fmt.Sprintf("%T", ds)), zap.Int("length", ds.Len()))

	samples, err := datasets.Extract(ds, n)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	for _, s := range samples {
		log.Debug(fmt.Sprintf("Sample %d", s.Index),
			zap.Ints("x_shape", datasets.ValueShape(s.X)),
			zap.Ints("y_shape", datasets.ValueShape(s.Y)))
	}
	return samples, nil
}

func logSummary(log *logging.Logger, coll *jsmodule.Collection) {
	if !log.Enabled(zap.DebugLevel) {
		return
	}
	log.Debug("Dataset summary:")
	for _, key := range coll.Keys() {
		b, _ := coll.Get(key)
		log.Debug(fmt.Sprintf("  %s: %d samples, grid size %sx%s", key, len(b.Samples), b.Size, b.Size))
	}
}

func renderPreviews(dir string, log *logging.Logger, coll *jsmodule.Collection, stats *Stats) {
	for _, key := range coll.Keys() {
		b, _ := coll.Get(key)
		res, err := preview.Render(dir, key, b)
		stats.Previews += len(res.Written)
		for _, reason := range res.Skipped {
			log.Debug("Preview skipped", zap.String("key", key), zap.String("reason", reason))
		}
		if err != nil {
			log.Warn("Preview failed", zap.String("key", key), zap.Error(err))
		}
	}
	log.Info(fmt.Sprintf("Wrote %d preview images to %s", stats.Previews, dir))
}
