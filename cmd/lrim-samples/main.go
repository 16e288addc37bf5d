// Command lrim-samples extracts the first samples of every lrim dataset file
// into lrim_dataset.js for the browser visualizer.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Noofbiz/lrimviz/config"
	"github.com/Noofbiz/lrimviz/jsmodule"
	"github.com/Noofbiz/lrimviz/logging"
	"github.com/Noofbiz/lrimviz/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var version = "dev"

// usageError marks bad flags or settings, reported with exit code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "error:", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "run 'lrim-samples --help' for usage")
		return exitUsage
	}
	return exitError
}

type rootFlags struct {
	configPath    string
	dataDir       string
	patternSuffix string
	maxSize       int
	samples       int
	output        string
	compact       bool
	export        string
	previewDir    string
	verbose       bool
	logFormat     string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "lrim-samples",
		Short: "Extract dataset samples to JavaScript",
		Long: `lrim-samples reads lrim_<size>_<sigma>_<suffix> dataset files (.pt or .npz),
takes the first N samples of each and writes them to a JavaScript file that
defines datasetSamples for the visualizer.

Settings come from flags, LRIM_* environment variables and an optional YAML
file given with --config, in that order of precedence.

Examples:
  # Defaults: ../data/raw/*_10k.pt, 10 samples, compact lrim_dataset.js
  lrim-samples

  # Readable output with 3 samples and PNG previews
  lrim-samples --compact=false --samples 3 --preview-dir previews`,
		Version:       version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return usageError{err}
			}
			logger, err := logging.NewLogger(withOutput(cfg.LogConfig(), stdout))
			if err != nil {
				return usageError{err}
			}
			defer logger.Sync()

			// Per-file failures are reported in the log; the run itself succeeds.
			pipeline.Run(cfg, logger)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	def := config.Default()
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.StringVar(&f.dataDir, "data-dir", def.DataDir, "directory holding the dataset files")
	fl.StringVar(&f.patternSuffix, "pattern-suffix", def.PatternSuffix, "file name suffix of dataset files")
	fl.IntVar(&f.maxSize, "max-size", def.MaxSize, "largest grid size to include")
	fl.IntVar(&f.samples, "samples", def.Samples, "number of samples per dataset")
	fl.StringVar(&f.output, "output", def.Output, "JavaScript file to write")
	fl.BoolVar(&f.compact, "compact", def.Compact, "generate compact JS output")
	fl.StringVar(&f.export, "export", def.Export, "how the data is exposed: global or module")
	fl.StringVar(&f.previewDir, "preview-dir", "", "write PNG previews of each dataset here")
	fl.BoolVar(&f.verbose, "verbose", false, "enable verbose output")
	fl.StringVar(&f.logFormat, "log-format", def.Log.Format, "log format: console or json")

	cmd.AddCommand(newInspectCmd())
	return cmd
}

// loadConfig layers explicitly set flags over file and environment settings.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	var o config.Overrides
	if changed("data-dir") {
		o.DataDir = &f.dataDir
	}
	if changed("pattern-suffix") {
		o.PatternSuffix = &f.patternSuffix
	}
	if changed("max-size") {
		o.MaxSize = &f.maxSize
	}
	if changed("samples") {
		o.Samples = &f.samples
	}
	if changed("output") {
		o.Output = &f.output
	}
	if changed("compact") {
		o.Compact = &f.compact
	}
	if changed("export") {
		o.Export = &f.export
	}
	if changed("preview-dir") {
		o.PreviewDir = &f.previewDir
	}
	if changed("verbose") {
		o.Verbose = &f.verbose
	}
	if changed("log-format") {
		o.LogFormat = &f.logFormat
	}
	o.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withOutput(lc *logging.Config, w io.Writer) *logging.Config {
	lc.Output = zapcore.AddSync(w)
	return lc
}

// usageArgs wraps a positional argument check so violations exit as usage
// errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.js>",
		Short: "List the datasets in a generated file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			c, err := jsmodule.Decode(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, key := range c.Keys() {
				b, _ := c.Get(key)
				fmt.Fprintf(out, "%s: %d samples, grid size %sx%s\n", key, len(b.Samples), b.Size, b.Size)
			}
			fmt.Fprintf(out, "%d datasets\n", c.Len())
			return nil
		},
	}
}
