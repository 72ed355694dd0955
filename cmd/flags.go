package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"texshrink/internal/config"
)

// runFlags holds the flags shared by resize and scan. Only flags set on
// the command line override values from the config file or environment.
type runFlags struct {
	configPath    string
	maxDimension  int
	maxMegapixels float64
	minDimension  int
	workers       int
	verbose       bool
	noProgress    bool
	debug         bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVar(&f.configPath, "config", "", "YAML file with default settings")
	fs.IntVar(&f.maxDimension, "max-dim", def.MaxDimension, "max width/height allowed")
	fs.Float64Var(&f.maxMegapixels, "max-megapixels", def.MaxMegapixels, "optional area cap in megapixels, 0 disables")
	fs.IntVar(&f.minDimension, "min-dim", def.MinDimension, "do not downscale below this on either side")
	fs.IntVarP(&f.workers, "workers", "j", def.Workers, "files processed concurrently")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "also list skipped files")
	fs.BoolVar(&f.noProgress, "no-progress", false, "disable the live progress view")
	fs.BoolVar(&f.debug, "debug", false, "write debug logs to stderr")
}

// load builds the configuration for the input directory in args[0].
func (f *runFlags) load(cmd *cobra.Command, input string) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	cfg.InputDir = input
	flags := cmd.Flags()
	if flags.Changed("max-dim") {
		cfg.MaxDimension = f.maxDimension
	}
	if flags.Changed("max-megapixels") {
		cfg.MaxMegapixels = f.maxMegapixels
	}
	if flags.Changed("min-dim") {
		cfg.MinDimension = f.minDimension
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, nil
}
