package cmd

import (
	"github.com/spf13/cobra"
)

var (
	resizeFlags     runFlags
	resizeOutputDir string
	resizeOverwrite bool
	resizeQuality   int
	resizeDryRun    bool
)

var resizeCmd = &cobra.Command{
	Use:   "resize [flags] <input_dir>",
	Short: "Downscale textures that exceed the size limits",
	Long: `Recursively downscale PNG/JPEG textures under input_dir.

Without --output files are modified in place. With --output the input tree
is mirrored there and sources are left alone; --overwrite takes precedence
over --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resizeFlags.load(cmd, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.OutputDir = resizeOutputDir
		}
		if flags.Changed("overwrite") {
			cfg.Overwrite = resizeOverwrite
		}
		if flags.Changed("quality") {
			cfg.Quality = resizeQuality
		}
		if flags.Changed("dry-run") {
			cfg.DryRun = resizeDryRun
		}

		return execute(cmd, cfg, resizeFlags)
	},
}

func init() {
	resizeFlags.register(resizeCmd.Flags())
	resizeCmd.Flags().StringVarP(&resizeOutputDir, "output", "o", "", "write resized images here, mirroring the input tree")
	resizeCmd.Flags().BoolVarP(&resizeOverwrite, "overwrite", "w", false, "overwrite images in place (default when --output is not set)")
	resizeCmd.Flags().IntVar(&resizeQuality, "quality", 85, "JPEG quality, clamped to 1..95")
	resizeCmd.Flags().BoolVarP(&resizeDryRun, "dry-run", "n", false, "print what would change but don't write files")

	rootCmd.AddCommand(resizeCmd)
}
