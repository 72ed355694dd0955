package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errPartial marks a run that completed but could not process every file.
var errPartial = errors.New("some files could not be processed")

var rootCmd = &cobra.Command{
	Use:           "texshrink",
	Short:         "texshrink - downscale oversized textures in bulk",
	Long:          "texshrink walks a directory of PNG/JPEG textures and downscales the ones that exceed a maximum dimension or megapixel budget, preserving PNG alpha and EXIF orientation.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPartial) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
