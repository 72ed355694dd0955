package cmd

import (
	"github.com/spf13/cobra"
)

var scanFlags runFlags

var scanCmd = &cobra.Command{
	Use:   "scan <input_dir>",
	Short: "Report resize decisions without modifying files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scanFlags.load(cmd, args[0])
		if err != nil {
			return err
		}
		cfg.DryRun = true
		cfg.Verbose = true
		cfg.Overwrite = true
		cfg.OutputDir = ""

		return execute(cmd, cfg, scanFlags)
	},
}

func init() {
	scanFlags.register(scanCmd.Flags())

	rootCmd.AddCommand(scanCmd)
}
