package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "qoitool",
	Short:        "encode and decode QOI images",
	SilenceUsage: true,
}

var (
	inputPath  string
	outputPath string
)

// addIOFlags registers -i (required) and, when withOutput is set, -o.
func addIOFlags(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file (required)")
	_ = cmd.MarkFlagRequired("input")
	if withOutput {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	}
}

// writeOutput writes data to the -o file, or to the command's stdout when -o
// is not set.
func writeOutput(cmd *cobra.Command, data []byte) error {
	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
