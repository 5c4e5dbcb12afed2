package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/takeyourhatoff/ppmqoi"
)

var encodeCmd = &cobra.Command{
	Use:   "encode -i FILE [-o FILE]",
	Short: "convert a P6 image to QOI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		out, err := qoi.Encode(in)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", inputPath, err)
		}
		return writeOutput(cmd, out)
	},
}

func init() {
	addIOFlags(encodeCmd, true)
	rootCmd.AddCommand(encodeCmd)
}
