package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"github.com/takeyourhatoff/ppmqoi"
)

var asPNG bool

var decodeCmd = &cobra.Command{
	Use:   "decode -i FILE [-o FILE] [--png]",
	Short: "convert a QOI image to P6, or to PNG for viewing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		if !asPNG {
			out, err := qoi.Decode(in)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", inputPath, err)
			}
			return writeOutput(cmd, out)
		}
		m, err := qoi.DecodeRaster(in)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", inputPath, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, m); err != nil {
			return err
		}
		return writeOutput(cmd, buf.Bytes())
	},
}

func init() {
	addIOFlags(decodeCmd, true)
	decodeCmd.Flags().BoolVar(&asPNG, "png", false, "write PNG instead of P6")
	rootCmd.AddCommand(decodeCmd)
}
