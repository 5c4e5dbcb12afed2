package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/takeyourhatoff/ppmqoi"
)

var infoCmd = &cobra.Command{
	Use:   "info -i FILE",
	Short: "print the header of a QOI image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		var hdr [14]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return fmt.Errorf("reading %s: %w", inputPath, err)
		}
		cfg, err := qoi.ReadConfig(hdr[:])
		if err != nil {
			return fmt.Errorf("%s: %w", inputPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "width: %d\nheight: %d\nchannels: %d\ncolorspace: %d\n",
			cfg.Width, cfg.Height, cfg.Channels, cfg.Colorspace)
		return nil
	},
}

func init() {
	addIOFlags(infoCmd, false)
	rootCmd.AddCommand(infoCmd)
}
