// Command qoitool converts binary PPM (P6) images to QOI and back.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
