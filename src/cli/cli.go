// Package cli is the pngpipe command line tool, a thin shell over the
// decoder and encoder packages. BMP is the interchange format for raw
// frames, being lossless and trivially seekable.
package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/pigment/pngpipe/src/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var RootCommand = &cobra.Command{
	Use:   "pngpipe",
	Short: "Decode, encode and rewrite PNG files",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

var verbose bool

func init() {
	RootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	if err := RootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

func readFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", path).Msg("failed to read input")
	}
	return data
}

func writeFile(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		logging.Fatal().Err(err).Str("path", path).Msg("failed to write output")
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
}

// toRGBA repacks a decoded frame into the stdlib image type the bmp codec
// understands.
func toRGBA(pix []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	return img
}
