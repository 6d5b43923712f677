package cli

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/pigment/pngpipe/src/config"
	"github.com/pigment/pngpipe/src/decoder"
	"github.com/pigment/pngpipe/src/encoder"
	"github.com/pigment/pngpipe/src/filter"
	"github.com/pigment/pngpipe/src/logging"
	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
)

func init() {
	infoCommand := &cobra.Command{
		Use:   "info [file.png]",
		Short: "Print header, palette and transparency info",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s, err := decoder.ParseInfo(readFile(args[0]))
			if err != nil {
				logging.Fatal().Err(err).Msg("parse failed")
			}
			h := s.Header
			fmt.Printf("%dx%d, %s, %d bits per sample\n", h.Width, h.Height, h.ColorType, h.BitDepth)
			if s.Palette != nil {
				fmt.Printf("palette: %d entries\n", len(s.Palette))
			}
			if s.Trans != nil {
				fmt.Printf("transparency: present\n")
			}
			fmt.Printf("compressed data: %d bytes\n", len(s.Data))
		},
	}
	RootCommand.AddCommand(infoCommand)

	var decodeOut string
	var parallel int
	decodeCommand := &cobra.Command{
		Use:   "decode [file.png]",
		Short: "Decode a PNG and write the RGBA frame as BMP",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			img, err := decoder.DecodeContext(context.Background(), readFile(args[0]), decoder.Options{
				Parallelism: parallel,
			})
			if err != nil {
				logging.Fatal().Err(err).Msg("decode failed")
			}

			f, err := os.Create(decodeOut)
			if err != nil {
				logging.Fatal().Err(err).Str("path", decodeOut).Msg("failed to create output")
			}
			defer f.Close()
			if err := bmp.Encode(f, toRGBA(img.Pix, img.Width, img.Height)); err != nil {
				logging.Fatal().Err(err).Msg("bmp encode failed")
			}
			fmt.Printf("wrote %s (%dx%d)\n", decodeOut, img.Width, img.Height)
		},
	}
	decodeCommand.Flags().StringVarP(&decodeOut, "out", "o", "out.bmp", "output path")
	decodeCommand.Flags().IntVarP(&parallel, "parallel", "j", config.Config.DecodeParallelism, "decode worker count")
	RootCommand.AddCommand(decodeCommand)

	var encodeOut string
	encodeOpts := optionFlags{}
	encodeCommand := &cobra.Command{
		Use:   "encode [file.bmp]",
		Short: "Encode a BMP frame as PNG",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			f, err := os.Open(args[0])
			if err != nil {
				logging.Fatal().Err(err).Str("path", args[0]).Msg("failed to read input")
			}
			defer f.Close()
			src, err := bmp.Decode(f)
			if err != nil {
				logging.Fatal().Err(err).Msg("bmp decode failed")
			}

			bounds := src.Bounds()
			rgba := image.NewRGBA(bounds)
			draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)

			opts, err := encodeOpts.toOptions()
			if err != nil {
				logging.Fatal().Err(err).Msg("bad flags")
			}
			out, err := encoder.Encode(rgba.Pix, bounds.Dx(), bounds.Dy(), opts)
			if err != nil {
				logging.Fatal().Err(err).Msg("encode failed")
			}
			writeFile(encodeOut, out)
		},
	}
	encodeCommand.Flags().StringVarP(&encodeOut, "out", "o", "out.png", "output path")
	encodeOpts.register(encodeCommand)
	RootCommand.AddCommand(encodeCommand)

	var recodeOut string
	recodeOpts := optionFlags{}
	recodeCommand := &cobra.Command{
		Use:   "recode [file.png]",
		Short: "Decode a PNG and re-encode it with the chosen settings",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			img, err := decoder.Decode(readFile(args[0]))
			if err != nil {
				logging.Fatal().Err(err).Msg("decode failed")
			}
			opts, err := recodeOpts.toOptions()
			if err != nil {
				logging.Fatal().Err(err).Msg("bad flags")
			}
			out, err := encoder.Encode(img.Pix, img.Width, img.Height, opts)
			if err != nil {
				logging.Fatal().Err(err).Msg("encode failed")
			}
			writeFile(recodeOut, out)
		},
	}
	recodeCommand.Flags().StringVarP(&recodeOut, "out", "o", "out.png", "output path")
	recodeOpts.register(recodeCommand)
	RootCommand.AddCommand(recodeCommand)
}

// optionFlags is the encoder option surface shared by encode and recode.
type optionFlags struct {
	mode       string
	fixed      int
	reduce     bool
	maxPalette int
	level      int
}

func (of *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&of.mode, "mode", "m", "rgba", "output mode: rgba, rgb or indexed")
	cmd.Flags().IntVarP(&of.fixed, "filter", "f", -1, "fixed filter type 0-4 (-1 for adaptive)")
	cmd.Flags().BoolVar(&of.reduce, "reduce", false, "merge nearest palette colors when over the cap")
	cmd.Flags().IntVar(&of.maxPalette, "max-palette", 0, "extra palette size cap (0 for none)")
	cmd.Flags().IntVarP(&of.level, "level", "l", 0, "flate compression level (0 for default)")
}

func (of *optionFlags) toOptions() (encoder.Options, error) {
	opts := encoder.Options{
		ReduceUnindexable: of.reduce,
		MaxPaletteSize:    of.maxPalette,
		CompressionLevel:  of.level,
		EmitTransparency:  true,
	}

	switch of.mode {
	case "rgba":
		opts.Mode = encoder.ModeRGBA
	case "rgb":
		opts.Mode = encoder.ModeRGB
	case "indexed":
		opts.Mode = encoder.ModeIndexed
	default:
		return opts, fmt.Errorf("unknown mode %q", of.mode)
	}

	if of.fixed >= 0 {
		ft := filter.Type(of.fixed)
		opts.FilterChoice = encoder.FilterFixed
		opts.FixedFilter = &ft
	}

	return opts, nil
}
