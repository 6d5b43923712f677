// Package encoder turns a dense 8-bit RGBA frame back into a PNG byte
// stream. Three output modes are supported: RGBA, RGB and 8-bit indexed.
// RGBA/RGB rows go through per-row adaptive filter selection; indexed rows
// are emitted unfiltered with a palette built from the image, optionally
// reduced by nearest-color merging when it overflows its cap.
package encoder

import (
	"errors"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/chunk"
	"github.com/pigment/pngpipe/src/compression"
	"github.com/pigment/pngpipe/src/config"
	"github.com/pigment/pngpipe/src/filter"
	"github.com/pigment/pngpipe/src/oops"
	"github.com/pigment/pngpipe/src/utils"
)

var (
	ErrUnsupportedMode = errors.New("unsupported encoding mode")
	ErrNoFilterChosen  = errors.New("fixed filtering requires a filter type")
	ErrPaletteMiss     = errors.New("pixel has no palette entry")
	ErrBadDimensions   = errors.New("pixel buffer does not match dimensions")
)

// Mode selects the output color type.
type Mode int

const (
	ModeRGBA Mode = iota
	ModeRGB
	ModeIndexed
)

func (m Mode) String() string {
	switch m {
	case ModeRGBA:
		return "rgba"
	case ModeRGB:
		return "rgb"
	case ModeIndexed:
		return "indexed"
	}
	return "unknown"
}

// FilterChoice selects between adaptive and fixed per-row filtering.
type FilterChoice int

const (
	FilterAdaptive FilterChoice = iota
	FilterFixed
)

type Options struct {
	Mode Mode

	// FilterChoice applies to RGBA/RGB rows. Indexed rows are always
	// written with filter None.
	FilterChoice FilterChoice

	// FixedFilter must be set when FilterChoice is FilterFixed.
	FixedFilter *filter.Type

	// ABGR declares the source sample order as A,B,G,R instead of R,G,B,A.
	ABGR bool

	// BitDepth caps the indexed palette at 2^BitDepth entries. Zero picks
	// the smallest of {1,2,4,8} that fits the palette. Indices are always
	// emitted at 8 bits per sample either way.
	BitDepth byte

	// MaxPaletteSize further caps the indexed palette when non-zero.
	MaxPaletteSize int

	// ReduceUnindexable merges nearest colors when the palette overflows
	// its cap instead of failing.
	ReduceUnindexable bool

	// EmitTransparency writes a tRNS chunk for indexed output when any
	// palette entry is not fully opaque.
	EmitTransparency bool

	// CompressionLevel is a flate level; zero uses the config default.
	CompressionLevel int
}

// Encode produces a complete PNG file from w*h*4 bytes of 8-bit RGBA (or
// ABGR) pixels.
func Encode(pix []byte, width, height int, opts Options) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pix) != 4*width*height {
		return nil, oops.New(ErrBadDimensions, "%d pixel bytes for %dx%d", len(pix), width, height)
	}

	var raw []byte
	var colorType chunk.ColorType
	var pal *paletteSet
	var err error

	switch opts.Mode {
	case ModeRGBA, ModeRGB:
		colorType = chunk.TrueColorAlpha
		if opts.Mode == ModeRGB {
			colorType = chunk.TrueColor
		}
		raw, err = packTrueColor(pix, width, height, opts)
	case ModeIndexed:
		colorType = chunk.Indexed
		raw, pal, err = packIndexed(pix, width, height, opts)
	default:
		return nil, oops.New(ErrUnsupportedMode, "mode %d", opts.Mode)
	}
	if err != nil {
		return nil, err
	}

	level := utils.OrDefault(opts.CompressionLevel, config.Config.CompressionLevel)
	zdata, err := compression.Deflate(raw, level)
	if err != nil {
		return nil, err
	}

	w := binio.NewWriter()
	chunk.AppendSignature(w)
	appendHeader(w, width, height, colorType)
	if pal != nil {
		appendPalette(w, pal, opts.EmitTransparency)
	}
	chunk.Append(w, chunk.TypeData, zdata)
	chunk.Append(w, chunk.TypeEnd, nil)

	return w.Bytes(), nil
}

func appendHeader(w *binio.Writer, width, height int, ct chunk.ColorType) {
	ihdr := binio.NewWriter()
	ihdr.WriteI32(int32(width))
	ihdr.WriteI32(int32(height))
	ihdr.WriteU8(8) // sample depth; indexed indices are also emitted at 8 bits
	ihdr.WriteU8(byte(ct))
	ihdr.WriteU8(0) // compression
	ihdr.WriteU8(0) // filter method
	ihdr.WriteU8(0) // no interlace
	chunk.Append(w, chunk.TypeHeader, ihdr.Bytes())
}

func appendPalette(w *binio.Writer, pal *paletteSet, emitTrans bool) {
	plte := make([]byte, 0, 3*len(pal.colors))
	opaque := true
	for _, c := range pal.colors {
		plte = append(plte, c[0], c[1], c[2])
		if c[3] != 255 {
			opaque = false
		}
	}
	chunk.Append(w, chunk.TypePalette, plte)

	if emitTrans && !opaque {
		trns := make([]byte, len(pal.colors))
		for i, c := range pal.colors {
			trns[i] = c[3]
		}
		chunk.Append(w, chunk.TypeTransparency, trns)
	}
}
