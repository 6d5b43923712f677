package chunk

import (
	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/oops"
)

// ColorType is the IHDR color type field, values per the PNG spec.
type ColorType byte

const (
	Grayscale      ColorType = 0
	TrueColor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TrueColorAlpha ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "grayscale"
	case TrueColor:
		return "rgb"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TrueColorAlpha:
		return "rgba"
	}
	return "unknown"
}

// Samples returns the number of samples per pixel for the color type.
func (ct ColorType) Samples() int {
	switch ct {
	case Grayscale, Indexed:
		return 1
	case GrayscaleAlpha:
		return 2
	case TrueColor:
		return 3
	case TrueColorAlpha:
		return 4
	}
	return 0
}

// validDepths maps each color type to its allowed bit depths.
var validDepths = map[ColorType][]byte{
	Grayscale:      {1, 2, 4, 8, 16},
	TrueColor:      {8, 16},
	Indexed:        {1, 2, 4, 8},
	GrayscaleAlpha: {8, 16},
	TrueColorAlpha: {8, 16},
}

// Header is the decoded IHDR. Immutable once parsed.
type Header struct {
	Width        int
	Height       int
	BitDepth     byte
	ColorType    ColorType
	Compression  byte
	FilterMethod byte
	Interlace    byte
}

// headerLength is the exact IHDR payload size.
const headerLength = 13

// ParseHeader decodes and validates an IHDR chunk body.
func ParseHeader(data []byte) (Header, error) {
	if len(data) != headerLength {
		return Header{}, oops.New(ErrChunkLengthMismatch, "IHDR payload is %d bytes, want %d", len(data), headerLength)
	}

	r := binio.NewReader(data)
	width, _ := r.ReadI32()
	height, _ := r.ReadI32()
	bitDepth, _ := r.ReadU8()
	colorType, _ := r.ReadU8()
	compression, _ := r.ReadU8()
	filterMethod, _ := r.ReadU8()
	interlace, _ := r.ReadU8()

	h := Header{
		Width:        int(width),
		Height:       int(height),
		BitDepth:     bitDepth,
		ColorType:    ColorType(colorType),
		Compression:  compression,
		FilterMethod: filterMethod,
		Interlace:    interlace,
	}

	if width <= 0 || height <= 0 {
		return Header{}, oops.New(ErrBadHeader, "invalid dimensions %dx%d", width, height)
	}
	depths, ok := validDepths[h.ColorType]
	if !ok {
		return Header{}, oops.New(ErrBadHeader, "unknown color type %d", colorType)
	}
	depthOK := false
	for _, d := range depths {
		if d == bitDepth {
			depthOK = true
			break
		}
	}
	if !depthOK {
		return Header{}, oops.New(ErrBadHeader, "bit depth %d is not allowed for %s images", bitDepth, h.ColorType)
	}
	if compression != 0 {
		return Header{}, oops.New(ErrBadHeader, "unknown compression method %d", compression)
	}
	if filterMethod != 0 {
		return Header{}, oops.New(ErrBadHeader, "unknown filter method %d", filterMethod)
	}
	if interlace != 0 {
		return Header{}, oops.New(ErrUnsupportedInterlace, "interlace method %d", interlace)
	}

	return h, nil
}

// BitsPerPixel is samples-per-pixel times bit depth.
func (h Header) BitsPerPixel() int {
	return h.ColorType.Samples() * int(h.BitDepth)
}

// RowBytes is the packed byte length of one scanline, excluding the filter
// byte.
func (h Header) RowBytes() int {
	return (h.Width*h.BitsPerPixel() + 7) / 8
}

// FilterUnit is the byte distance between a byte and its "left" neighbour
// during filtering: the whole packed byte for sub-byte depths, otherwise the
// pixel size in bytes.
func (h Header) FilterUnit() int {
	if h.BitDepth < 8 {
		return 1
	}
	return h.ColorType.Samples() * int(h.BitDepth) / 8
}
