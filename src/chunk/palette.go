package chunk

import (
	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/oops"
)

type RGB struct {
	R, G, B byte
}

// Palette is the ordered PLTE color table. Raw sample values index into it.
type Palette []RGB

// maxPaletteBytes is 256 entries of 3 bytes each.
const maxPaletteBytes = 768

// ParsePalette decodes a PLTE body. The color type gates whether a palette
// is allowed at all.
func ParsePalette(data []byte, ct ColorType) (Palette, error) {
	if ct == Grayscale || ct == GrayscaleAlpha {
		return nil, oops.New(ErrBadPalette, "PLTE is forbidden for %s images", ct)
	}
	if len(data) == 0 {
		return nil, oops.New(ErrBadPalette, "empty PLTE")
	}
	if len(data)%3 != 0 {
		return nil, oops.New(ErrBadPalette, "PLTE length %d is not a multiple of 3", len(data))
	}
	if len(data) > maxPaletteBytes {
		return nil, oops.New(ErrBadPalette, "PLTE holds %d entries, max is 256", len(data)/3)
	}

	palette := make(Palette, len(data)/3)
	for i := range palette {
		palette[i] = RGB{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return palette, nil
}

// Transparency is the decoded tRNS chunk. Its shape depends on the color
// type it was parsed against: a 16-bit gray key, an RGB key, or one alpha
// byte per palette index.
type Transparency struct {
	Kind ColorType

	GrayKey uint16

	// RGBKey keeps only the low 8 bits of each 16-bit field; matching
	// happens against 8-bit output samples.
	RGBKey [3]byte

	PaletteAlpha []byte
}

// ParseTransparency decodes a tRNS body for the given color type.
// havePalette tells whether a PLTE was already seen, which indexed tRNS
// requires.
func ParseTransparency(data []byte, ct ColorType, havePalette bool) (*Transparency, error) {
	t := &Transparency{Kind: ct}
	r := binio.NewReader(data)

	switch ct {
	case Grayscale:
		if len(data) != 2 {
			return nil, oops.New(ErrChunkLengthMismatch, "grayscale tRNS is %d bytes, want 2", len(data))
		}
		t.GrayKey, _ = r.ReadU16()

	case TrueColor:
		if len(data) != 6 {
			return nil, oops.New(ErrChunkLengthMismatch, "rgb tRNS is %d bytes, want 6", len(data))
		}
		for i := range t.RGBKey {
			v, _ := r.ReadU16()
			t.RGBKey[i] = byte(v)
		}

	case Indexed:
		if !havePalette {
			return nil, oops.New(ErrBadTransparency, "indexed tRNS before PLTE")
		}
		if len(data) > 256 {
			return nil, oops.New(ErrBadTransparency, "indexed tRNS holds %d entries, max is 256", len(data))
		}
		t.PaletteAlpha = data

	default:
		return nil, oops.New(ErrBadTransparency, "tRNS is forbidden for %s images", ct)
	}

	return t, nil
}

// Alpha returns the alpha for a palette index. Indices past the end of the
// tRNS sequence are opaque.
func (t *Transparency) Alpha(index int) byte {
	if t == nil || index >= len(t.PaletteAlpha) {
		return 255
	}
	return t.PaletteAlpha[index]
}
