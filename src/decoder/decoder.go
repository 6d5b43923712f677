// Package decoder turns a PNG byte stream into a dense 8-bit RGBA frame.
//
// The pipeline parses the chunk stream, inflates the joined IDAT payload,
// inverts each row's filter, and unpacks the recovered samples to RGBA8.
// Filter inversion happens in the raw domain with a previous-row buffer;
// unpacking reads only recovered raw bytes, which keeps sub-byte and 16-bit
// depths honest.
package decoder

import (
	"context"
	"errors"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/chunk"
	"github.com/pigment/pngpipe/src/compression"
	"github.com/pigment/pngpipe/src/filter"
	"github.com/pigment/pngpipe/src/logging"
	"github.com/pigment/pngpipe/src/oops"
	"github.com/pigment/pngpipe/src/perf"
	"github.com/pigment/pngpipe/src/utils"
)

// ErrBadBitDepth is returned when no unpacker exists for the header's
// (color type, bit depth) pair. The chunk layer validates IHDR against the
// PNG-legal pairs, so hitting this means the two layers disagree.
var ErrBadBitDepth = errors.New("unsupported bit depth")

// Image is a decoded frame: row-major RGBA, 8 bits per channel.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

type Options struct {
	// Parallelism is the worker count for the row-stripe parallel unpack
	// path. Zero or one decodes sequentially. Only the RGBA/8 path runs in
	// parallel; other modes fall back to sequential regardless.
	Parallelism int
}

// Decode decodes a PNG stream sequentially.
func Decode(data []byte) (*Image, error) {
	return DecodeContext(context.Background(), data, Options{})
}

// DecodeContext decodes a PNG stream. Cancellation is honored at stripe
// boundaries when the parallel path is active.
func DecodeContext(ctx context.Context, data []byte, opts Options) (*Image, error) {
	p := perf.StartPipeline("decode")
	defer func() {
		p.EndPipeline()
		logging.Debug().EmbedObject(p).Msg("decode finished")
	}()

	p.StartBlock("parse chunks")
	s, err := chunk.Parse(data)
	if err != nil {
		return nil, err
	}

	p.EndBlock()
	p.StartBlock("inflate")
	raw, err := compression.Inflate(s.Data)
	if err != nil {
		return nil, err
	}
	p.EndBlock()

	h := s.Header
	rowBytes := h.RowBytes()
	stride := rowBytes + 1
	if len(raw) < h.Height*stride {
		return nil, oops.New(binio.ErrTruncated, "inflated to %d bytes, need %d for %dx%d", len(raw), h.Height*stride, h.Width, h.Height)
	}

	unpack, err := newRowUnpacker(h, s.Palette, s.Trans)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Pix:    make([]byte, 4*h.Width*h.Height),
		Width:  h.Width,
		Height: h.Height,
	}

	p.StartBlock("unfilter and unpack")
	parallelism := utils.IntMax(opts.Parallelism, 1)
	if parallelism > 1 && h.ColorType == chunk.TrueColorAlpha && h.BitDepth == 8 && h.Height > 1 {
		err = decodeStriped(ctx, raw, h, unpack, img.Pix, parallelism)
	} else {
		err = decodeSequential(raw, h, unpack, img.Pix)
	}
	if err != nil {
		return nil, err
	}

	return img, nil
}

func decodeSequential(raw []byte, h chunk.Header, unpack rowUnpacker, out []byte) error {
	rowBytes := h.RowBytes()
	stride := rowBytes + 1
	unit := h.FilterUnit()
	outStride := 4 * h.Width

	var prev []byte
	for y := 0; y < h.Height; y++ {
		ft := filter.Type(raw[y*stride])
		if !filter.Valid(ft) {
			return oops.New(filter.ErrBadFilter, "row %d has filter byte %d", y, ft)
		}
		cur := raw[y*stride+1 : y*stride+stride]
		if err := filter.Invert(ft, cur, prev, unit); err != nil {
			return oops.New(err, "row %d", y)
		}
		if err := unpack(cur, out[y*outStride:(y+1)*outStride]); err != nil {
			return oops.New(err, "row %d", y)
		}
		prev = cur
	}
	return nil
}

// ParseInfo exposes the chunk-layer result without running the pixel
// pipeline. Useful for inspection tooling.
func ParseInfo(data []byte) (*chunk.Stream, error) {
	s, err := chunk.Parse(data)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Int("width", s.Header.Width).
		Int("height", s.Header.Height).
		Str("colorType", s.Header.ColorType.String()).
		Msg("parsed png")
	return s, nil
}
