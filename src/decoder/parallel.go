package decoder

import (
	"context"

	"github.com/pigment/pngpipe/src/chunk"
	"github.com/pigment/pngpipe/src/filter"
	"github.com/pigment/pngpipe/src/logging"
	"github.com/pigment/pngpipe/src/oops"
	"golang.org/x/sync/errgroup"
)

// A stripe is a contiguous run of rows whose first row does not reference
// the row above it, so the run can invert its filters independently of the
// rest of the image.
type stripe struct {
	start, end int // rows [start, end)
}

// findStripes splits the image at every row whose filter is None or Sub.
// Those are exactly the filters with no "up" term. Row 0 always starts a
// stripe. An invalid filter byte fails the whole decode up front.
func findStripes(raw []byte, h chunk.Header) ([]stripe, error) {
	stride := h.RowBytes() + 1

	var stripes []stripe
	for y := 0; y < h.Height; y++ {
		ft := filter.Type(raw[y*stride])
		if !filter.Valid(ft) {
			return nil, oops.New(filter.ErrBadFilter, "row %d has filter byte %d", y, ft)
		}
		if y == 0 || ft == filter.None || ft == filter.Sub {
			stripes = append(stripes, stripe{start: y, end: y + 1})
		} else {
			stripes[len(stripes)-1].end = y + 1
		}
	}
	return stripes, nil
}

// decodeStriped runs filter inversion and unpacking stripe by stripe across
// a worker pool. Every stripe owns an exclusive row range of out, so workers
// never share mutable state; the input is read-only throughout.
func decodeStriped(ctx context.Context, raw []byte, h chunk.Header, unpack rowUnpacker, out []byte, parallelism int) error {
	stripes, err := findStripes(raw, h)
	if err != nil {
		return err
	}
	logging.Debug().
		Int("stripes", len(stripes)).
		Int("workers", parallelism).
		Msg("parallel decode")

	stride := h.RowBytes() + 1
	unit := h.FilterUnit()
	outStride := 4 * h.Width

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, st := range stripes {
		st := st
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var prev []byte
			for y := st.start; y < st.end; y++ {
				ft := filter.Type(raw[y*stride])
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
		})
	}
	return g.Wait()
}
