package encoder

import (
	"github.com/pigment/pngpipe/src/filter"
	"github.com/pigment/pngpipe/src/oops"
)

// pixelAt reads one source pixel as R,G,B,A, honoring the declared sample
// order.
func pixelAt(pix []byte, i int, abgr bool) (r, g, b, a byte) {
	p := pix[4*i : 4*i+4]
	if abgr {
		return p[3], p[2], p[1], p[0]
	}
	return p[0], p[1], p[2], p[3]
}

// packTrueColor builds the filtered scanline stream for RGBA or RGB output:
// one filter byte, then width*spp filtered samples per row.
func packTrueColor(pix []byte, width, height int, opts Options) ([]byte, error) {
	spp := 4
	if opts.Mode == ModeRGB {
		spp = 3
	}
	rowBytes := width * spp

	if opts.FilterChoice == FilterFixed {
		if opts.FixedFilter == nil {
			return nil, oops.New(ErrNoFilterChosen, "fixed filtering with no filter")
		}
		if !filter.Valid(*opts.FixedFilter) {
			return nil, oops.New(filter.ErrBadFilter, "fixed filter %d", *opts.FixedFilter)
		}
	}

	raw := make([]byte, 0, height*(rowBytes+1))
	cur := make([]byte, rowBytes)
	prev := make([]byte, rowBytes)
	havePrev := false
	filtered := make([]byte, rowBytes)
	best := make([]byte, rowBytes)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := pixelAt(pix, y*width+x, opts.ABGR)
			cur[x*spp+0] = r
			cur[x*spp+1] = g
			cur[x*spp+2] = b
			if spp == 4 {
				cur[x*spp+3] = a
			}
		}

		var prevRow []byte
		if havePrev {
			prevRow = prev
		}

		var chosen filter.Type
		if opts.FilterChoice == FilterFixed {
			chosen = *opts.FixedFilter
			filter.Apply(chosen, cur, prevRow, best, spp)
		} else {
			chosen = pickFilter(cur, prevRow, spp, filtered, best)
		}

		raw = append(raw, byte(chosen))
		raw = append(raw, best...)

		prev, cur = cur, prev
		havePrev = true
	}

	return raw, nil
}

// pickFilter tries Sub, Up, Average and Paeth on the row and keeps the one
// with the smallest sum of filtered bytes, a cheap proxy for post-deflate
// size. None is deliberately never tried. scratch and best must be rowBytes
// long; the winner ends up in best.
func pickFilter(cur, prev []byte, unit int, scratch, best []byte) filter.Type {
	chosen := filter.Sub
	bestSum := -1

	for ft := filter.Sub; ft <= filter.Paeth; ft++ {
		filter.Apply(ft, cur, prev, scratch, unit)
		sum := 0
		for _, v := range scratch {
			sum += int(v)
		}
		if bestSum < 0 || sum < bestSum {
			bestSum = sum
			chosen = ft
			copy(best, scratch)
		}
	}
	return chosen
}

// packIndexed builds the unfiltered indexed scanline stream plus the palette
// backing it. Every row gets filter None and 8-bit indices.
func packIndexed(pix []byte, width, height int, opts Options) ([]byte, *paletteSet, error) {
	pal, err := buildPalette(pix, width*height, opts)
	if err != nil {
		return nil, nil, err
	}

	raw := make([]byte, 0, height*(width+1))
	for y := 0; y < height; y++ {
		raw = append(raw, byte(filter.None))
		for x := 0; x < width; x++ {
			r, g, b, a := pixelAt(pix, y*width+x, opts.ABGR)
			idx, ok := pal.lookup(rgba{r, g, b, a})
			if !ok {
				return nil, nil, oops.New(ErrPaletteMiss, "pixel (%d,%d) color %d,%d,%d,%d", x, y, r, g, b, a)
			}
			raw = append(raw, byte(idx))
		}
	}

	return raw, pal, nil
}
