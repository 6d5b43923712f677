package encoder

import (
	"github.com/pigment/pngpipe/src/logging"
	"github.com/pigment/pngpipe/src/oops"
	"github.com/pigment/pngpipe/src/utils"
)

type rgba [4]byte

// paletteSet is an ordered palette of distinct colors plus the remapping
// left behind by nearest-color reduction.
type paletteSet struct {
	colors []rgba
	index  map[rgba]int

	// remap points colors dropped during reduction at their surviving
	// representative.
	remap map[rgba]rgba
}

// BitDepthFor returns the smallest PNG bit depth whose index range fits n
// palette entries.
func BitDepthFor(n int) byte {
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	case n <= 16:
		return 4
	default:
		return 8
	}
}

// buildPalette scans every pixel and collects distinct colors in first-seen
// order, then enforces the palette cap, reducing if allowed.
func buildPalette(pix []byte, n int, opts Options) (*paletteSet, error) {
	pal := &paletteSet{
		index: make(map[rgba]int),
		remap: make(map[rgba]rgba),
	}

	for i := 0; i < n; i++ {
		r, g, b, a := pixelAt(pix, i, opts.ABGR)
		c := rgba{r, g, b, a}
		if _, ok := pal.index[c]; !ok {
			pal.index[c] = len(pal.colors)
			pal.colors = append(pal.colors, c)
		}
	}

	bitDepth := opts.BitDepth
	if bitDepth == 0 {
		bitDepth = BitDepthFor(len(pal.colors))
	}

	limit := utils.IntMin(256, 1<<bitDepth)
	if opts.MaxPaletteSize > 0 {
		limit = utils.IntMin(limit, opts.MaxPaletteSize)
	}

	if len(pal.colors) > limit {
		if !opts.ReduceUnindexable {
			return nil, oops.New(ErrPaletteMiss, "image has %d distinct colors, palette cap is %d", len(pal.colors), limit)
		}
		logging.Debug().
			Int("colors", len(pal.colors)).
			Int("limit", limit).
			Msg("reducing palette")
		pal.reduce(limit)
	}

	return pal, nil
}

// reduce merges nearest colors until the palette fits. Each pass scans all
// pairs for the minimum squared Euclidean distance over R,G,B,A, drops the
// later entry, and points it (and anything previously pointed at it) at the
// kept one. Worst case O(P^3) for P starting colors; P <= 256 keeps that
// tolerable.
func (p *paletteSet) reduce(limit int) {
	for len(p.colors) > limit {
		bestI, bestJ := 0, 1
		bestDist := -1
		for i := 0; i < len(p.colors); i++ {
			for j := i + 1; j < len(p.colors); j++ {
				d := colorDist(p.colors[i], p.colors[j])
				if bestDist < 0 || d < bestDist {
					bestDist = d
					bestI, bestJ = i, j
				}
			}
		}

		kept := p.colors[bestI]
		dropped := p.colors[bestJ]
		p.colors = append(p.colors[:bestJ], p.colors[bestJ+1:]...)

		p.remap[dropped] = kept
		for from, to := range p.remap {
			if to == dropped {
				p.remap[from] = kept
			}
		}
	}

	p.index = make(map[rgba]int, len(p.colors))
	for i, c := range p.colors {
		p.index[c] = i
	}
}

// lookup resolves a color to its palette index, following the reduction
// remap when the color itself was dropped.
func (p *paletteSet) lookup(c rgba) (int, bool) {
	if i, ok := p.index[c]; ok {
		return i, true
	}
	if to, ok := p.remap[c]; ok {
		if i, ok := p.index[to]; ok {
			return i, true
		}
	}
	return 0, false
}

func colorDist(a, b rgba) int {
	d := 0
	for i := 0; i < 4; i++ {
		diff := int(a[i]) - int(b[i])
		d += diff * diff
	}
	return d
}
