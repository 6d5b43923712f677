// Package filter implements PNG's five scanline filters, in both the
// forward (encode) and inverse (decode) directions. All arithmetic is byte
// arithmetic mod 256.
package filter

import (
	"errors"

	"github.com/pigment/pngpipe/src/utils"
)

// Type is the filter-type byte that prefixes every scanline.
type Type byte

const (
	None Type = iota
	Sub
	Up
	Average
	Paeth

	numTypes
)

// ErrBadFilter is returned for a filter-type byte outside 0..4.
var ErrBadFilter = errors.New("unknown filter type")

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Sub:
		return "sub"
	case Up:
		return "up"
	case Average:
		return "average"
	case Paeth:
		return "paeth"
	}
	return "unknown"
}

// Valid reports whether t is one of the five defined filters.
func Valid(t Type) bool {
	return t < numTypes
}

// paethPredictor picks among left/up/up-left by minimizing the distance to
// left + up - upLeft. Ties break in the order a, b, c.
func paethPredictor(a, b, c int) int {
	p := a + b - c
	pa := utils.IntAbs(p - a)
	pb := utils.IntAbs(p - b)
	pc := utils.IntAbs(p - c)

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// Invert recovers a scanline in place from its filtered form. cur holds the
// filtered bytes (without the leading filter-type byte), prev is the
// already-recovered previous row or nil on the first row, and unit is the
// byte distance to the "left" neighbour.
func Invert(t Type, cur, prev []byte, unit int) error {
	switch t {
	case None:

	case Sub:
		for i := unit; i < len(cur); i++ {
			cur[i] += cur[i-unit]
		}

	case Up:
		if prev != nil {
			for i := range cur {
				cur[i] += prev[i]
			}
		}

	case Average:
		for i := range cur {
			var left, up int
			if i >= unit {
				left = int(cur[i-unit])
			}
			if prev != nil {
				up = int(prev[i])
			}
			cur[i] += byte((left + up) / 2)
		}

	case Paeth:
		for i := range cur {
			var left, up, upLeft int
			if i >= unit {
				left = int(cur[i-unit])
			}
			if prev != nil {
				up = int(prev[i])
				if i >= unit {
					upLeft = int(prev[i-unit])
				}
			}
			cur[i] += byte(paethPredictor(left, up, upLeft))
		}

	default:
		return ErrBadFilter
	}
	return nil
}

// Apply writes the filtered form of cur into dst. cur is the raw scanline,
// prev the raw previous row or nil, unit as in Invert. dst must be the same
// length as cur.
func Apply(t Type, cur, prev, dst []byte, unit int) error {
	switch t {
	case None:
		copy(dst, cur)

	case Sub:
		for i := range cur {
			var left byte
			if i >= unit {
				left = cur[i-unit]
			}
			dst[i] = cur[i] - left
		}

	case Up:
		for i := range cur {
			var up byte
			if prev != nil {
				up = prev[i]
			}
			dst[i] = cur[i] - up
		}

	case Average:
		for i := range cur {
			var left, up int
			if i >= unit {
				left = int(cur[i-unit])
			}
			if prev != nil {
				up = int(prev[i])
			}
			dst[i] = cur[i] - byte((left+up)/2)
		}

	case Paeth:
		for i := range cur {
			var left, up, upLeft int
			if i >= unit {
				left = int(cur[i-unit])
			}
			if prev != nil {
				up = int(prev[i])
				if i >= unit {
					upLeft = int(prev[i-unit])
				}
			}
			dst[i] = cur[i] - byte(paethPredictor(left, up, upLeft))
		}

	default:
		return ErrBadFilter
	}
	return nil
}
