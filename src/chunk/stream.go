package chunk

import (
	"bytes"
	"errors"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/logging"
	"github.com/pigment/pngpipe/src/oops"
)

// Stream is the result of consuming a whole chunk stream: the image
// parameters plus the joined, still-compressed IDAT payload.
type Stream struct {
	Header  Header
	Palette Palette
	Trans   *Transparency

	// Data is every IDAT body concatenated in chunk order. Still a zlib
	// stream at this point.
	Data []byte
}

// parse states, entered in order.
const (
	stateExpectSignature = iota
	stateExpectHeader
	stateBody
	stateDone
)

// Parse consumes a PNG byte stream through IEND and returns the accumulated
// image parameters and joined compressed data.
//
// Critical ordering rules are enforced: IHDR first and only once, PLTE at
// most once and before any IDAT, tRNS constrained by color type. Unknown
// chunk types are skipped. A non-IDAT chunk between IDATs is tolerated with
// a warning; the IDAT order itself is always preserved.
func Parse(data []byte) (*Stream, error) {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], []byte(Signature)) {
		return nil, oops.New(ErrBadSignature, "missing png signature")
	}

	r := binio.NewReader(data)
	r.ReadBytes(len(Signature))
	chunks := NewReader(r)

	var s Stream
	state := stateExpectHeader
	sawData := false
	dataDone := false

	for state != stateDone {
		c, err := chunks.Next()
		if err != nil {
			if errors.Is(err, binio.ErrTruncated) {
				return nil, oops.New(err, "chunk stream ended before IEND")
			}
			return nil, err
		}

		if state == stateExpectHeader {
			if c.Type != TypeHeader {
				return nil, oops.New(ErrBadHeader, "first chunk is %q, want IHDR", c.Type)
			}
			s.Header, err = ParseHeader(c.Data)
			if err != nil {
				return nil, err
			}
			state = stateBody
			continue
		}

		switch c.Type {
		case TypeHeader:
			return nil, oops.New(ErrBadHeader, "duplicate IHDR")

		case TypePalette:
			if s.Palette != nil {
				return nil, oops.New(ErrBadPalette, "duplicate PLTE")
			}
			if sawData {
				return nil, oops.New(ErrBadPalette, "PLTE after IDAT")
			}
			s.Palette, err = ParsePalette(c.Data, s.Header.ColorType)
			if err != nil {
				return nil, err
			}

		case TypeTransparency:
			if s.Trans != nil {
				return nil, oops.New(ErrBadTransparency, "duplicate tRNS")
			}
			s.Trans, err = ParseTransparency(c.Data, s.Header.ColorType, s.Palette != nil)
			if err != nil {
				return nil, err
			}
			if sawData {
				dataDone = true
			}

		case TypeData:
			if dataDone {
				// Already saw a non-IDAT chunk after the IDAT run.
				// Order is preserved regardless, so keep going.
				logging.Warn().Msg("IDAT chunks are not contiguous")
			}
			s.Data = append(s.Data, c.Data...)
			sawData = true

		case TypeEnd:
			state = stateDone

		default:
			logging.Debug().Str("type", c.Type).Msg("skipping chunk")
			if sawData {
				dataDone = true
			}
		}
	}

	if s.Header.ColorType == Indexed && s.Palette == nil {
		return nil, oops.New(ErrMissingPalette, "indexed image ended without PLTE")
	}
	if !sawData {
		return nil, oops.New(ErrMissingData, "no IDAT before IEND")
	}

	return &s, nil
}
