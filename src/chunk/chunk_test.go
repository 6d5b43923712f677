package chunk

import (
	"hash/crc32"
	"testing"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndNext(t *testing.T) {
	w := binio.NewWriter()
	Append(w, "IDAT", []byte{0x01, 0x02, 0x03})

	r := NewReader(binio.NewReader(w.Bytes()))
	c, err := r.Next()
	require.NoError(t, err)

	assert.Equal(t, uint32(3), c.Length)
	assert.Equal(t, "IDAT", c.Type)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, c.Data)

	crc := crc32.NewIEEE()
	crc.Write([]byte("IDAT"))
	crc.Write([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, crc.Sum32(), c.CRC)
	assert.True(t, c.Critical())
}

func TestNextTruncated(t *testing.T) {
	w := binio.NewWriter()
	Append(w, "IDAT", []byte{0x01, 0x02, 0x03})

	for cut := 1; cut < w.Len(); cut++ {
		r := NewReader(binio.NewReader(w.Bytes()[:cut]))
		_, err := r.Next()
		assert.ErrorIs(t, err, binio.ErrTruncated, "cut at %d", cut)
	}
}

func TestNextOversizeLength(t *testing.T) {
	w := binio.NewWriter()
	w.WriteU32(0x80000000)
	w.WriteBytes([]byte("IDAT"))

	r := NewReader(binio.NewReader(w.Bytes()))
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrCorruptChunk)
}

func TestAncillaryNotCritical(t *testing.T) {
	c := Chunk{Type: "tEXt"}
	assert.False(t, c.Critical())
}

func TestParseHeader(t *testing.T) {
	valid := func(width, height int32, depth byte, ct ColorType) []byte {
		w := binio.NewWriter()
		w.WriteI32(width)
		w.WriteI32(height)
		w.WriteU8(depth)
		w.WriteU8(byte(ct))
		w.WriteU8(0)
		w.WriteU8(0)
		w.WriteU8(0)
		return w.Bytes()
	}

	t.Run("valid rgba8", func(t *testing.T) {
		h, err := ParseHeader(valid(640, 480, 8, TrueColorAlpha))
		require.NoError(t, err)
		assert.Equal(t, 640, h.Width)
		assert.Equal(t, 480, h.Height)
		assert.Equal(t, byte(8), h.BitDepth)
		assert.Equal(t, TrueColorAlpha, h.ColorType)
	})

	t.Run("large dimensions decode correctly", func(t *testing.T) {
		h, err := ParseHeader(valid(70000, 300, 8, TrueColor))
		require.NoError(t, err)
		assert.Equal(t, 70000, h.Width)
		assert.Equal(t, 300, h.Height)
	})

	t.Run("allowed depth combinations", func(t *testing.T) {
		cases := map[ColorType][]byte{
			Grayscale:      {1, 2, 4, 8, 16},
			TrueColor:      {8, 16},
			Indexed:        {1, 2, 4, 8},
			GrayscaleAlpha: {8, 16},
			TrueColorAlpha: {8, 16},
		}
		for ct, depths := range cases {
			for _, d := range depths {
				_, err := ParseHeader(valid(1, 1, d, ct))
				assert.NoError(t, err, "%s depth %d", ct, d)
			}
		}
	})

	t.Run("rejected depth combinations", func(t *testing.T) {
		cases := []struct {
			ct    ColorType
			depth byte
		}{
			{Grayscale, 3},
			{TrueColor, 4},
			{Indexed, 16},
			{GrayscaleAlpha, 4},
			{TrueColorAlpha, 1},
		}
		for _, c := range cases {
			_, err := ParseHeader(valid(1, 1, c.depth, c.ct))
			assert.ErrorIs(t, err, ErrBadHeader, "%s depth %d", c.ct, c.depth)
		}
	})

	t.Run("zero dimensions", func(t *testing.T) {
		_, err := ParseHeader(valid(0, 1, 8, TrueColorAlpha))
		assert.ErrorIs(t, err, ErrBadHeader)
		_, err = ParseHeader(valid(1, 0, 8, TrueColorAlpha))
		assert.ErrorIs(t, err, ErrBadHeader)
		_, err = ParseHeader(valid(-5, 4, 8, TrueColorAlpha))
		assert.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("unknown color type", func(t *testing.T) {
		_, err := ParseHeader(valid(1, 1, 8, ColorType(7)))
		assert.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("interlace", func(t *testing.T) {
		body := valid(1, 1, 8, TrueColorAlpha)
		body[12] = 1
		_, err := ParseHeader(body)
		assert.ErrorIs(t, err, ErrUnsupportedInterlace)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, 12))
		assert.ErrorIs(t, err, ErrChunkLengthMismatch)
	})
}

func TestHeaderGeometry(t *testing.T) {
	cases := []struct {
		ct       ColorType
		depth    byte
		width    int
		rowBytes int
		unit     int
	}{
		{Grayscale, 1, 9, 2, 1},
		{Grayscale, 2, 5, 2, 1},
		{Grayscale, 4, 3, 2, 1},
		{Grayscale, 8, 3, 3, 1},
		{Grayscale, 16, 3, 6, 2},
		{Indexed, 4, 4, 2, 1},
		{TrueColor, 8, 2, 6, 3},
		{TrueColor, 16, 2, 12, 6},
		{GrayscaleAlpha, 8, 2, 4, 2},
		{TrueColorAlpha, 8, 2, 8, 4},
		{TrueColorAlpha, 16, 2, 16, 8},
	}
	for _, c := range cases {
		h := Header{Width: c.width, BitDepth: c.depth, ColorType: c.ct}
		assert.Equal(t, c.rowBytes, h.RowBytes(), "%s depth %d rowBytes", c.ct, c.depth)
		assert.Equal(t, c.unit, h.FilterUnit(), "%s depth %d unit", c.ct, c.depth)
	}
}

func TestParsePalette(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		pal, err := ParsePalette([]byte{1, 2, 3, 4, 5, 6}, Indexed)
		require.NoError(t, err)
		assert.Equal(t, Palette{{1, 2, 3}, {4, 5, 6}}, pal)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := ParsePalette(nil, Indexed)
		assert.ErrorIs(t, err, ErrBadPalette)
	})
	t.Run("not a multiple of 3", func(t *testing.T) {
		_, err := ParsePalette([]byte{1, 2, 3, 4}, Indexed)
		assert.ErrorIs(t, err, ErrBadPalette)
	})
	t.Run("too long", func(t *testing.T) {
		_, err := ParsePalette(make([]byte, 771), Indexed)
		assert.ErrorIs(t, err, ErrBadPalette)
	})
	t.Run("forbidden for grayscale", func(t *testing.T) {
		_, err := ParsePalette([]byte{1, 2, 3}, Grayscale)
		assert.ErrorIs(t, err, ErrBadPalette)
		_, err = ParsePalette([]byte{1, 2, 3}, GrayscaleAlpha)
		assert.ErrorIs(t, err, ErrBadPalette)
	})
}

func TestParseTransparency(t *testing.T) {
	t.Run("grayscale key", func(t *testing.T) {
		tr, err := ParseTransparency([]byte{0x01, 0x02}, Grayscale, false)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0102), tr.GrayKey)
	})
	t.Run("rgb key keeps low bytes", func(t *testing.T) {
		tr, err := ParseTransparency([]byte{0x01, 0xAA, 0x02, 0xBB, 0x03, 0xCC}, TrueColor, false)
		require.NoError(t, err)
		assert.Equal(t, [3]byte{0xAA, 0xBB, 0xCC}, tr.RGBKey)
	})
	t.Run("indexed alphas", func(t *testing.T) {
		tr, err := ParseTransparency([]byte{0, 128}, Indexed, true)
		require.NoError(t, err)
		assert.Equal(t, byte(0), tr.Alpha(0))
		assert.Equal(t, byte(128), tr.Alpha(1))
		assert.Equal(t, byte(255), tr.Alpha(2))
	})
	t.Run("indexed without palette", func(t *testing.T) {
		_, err := ParseTransparency([]byte{0}, Indexed, false)
		assert.ErrorIs(t, err, ErrBadTransparency)
	})
	t.Run("forbidden color types", func(t *testing.T) {
		_, err := ParseTransparency([]byte{0}, GrayscaleAlpha, false)
		assert.ErrorIs(t, err, ErrBadTransparency)
		_, err = ParseTransparency([]byte{0}, TrueColorAlpha, false)
		assert.ErrorIs(t, err, ErrBadTransparency)
	})
	t.Run("wrong lengths", func(t *testing.T) {
		_, err := ParseTransparency([]byte{0}, Grayscale, false)
		assert.ErrorIs(t, err, ErrChunkLengthMismatch)
		_, err = ParseTransparency([]byte{0, 1, 2, 3}, TrueColor, false)
		assert.ErrorIs(t, err, ErrChunkLengthMismatch)
	})
	t.Run("nil is opaque", func(t *testing.T) {
		var tr *Transparency
		assert.Equal(t, byte(255), tr.Alpha(0))
	})
}
