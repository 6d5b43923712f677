package chunk

import (
	"testing"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ihdrBody(width, height int32, depth byte, ct ColorType) []byte {
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

// buildStream assembles a signed PNG byte stream from (type, body) pairs.
func buildStream(chunks ...[2][]byte) []byte {
	w := binio.NewWriter()
	AppendSignature(w)
	for _, c := range chunks {
		Append(w, string(c[0]), c[1])
	}
	return w.Bytes()
}

func c(typ string, body []byte) [2][]byte {
	return [2][]byte{[]byte(typ), body}
}

func TestParseMinimal(t *testing.T) {
	data := buildStream(
		c("IHDR", ihdrBody(1, 1, 8, TrueColorAlpha)),
		c("IDAT", []byte{0xDE, 0xAD}),
		c("IEND", nil),
	)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Header.Width)
	assert.Equal(t, TrueColorAlpha, s.Header.ColorType)
	assert.Equal(t, []byte{0xDE, 0xAD}, s.Data)
	assert.Nil(t, s.Palette)
	assert.Nil(t, s.Trans)
}

func TestParseJoinsData(t *testing.T) {
	data := buildStream(
		c("IHDR", ihdrBody(1, 1, 8, TrueColorAlpha)),
		c("IDAT", []byte{0x01}),
		c("IDAT", []byte{0x02, 0x03}),
		c("IDAT", []byte{0x04}),
		c("IEND", nil),
	)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, s.Data)
}

func TestParseSkipsUnknownChunks(t *testing.T) {
	data := buildStream(
		c("IHDR", ihdrBody(1, 1, 8, TrueColorAlpha)),
		c("tEXt", []byte("comment\x00hi")),
		c("IDAT", []byte{0x01}),
		c("IEND", nil),
	)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, s.Data)
}

func TestParseInterleavedDataIsSoftError(t *testing.T) {
	// A chunk in the middle of the IDAT run is tolerated; order is kept.
	data := buildStream(
		c("IHDR", ihdrBody(1, 1, 8, TrueColorAlpha)),
		c("IDAT", []byte{0x01}),
		c("tEXt", []byte("x")),
		c("IDAT", []byte{0x02}),
		c("IEND", nil),
	)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, s.Data)
}

func TestParsePaletteAndTransparency(t *testing.T) {
	data := buildStream(
		c("IHDR", ihdrBody(2, 1, 8, Indexed)),
		c("PLTE", []byte{255, 0, 0, 0, 255, 0}),
		c("tRNS", []byte{128}),
		c("IDAT", []byte{0x01}),
		c("IEND", nil),
	)

	s, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, s.Palette, 2)
	assert.Equal(t, RGB{255, 0, 0}, s.Palette[0])
	require.NotNil(t, s.Trans)
	assert.Equal(t, byte(128), s.Trans.Alpha(0))
	assert.Equal(t, byte(255), s.Trans.Alpha(1))
}

func TestParseErrors(t *testing.T) {
	ihdr := ihdrBody(1, 1, 8, TrueColorAlpha)

	t.Run("bad signature", func(t *testing.T) {
		_, err := Parse([]byte("definitely not a png"))
		assert.ErrorIs(t, err, ErrBadSignature)
	})
	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(nil)
		assert.ErrorIs(t, err, ErrBadSignature)
	})
	t.Run("first chunk not IHDR", func(t *testing.T) {
		_, err := Parse(buildStream(c("IDAT", []byte{1})))
		assert.ErrorIs(t, err, ErrBadHeader)
	})
	t.Run("duplicate IHDR", func(t *testing.T) {
		_, err := Parse(buildStream(c("IHDR", ihdr), c("IHDR", ihdr)))
		assert.ErrorIs(t, err, ErrBadHeader)
	})
	t.Run("truncated before IEND", func(t *testing.T) {
		_, err := Parse(buildStream(c("IHDR", ihdr), c("IDAT", []byte{1})))
		assert.ErrorIs(t, err, binio.ErrTruncated)
	})
	t.Run("no IDAT", func(t *testing.T) {
		_, err := Parse(buildStream(c("IHDR", ihdr), c("IEND", nil)))
		assert.ErrorIs(t, err, ErrMissingData)
	})
	t.Run("duplicate PLTE", func(t *testing.T) {
		plte := []byte{1, 2, 3}
		_, err := Parse(buildStream(
			c("IHDR", ihdrBody(1, 1, 8, Indexed)),
			c("PLTE", plte),
			c("PLTE", plte),
		))
		assert.ErrorIs(t, err, ErrBadPalette)
	})
	t.Run("PLTE after IDAT", func(t *testing.T) {
		_, err := Parse(buildStream(
			c("IHDR", ihdrBody(1, 1, 8, Indexed)),
			c("IDAT", []byte{1}),
			c("PLTE", []byte{1, 2, 3}),
		))
		assert.ErrorIs(t, err, ErrBadPalette)
	})
	t.Run("indexed without PLTE", func(t *testing.T) {
		_, err := Parse(buildStream(
			c("IHDR", ihdrBody(1, 1, 8, Indexed)),
			c("IDAT", []byte{1}),
			c("IEND", nil),
		))
		assert.ErrorIs(t, err, ErrMissingPalette)
	})
	t.Run("indexed tRNS without PLTE", func(t *testing.T) {
		_, err := Parse(buildStream(
			c("IHDR", ihdrBody(1, 1, 8, Indexed)),
			c("tRNS", []byte{0}),
		))
		assert.ErrorIs(t, err, ErrBadTransparency)
	})
	t.Run("tRNS forbidden for rgba", func(t *testing.T) {
		_, err := Parse(buildStream(
			c("IHDR", ihdr),
			c("tRNS", []byte{0, 0}),
		))
		assert.ErrorIs(t, err, ErrBadTransparency)
	})
	t.Run("duplicate tRNS", func(t *testing.T) {
		_, err := Parse(buildStream(
			c("IHDR", ihdrBody(1, 1, 8, Grayscale)),
			c("tRNS", []byte{0, 1}),
			c("tRNS", []byte{0, 1}),
		))
		assert.ErrorIs(t, err, ErrBadTransparency)
	})
}
