package binio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	b, err := r.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), u16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04050607), u32)

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 7, r.Offset())
}

func TestReaderBigEndian(t *testing.T) {
	// Dimensions with non-zero high bytes must decode exactly.
	r := NewReader([]byte{0x00, 0x01, 0x02, 0x03})
	v, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(66051), v)

	r = NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	i, err := r.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i)
}

func TestReaderTruncated(t *testing.T) {
	t.Run("u32 short", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02})
		_, err := r.ReadU32()
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("bytes short", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02})
		_, err := r.ReadBytes(3)
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("empty u8", func(t *testing.T) {
		r := NewReader(nil)
		_, err := r.ReadU8()
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("negative count", func(t *testing.T) {
		r := NewReader([]byte{0x01})
		_, err := r.ReadBytes(-1)
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestWriter(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0x01)
	w.WriteU16(0x0203)
	w.WriteU32(0x04050607)
	w.WriteI32(-1)
	w.WriteBytes([]byte{0xAA})

	assert.Equal(t, []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0xFF, 0xFF, 0xFF, 0xFF,
		0xAA,
	}, w.Bytes())
	assert.Equal(t, 12, w.Len())
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0xDEADBEEF)
	w.WriteU16(0x1234)

	r := NewReader(w.Bytes())
	u32, err := r.ReadU32()
	require.NoError(t, err)
	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	assert.Equal(t, uint16(0x1234), u16)
}
