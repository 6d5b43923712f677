// Package compression wraps and unwraps the zlib container around PNG's
// filtered image bytes. The DEFLATE heavy lifting is delegated to
// klauspost/compress.
package compression

import (
	"bytes"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pigment/pngpipe/src/oops"
)

// ZlibHeader is the CMF/FLG pair emitted on encode: deflate with a 32K
// window, no preset dictionary, fastest-flag.
var ZlibHeader = [2]byte{0x78, 0x01}

// Inflate decompresses a joined IDAT payload. The two zlib header bytes are
// stripped and the interior is treated as raw DEFLATE; the trailing Adler-32
// is not verified.
func Inflate(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, oops.New(nil, "zlib stream is %d bytes, too short for its header", len(data))
	}

	fr := flate.NewReader(bytes.NewReader(data[2:]))
	defer fr.Close()

	raw, err := io.ReadAll(fr)
	if err != nil {
		return nil, oops.New(err, "inflate failed")
	}
	return raw, nil
}

// Deflate compresses raw bytes into a full zlib container: header bytes,
// DEFLATE payload, then big-endian Adler-32 over the pre-deflate data.
// level is a flate compression level.
func Deflate(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(ZlibHeader[:])

	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, oops.New(err, "bad compression level %d", level)
	}
	if _, err := fw.Write(raw); err != nil {
		return nil, oops.New(err, "deflate failed")
	}
	if err := fw.Close(); err != nil {
		return nil, oops.New(err, "deflate failed")
	}

	sum := adler32.Checksum(raw)
	buf.Write([]byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)})

	return buf.Bytes(), nil
}
