// Package chunk implements PNG's chunk layer: the length|type|data|crc
// framing, the typed parsers for IHDR, PLTE and tRNS, and the state machine
// that consumes a whole chunk stream into image parameters plus the joined
// compressed payload.
package chunk

import (
	"hash/crc32"

	"github.com/pigment/pngpipe/src/binio"
	"github.com/pigment/pngpipe/src/oops"
)

// Signature is the eight bytes that open every PNG stream.
const Signature = "\x89PNG\r\n\x1a\n"

// maxChunkLength is the largest length a chunk may declare (2^31 - 1).
const maxChunkLength = 0x7fffffff

const (
	TypeHeader       = "IHDR"
	TypePalette      = "PLTE"
	TypeTransparency = "tRNS"
	TypeData         = "IDAT"
	TypeEnd          = "IEND"
)

// Chunk is one framed PNG chunk. Data aliases the input buffer.
type Chunk struct {
	Length uint32
	Type   string
	Data   []byte
	CRC    uint32
}

// Critical reports whether the chunk type's first letter marks it critical.
func (c Chunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// Reader splits a byte stream into chunks. It does not verify chunk CRCs;
// the framing only guarantees that each chunk's declared length was present.
type Reader struct {
	r *binio.Reader
}

func NewReader(r *binio.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads one framed chunk.
func (cr *Reader) Next() (Chunk, error) {
	length, err := cr.r.ReadU32()
	if err != nil {
		return Chunk{}, err
	}
	if length > maxChunkLength {
		return Chunk{}, oops.New(ErrCorruptChunk, "chunk declares length %d", length)
	}
	typ, err := cr.r.ReadBytes(4)
	if err != nil {
		return Chunk{}, err
	}
	data, err := cr.r.ReadBytes(int(length))
	if err != nil {
		return Chunk{}, err
	}
	crc, err := cr.r.ReadU32()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		Length: length,
		Type:   string(typ),
		Data:   data,
		CRC:    crc,
	}, nil
}

// Append frames a chunk onto w: length, type, body, then CRC-32 over
// type+body.
func Append(w *binio.Writer, typ string, body []byte) {
	w.WriteU32(uint32(len(body)))
	w.WriteBytes([]byte(typ))
	w.WriteBytes(body)

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(body)
	w.WriteU32(crc.Sum32())
}

// AppendSignature writes the PNG signature.
func AppendSignature(w *binio.Writer) {
	w.WriteBytes([]byte(Signature))
}
