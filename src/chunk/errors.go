package chunk

import "errors"

var (
	ErrBadSignature         = errors.New("bad png signature")
	ErrCorruptChunk         = errors.New("corrupt chunk")
	ErrChunkLengthMismatch  = errors.New("chunk length does not match its payload")
	ErrBadHeader            = errors.New("bad image header")
	ErrBadPalette           = errors.New("bad palette")
	ErrMissingPalette       = errors.New("indexed image has no palette")
	ErrMissingData          = errors.New("no image data")
	ErrBadTransparency      = errors.New("bad transparency info")
	ErrUnsupportedInterlace = errors.New("interlaced images are not supported")
)
