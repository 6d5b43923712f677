package config

import (
	"runtime"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"
)

type PngpipeConfig struct {
	LogLevel zerolog.Level

	// Default worker count for the row-stripe parallel decode path, set from
	// the host's CPU count. Zero or one means a sequential decode.
	DecodeParallelism int

	// flate level used by the encoder when the caller does not pick one.
	CompressionLevel int
}

var Config = PngpipeConfig{
	LogLevel:          zerolog.InfoLevel,
	DecodeParallelism: runtime.NumCPU(),
	CompressionLevel:  flate.DefaultCompression,
}
