package zstd

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compress compresses data using Zstd into a fresh buffer.
func Compress(data []byte) ([]byte, error) {
	z, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zstd writer: %w", err)
	}

	out := z.EncodeAll(data, nil)

	if err := z.Close(); err != nil {
		return nil, fmt.Errorf("failed to close Zstd writer: %w", err)
	}

	return out, nil
}

// Decompress decompresses Zstd data into a fresh buffer.
func Decompress(data []byte) ([]byte, error) {
	z, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zstd reader: %w", err)
	}
	defer z.Close()

	out, err := z.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed content: %w", err)
	}

	return out, nil
}
