package exr

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// zipCompress applies the OpenEXR byte split and delta predictor, then zlib.
func zipCompress(raw []byte) ([]byte, error) {
	tmp := make([]byte, len(raw))
	half := (len(raw) + 1) / 2
	for i, b := range raw {
		if i%2 == 0 {
			tmp[i/2] = b
		} else {
			tmp[half+i/2] = b
		}
	}
	for i := len(tmp) - 1; i > 0; i-- {
		tmp[i] = tmp[i] - tmp[i-1] + 128
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(tmp); err != nil {
		return nil, fmt.Errorf("exr: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("exr: deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// zipDecompress reverses zipCompress; rawSize is the expected output length.
func zipDecompress(data []byte, rawSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("exr: inflate: %w", err)
	}
	defer zr.Close()

	tmp := make([]byte, rawSize)
	if _, err := io.ReadFull(zr, tmp); err != nil {
		return nil, fmt.Errorf("exr: inflate: %w", err)
	}

	for i := 1; i < len(tmp); i++ {
		tmp[i] = tmp[i-1] + tmp[i] - 128
	}

	raw := make([]byte, rawSize)
	half := (rawSize + 1) / 2
	for i := range raw {
		if i%2 == 0 {
			raw[i] = tmp[i/2]
		} else {
			raw[i] = tmp[half+i/2]
		}
	}
	return raw, nil
}
