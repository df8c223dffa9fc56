// Package exr reads and writes single-part scanline OpenEXR files holding
// an RGBA float grid. Only the features a baked LUT needs are supported:
// UINT/HALF/FLOAT channels and NONE/ZIPS/ZIP compression.
package exr

import (
	"errors"
	"fmt"
	"strings"
)

const magic = 20000630

// Version field: file format 2, no flags (single-part scanline, short names).
const (
	formatVersion = 2
	flagTiled     = 0x200
	flagLongNames = 0x400
	flagDeep      = 0x800
	flagMultipart = 0x1000
)

// MaxPixels caps the data window Decode accepts (8192×8192).
const MaxPixels = 1 << 26

// maxZipRatio bounds how far deflate can expand its input.
const maxZipRatio = 1032

var (
	ErrNotEXR      = errors.New("exr: not an OpenEXR file")
	ErrUnsupported = errors.New("exr: unsupported file layout")
)

// PixelType is the storage type of a channel.
type PixelType int32

const (
	Uint  PixelType = 0
	Half  PixelType = 1
	Float PixelType = 2
)

func (t PixelType) size() int {
	if t == Half {
		return 2
	}
	return 4
}

func (t PixelType) String() string {
	switch t {
	case Uint:
		return "uint"
	case Half:
		return "half"
	case Float:
		return "float"
	}
	return fmt.Sprintf("PixelType(%d)", int32(t))
}

// ParsePixelType accepts "half" or "float"; empty means Float.
func ParsePixelType(s string) (PixelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float", "float32":
		return Float, nil
	case "half", "float16":
		return Half, nil
	}
	return Float, fmt.Errorf("exr: unknown pixel type %q", s)
}

// Compression is the scanline block compression.
type Compression uint8

const (
	NoCompression   Compression = 0
	RLECompression  Compression = 1
	ZIPSCompression Compression = 2
	ZIPCompression  Compression = 3
)

// linesPerChunk returns how many scanlines share one chunk.
func (c Compression) linesPerChunk() int {
	if c == ZIPCompression {
		return 16
	}
	return 1
}

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case RLECompression:
		return "rle"
	case ZIPSCompression:
		return "zips"
	case ZIPCompression:
		return "zip"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression accepts "none", "zips" or "zip"; empty means ZIP.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zip":
		return ZIPCompression, nil
	case "zips":
		return ZIPSCompression, nil
	case "none", "no":
		return NoCompression, nil
	}
	return ZIPCompression, fmt.Errorf("exr: unsupported compression %q", s)
}

// Options controls encoding. A nil *Options writes FLOAT channels with ZIP
// compression.
type Options struct {
	PixelType   PixelType
	Compression Compression
}

func (o *Options) withDefaults() Options {
	if o == nil {
		return Options{PixelType: Float, Compression: ZIPCompression}
	}
	return *o
}

// channel is one entry of the chlist attribute.
type channel struct {
	name      string
	pixelType PixelType
}

// component maps a channel name to its index in an RGBA pixel, or -1.
func component(name string) int {
	switch name {
	case "R":
		return 0
	case "G":
		return 1
	case "B":
		return 2
	case "A":
		return 3
	}
	return -1
}
