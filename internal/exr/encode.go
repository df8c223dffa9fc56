package exr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"skin-lut-baker/internal/lut"
)

var le = binary.LittleEndian

// Encode writes img as a scanline OpenEXR file. The first scanline in the
// file is the top texture row. Values are written unclamped.
func Encode(w io.Writer, img *lut.Image, opts *Options) error {
	o := opts.withDefaults()
	switch o.PixelType {
	case Half, Float:
	default:
		return fmt.Errorf("%w: pixel type %s", ErrUnsupported, o.PixelType)
	}
	switch o.Compression {
	case NoCompression, ZIPSCompression, ZIPCompression:
	default:
		return fmt.Errorf("%w: compression %s", ErrUnsupported, o.Compression)
	}
	if img.Width < 1 || img.Height < 1 {
		return fmt.Errorf("exr: empty image %dx%d", img.Width, img.Height)
	}

	// chlist must be sorted by name
	channels := []channel{{"A", o.PixelType}, {"B", o.PixelType}, {"G", o.PixelType}, {"R", o.PixelType}}

	header := writeHeader(img.Width, img.Height, channels, o.Compression)

	lines := o.Compression.linesPerChunk()
	nChunks := (img.Height + lines - 1) / lines
	chunks := make([][]byte, nChunks)
	for i := range chunks {
		y0 := i * lines
		y1 := min(y0+lines, img.Height)
		raw := packLines(img, y0, y1, channels)

		data := raw
		if o.Compression != NoCompression {
			z, err := zipCompress(raw)
			if err != nil {
				return err
			}
			if len(z) < len(raw) {
				data = z
			}
		}

		chunk := make([]byte, 0, 8+len(data))
		chunk = le.AppendUint32(chunk, uint32(int32(y0)))
		chunk = le.AppendUint32(chunk, uint32(len(data)))
		chunks[i] = append(chunk, data...)
	}

	out := header
	offset := uint64(len(header) + 8*nChunks)
	for _, c := range chunks {
		out = le.AppendUint64(out, offset)
		offset += uint64(len(c))
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("exr: write header: %w", err)
	}
	for i, c := range chunks {
		if _, err := w.Write(c); err != nil {
			return fmt.Errorf("exr: write chunk %d: %w", i, err)
		}
	}
	return nil
}

// packLines lays out file scanlines [y0, y1): per line, per channel, all
// samples of that channel.
func packLines(img *lut.Image, y0, y1 int, channels []channel) []byte {
	var bpp int
	for _, ch := range channels {
		bpp += ch.pixelType.size()
	}
	buf := make([]byte, 0, (y1-y0)*img.Width*bpp)

	for y := y0; y < y1; y++ {
		row := img.Row(img.Height - 1 - y)
		for _, ch := range channels {
			c := component(ch.name)
			for x := 0; x < img.Width; x++ {
				v := row[x*4+c]
				if ch.pixelType == Half {
					buf = le.AppendUint16(buf, float16.Fromfloat32(v).Bits())
				} else {
					buf = le.AppendUint32(buf, math.Float32bits(v))
				}
			}
		}
	}
	return buf
}

func writeHeader(w, h int, channels []channel, comp Compression) []byte {
	b := le.AppendUint32(nil, magic)
	b = le.AppendUint32(b, formatVersion)

	var chlist []byte
	for _, ch := range channels {
		chlist = append(chlist, ch.name...)
		chlist = append(chlist, 0)
		chlist = le.AppendUint32(chlist, uint32(ch.pixelType))
		chlist = append(chlist, 0, 0, 0, 0) // pLinear + reserved
		chlist = le.AppendUint32(chlist, 1)
		chlist = le.AppendUint32(chlist, 1)
	}
	chlist = append(chlist, 0)

	window := box2i(0, 0, w-1, h-1)

	b = attr(b, "channels", "chlist", chlist)
	b = attr(b, "compression", "compression", []byte{byte(comp)})
	b = attr(b, "dataWindow", "box2i", window)
	b = attr(b, "displayWindow", "box2i", window)
	b = attr(b, "lineOrder", "lineOrder", []byte{0})
	b = attr(b, "pixelAspectRatio", "float", le.AppendUint32(nil, math.Float32bits(1)))
	b = attr(b, "screenWindowCenter", "v2f", make([]byte, 8))
	b = attr(b, "screenWindowWidth", "float", le.AppendUint32(nil, math.Float32bits(1)))
	return append(b, 0)
}

func attr(b []byte, name, typ string, value []byte) []byte {
	b = append(b, name...)
	b = append(b, 0)
	b = append(b, typ...)
	b = append(b, 0)
	b = le.AppendUint32(b, uint32(len(value)))
	return append(b, value...)
}

func box2i(xMin, yMin, xMax, yMax int) []byte {
	b := le.AppendUint32(nil, uint32(int32(xMin)))
	b = le.AppendUint32(b, uint32(int32(yMin)))
	b = le.AppendUint32(b, uint32(int32(xMax)))
	return le.AppendUint32(b, uint32(int32(yMax)))
}
