package exr

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"skin-lut-baker/internal/lut"
)

// Header is the subset of attributes Decode understands.
type Header struct {
	Width       int
	Height      int
	Compression Compression
	Channels    []string
	PixelTypes  []PixelType
}

type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("exr: truncated at byte %d", r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return le.Uint32(b)
}

func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	i := bytes.IndexByte(r.data[r.pos:], 0)
	if i < 0 {
		r.err = fmt.Errorf("exr: unterminated string at byte %d", r.pos)
		return ""
	}
	s := string(r.data[r.pos : r.pos+i])
	r.pos += i + 1
	return s
}

// Decode reads a file written by Encode, or any single-part scanline file
// with R, G, B and/or A channels. Missing color channels read as 0, a
// missing alpha as 1.
func Decode(rd io.Reader) (*lut.Image, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("exr: read: %w", err)
	}
	r := &reader{data: data}

	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	lines := hdr.Compression.linesPerChunk()
	nChunks := (hdr.Height + lines - 1) / lines
	if nChunks > (len(data)-r.pos)/8 {
		return nil, fmt.Errorf("exr: truncated offset table: %d chunks, %d bytes left", nChunks, len(data)-r.pos)
	}

	var bpp int
	for _, t := range hdr.PixelTypes {
		bpp += t.size()
	}
	if err := checkSize(hdr, bpp, len(data)-r.pos-8*nChunks); err != nil {
		return nil, err
	}

	offsets := make([]uint64, nChunks)
	for i := range offsets {
		b := r.take(8)
		if b == nil {
			return nil, r.err
		}
		offsets[i] = le.Uint64(b)
	}

	img := lut.NewImage(hdr.Width, hdr.Height)
	for i := 0; i < img.Width*img.Height; i++ {
		img.Pix[i*4+3] = 1
	}

	for i, off := range offsets {
		if off > uint64(len(data)) {
			return nil, fmt.Errorf("exr: chunk %d offset %d past end of file", i, off)
		}
		cr := &reader{data: data, pos: int(off)}
		y0 := int(int32(cr.u32()))
		size := int(cr.u32())
		payload := cr.take(size)
		if cr.err != nil {
			return nil, cr.err
		}
		if y0 < 0 || y0 >= hdr.Height {
			return nil, fmt.Errorf("exr: chunk %d scanline %d outside data window", i, y0)
		}
		y1 := min(y0+lines, hdr.Height)
		rawSize := (y1 - y0) * hdr.Width * bpp

		raw := payload
		if hdr.Compression != NoCompression && size < rawSize {
			raw, err = zipDecompress(payload, rawSize)
			if err != nil {
				return nil, fmt.Errorf("exr: chunk %d: %w", i, err)
			}
		}
		if len(raw) != rawSize {
			return nil, fmt.Errorf("exr: chunk %d holds %d bytes, want %d", i, len(raw), rawSize)
		}
		unpackLines(img, raw, y0, y1, hdr)
	}
	return img, nil
}

// checkSize rejects a data window the remaining payload cannot hold, before
// anything is allocated for it.
func checkSize(hdr Header, bpp, payload int) error {
	pixels := int64(hdr.Width) * int64(hdr.Height)
	if pixels > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupported, hdr.Width, hdr.Height, MaxPixels)
	}
	limit := int64(payload)
	if hdr.Compression != NoCompression {
		limit *= maxZipRatio
	}
	if raw := pixels * int64(bpp); raw > limit {
		return fmt.Errorf("exr: truncated: %dx%d needs %d bytes of pixel data, file has %d", hdr.Width, hdr.Height, raw, payload)
	}
	return nil
}

// DecodeHeader reads only the header.
func DecodeHeader(rd io.Reader) (Header, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return Header{}, fmt.Errorf("exr: read: %w", err)
	}
	return readHeader(&reader{data: data})
}

func readHeader(r *reader) (Header, error) {
	if r.u32() != magic {
		return Header{}, ErrNotEXR
	}
	version := r.u32()
	if r.err != nil {
		return Header{}, r.err
	}
	// Long attribute names need no special handling.
	known := uint32(0xff | flagTiled | flagLongNames | flagDeep | flagMultipart)
	if version&0xff != formatVersion || version&(flagTiled|flagDeep|flagMultipart) != 0 || version&^known != 0 {
		return Header{}, fmt.Errorf("%w: version field %#x", ErrUnsupported, version)
	}

	var hdr Header
	var haveWindow bool
	for {
		name := r.cstring()
		if r.err != nil {
			return Header{}, r.err
		}
		if name == "" {
			break
		}
		typ := r.cstring()
		size := int(r.u32())
		value := r.take(size)
		if r.err != nil {
			return Header{}, r.err
		}

		switch {
		case name == "channels" && typ == "chlist":
			if err := parseChannels(value, &hdr); err != nil {
				return Header{}, err
			}
		case name == "compression" && size == 1:
			hdr.Compression = Compression(value[0])
		case name == "dataWindow" && size == 16:
			xMin := int32(le.Uint32(value[0:]))
			yMin := int32(le.Uint32(value[4:]))
			xMax := int32(le.Uint32(value[8:]))
			yMax := int32(le.Uint32(value[12:]))
			hdr.Width = int(xMax) - int(xMin) + 1
			hdr.Height = int(yMax) - int(yMin) + 1
			if xMin != 0 || yMin != 0 {
				return Header{}, fmt.Errorf("%w: data window origin %d,%d", ErrUnsupported, xMin, yMin)
			}
			haveWindow = true
		}
	}

	if !haveWindow || hdr.Width < 1 || hdr.Height < 1 {
		return Header{}, fmt.Errorf("exr: missing or empty dataWindow")
	}
	if len(hdr.Channels) == 0 {
		return Header{}, fmt.Errorf("exr: no channels")
	}
	switch hdr.Compression {
	case NoCompression, ZIPSCompression, ZIPCompression:
	default:
		return Header{}, fmt.Errorf("%w: compression %s", ErrUnsupported, hdr.Compression)
	}
	return hdr, nil
}

func parseChannels(value []byte, hdr *Header) error {
	r := &reader{data: value}
	for {
		name := r.cstring()
		if r.err != nil {
			return r.err
		}
		if name == "" {
			return nil
		}
		t := PixelType(int32(r.u32()))
		r.take(4) // pLinear + reserved
		xs, ys := r.u32(), r.u32()
		if r.err != nil {
			return r.err
		}
		if t != Uint && t != Half && t != Float {
			return fmt.Errorf("%w: channel %s type %d", ErrUnsupported, name, t)
		}
		if xs != 1 || ys != 1 {
			return fmt.Errorf("%w: channel %s subsampled", ErrUnsupported, name)
		}
		hdr.Channels = append(hdr.Channels, name)
		hdr.PixelTypes = append(hdr.PixelTypes, t)
	}
}

func unpackLines(img *lut.Image, raw []byte, y0, y1 int, hdr Header) {
	pos := 0
	for y := y0; y < y1; y++ {
		row := img.Row(img.Height - 1 - y)
		for ci, name := range hdr.Channels {
			t := hdr.PixelTypes[ci]
			c := component(name)
			for x := 0; x < img.Width; x++ {
				var v float32
				switch t {
				case Half:
					v = float16.Frombits(le.Uint16(raw[pos:])).Float32()
				case Float:
					v = math.Float32frombits(le.Uint32(raw[pos:]))
				default:
					v = float32(le.Uint32(raw[pos:]))
				}
				pos += t.size()
				if c >= 0 {
					row[x*4+c] = v
				}
			}
		}
	}
}
