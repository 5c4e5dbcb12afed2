// Package qoi converts between binary PPM (P6) rasters and the QOI image format.
//
// The QOI specification is at https://qoiformat.org/qoi-specification.pdf.
// Only the RGB subset is supported: the encoder never emits RGBA chunks and the
// decoder rejects them with an UnsupportedChunkError.
package qoi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

const (
	magic     = "qoif"
	endMarker = "\x00\x00\x00\x00\x00\x00\x00\x01"
	headerLen = 14

	// maxPixels bounds width*height so that a hostile header cannot make us
	// allocate an arbitrary amount of memory.
	maxPixels = 400_000_000
)

func init() {
	image.RegisterFormat("qoi", magic, DecodeImage, DecodeConfig)
}

// Channels is the channel count stored in the header. It is informative only.
type Channels uint8

const (
	RGB  Channels = 3
	RGBA Channels = 4
)

// Colorspace is the colorspace stored in the header. It is informative only.
type Colorspace uint8

const (
	SRGB   Colorspace = 0 // sRGB with linear alpha
	Linear Colorspace = 1 // all channels linear
)

// Width and height are big-endian, as the QOI specification requires.
type header struct {
	Magic         [4]byte
	Width, Height uint32
	Channels      Channels
	Colorspace    Colorspace
}

func newHeader(width, height int) (header, error) {
	if width < 0 || height < 0 || uint64(width)*uint64(height) > maxPixels {
		return header{}, FormatError(fmt.Sprintf("image too large: %dx%d", width, height))
	}
	hdr := header{
		Width:      uint32(width),
		Height:     uint32(height),
		Channels:   RGB,
		Colorspace: SRGB,
	}
	copy(hdr.Magic[:], magic)
	return hdr, nil
}

func (hdr header) pixels() int {
	return int(hdr.Width) * int(hdr.Height)
}

func (hdr header) append(dst []byte) []byte {
	dst = append(dst, hdr.Magic[:]...)
	dst = binary.BigEndian.AppendUint32(dst, hdr.Width)
	dst = binary.BigEndian.AppendUint32(dst, hdr.Height)
	return append(dst, byte(hdr.Channels), byte(hdr.Colorspace))
}

func readHeader(data []byte) (hdr header, err error) {
	if len(data) < headerLen {
		return hdr, FormatError("truncated header")
	}
	if err = binary.Read(bytes.NewReader(data[:headerLen]), binary.BigEndian, &hdr); err != nil {
		return
	}
	if !bytes.Equal(hdr.Magic[:], []byte(magic)) {
		return hdr, FormatError(fmt.Sprintf("expected magic = %q, got instead %q", magic, hdr.Magic[:]))
	}
	if hdr.Channels != RGB && hdr.Channels != RGBA {
		return hdr, FormatError(fmt.Sprintf("bad channels: %d", hdr.Channels))
	}
	if hdr.Colorspace != SRGB && hdr.Colorspace != Linear {
		return hdr, FormatError(fmt.Sprintf("bad colorspace: %d", hdr.Colorspace))
	}
	if uint64(hdr.Width)*uint64(hdr.Height) > maxPixels {
		return hdr, FormatError(fmt.Sprintf("image too large: %dx%d", hdr.Width, hdr.Height))
	}
	return hdr, nil
}

// Config is the decoded QOI header.
type Config struct {
	Width, Height int
	Channels      Channels
	Colorspace    Colorspace
}

// ReadConfig returns the header of the QOI stream in data without decoding any pixels.
func ReadConfig(data []byte) (Config, error) {
	hdr, err := readHeader(data)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Width:      int(hdr.Width),
		Height:     int(hdr.Height),
		Channels:   hdr.Channels,
		Colorspace: hdr.Colorspace,
	}, nil
}

// DecodeConfig returns the dimensions of a QOI image without decoding it.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var buf [headerLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return image.Config{}, fmt.Errorf("reading header: %w", err)
	}
	cfg, err := ReadConfig(buf[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ColorModel: color.RGBAModel,
	}, nil
}

// A FormatError reports that the input is not a valid QOI stream or P6 raster.
type FormatError string

func (e FormatError) Error() string {
	return "qoi: invalid format: " + string(e)
}

// An UnsupportedChunkError reports a chunk that is valid QOI but cannot be
// decoded into an RGB raster.
type UnsupportedChunkError struct {
	Tag    byte
	Offset int
}

func (e *UnsupportedChunkError) Error() string {
	return fmt.Sprintf("qoi: unsupported chunk %#02x at offset %d", e.Tag, e.Offset)
}

// opaque is the implicit previous pixel at the start of every stream.
var opaque = color.NRGBA{A: 255}

type colorCache [64]color.NRGBA

// hash is computed in uint8; the wraparound does not change the result mod 64.
func hash(c color.NRGBA) uint8 {
	return (c.R*3 + c.G*5 + c.B*7 + c.A*11) % 64
}

func (cc *colorCache) add(c color.NRGBA) {
	cc[hash(c)] = c
}

func (cc *colorCache) get(c color.NRGBA) int {
	idx := hash(c)
	if cc[idx] != c {
		return -1
	}
	return int(idx)
}

type tag uint8

const (
	opTagRGB   tag = 0b11111110
	opTagRGBA  tag = 0b11111111
	opTagIndex tag = 0b00000000
	opTagDiff  tag = 0b01000000
	opTagLuma  tag = 0b10000000
	opTagRun   tag = 0b11000000

	opTagMask = 0b11000000
)
