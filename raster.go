package qoi

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strconv"
)

const (
	rasterMagic  = "P6"
	rasterMaxval = 255

	// "P6\n" + two 10-digit dimensions + " " + "\n255\n"
	maxRasterHeaderLen = 29
)

// Raster is an 8-bit RGB image laid out like the body of a P6 file: rows top to
// bottom, three bytes per pixel, no padding.
type Raster struct {
	Width, Height int
	Pix           []byte
}

// NewRaster returns a black raster of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// ParseRaster parses a P6 file with a maxval of 255. Comments are allowed in the
// header. Pix aliases data.
func ParseRaster(data []byte) (*Raster, error) {
	if !bytes.HasPrefix(data, []byte(rasterMagic)) {
		return nil, FormatError("expected P6 magic")
	}
	off := len(rasterMagic)
	var fields [3]int
	for k, name := range []string{"width", "height", "maxval"} {
		var ok bool
		if off, ok = skipSpace(data, off); !ok {
			return nil, FormatError("missing whitespace before " + name)
		}
		start := off
		for off < len(data) && data[off] >= '0' && data[off] <= '9' {
			off++
		}
		v, err := strconv.Atoi(string(data[start:off]))
		if err != nil {
			return nil, FormatError(fmt.Sprintf("bad %s %q", name, data[start:off]))
		}
		fields[k] = v
	}
	if off >= len(data) || !isSpace(data[off]) {
		return nil, FormatError("missing whitespace before pixel data")
	}
	off++
	width, height, maxval := fields[0], fields[1], fields[2]
	if maxval != rasterMaxval {
		return nil, FormatError(fmt.Sprintf("unsupported maxval %d", maxval))
	}
	if uint64(width)*uint64(height) > maxPixels {
		return nil, FormatError(fmt.Sprintf("image too large: %dx%d", width, height))
	}
	n := width * height * 3
	if len(data)-off < n {
		return nil, FormatError(fmt.Sprintf("truncated pixel data: want %d bytes, got %d", n, len(data)-off))
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    data[off : off+n : off+n],
	}, nil
}

// skipSpace skips whitespace and comments. It reports whether it skipped anything.
func skipSpace(data []byte, off int) (int, bool) {
	start := off
	for off < len(data) {
		switch {
		case isSpace(data[off]):
			off++
		case data[off] == '#':
			for off < len(data) && data[off] != '\n' && data[off] != '\r' {
				off++
			}
		default:
			return off, off > start
		}
	}
	return off, off > start
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func appendRasterHeader(dst []byte, width, height int) []byte {
	dst = append(dst, rasterMagic+"\n"...)
	dst = strconv.AppendInt(dst, int64(width), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(height), 10)
	return append(dst, "\n255\n"...)
}

// Bytes returns m as a P6 file.
func (m *Raster) Bytes() []byte {
	dst := appendRasterHeader(make([]byte, 0, maxRasterHeaderLen+len(m.Pix)), m.Width, m.Height)
	return append(dst, m.Pix...)
}

func (m *Raster) ColorModel() color.Model {
	return color.RGBAModel
}

func (m *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Raster) At(x, y int) color.Color {
	return m.RGBAAt(x, y)
}

func (m *Raster) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return color.RGBA{}
	}
	i := (y*m.Width + x) * 3
	s := m.Pix[i : i+3 : i+3]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
}

// Opaque reports whether m is fully opaque, which a Raster always is.
func (m *Raster) Opaque() bool {
	return true
}
