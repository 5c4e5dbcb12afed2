package qoi

import (
	"fmt"
	"image/color"
)

// Encode converts a P6 raster to a QOI stream.
func Encode(raster []byte) ([]byte, error) {
	m, err := ParseRaster(raster)
	if err != nil {
		return nil, err
	}
	return EncodeRaster(m)
}

// EncodeRaster encodes m as a QOI stream. The returned slice is owned by the
// caller and may have spare capacity.
func EncodeRaster(m *Raster) ([]byte, error) {
	hdr, err := newHeader(m.Width, m.Height)
	if err != nil {
		return nil, err
	}
	n := hdr.pixels()
	if len(m.Pix) < n*3 {
		return nil, FormatError(fmt.Sprintf("short pixel buffer: %d bytes for %dx%d", len(m.Pix), m.Width, m.Height))
	}
	dst := make([]byte, 0, maxEncodedLen(n))
	dst = hdr.append(dst)
	cc := new(colorCache)
	previous := opaque
	r := newRasterReader(m.Pix[:n*3])
	for r.ok {
		seen := r.c
		dst = encodeChunk(dst, r, cc, previous)
		previous = seen
	}
	return append(dst, endMarker...), nil
}

// maxEncodedLen is the size of the stream when every pixel needs an RGB chunk.
func maxEncodedLen(pixels int) int {
	return headerLen + pixels*4 + len(endMarker)
}

// rasterReader walks the pixels of a raster in row-major order. ok is false
// once every pixel has been consumed.
type rasterReader struct {
	pix []byte
	off int
	c   color.NRGBA
	ok  bool
}

func newRasterReader(pix []byte) *rasterReader {
	r := &rasterReader{pix: pix, off: -3}
	r.next()
	return r
}

func (r *rasterReader) next() {
	r.off += 3
	if r.off+3 > len(r.pix) {
		r.ok = false
		return
	}
	s := r.pix[r.off : r.off+3 : r.off+3]
	r.c = color.NRGBA{R: s[0], G: s[1], B: s[2], A: 255}
	r.ok = true
}
