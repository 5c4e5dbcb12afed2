package qoi

import (
	"fmt"
	"image"
	"io"
)

// Decode converts a QOI stream to a P6 raster.
func Decode(data []byte) ([]byte, error) {
	hdr, err := readStream(data)
	if err != nil {
		return nil, err
	}
	n := hdr.pixels() * 3
	out := appendRasterHeader(make([]byte, 0, maxRasterHeaderLen+n), int(hdr.Width), int(hdr.Height))
	off := len(out)
	out = out[:off+n]
	if err := decodePixels(data, hdr, out[off:]); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeRaster decodes a QOI stream into a Raster.
func DecodeRaster(data []byte) (*Raster, error) {
	hdr, err := readStream(data)
	if err != nil {
		return nil, err
	}
	m := NewRaster(int(hdr.Width), int(hdr.Height))
	if err := decodePixels(data, hdr, m.Pix); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeImage reads a QOI image from r. The result is a *Raster.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeRaster(data)
}

// readStream validates the header and rejects streams too short to hold every
// pixel, before any pixel memory is allocated.
func readStream(data []byte) (header, error) {
	hdr, err := readHeader(data)
	if err != nil {
		return hdr, err
	}
	chunks := len(data) - headerLen - len(endMarker)
	if need := (hdr.pixels() + maxRun - 1) / maxRun; chunks < need {
		return hdr, FormatError(fmt.Sprintf("truncated stream: %d chunk bytes cannot hold %dx%d pixels", max(chunks, 0), hdr.Width, hdr.Height))
	}
	return hdr, nil
}

func decodePixels(data []byte, hdr header, pix []byte) error {
	r := &reader{buf: data, off: headerLen}
	cc := new(colorCache)
	previous := opaque
	width, total := int(hdr.Width), hdr.pixels()
	for i := 0; i < total; {
		c, err := decodeChunk(r)
		if err != nil {
			return fmt.Errorf("decoding chunk starting at {x: %d, y: %d}: %w", i%width, i/width, err)
		}
		var n int
		n, previous = c.set(pix, i, cc, previous)
		i += n
	}
	tail, err := r.next(len(endMarker))
	if err != nil {
		return fmt.Errorf("reading end marker: %w", err)
	}
	if string(tail) != endMarker {
		return FormatError(fmt.Sprintf("bad end marker %x", tail))
	}
	return nil
}
