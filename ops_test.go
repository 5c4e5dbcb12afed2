package qoi

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tt := require.New(t)
	for _, c := range []color.NRGBA{
		{0, 0, 0, 0},
		{0, 0, 0, 255},
		{10, 20, 30, 255},
		{255, 255, 255, 255},
		{200, 13, 77, 255},
	} {
		want := (3*int(c.R) + 5*int(c.G) + 7*int(c.B) + 11*int(c.A)) % 64
		tt.Equal(uint8(want), hash(c), "%v", c)
	}
}

func TestColorCache(t *testing.T) {
	tt := require.New(t)
	var cc colorCache
	p := color.NRGBA{10, 20, 30, 255}
	tt.Equal(-1, cc.get(p))
	cc.add(p)
	tt.Equal(9, cc.get(p))
	// Same slot, different pixel: overwrites.
	cc.add(color.NRGBA{11, 18, 31, 255})
	tt.Equal(-1, cc.get(p))
	// RGBA equality, not RGB.
	cc.add(color.NRGBA{1, 2, 3, 255})
	tt.Equal(-1, cc.get(color.NRGBA{1, 2, 3, 0}))
}

func pixelsOf(cs ...color.NRGBA) []byte {
	pix := make([]byte, 0, len(cs)*3)
	for _, c := range cs {
		pix = append(pix, c.R, c.G, c.B)
	}
	return pix
}

func TestDeltaRanges(t *testing.T) {
	prev := color.NRGBA{100, 100, 100, 255}
	step := func(dr, dg, db int) *rasterReader {
		return newRasterReader(pixelsOf(color.NRGBA{
			R: uint8(100 + dr),
			G: uint8(100 + dg),
			B: uint8(100 + db),
			A: 255,
		}))
	}
	for _, tc := range []struct {
		dr, dg, db int
		diff, luma bool
	}{
		{-2, -2, -2, true, true},
		{1, 1, 1, true, true},
		{1, 1, -2, true, true},
		{2, 0, 0, false, true},
		{0, -3, 0, false, true},
		{-32 - 8, -32, -32 + 7, false, true},
		{31 + 7, 31, 31 - 8, false, true},
		{0, 32, 0, false, false},
		{0, -33, 0, false, false},
		{9, 1, 1, false, false},
		{1, 1, -8, false, false},
		{2, 2, -2, false, true},
		{0, 40, 0, false, false},
	} {
		tt := require.New(t)
		tt.Equal(tc.diff, newOpDiff(step(tc.dr, tc.dg, tc.db), prev) != nil, "diff %+v", tc)
		tt.Equal(tc.luma, newOpLuma(step(tc.dr, tc.dg, tc.db), prev) != nil, "luma %+v", tc)
	}
}

// Deltas wrap around at 8 bits, like the reference encoder.
func TestDeltaWraparound(t *testing.T) {
	tt := require.New(t)
	prev := color.NRGBA{255, 0, 255, 255}
	r := newRasterReader(pixelsOf(color.NRGBA{0, 255, 0, 255}))
	op := newOpDiff(r, prev)
	tt.Equal(&opDiff{dr: 1, dg: -1, db: 1}, op)

	pix := make([]byte, 3)
	var cc colorCache
	_, c := op.set(pix, 0, &cc, prev)
	tt.Equal(color.NRGBA{0, 255, 0, 255}, c)
	tt.Equal([]byte{0, 255, 0}, pix)
}

func TestChunkEncodeDecode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		op    chunk
		bytes []byte
	}{
		{"index", ptr(opIndex(9)), []byte{0x09}},
		{"diff", &opDiff{dr: -2, dg: 1, db: 0}, []byte{0x40 | 0<<4 | 3<<2 | 2}},
		{"luma", &opLuma{dg: -32, drdg: 7, dbdg: -8}, []byte{0x80, 0xf0}},
		{"rgb", &opRGB{R: 1, G: 2, B: 3, A: 255}, []byte{0xfe, 1, 2, 3}},
		{"run1", ptr(opRun(1)), []byte{0xc0}},
		{"run62", ptr(opRun(62)), []byte{0xfd}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tt := require.New(t)
			tt.Equal(tc.bytes, tc.op.encode(nil))
			r := &reader{buf: tc.bytes}
			got, err := decodeChunk(r)
			tt.NoError(err)
			tt.Equal(tc.op, got)
			tt.Equal(len(tc.bytes), r.off)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestDecodeChunkTruncated(t *testing.T) {
	for _, buf := range [][]byte{
		{},
		{0x80},
		{0xfe, 1, 2},
	} {
		tt := require.New(t)
		_, err := decodeChunk(&reader{buf: buf})
		var fe FormatError
		tt.ErrorAs(err, &fe, "%x", buf)
	}
}

func TestDecodeChunkRGBA(t *testing.T) {
	tt := require.New(t)
	_, err := decodeChunk(&reader{buf: []byte{0, 0xff, 1, 2, 3, 4}, off: 1})
	tt.Equal(&UnsupportedChunkError{Tag: 0xff, Offset: 1}, err)
}

func TestRunSet(t *testing.T) {
	tt := require.New(t)
	prev := color.NRGBA{7, 8, 9, 255}
	var cc colorCache
	pix := make([]byte, 4*3)
	n, c := opRun(62).set(pix, 1, &cc, prev)
	tt.Equal(3, n)
	tt.Equal(prev, c)
	tt.Equal([]byte{0, 0, 0, 7, 8, 9, 7, 8, 9, 7, 8, 9}, pix)
	tt.Equal(colorCache{}, cc)
}

func TestRasterReader(t *testing.T) {
	tt := require.New(t)
	r := newRasterReader([]byte{1, 2, 3, 4, 5, 6})
	tt.True(r.ok)
	tt.Equal(color.NRGBA{1, 2, 3, 255}, r.c)
	r.next()
	tt.True(r.ok)
	tt.Equal(color.NRGBA{4, 5, 6, 255}, r.c)
	r.next()
	tt.False(r.ok)

	tt.False(newRasterReader(nil).ok)
}

func TestHeader(t *testing.T) {
	tt := require.New(t)
	hdr, err := newHeader(0x01020304, 2)
	tt.NoError(err)
	buf := hdr.append(nil)
	tt.Equal([]byte{'q', 'o', 'i', 'f', 1, 2, 3, 4, 0, 0, 0, 2, 3, 0}, buf)
	got, err := readHeader(buf)
	tt.NoError(err)
	tt.Equal(hdr, got)

	_, err = newHeader(1<<20, 1<<20)
	tt.Error(err)
}
