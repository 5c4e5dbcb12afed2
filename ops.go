package qoi

import (
	"image/color"
)

const (
	indexMask = 0b00111111

	diffBias  = 2
	diffWidth = 2
	diffMask  = 1<<diffWidth - 1

	lumaGreenBias = 32
	lumaGreenMask = 0b00111111
	lumaBias      = 8
	lumaWidth     = 4
	lumaMask      = 1<<lumaWidth - 1

	runMask = 0b00111111
	maxRun  = 62
)

type chunk interface {
	decode(*reader) error
	encode(dst []byte) []byte
	set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA)
}

// reader is a cursor over a QOI stream. Every read is checked against the
// length of buf.
type reader struct {
	buf []byte
	off int
}

func (r *reader) next(n int) ([]byte, error) {
	if n > len(r.buf)-r.off {
		return nil, FormatError("truncated stream")
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) peek() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, FormatError("truncated stream")
	}
	return r.buf[r.off], nil
}

// setPixel stores the RGB channels of c as pixel i of pix.
func setPixel(pix []byte, i int, c color.NRGBA) {
	s := pix[i*3 : i*3+3 : i*3+3]
	s[0] = c.R
	s[1] = c.G
	s[2] = c.B
}

type opRGB color.NRGBA

func newOpRGB(r *rasterReader) chunk {
	defer r.next()
	return &opRGB{R: r.c.R, G: r.c.G, B: r.c.B, A: r.c.A}
}

func (op *opRGB) decode(r *reader) error {
	buf, err := r.next(4)
	if err != nil {
		return err
	}
	*op = opRGB{R: buf[1], G: buf[2], B: buf[3], A: 255}
	return nil
}

func (op opRGB) set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA) {
	n = 1
	c = color.NRGBA(op)
	setPixel(pix, i, c)
	cc.add(c)
	return
}

func (op opRGB) encode(dst []byte) []byte {
	return append(dst, byte(opTagRGB), op.R, op.G, op.B)
}

type opIndex uint8

func newOpIndex(r *rasterReader, cc *colorCache) chunk {
	idx := cc.get(r.c)
	if idx < 0 {
		return nil
	}
	r.next()
	op := opIndex(idx)
	return &op
}

func (op *opIndex) decode(r *reader) error {
	b, err := r.readByte()
	*op = opIndex(b & indexMask)
	return err
}

func (op opIndex) set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA) {
	n = 1
	c = cc[op]
	setPixel(pix, i, c)
	return
}

func (op opIndex) encode(dst []byte) []byte {
	return append(dst, byte(opTagIndex)|byte(op))
}

type opDiff struct {
	dr, dg, db int8
}

func newOpDiff(r *rasterReader, previous color.NRGBA) chunk {
	var op opDiff
	op.dr = int8(r.c.R - previous.R)
	op.dg = int8(r.c.G - previous.G)
	op.db = int8(r.c.B - previous.B)
	if op.dr < -diffBias || op.dr >= diffBias {
		return nil
	}
	if op.dg < -diffBias || op.dg >= diffBias {
		return nil
	}
	if op.db < -diffBias || op.db >= diffBias {
		return nil
	}
	r.next()
	return &op
}

func (op *opDiff) decode(r *reader) error {
	b, err := r.readByte()
	op.dr = int8(b>>(2*diffWidth)&diffMask) - diffBias
	op.dg = int8(b>>diffWidth&diffMask) - diffBias
	op.db = int8(b&diffMask) - diffBias
	return err
}

func (op opDiff) set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA) {
	n = 1
	c.R = previous.R + uint8(op.dr)
	c.G = previous.G + uint8(op.dg)
	c.B = previous.B + uint8(op.db)
	c.A = 255
	setPixel(pix, i, c)
	cc.add(c)
	return
}

func (op opDiff) encode(dst []byte) []byte {
	return append(dst, byte(opTagDiff)|
		byte(op.dr+diffBias)<<(2*diffWidth)|
		byte(op.dg+diffBias)<<diffWidth|
		byte(op.db+diffBias))
}

type opLuma struct {
	dg   int8
	drdg int8
	dbdg int8
}

func newOpLuma(r *rasterReader, previous color.NRGBA) chunk {
	var op opLuma
	op.dg = int8(r.c.G - previous.G)
	op.drdg = int8(r.c.R-previous.R) - op.dg
	op.dbdg = int8(r.c.B-previous.B) - op.dg
	if op.dg < -lumaGreenBias || op.dg >= lumaGreenBias {
		return nil
	}
	if op.drdg < -lumaBias || op.drdg >= lumaBias {
		return nil
	}
	if op.dbdg < -lumaBias || op.dbdg >= lumaBias {
		return nil
	}
	r.next()
	return &op
}

func (op *opLuma) decode(r *reader) error {
	buf, err := r.next(2)
	if err != nil {
		return err
	}
	*op = opLuma{
		dg:   int8(buf[0]&lumaGreenMask) - lumaGreenBias,
		drdg: int8(buf[1]>>lumaWidth&lumaMask) - lumaBias,
		dbdg: int8(buf[1]&lumaMask) - lumaBias,
	}
	return nil
}

func (op opLuma) set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA) {
	n = 1
	c.R = previous.R + uint8(op.dg+op.drdg)
	c.G = previous.G + uint8(op.dg)
	c.B = previous.B + uint8(op.dg+op.dbdg)
	c.A = 255
	setPixel(pix, i, c)
	cc.add(c)
	return
}

func (op opLuma) encode(dst []byte) []byte {
	return append(dst,
		byte(opTagLuma)|byte(op.dg+lumaGreenBias),
		byte(op.drdg+lumaBias)<<lumaWidth|byte(op.dbdg+lumaBias))
}

// opRun holds the run length, 1 to maxRun.
type opRun uint8

func newOpRun(r *rasterReader, previous color.NRGBA) chunk {
	var run uint8
	for r.ok && r.c == previous && run < maxRun {
		run++
		r.next()
	}
	if run == 0 {
		return nil
	}
	return (*opRun)(&run)
}

func (op *opRun) decode(r *reader) error {
	b, err := r.readByte()
	*op = opRun(b&runMask + 1)
	return err
}

// set clamps the run to the pixels left in pix.
func (op opRun) set(pix []byte, i int, cc *colorCache, previous color.NRGBA) (n int, c color.NRGBA) {
	n = int(op)
	if left := len(pix)/3 - i; n > left {
		n = left
	}
	c = previous
	for j := i; j < i+n; j++ {
		setPixel(pix, j, c)
	}
	return
}

func (op opRun) encode(dst []byte) []byte {
	return append(dst, byte(opTagRun)|byte(op-1))
}

func decodeChunk(r *reader) (chunk, error) {
	b, err := r.peek()
	if err != nil {
		return nil, err
	}
	var c chunk
	switch tag(b) {
	case opTagRGB:
		c = new(opRGB)
	case opTagRGBA:
		return nil, &UnsupportedChunkError{Tag: b, Offset: r.off}
	default:
		switch tag(b & opTagMask) {
		case opTagIndex:
			c = new(opIndex)
		case opTagDiff:
			c = new(opDiff)
		case opTagLuma:
			c = new(opLuma)
		case opTagRun:
			c = new(opRun)
		}
	}
	return c, c.decode(r)
}

// encodeChunk encodes the chunk starting at the current pixel of r, advancing r
// past every pixel it covers.
func encodeChunk(dst []byte, r *rasterReader, cc *colorCache, previous color.NRGBA) []byte {
	if op := newOpRun(r, previous); op != nil {
		return op.encode(dst)
	}
	if op := newOpIndex(r, cc); op != nil {
		return op.encode(dst)
	}
	cc.add(r.c)
	var op chunk
	if op = newOpDiff(r, previous); op != nil {
	} else if op = newOpLuma(r, previous); op != nil {
	} else {
		op = newOpRGB(r)
	}
	return op.encode(dst)
}
