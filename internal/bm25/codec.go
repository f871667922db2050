package bm25

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
)

// Encoding layout, little-endian:
//
//	magic "CPBM" | version u16 | k1 f64 | b f64 | epsilon f64 | avgdl f64
//	docs uvarint | docLen uvarint...
//	terms uvarint | { len uvarint | bytes | idf f64 | postings uvarint | { docDelta uvarint | freq uvarint }... }...
//
// Terms are written in sorted order so equal indexes encode to equal bytes.
const (
	magic         = "CPBM"
	formatVersion = 1

	// maxTermLength guards against corrupt length prefixes.
	maxTermLength = 1 << 16
)

// ErrCorrupt indicates the encoded index could not be decoded.
var ErrCorrupt = errors.New("bm25: corrupt index encoding")

// Encode writes the index to w.
func (ix *Index) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	enc.bytes([]byte(magic))
	enc.u16(formatVersion)
	enc.f64(ix.params.K1)
	enc.f64(ix.params.B)
	enc.f64(ix.params.Epsilon)
	enc.f64(ix.avgdl)

	enc.uvarint(uint64(len(ix.docLens)))
	for _, l := range ix.docLens {
		enc.uvarint(uint64(l))
	}

	terms := make([]string, 0, len(ix.postings))
	for term := range ix.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	enc.uvarint(uint64(len(terms)))
	for _, term := range terms {
		enc.uvarint(uint64(len(term)))
		enc.bytes([]byte(term))
		enc.f64(ix.idf[term])

		list := ix.postings[term]
		enc.uvarint(uint64(len(list)))
		prev := uint32(0)
		for _, p := range list {
			enc.uvarint(uint64(p.doc - prev))
			enc.uvarint(uint64(p.freq))
			prev = p.doc
		}
	}

	if enc.err != nil {
		return fmt.Errorf("encode bm25 index: %w", enc.err)
	}
	return bw.Flush()
}

// Decode reads an index written by Encode.
func Decode(r io.Reader) (*Index, error) {
	dec := &decoder{r: bufio.NewReader(r)}

	head := dec.bytes(len(magic))
	if dec.err == nil && string(head) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, head)
	}
	if v := dec.u16(); dec.err == nil && v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	ix := &Index{
		idf:      make(map[string]float64),
		postings: make(map[string][]posting),
	}
	ix.params.K1 = dec.f64()
	ix.params.B = dec.f64()
	ix.params.Epsilon = dec.f64()
	ix.avgdl = dec.f64()

	docs := dec.count()
	ix.docLens = make([]uint32, 0, capHint(docs))
	for i := 0; i < docs && dec.err == nil; i++ {
		ix.docLens = append(ix.docLens, uint32(dec.uvarint()))
	}

	terms := dec.count()
	for i := 0; i < terms && dec.err == nil; i++ {
		n := dec.uvarint()
		if n == 0 || n > maxTermLength {
			dec.fail(fmt.Errorf("term length %d", n))
			break
		}
		term := string(dec.bytes(int(n)))
		ix.idf[term] = dec.f64()

		count := dec.count()
		list := make([]posting, 0, capHint(count))
		doc := uint64(0)
		for j := 0; j < count && dec.err == nil; j++ {
			doc += dec.uvarint()
			freq := dec.uvarint()
			if doc >= uint64(docs) {
				dec.fail(fmt.Errorf("posting for document %d of %d", doc, docs))
				break
			}
			list = append(list, posting{doc: uint32(doc), freq: uint32(freq)})
		}
		ix.postings[term] = list
	}

	if dec.err != nil {
		if errors.Is(dec.err, ErrCorrupt) {
			return nil, dec.err
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, dec.err)
	}
	if _, err := dec.r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return ix, nil
}

// encoder accumulates the first write error.
type encoder struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (e *encoder) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.bytes(e.buf[:2])
}

func (e *encoder) f64(v float64) {
	binary.LittleEndian.PutUint64(e.buf[:8], math.Float64bits(v))
	e.bytes(e.buf[:8])
}

func (e *encoder) uvarint(v uint64) {
	n := binary.PutUvarint(e.buf[:], v)
	e.bytes(e.buf[:n])
}

// decoder accumulates the first read error; reads after an error return zero values.
type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(err)
		return nil
	}
	return b
}

func (d *decoder) u16() uint16 {
	b := d.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) f64() float64 {
	b := d.bytes(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		d.fail(err)
		return 0
	}
	return v
}

// count reads a collection length, rejecting values that cannot be real.
func (d *decoder) count() int {
	v := d.uvarint()
	if v > math.MaxInt32 {
		d.fail(fmt.Errorf("count %d out of range", v))
		return 0
	}
	return int(v)
}

// capHint bounds preallocation so a corrupt count cannot exhaust memory.
func capHint(n int) int {
	const limit = 1 << 16
	if n > limit {
		return limit
	}
	return n
}
