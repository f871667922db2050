package bm25

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Corpus layout, little-endian:
//
//	magic "CPCO" | version u16 | docs uvarint | { terms uvarint | { len uvarint | bytes }... }...
const corpusMagic = "CPCO"

// EncodeCorpus writes a tokenized corpus to w, preserving document order.
func EncodeCorpus(w io.Writer, corpus [][]string) error {
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	enc.bytes([]byte(corpusMagic))
	enc.u16(formatVersion)
	enc.uvarint(uint64(len(corpus)))
	for _, doc := range corpus {
		enc.uvarint(uint64(len(doc)))
		for _, term := range doc {
			enc.uvarint(uint64(len(term)))
			enc.bytes([]byte(term))
		}
	}

	if enc.err != nil {
		return fmt.Errorf("encode corpus: %w", enc.err)
	}
	return bw.Flush()
}

// DecodeCorpus reads a corpus written by EncodeCorpus. Every document is a
// non-nil slice, empty documents included.
func DecodeCorpus(r io.Reader) ([][]string, error) {
	dec := &decoder{r: bufio.NewReader(r)}

	head := dec.bytes(len(corpusMagic))
	if dec.err == nil && string(head) != corpusMagic {
		return nil, fmt.Errorf("%w: bad corpus magic %q", ErrCorrupt, head)
	}
	if v := dec.u16(); dec.err == nil && v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported corpus version %d", ErrCorrupt, v)
	}

	docs := dec.count()
	corpus := make([][]string, 0, capHint(docs))
	for i := 0; i < docs && dec.err == nil; i++ {
		n := dec.count()
		doc := make([]string, 0, capHint(n))
		for j := 0; j < n && dec.err == nil; j++ {
			l := dec.uvarint()
			if l == 0 || l > maxTermLength {
				dec.fail(fmt.Errorf("term length %d", l))
				break
			}
			doc = append(doc, string(dec.bytes(int(l))))
		}
		corpus = append(corpus, doc)
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
	return corpus, nil
}
