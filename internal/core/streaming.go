package core

// streaming.go prepares a raw file stream for CSV parsing without loading it
// into memory:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools is dropped
//   - invalid UTF-8 bytes are replaced with '?'
//
// Use NewRecordReader to get a csv.Reader with both applied.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader that omits a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' as the stream is read.
// Valid multi-byte sequences, including ones split across reads, pass through.
type UTF8Sanitizer struct {
	src     *bufio.Reader
	pending []byte // encoded bytes that did not fit the caller's buffer
	err     error  // deferred read error
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{src: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	var buf [utf8.UTFMax]byte
	for n < len(p) {
		if s.err != nil {
			break
		}
		r, size, err := s.src.ReadRune()
		if err != nil {
			s.err = err
			break
		}

		enc := buf[:1]
		if r == utf8.RuneError && size == 1 {
			buf[0] = '?'
		} else {
			enc = buf[:utf8.EncodeRune(buf[:], r)]
		}

		c := copy(p[n:], enc)
		n += c
		if c < len(enc) {
			s.pending = append(s.pending, enc[c:]...)
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, s.err
}

// NewRecordReader returns a csv.Reader over r using delimiter, with the BOM
// skipped and invalid UTF-8 sanitised. Every record must have as many fields
// as the header.
func NewRecordReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(NewUTF8Sanitizer(SkipBOM(r)))
	cr.Comma = delimiter
	cr.ReuseRecord = true
	return cr
}
