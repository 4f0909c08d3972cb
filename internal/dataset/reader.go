package dataset

// reader.go cleans CSV bytes on their way into the parser.
//
// Published open-data CSVs are often saved by spreadsheet tools that prepend a
// UTF-8 BOM or mix in Windows-1252 bytes. Both are handled while streaming:
//
//   - bomReader drops a leading 0xEF 0xBB 0xBF
//   - latin1Fallback re-encodes bytes that are not valid UTF-8 as Windows-1252
//   - countingReader records how many bytes the parser consumed
//
// cleanReader applies them in that order.

import (
	"bufio"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips a UTF-8 byte order mark at the start of the stream.
type bomReader struct {
	br      *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{br: bufio.NewReader(r)}
}

func (r *bomReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if len(head) == len(utf8BOM) && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// latin1Fallback passes valid UTF-8 through and decodes every other byte as
// Windows-1252, a superset of ISO-8859-1 for printable characters.
// A multi-byte rune split across reads is held back until it completes.
type latin1Fallback struct {
	r       io.Reader
	raw     []byte // undecoded input, at most one partial rune between reads
	pending []byte // decoded output not yet returned
	chunk   []byte
	eof     bool
}

func newLatin1Fallback(r io.Reader) *latin1Fallback {
	return &latin1Fallback{r: r, chunk: make([]byte, 4096)}
}

func (s *latin1Fallback) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.pending) == 0 {
		if s.eof && len(s.raw) == 0 {
			return 0, io.EOF
		}
		if !s.eof {
			n, err := s.r.Read(s.chunk)
			s.raw = append(s.raw, s.chunk[:n]...)
			if err == io.EOF {
				s.eof = true
			} else if err != nil {
				return 0, err
			}
		}
		s.decode()
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// decode moves every complete rune from raw to pending.
func (s *latin1Fallback) decode() {
	out := s.pending[:0]
	i := 0
	for i < len(s.raw) {
		c := s.raw[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		if !s.eof && !utf8.FullRune(s.raw[i:]) {
			break
		}
		r, size := utf8.DecodeRune(s.raw[i:])
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, charmap.Windows1252.DecodeByte(c))
		} else {
			out = append(out, s.raw[i:i+size]...)
		}
		i += size
	}
	s.pending = out
	s.raw = append(s.raw[:0], s.raw[i:]...)
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// cleanReader wraps r with BOM removal, Windows-1252 fallback and byte counting.
func cleanReader(r io.Reader) *countingReader {
	return &countingReader{r: newLatin1Fallback(newBOMReader(r))}
}
