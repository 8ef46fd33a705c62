package tabular

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// invalidByte stands in for each byte that does not start a valid UTF-8
// sequence. It is one byte wide, so offsets before and after a bad byte
// line up with the raw input.
const invalidByte = '?'

// cleanReader yields the input with a leading UTF-8 BOM removed and every
// invalid UTF-8 byte replaced by invalidByte. Multi-byte runes split across
// underlying reads are reassembled by bufio before decoding.
type cleanReader struct {
	br      *bufio.Reader
	checked bool
}

func newCleanReader(r io.Reader) *cleanReader {
	return &cleanReader{br: bufio.NewReaderSize(r, 64<<10)}
}

func (c *cleanReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !c.checked {
		c.checked = true
		head, err := c.br.Peek(len(utf8BOM))
		if bytes.Equal(head, utf8BOM) {
			_, _ = c.br.Discard(len(utf8BOM))
		} else if err != nil && len(head) == 0 {
			return 0, err
		}
	}

	n := 0
	for n < len(p) {
		// Hand back what we have rather than block on the next fill.
		if n > 0 && c.br.Buffered() == 0 {
			break
		}
		r, size, err := c.br.ReadRune()
		if err != nil {
			return n, err
		}
		if r == utf8.RuneError && size == 1 {
			r = invalidByte
		}
		if utf8.RuneLen(r) > len(p)-n {
			_ = c.br.UnreadRune()
			if n == 0 {
				return 0, io.ErrShortBuffer
			}
			break
		}
		n += utf8.EncodeRune(p[n:], r)
	}
	return n, nil
}

// CountingReader counts the raw bytes pulled through it.
type CountingReader struct {
	r io.Reader
	n int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// BytesRead reports how many bytes have been read so far.
func (c *CountingReader) BytesRead() int64 { return c.n }
