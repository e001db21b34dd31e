package core

// streaming.go normalizes uploaded text before CSV decoding: a leading
// UTF-8 byte order mark (common in files saved by Excel) is dropped and
// invalid UTF-8 sequences become U+FFFD. Memory use is independent of the
// input size.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

const byteOrderMark = '\uFEFF'

// importReader is the io.Reader returned by NewImportReader.
type importReader struct {
	src     *bufio.Reader
	started bool

	// encoded bytes of the last rune not yet handed to the caller
	pending []byte
}

// NewImportReader wraps r so that reads never yield invalid UTF-8 or a
// leading byte order mark.
func NewImportReader(r io.Reader) io.Reader {
	return &importReader{
		src:     bufio.NewReader(r),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (r *importReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			// Return what we have rather than block on a slow source.
			if n > 0 && r.src.Buffered() == 0 {
				break
			}
			ch, _, err := r.src.ReadRune()
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			if !r.started {
				r.started = true
				if ch == byteOrderMark {
					continue
				}
			}
			// ReadRune reports invalid bytes as utf8.RuneError, which encodes as U+FFFD.
			r.pending = utf8.AppendRune(r.pending[:0], ch)
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

// CountingReader tracks bytes read from an upload for logging.
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

// BytesRead returns the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n
}
