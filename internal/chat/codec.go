package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineReader reads newline-terminated text lines from a connection.
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line with surrounding whitespace removed.
// ErrEndOfStream is returned once the peer has closed its side and no
// buffered bytes remain; any other failure is wrapped.
func (lr *LineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err == nil {
		return strings.TrimSpace(line), nil
	}
	if errors.Is(err, io.EOF) {
		if line != "" {
			// last line without newline
			return strings.TrimSpace(line), nil
		}
		return "", ErrEndOfStream
	}
	return "", fmt.Errorf("read: %w", err)
}
