package protocol

import (
	"bytes"
	"errors"
	"strings"
)

// DefaultMaxFrameBytes bounds how much of a single line the framer will
// buffer. The protocol itself imposes no line-length limit, but the buffer is
// fed directly from the network with no backpressure signal, so an explicit
// cap is required.
const DefaultMaxFrameBytes = 4096

// ErrFrameTooLong is returned by Framer.Push when a single line exceeds the
// configured maximum. The connection should be told and closed; the framer is
// unusable afterwards.
var ErrFrameTooLong = errors.New("protocol: frame exceeds maximum length")

// Framer turns an arbitrary stream of byte chunks into complete
// newline-delimited frames. Partial trailing data is carried over between
// Push calls. A Framer is owned by a single connection and is not safe for
// concurrent use.
type Framer struct {
	buf      []byte
	maxBytes int
}

// NewFramer returns a Framer that rejects lines longer than maxBytes.
// A maxBytes of zero or less selects DefaultMaxFrameBytes.
func NewFramer(maxBytes int) *Framer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFrameBytes
	}
	return &Framer{maxBytes: maxBytes}
}

// Push appends chunk to the carry-over buffer and returns every complete
// frame now available, trimmed of surrounding whitespace. Frames that are
// empty after trimming are dropped. Push returns ErrFrameTooLong if the
// buffered partial line grows past the configured maximum.
func (f *Framer) Push(chunk []byte) ([]string, error) {
	f.buf = append(f.buf, chunk...)

	var frames []string
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSpace(string(f.buf[:idx]))
		f.buf = f.buf[idx+1:]
		if line != "" {
			frames = append(frames, line)
		}
	}

	if len(f.buf) > f.maxBytes {
		return frames, ErrFrameTooLong
	}
	return frames, nil
}

// Pending reports how many bytes of partial frame are currently buffered.
func (f *Framer) Pending() int {
	return len(f.buf)
}
