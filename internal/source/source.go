// Package source implements the byte-oriented input seam the streaming
// engine requires (spec.md §6): read an exact number of bytes, skip N
// bytes forward, read little-endian integers — all over a plain
// io.Reader, with short-read and EOF distinguished the way io.ReadFull
// already does.
package source

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Source is the consumed interface of spec.md §6.
type Source interface {
	// ReadFull reads exactly len(buf) bytes. A short read is reported as
	// io.ErrUnexpectedEOF; a read that returns zero bytes at a clean
	// boundary is reported as io.EOF.
	ReadFull(buf []byte) (int, error)
	// Skip advances n bytes forward without exposing their contents.
	Skip(n int64) error
	ReadUint8() (uint8, error)
	ReadUint32LE() (uint32, error)
	ReadUint64LE() (uint64, error)
}

type reader struct {
	r   *bufio.Reader
	tmp [8]byte
}

// New wraps r as a buffered Source. The frame and block headers this
// package reads are a handful of bytes at a time; against an unbuffered
// io.Reader (a plain *os.File or net.Conn, exactly what spec.md §5's
// blocking-I/O source targets) each of those reads would otherwise cost
// its own syscall. New always wraps r in a bufio.Reader rather than
// leaving buffering to the caller, so Skip also reads through it instead
// of seeking the underlying reader directly — seeking around a buffered
// reader's already-filled buffer would desync the two.
func New(r io.Reader) Source {
	return &reader{r: bufio.NewReader(r)}
}

func (s *reader) ReadFull(buf []byte) (int, error) {
	return io.ReadFull(s.r, buf)
}

func (s *reader) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, s.r, n)
	return err
}

func (s *reader) ReadUint8() (uint8, error) {
	if _, err := io.ReadFull(s.r, s.tmp[:1]); err != nil {
		return 0, err
	}
	return s.tmp[0], nil
}

func (s *reader) ReadUint32LE() (uint32, error) {
	if _, err := io.ReadFull(s.r, s.tmp[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s.tmp[:4]), nil
}

func (s *reader) ReadUint64LE() (uint64, error) {
	if _, err := io.ReadFull(s.r, s.tmp[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s.tmp[:8]), nil
}
