package lz4frame

import "errors"

var (
	// ErrShortRead is returned when a compressed block's payload is
	// truncated before the declared block size is reached.
	ErrShortRead = errors.New("lz4frame: short read on block payload")
	// ErrEndOfStream is returned when the underlying source reaches EOF
	// at a non-terminal position (mid-frame), as opposed to the clean
	// end-of-stream signaled by Read returning (0, io.EOF) at a frame
	// boundary.
	ErrEndOfStream = errors.New("lz4frame: unexpected end of stream mid-frame")
	// ErrBlockTooLarge is returned when a declared block size exceeds the
	// frame's max block size.
	ErrBlockTooLarge = errors.New("lz4frame: block size exceeds frame maximum")
	// ErrReaderClosed is returned by Read after Close has been called.
	ErrReaderClosed = errors.New("lz4frame: read from closed reader")
)
