// Package lz4frame implements a streaming decompressor for the LZ4 Frame
// format: General frames (with their optional content size, dictionary ID,
// and checksum fields), Legacy frames, transparent Skippable-frame
// skipping, and concatenation of any number of frames back to back.
package lz4frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/mjcross/lz4frame/internal/bitfield"
	"github.com/mjcross/lz4frame/internal/block"
	"github.com/mjcross/lz4frame/internal/frameheader"
	"github.com/mjcross/lz4frame/internal/source"
)

// legacyMaxBlockSize is the fixed block size ceiling for Legacy frames,
// which carry no frame descriptor to declare one.
const legacyMaxBlockSize = 8 * 1024 * 1024

type state int

const (
	stateIdle state = iota
	stateInBlockStream
	stateDraining
	stateDone
)

// Reader decompresses an LZ4 Frame stream incrementally, in the style of
// bufio.Reader: Read fills the caller's buffer across block and frame
// boundaries, transparently skipping Skippable frames and walking any
// number of concatenated frames until the underlying source reaches a
// clean end of stream.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src  source.Source
	opts options

	state state

	kind         frameheader.Kind
	desc         *frameheader.Descriptor
	maxBlockSize int

	compBuf []byte // staging buffer for one block's compressed payload
	outBuf  []byte // decoded block buffer, drained by Read
	outPos  int
	outLen  int

	contentChecksum        uint32
	contentChecksumPresent bool

	// pendingMagic holds a 4-byte value already read from src by
	// decodeLegacyBlockInto that turned out to be a frame magic rather
	// than a block length (see IsFrameMagic); beginFrame consumes it
	// instead of reading a fresh magic from src.
	pendingMagic     uint32
	havePendingMagic bool

	loggedOverlap bool
	closed        bool
}

// NewReader constructs a Reader over r. No bytes are read from r until the
// first call to Read.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Reader{src: source.New(r), opts: o, state: stateIdle}
}

// ContentSize reports the current (or most recently read) frame's declared
// uncompressed content size, if its descriptor carried one. It is only
// meaningful for General frames.
func (r *Reader) ContentSize() (uint64, bool) {
	if r.desc == nil || !r.desc.ContentSizePresent {
		return 0, false
	}
	return r.desc.ContentSize, true
}

// DictionaryID reports the current frame's declared dictionary ID, if its
// descriptor carried one. Dictionary-assisted decoding is not implemented;
// frames that declare a dictionary ID are decoded as if no dictionary were
// in effect.
func (r *Reader) DictionaryID() (uint32, bool) {
	if r.desc == nil || !r.desc.DictionaryIDPresent {
		return 0, false
	}
	return r.desc.DictionaryID, true
}

// ContentChecksum reports the content checksum trailing the most recently
// fully drained frame, if its descriptor declared one present. The value
// is returned as read from the stream; Read does not compute the running
// content hash and does not fail a frame whose trailer disagrees with it.
func (r *Reader) ContentChecksum() (uint32, bool) {
	return r.contentChecksum, r.contentChecksumPresent
}

// Close releases the Reader and its internal buffers. It does not close the
// underlying io.Reader.
func (r *Reader) Close() error {
	r.closed = true
	r.state = stateDone
	r.compBuf, r.outBuf = nil, nil
	r.outPos, r.outLen = 0, 0
	return nil
}

// Read implements io.Reader. It returns io.EOF only when the underlying
// source reaches a clean end of the frame sequence, i.e. after the last
// concatenated frame has been fully drained and no further magic number
// follows. A source that ends in the middle of a frame yields
// ErrEndOfStream instead.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrReaderClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(p) {
		if r.outPos < r.outLen {
			n := copy(p[total:], r.outBuf[r.outPos:r.outLen])
			r.outPos += n
			total += n
			continue
		}

		switch r.state {
		case stateDone:
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF

		case stateIdle:
			if err := r.beginFrame(); err != nil {
				if total > 0 && errors.Is(err, io.EOF) {
					return total, nil
				}
				return total, err
			}

		case stateInBlockStream:
			remaining := p[total:]
			if len(remaining) >= r.maxBlockSize {
				// Fast path: decode directly into the caller's buffer,
				// skipping the intermediate outBuf copy entirely.
				n, done, err := r.decodeBlockInto(remaining)
				total += n
				if err != nil {
					return total, err
				}
				if done {
					r.state = stateDraining
				}
				continue
			}

			n, done, err := r.decodeBlockInto(r.outBuf[:cap(r.outBuf)])
			if err != nil {
				return total, err
			}
			r.outPos, r.outLen = 0, n
			if done {
				r.state = stateDraining
			}

		case stateDraining:
			if err := r.endFrame(); err != nil {
				return total, err
			}
			r.state = stateIdle
		}
	}
	return total, nil
}

func (r *Reader) beginFrame() error {
	onSkip := func(magic, length uint32) {
		r.opts.logger.WithField("magic", magic).WithField("length", length).Debug("lz4frame: skipped skippable frame")
	}

	var kind frameheader.Kind
	var desc *frameheader.Descriptor
	var err error
	if r.havePendingMagic {
		r.havePendingMagic = false
		kind, desc, err = frameheader.ReadNextFromMagic(r.src, r.opts.verifyChecksum, r.pendingMagic, onSkip)
	} else {
		kind, desc, err = frameheader.ReadNext(r.src, r.opts.verifyChecksum, onSkip)
	}
	if err != nil {
		return err
	}

	r.kind = kind
	r.desc = desc
	r.loggedOverlap = false
	r.contentChecksumPresent = false

	switch kind {
	case frameheader.KindGeneral:
		r.maxBlockSize = desc.MaxBlockSize
		r.opts.logger.WithField("max_block_size", r.maxBlockSize).Debug("lz4frame: entering general frame")
	case frameheader.KindLegacy:
		r.maxBlockSize = legacyMaxBlockSize
		r.opts.logger.Debug("lz4frame: entering legacy frame")
	}

	if cap(r.outBuf) < r.maxBlockSize {
		r.outBuf = make([]byte, r.maxBlockSize)
	}
	r.outPos, r.outLen = 0, 0
	r.state = stateInBlockStream
	return nil
}

func (r *Reader) endFrame() error {
	if r.kind == frameheader.KindGeneral && r.desc.Flags.ContentChecksumPresent {
		v, err := r.src.ReadUint32LE()
		if err != nil {
			return wrapShortRead(err)
		}
		r.contentChecksum = v
		r.contentChecksumPresent = true
	}
	return nil
}

func (r *Reader) decodeBlockInto(dst []byte) (produced int, frameDone bool, err error) {
	if r.kind == frameheader.KindLegacy {
		return r.decodeLegacyBlockInto(dst)
	}
	return r.decodeGeneralBlockInto(dst)
}

func (r *Reader) decodeGeneralBlockInto(dst []byte) (int, bool, error) {
	word, err := r.src.ReadUint32LE()
	if err != nil {
		return 0, false, wrapShortRead(err)
	}
	bh := bitfield.ParseBlockHeaderWord(word)
	if bh.IsEndMark() {
		return 0, true, nil
	}
	if int(bh.Size) > r.maxBlockSize {
		return 0, false, ErrBlockTooLarge
	}

	payload := r.stagePayload(int(bh.Size))
	if _, err := r.src.ReadFull(payload); err != nil {
		return 0, false, wrapPayloadShortRead(err)
	}
	if r.desc.Flags.BlockChecksumPresent {
		if _, err := r.src.ReadUint32LE(); err != nil {
			return 0, false, wrapShortRead(err)
		}
	}

	return r.decodePayload(dst, payload, bh.Uncompressed)
}

func (r *Reader) decodeLegacyBlockInto(dst []byte) (int, bool, error) {
	length, err := r.src.ReadUint32LE()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// A Legacy frame has no end-of-frame marker; a true EOF
			// while reading the next block's length prefix is one of
			// the two valid terminators for it (the other is below).
			return 0, true, nil
		}
		return 0, false, wrapShortRead(err)
	}
	if frameheader.IsFrameMagic(length) {
		// The "block length" just read is actually the next frame's
		// magic number: this stream concatenates another frame
		// (Legacy, General, or Skippable) directly after this one with
		// no intervening EOF. Per spec.md §9 option (a), that collision
		// is itself the Legacy end-of-frame signal; hand the 4 bytes
		// already consumed back to beginFrame instead of re-reading them.
		r.pendingMagic = length
		r.havePendingMagic = true
		return 0, true, nil
	}
	if int(length) > r.maxBlockSize {
		return 0, false, ErrBlockTooLarge
	}

	payload := r.stagePayload(int(length))
	if _, err := r.src.ReadFull(payload); err != nil {
		return 0, false, wrapPayloadShortRead(err)
	}

	return r.decodePayload(dst, payload, false)
}

func (r *Reader) stagePayload(size int) []byte {
	if cap(r.compBuf) < size {
		r.compBuf = make([]byte, size)
	}
	return r.compBuf[:size]
}

func (r *Reader) decodePayload(dst, payload []byte, uncompressed bool) (int, bool, error) {
	if uncompressed {
		if len(dst) < len(payload) {
			return 0, false, block.ErrOutputOverrun
		}
		return copy(dst, payload), false, nil
	}

	produced, _, overlapped, err := block.Decode(dst, payload)
	if err != nil {
		return produced, false, err
	}
	if overlapped && !r.loggedOverlap {
		r.loggedOverlap = true
		r.opts.logger.Debug("lz4frame: block decode fell back to the overlapping-copy path")
	}
	return produced, false, nil
}

// wrapShortRead maps an EOF encountered while reading frame-level
// structure (a block header word, a block checksum, a content checksum
// trailer) to ErrEndOfStream: these positions are never a valid place for
// the stream to end.
func wrapShortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrEndOfStream, err)
	}
	return err
}

// wrapPayloadShortRead maps a truncated read of a block's declared
// compressed payload to ErrShortRead, distinguishing "the block header
// promised N bytes but the source ran out" from a structural EOF.
func wrapPayloadShortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return err
}
