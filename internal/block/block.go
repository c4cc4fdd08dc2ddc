// Package block decodes a single LZ4 block: a token stream of literal runs
// and length-encoded back-references. It performs no frame-level parsing;
// callers (the lz4frame streaming engine) supply one block's compressed
// bytes and a destination buffer sized for the frame's max block size.
package block

import (
	"encoding/binary"
	"errors"

	"github.com/mjcross/lz4frame/internal/cpufeat"
	"github.com/mjcross/lz4frame/internal/varint"
)

var (
	// ErrIncompleteData is returned when a literal run or a length
	// continuation is truncated mid-block.
	ErrIncompleteData = errors.New("block: incomplete data")
	// ErrNotEnoughData is returned when fewer bytes than needed remain for
	// a match offset.
	ErrNotEnoughData = errors.New("block: not enough data for match offset")
	// ErrInvalidOffset is returned when a match's offset is zero, or
	// points before the start of the block's decoded output so far.
	ErrInvalidOffset = errors.New("block: invalid match offset")
	// ErrOutputOverrun is returned when a block, if fully decoded, would
	// write past the caller-supplied destination buffer.
	ErrOutputOverrun = errors.New("block: output overrun")
)

// minBulkCopyLen is the smallest non-overlapping copy length for which
// the widened-stride path is worth the branch over a plain copy().
const minBulkCopyLen = 32

// Decode decodes one compressed LZ4 block from src into dst, writing
// starting at dst[0]. dst must have enough capacity for the fully decoded
// block; ErrOutputOverrun is returned otherwise. It returns the number of
// bytes produced in dst, the number of bytes of src consumed, and whether
// at least one match in the block had offset < match_length (the
// overlapping-copy case, which always uses the scalar byte-by-byte loop
// regardless of CPU feature detection) — the streaming engine uses this to
// log a one-time diagnostic about the bulk-copy fast path being bypassed.
func Decode(dst []byte, src []byte) (produced int, consumed int, overlapped bool, err error) {
	wide := cpufeat.Detect().WideCopy

	srcPos, dstPos := 0, 0
	for srcPos < len(src) {
		token := src[srcPos]
		srcPos++

		litLen, n, verr := varint.Decode(token>>4, src[srcPos:])
		srcPos += n
		if verr != nil {
			// Copy whatever literal bytes remain, then report truncation.
			avail := len(src) - srcPos
			if avail > litLen {
				avail = litLen
			}
			if dstPos+avail > len(dst) {
				return dstPos, srcPos, overlapped, ErrOutputOverrun
			}
			dstPos += copyBulk(dst[dstPos:], src[srcPos:srcPos+avail], wide)
			srcPos += avail
			return dstPos, srcPos, overlapped, ErrIncompleteData
		}

		if srcPos+litLen > len(src) {
			avail := len(src) - srcPos
			if dstPos+avail > len(dst) {
				return dstPos, srcPos, overlapped, ErrOutputOverrun
			}
			dstPos += copyBulk(dst[dstPos:], src[srcPos:srcPos+avail], wide)
			srcPos += avail
			return dstPos, srcPos, overlapped, ErrIncompleteData
		}

		if dstPos+litLen > len(dst) {
			return dstPos, srcPos, overlapped, ErrOutputOverrun
		}
		dstPos += copyBulk(dst[dstPos:], src[srcPos:srcPos+litLen], wide)
		srcPos += litLen

		if srcPos >= len(src) {
			// Trailing sequence may omit the match entirely.
			return dstPos, srcPos, overlapped, nil
		}

		if srcPos+2 > len(src) {
			return dstPos, srcPos, overlapped, ErrNotEnoughData
		}
		offset := int(binary.LittleEndian.Uint16(src[srcPos:]))
		srcPos += 2

		matchLen, n, verr := varint.Decode(token&0x0F, src[srcPos:])
		srcPos += n
		matchLen += 4
		if verr != nil {
			return dstPos, srcPos, overlapped, ErrIncompleteData
		}

		if offset < 1 || offset > dstPos {
			return dstPos, srcPos, overlapped, ErrInvalidOffset
		}
		if dstPos+matchLen > len(dst) {
			return dstPos, srcPos, overlapped, ErrOutputOverrun
		}

		n, isOverlap := applyMatch(dst, dstPos, offset, matchLen, wide)
		dstPos += n
		overlapped = overlapped || isOverlap
	}

	return dstPos, srcPos, overlapped, nil
}

// copyBulk copies src into dst, which are always non-overlapping at this
// call site (dst is the unwritten tail of the output buffer; src is
// either compressed input or an earlier, already-final region of the
// output consulted by applyMatch's non-overlapping branch). When wide is
// set and the run is long enough to amortize the stride, it copies 8
// bytes at a time instead of relying solely on copy()'s one-shot memmove;
// this is a throughput choice only, both paths produce identical bytes.
func copyBulk(dst, src []byte, wide bool) int {
	n := len(src)
	if !wide || n < minBulkCopyLen {
		return copy(dst, src)
	}

	i := 0
	for ; i+8 <= n; i += 8 {
		binary.LittleEndian.PutUint64(dst[i:], binary.LittleEndian.Uint64(src[i:]))
	}
	i += copy(dst[i:n], src[i:n])
	return i
}

// applyMatch copies matchLen bytes from dst[dstPos-offset:] to
// dst[dstPos:]. When offset >= matchLen the source and destination ranges
// cannot overlap and a bulk copy is safe. When offset < matchLen the
// ranges overlap and the copy MUST proceed byte-by-byte in increasing
// index order so that offset=1 correctly replicates the preceding byte
// matchLen times (run-length expansion). It returns matchLen and whether
// the overlapping (scalar-only) path was taken.
func applyMatch(dst []byte, dstPos, offset, matchLen int, wide bool) (n int, overlapped bool) {
	if offset >= matchLen {
		copyBulk(dst[dstPos:dstPos+matchLen], dst[dstPos-offset:dstPos], wide)
		return matchLen, false
	}

	// Overlapping copy: a byte-by-byte forward loop is the only copy
	// shape that reproduces run-length expansion (e.g. offset=1 repeats
	// the preceding byte) correctly; no bulk memmove is substituted here.
	src := dstPos - offset
	for i := 0; i < matchLen; i++ {
		dst[dstPos+i] = dst[src+i]
	}
	return matchLen, true
}
