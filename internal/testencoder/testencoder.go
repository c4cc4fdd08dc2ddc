// Package testencoder is a minimal, test-only LZ4 frame/block encoder used
// to synthesize fixtures for lz4frame's tests and the bench benchmarks. It
// is never imported outside _test.go files and makes
// no attempt at real compression ratios — it exists to produce bit-exact,
// deterministic streams the decoder under test can be checked against.
package testencoder

import (
	"encoding/binary"
	"io"

	"github.com/mjcross/lz4frame/internal/bitfield"
	"github.com/mjcross/lz4frame/internal/frameheader"
	"github.com/mjcross/lz4frame/internal/varint"
	"github.com/mjcross/lz4frame/internal/xxh32"
)

// EncodeLiteralBlock produces a single LZ4 block consisting of one
// literal-only sequence (no match), valid for any length including those
// requiring the variable-length continuation encoding.
func EncodeLiteralBlock(data []byte) []byte {
	nibble, cont := varint.Encode(len(data))
	block := make([]byte, 0, len(data)+len(cont)+1)
	block = append(block, nibble<<4)
	block = append(block, cont...)
	block = append(block, data...)
	return block
}

// EncodeMatchBlock produces a single LZ4 block: a literal run followed by
// exactly one match (offset, matchLen). matchLen must be >= 4. This is the
// building block for exercising overlapping-copy semantics deliberately.
func EncodeMatchBlock(literals []byte, offset, matchLen int) []byte {
	litNibble, litCont := varint.Encode(len(literals))
	mlNibble, mlCont := varint.Encode(matchLen - 4)

	block := make([]byte, 0, len(literals)+len(litCont)+len(mlCont)+3)
	block = append(block, litNibble<<4|mlNibble)
	block = append(block, litCont...)
	block = append(block, literals...)

	var off [2]byte
	binary.LittleEndian.PutUint16(off[:], uint16(offset))
	block = append(block, off[:]...)
	block = append(block, mlCont...)
	return block
}

// FrameOptions controls the optional descriptor fields of an encoded
// General frame.
type FrameOptions struct {
	MaxSizeCode         uint8 // 4..7
	ContentSizePresent  bool
	ContentSize         uint64
	ContentChecksumPresent bool
	ContentChecksum     uint32
	DictionaryIDPresent bool
	DictionaryID        uint32
	BlockChecksumPresent bool
	CorruptChecksum     bool // flips the header checksum byte, for negative tests
}

// WriteGeneralFrame writes a complete General frame: magic, descriptor,
// the given pre-built blocks (each already a valid LZ4 block payload,
// written uncompressed unless compressed[i] is true for its index i),
// the end marker, and the content checksum trailer if requested.
func WriteGeneralFrame(w io.Writer, blocks [][]byte, compressed []bool, opts FrameOptions) error {
	flags := byte(1 << 6) // version 1
	if opts.ContentSizePresent {
		flags |= 0x08
	}
	if opts.ContentChecksumPresent {
		flags |= 0x04
	}
	if opts.BlockChecksumPresent {
		flags |= 0x10
	}
	if opts.DictionaryIDPresent {
		flags |= 0x01
	}
	bd := opts.MaxSizeCode << 4

	checksumInput := []byte{flags, bd}
	var extra []byte
	if opts.ContentSizePresent {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], opts.ContentSize)
		extra = append(extra, b[:]...)
	}
	if opts.DictionaryIDPresent {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], opts.DictionaryID)
		extra = append(extra, b[:]...)
	}
	checksumInput = append(checksumInput, extra...)
	hc := byte(xxh32.Sum(0, checksumInput) >> 8)
	if opts.CorruptChecksum {
		hc ^= 0xFF
	}

	var out []byte
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], frameheader.MagicGeneral)
	out = append(out, magic[:]...)
	out = append(out, flags, bd)
	out = append(out, extra...)
	out = append(out, hc)

	for i, block := range blocks {
		isCompressed := len(compressed) > i && compressed[i]
		header := bitfield.EncodeBlockHeader(bitfield.BlockHeader{
			Size:         uint32(len(block)),
			Uncompressed: !isCompressed,
		})
		var hb [4]byte
		binary.LittleEndian.PutUint32(hb[:], header)
		out = append(out, hb[:]...)
		out = append(out, block...)
		if opts.BlockChecksumPresent {
			out = append(out, 0, 0, 0, 0)
		}
	}

	// End mark.
	out = append(out, 0, 0, 0, 0)

	if opts.ContentChecksumPresent {
		var cc [4]byte
		binary.LittleEndian.PutUint32(cc[:], opts.ContentChecksum)
		out = append(out, cc[:]...)
	}

	_, err := w.Write(out)
	return err
}

// WriteLegacyFrame writes a complete Legacy frame: magic followed by each
// block prefixed with its raw 4-byte LE length.
func WriteLegacyFrame(w io.Writer, blocks [][]byte) error {
	var out []byte
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], frameheader.MagicLegacy)
	out = append(out, magic[:]...)

	for _, block := range blocks {
		var lb [4]byte
		binary.LittleEndian.PutUint32(lb[:], uint32(len(block)))
		out = append(out, lb[:]...)
		out = append(out, block...)
	}

	_, err := w.Write(out)
	return err
}

// WriteSkippableFrame writes a Skippable frame: a magic number in
// [0x184D2A50, 0x184D2A5F] (magicLow4Bits selects which of the 16), a
// 4-byte LE length, and payload.
func WriteSkippableFrame(w io.Writer, magicLow4Bits uint8, payload []byte) error {
	magic := frameheader.MagicSkippableMin + uint32(magicLow4Bits)

	var out []byte
	var m [4]byte
	binary.LittleEndian.PutUint32(m[:], magic)
	out = append(out, m[:]...)

	var lb [4]byte
	binary.LittleEndian.PutUint32(lb[:], uint32(len(payload)))
	out = append(out, lb[:]...)
	out = append(out, payload...)

	_, err := w.Write(out)
	return err
}
