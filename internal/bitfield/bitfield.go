// Package bitfield decodes the packed bit layouts used by the LZ4 frame
// format: the descriptor flags byte, the block-data byte, and the 32-bit
// block header word. Byte order is little-endian; multi-field bytes are
// packed low-bit-first as specified by the LZ4 frame format.
package bitfield

import "encoding/binary"

// FrameFlags is the decoded form of the frame descriptor's FLG byte.
type FrameFlags struct {
	DictIDPresent        bool
	ContentChecksumPresent bool
	ContentSizePresent   bool
	BlockChecksumPresent bool
	BlockIndependent     bool
	Version              uint8
}

// ParseFrameFlags decodes the FLG byte: [V1 V0 BI BC CS CC R1 DI].
func ParseFrameFlags(b byte) FrameFlags {
	return FrameFlags{
		DictIDPresent:          b&0x01 != 0,
		ContentChecksumPresent: b&0x04 != 0,
		ContentSizePresent:     b&0x08 != 0,
		BlockChecksumPresent:   b&0x10 != 0,
		BlockIndependent:       b&0x20 != 0,
		Version:                (b >> 6) & 0x3,
	}
}

// FlagsReservedBitSet reports whether the reserved bit (bit 1) of the FLG
// byte is non-zero.
func FlagsReservedBitSet(b byte) bool {
	return b&0x02 != 0
}

// BlockData is the decoded form of the frame descriptor's BD byte.
type BlockData struct {
	MaxSizeCode uint8 // 4..7
}

// ParseBlockData decodes the BD byte: [R7 S2 S1 S0 R3 R2 R1 R0].
func ParseBlockData(b byte) BlockData {
	return BlockData{MaxSizeCode: (b >> 4) & 0x7}
}

// BlockDataReservedBitsSet reports whether any reserved bit (low nibble,
// or bit 7) of the BD byte is non-zero.
func BlockDataReservedBitsSet(b byte) bool {
	return b&0x8F != 0
}

// MaxBlockSize maps a max-size code (4..7) to its byte size. ok is false
// for any other code.
func MaxBlockSize(code uint8) (size int, ok bool) {
	switch code {
	case 4:
		return 64 * 1024, true
	case 5:
		return 256 * 1024, true
	case 6:
		return 1 * 1024 * 1024, true
	case 7:
		return 4 * 1024 * 1024, true
	default:
		return 0, false
	}
}

// BlockHeader is the decoded form of a General frame's 32-bit block
// header word.
type BlockHeader struct {
	Size         uint32
	Uncompressed bool
}

// IsEndMark reports whether this header is the zero-valued end-of-frame
// mark.
func (h BlockHeader) IsEndMark() bool {
	return h.Size == 0 && !h.Uncompressed
}

// ParseBlockHeader decodes a little-endian 32-bit block header word: top
// bit is the uncompressed flag, low 31 bits are the size.
func ParseBlockHeader(word []byte) BlockHeader {
	return ParseBlockHeaderWord(binary.LittleEndian.Uint32(word))
}

// ParseBlockHeaderWord is ParseBlockHeader for a word already decoded from
// its little-endian wire bytes, sparing callers that read through
// source.Source's ReadUint32LE a round trip through a byte slice.
func ParseBlockHeaderWord(v uint32) BlockHeader {
	return BlockHeader{
		Size:         v &^ (1 << 31),
		Uncompressed: v&(1<<31) != 0,
	}
}

// EncodeBlockHeader is the inverse of ParseBlockHeader, used by
// internal/testencoder to synthesize fixtures.
func EncodeBlockHeader(h BlockHeader) uint32 {
	v := h.Size &^ (1 << 31)
	if h.Uncompressed {
		v |= 1 << 31
	}
	return v
}
