// Package frameheader classifies LZ4 frame magic numbers (General, Legacy,
// Skippable) and parses the General frame descriptor, including header
// checksum verification.
package frameheader

import (
	"encoding/binary"
	"errors"

	"github.com/mjcross/lz4frame/internal/bitfield"
	"github.com/mjcross/lz4frame/internal/source"
	"github.com/mjcross/lz4frame/internal/xxh32"
)

// Magic numbers, little-endian on the wire.
const (
	MagicGeneral      uint32 = 0x184D2204
	MagicLegacy       uint32 = 0x184C2102
	MagicSkippableMin uint32 = 0x184D2A50
	MagicSkippableMax uint32 = 0x184D2A5F
)

var (
	ErrInvalidMagic        = errors.New("frameheader: invalid magic number")
	ErrUnsupportedVersion  = errors.New("frameheader: unsupported version")
	ErrReservedBitsNonZero = errors.New("frameheader: reserved bits non-zero")
	ErrInvalidBlockSize    = errors.New("frameheader: invalid block size")
	ErrBadFrameHeader      = errors.New("frameheader: header checksum mismatch")
)

// Kind tags which decodable frame variant a magic number identified.
// Skippable frames are consumed inside ReadNext and never reported as a Kind.
type Kind int

const (
	KindGeneral Kind = iota
	KindLegacy
)

// Descriptor is a fully parsed General-frame descriptor.
type Descriptor struct {
	Flags               bitfield.FrameFlags
	MaxBlockSize         int
	ContentSize          uint64
	ContentSizePresent   bool
	DictionaryID         uint32
	DictionaryIDPresent  bool
	HeaderChecksum       byte
}

// IsFrameMagic reports whether v is a recognized frame magic number
// (General, Legacy, or any Skippable variant). A Legacy frame carries no
// explicit end-of-frame marker; per spec.md §9 option (a), a block-length
// field that collides with a frame magic signals that the Legacy frame has
// ended and a new frame begins at that position instead.
func IsFrameMagic(v uint32) bool {
	return v == MagicGeneral || v == MagicLegacy || (v >= MagicSkippableMin && v <= MagicSkippableMax)
}

// ReadNext reads the next frame's magic number, transparently skipping any
// number of Skippable frames in the way. It returns the frame kind and,
// for General frames, the parsed descriptor (nil for Legacy). io.EOF from
// src signals a clean end of the frame sequence and is returned unwrapped
// so callers can tell it apart from a mid-frame error.
//
// onSkip, if non-nil, is invoked once per Skippable frame encountered
// along the way, with its magic number and declared payload length, so a
// caller can log the skip.
func ReadNext(src source.Source, verifyChecksum bool, onSkip func(magic, length uint32)) (Kind, *Descriptor, error) {
	magic, err := src.ReadUint32LE()
	if err != nil {
		return 0, nil, err
	}
	return ReadNextFromMagic(src, verifyChecksum, magic, onSkip)
}

// ReadNextFromMagic behaves like ReadNext but starts from a magic number
// already read from src, rather than reading a fresh one. It exists for
// Legacy-frame termination: when a block-length field turns out to equal
// a frame magic (see IsFrameMagic), the caller has already consumed those
// 4 bytes and must hand them back in rather than read past them.
func ReadNextFromMagic(src source.Source, verifyChecksum bool, magic uint32, onSkip func(magic, length uint32)) (Kind, *Descriptor, error) {
	for {
		switch {
		case magic == MagicGeneral:
			desc, err := parseDescriptor(src, verifyChecksum)
			if err != nil {
				return 0, nil, err
			}
			return KindGeneral, desc, nil

		case magic == MagicLegacy:
			return KindLegacy, nil, nil

		case magic >= MagicSkippableMin && magic <= MagicSkippableMax:
			length, err := src.ReadUint32LE()
			if err != nil {
				return 0, nil, err
			}
			if err := src.Skip(int64(length)); err != nil {
				return 0, nil, err
			}
			if onSkip != nil {
				onSkip(magic, length)
			}

			magic, err = src.ReadUint32LE()
			if err != nil {
				return 0, nil, err
			}

		default:
			return 0, nil, ErrInvalidMagic
		}
	}
}

func parseDescriptor(src source.Source, verifyChecksum bool) (*Descriptor, error) {
	flagsByte, err := src.ReadUint8()
	if err != nil {
		return nil, err
	}
	flags := bitfield.ParseFrameFlags(flagsByte)
	if flags.Version != 1 {
		return nil, ErrUnsupportedVersion
	}

	bdByte, err := src.ReadUint8()
	if err != nil {
		return nil, err
	}
	if bitfield.BlockDataReservedBitsSet(bdByte) {
		return nil, ErrReservedBitsNonZero
	}
	bd := bitfield.ParseBlockData(bdByte)
	maxSize, ok := bitfield.MaxBlockSize(bd.MaxSizeCode)
	if !ok {
		return nil, ErrInvalidBlockSize
	}

	desc := &Descriptor{Flags: flags, MaxBlockSize: maxSize}

	checksumInput := []byte{flagsByte, bdByte}

	if flags.ContentSizePresent {
		v, err := src.ReadUint64LE()
		if err != nil {
			return nil, err
		}
		desc.ContentSize = v
		desc.ContentSizePresent = true
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		checksumInput = append(checksumInput, b[:]...)
	}

	if flags.DictIDPresent {
		v, err := src.ReadUint32LE()
		if err != nil {
			return nil, err
		}
		desc.DictionaryID = v
		desc.DictionaryIDPresent = true
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		checksumInput = append(checksumInput, b[:]...)
	}

	hc, err := src.ReadUint8()
	if err != nil {
		return nil, err
	}
	desc.HeaderChecksum = hc

	if verifyChecksum {
		want := byte(xxh32.Sum(0, checksumInput) >> 8)
		if want != hc {
			return nil, ErrBadFrameHeader
		}
	}

	return desc, nil
}
