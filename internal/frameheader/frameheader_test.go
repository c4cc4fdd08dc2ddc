package frameheader

import (
	"bytes"
	"testing"

	"github.com/mjcross/lz4frame/internal/source"
	"github.com/mjcross/lz4frame/internal/xxh32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "04 22 4D 18 40 40 C0" is a General frame header with FLG=0x40
// (version 1, no optional fields), BD=0x40 (max size code 4, 64KB), and
// header checksum 0xC0, the second byte of XXH32(0x40 0x40).
func TestReadNextGeneralFrame(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x40, 0xC0}))

	kind, desc, err := ReadNext(src, true, nil)
	require.NoError(t, err)
	assert.Equal(t, KindGeneral, kind)
	require.NotNil(t, desc)
	assert.Equal(t, uint8(1), desc.Flags.Version)
	assert.Equal(t, 64*1024, desc.MaxBlockSize)
	assert.False(t, desc.ContentSizePresent)
	assert.False(t, desc.DictionaryIDPresent)
}

func TestReadNextLegacyFrame(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x02, 0x21, 0x4C, 0x18}))

	kind, desc, err := ReadNext(src, true, nil)
	require.NoError(t, err)
	assert.Equal(t, KindLegacy, kind)
	assert.Nil(t, desc)
}

func TestReadNextInvalidMagic(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	_, _, err := ReadNext(src, true, nil)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

// TestReadNextSkipsSkippableFrame is spec.md's S5 scenario: a skippable
// frame (magic 0x184D2A50, length 4, payload DEADBEEF) followed by a
// General frame header.
func TestReadNextSkipsSkippableFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x50, 0x2A, 0x4D, 0x18}) // skippable magic
	buf.Write([]byte{0x04, 0x00, 0x00, 0x00}) // length 4
	buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF}) // payload
	buf.Write([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x40, 0xC0})

	var skips [][2]uint32
	onSkip := func(magic, length uint32) { skips = append(skips, [2]uint32{magic, length}) }

	src := source.New(&buf)
	kind, desc, err := ReadNext(src, true, onSkip)
	require.NoError(t, err)
	assert.Equal(t, KindGeneral, kind)
	assert.Equal(t, 64*1024, desc.MaxBlockSize)
	assert.Equal(t, [][2]uint32{{MagicSkippableMin, 4}}, skips)
}

func TestReadNextSkipsChainedSkippableFrames(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		buf.Write([]byte{0x5F, 0x2A, 0x4D, 0x18}) // magic 0x184D2A5F
		buf.Write([]byte{0x02, 0x00, 0x00, 0x00})
		buf.Write([]byte{0xAA, 0xBB})
	}
	buf.Write([]byte{0x02, 0x21, 0x4C, 0x18}) // legacy

	skipCount := 0
	onSkip := func(magic, length uint32) { skipCount++ }

	src := source.New(&buf)
	kind, _, err := ReadNext(src, true, onSkip)
	require.NoError(t, err)
	assert.Equal(t, KindLegacy, kind)
	assert.Equal(t, 3, skipCount)
}

func TestReadNextBadChecksum(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x40, 0xFF}))
	_, _, err := ReadNext(src, true, nil)
	assert.ErrorIs(t, err, ErrBadFrameHeader)
}

func TestReadNextSkipsChecksumWhenDisabled(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x40, 0xFF}))
	_, desc, err := ReadNext(src, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 64*1024, desc.MaxBlockSize)
}

func TestReadNextUnsupportedVersion(t *testing.T) {
	// FLG version bits = 0 -> unsupported.
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x00, 0x40, 0x00}))
	_, _, err := ReadNext(src, true, nil)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReadNextReservedBitsNonZero(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x41, 0x00}))
	_, _, err := ReadNext(src, true, nil)
	assert.ErrorIs(t, err, ErrReservedBitsNonZero)
}

func TestReadNextInvalidBlockSize(t *testing.T) {
	// block size code 3 (bd=0x30) is outside 4..7.
	src := source.New(bytes.NewReader([]byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x30, 0x00}))
	_, _, err := ReadNext(src, true, nil)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestReadNextContentSizeAndDictID(t *testing.T) {
	// FLG: version=1, content-size present (0x08), dict-id present (0x01)
	flg := byte(1<<6) | 0x08 | 0x01
	bd := byte(0x70) // max size code 7
	contentSize := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	dictID := []byte{2, 0, 0, 0}

	checksumInput := append([]byte{flg, bd}, contentSize...)
	checksumInput = append(checksumInput, dictID...)
	checksum := byte(xxh32.Sum(0, checksumInput) >> 8)

	var buf bytes.Buffer
	buf.Write([]byte{0x04, 0x22, 0x4D, 0x18})
	buf.Write([]byte{flg, bd})
	buf.Write(contentSize)
	buf.Write(dictID)
	buf.WriteByte(checksum)

	src := source.New(&buf)
	_, desc, err := ReadNext(src, true, nil)
	require.NoError(t, err)
	assert.True(t, desc.ContentSizePresent)
	assert.Equal(t, uint64(1), desc.ContentSize)
	assert.True(t, desc.DictionaryIDPresent)
	assert.Equal(t, uint32(2), desc.DictionaryID)
}

func TestIsFrameMagic(t *testing.T) {
	assert.True(t, IsFrameMagic(MagicGeneral))
	assert.True(t, IsFrameMagic(MagicLegacy))
	assert.True(t, IsFrameMagic(MagicSkippableMin))
	assert.True(t, IsFrameMagic(MagicSkippableMax))
	assert.False(t, IsFrameMagic(0xDEADBEEF))
}

// TestReadNextFromMagicContinuesLegacyChain exercises the path
// lz4frame.Reader uses when a Legacy block's length field turns out to be
// a General frame magic: the already-read magic is handed back in rather
// than re-read from src.
func TestReadNextFromMagicContinuesLegacyChain(t *testing.T) {
	src := source.New(bytes.NewReader([]byte{0x40, 0x40, 0xC0}))

	kind, desc, err := ReadNextFromMagic(src, true, MagicGeneral, nil)
	require.NoError(t, err)
	assert.Equal(t, KindGeneral, kind)
	assert.Equal(t, 64*1024, desc.MaxBlockSize)
}
