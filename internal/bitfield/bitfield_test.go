package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameFlags(t *testing.T) {
	// version=1 (01), block-independent, content-size present, dict-id present
	b := byte(1<<6) | 0x20 | 0x08 | 0x01
	f := ParseFrameFlags(b)

	assert.Equal(t, uint8(1), f.Version)
	assert.True(t, f.BlockIndependent)
	assert.True(t, f.ContentSizePresent)
	assert.True(t, f.DictIDPresent)
	assert.False(t, f.BlockChecksumPresent)
	assert.False(t, f.ContentChecksumPresent)
}

func TestFlagsReservedBitSet(t *testing.T) {
	assert.True(t, FlagsReservedBitSet(0x02))
	assert.False(t, FlagsReservedBitSet(0x00))
}

func TestParseBlockData(t *testing.T) {
	tests := []struct {
		b        byte
		wantCode uint8
	}{
		{0x40, 4},
		{0x50, 5},
		{0x60, 6},
		{0x70, 7},
	}
	for _, tt := range tests {
		bd := ParseBlockData(tt.b)
		assert.Equal(t, tt.wantCode, bd.MaxSizeCode)
	}
}

func TestBlockDataReservedBitsSet(t *testing.T) {
	assert.True(t, BlockDataReservedBitsSet(0x01))
	assert.True(t, BlockDataReservedBitsSet(0x80))
	assert.False(t, BlockDataReservedBitsSet(0x70))
}

func TestMaxBlockSize(t *testing.T) {
	tests := []struct {
		code     uint8
		wantSize int
		wantOK   bool
	}{
		{4, 64 * 1024, true},
		{5, 256 * 1024, true},
		{6, 1024 * 1024, true},
		{7, 4 * 1024 * 1024, true},
		{3, 0, false},
		{8, 0, false},
	}
	for _, tt := range tests {
		size, ok := MaxBlockSize(tt.code)
		assert.Equal(t, tt.wantOK, ok)
		if ok {
			assert.Equal(t, tt.wantSize, size)
		}
	}
}

func TestParseBlockHeader(t *testing.T) {
	end := ParseBlockHeader([]byte{0, 0, 0, 0})
	require.True(t, end.IsEndMark())

	// size=0x40, uncompressed
	h := ParseBlockHeader([]byte{0x40, 0, 0, 0x80})
	assert.Equal(t, uint32(0x40), h.Size)
	assert.True(t, h.Uncompressed)
	assert.False(t, h.IsEndMark())

	assert.Equal(t, uint32(0x40)|(1<<31), EncodeBlockHeader(h))
}
