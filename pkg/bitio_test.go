package pkg

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bits.bin")

	w, err := NewBitWriter(path)
	require.NoError(t, err)
	for _, bit := range []byte{1, 0, 1, 1} {
		require.NoError(t, w.WriteBit(bit))
	}
	require.NoError(t, w.WriteBits(0b10110, 5))
	w.AlignToByte()
	require.NoError(t, w.WriteByte(0xAB))
	require.NoError(t, w.WriteU64(0x0123456789ABCDEF))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x6D, 0x01, 0xAB, 0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01}, raw)

	r, err := NewBitReader(path)
	require.NoError(t, err)
	defer r.Close()

	for _, want := range []byte{1, 0, 1, 1} {
		bit, err := r.ReadBit()
		require.NoError(t, err)
		assert.Equal(t, want, bit)
	}
	b, err := r.ReadBits(5)
	require.NoError(t, err)
	assert.Equal(t, byte(0b10110), b)
	assert.Equal(t, uint64(9), r.ReadLen())

	// consume the padding up to the byte boundary
	pad, err := r.ReadBits(7)
	require.NoError(t, err)
	assert.Equal(t, byte(0), pad)
	assert.Equal(t, uint64(16), r.ReadLen())

	b, err = r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)

	v, err := r.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), v)

	assert.True(t, r.EOF())
}

func TestReadWriteAcrossBufferBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	const n = 3*bufferLen + 5

	w, err := NewBitWriter(path)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, w.WriteByte(byte(i%251)))
	}
	require.NoError(t, w.Close())

	r, err := NewBitReader(path)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(i%251), b)
	}
	_, err = r.ReadByte()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, uint64(8*n), r.ReadLen())
}

func TestUnalignedBitsAcrossBufferBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skew.bin")
	const n = bufferLen + 17

	// a 3-bit prefix pushes every byte write across buffer cells
	w, err := NewBitWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteBits(0b101, 3))
	for i := 0; i < n; i++ {
		require.NoError(t, w.WriteByte(byte(i % 253)))
	}
	require.NoError(t, w.Close())

	r, err := NewBitReader(path)
	require.NoError(t, err)
	defer r.Close()

	prefix, err := r.ReadBits(3)
	require.NoError(t, err)
	assert.Equal(t, byte(0b101), prefix)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(i%253), b)
	}
}

func TestSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seek.bin")
	data := make([]byte, 2*bufferLen)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))

	r, err := NewBitReader(path)
	require.NoError(t, err)
	defer r.Close()

	// consume a few bits so the seek has buffered state to discard
	_, err = r.ReadBits(5)
	require.NoError(t, err)

	for _, offset := range []uint64{10, bufferLen + 3, 0} {
		require.NoError(t, r.Seek(offset))
		assert.Equal(t, uint64(0), r.ReadLen(), "bit counter restarts on seek")
		b, err := r.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, data[offset], b)
		assert.Equal(t, uint64(8), r.ReadLen())
	}
}

func TestEOFOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	r, err := NewBitReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.EOF())
	_, err = r.ReadByte()
	assert.Equal(t, io.EOF, err)
	_, err = r.ReadBit()
	assert.Equal(t, io.EOF, err)
}

func TestAlignToByteIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "align.bin")

	w, err := NewBitWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteBits(0b111, 3))
	w.AlignToByte()
	w.AlignToByte()
	require.NoError(t, w.WriteByte(0x5A))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x5A}, raw)
}

func TestCloseFlushesPartialBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.bin")

	w, err := NewBitWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteBit(1))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, raw)
}
