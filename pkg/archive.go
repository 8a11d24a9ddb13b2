package pkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Archive layout, all integers little-endian:
//
//   [8 bytes]  signature, zero-padded
//   per file:  record separator, NUL-terminated relative path,
//              tree bit length, payload bit length, payload byte
//              offset, original byte size (four u64s)
//   [1 byte]   group separator ending the header region
//   per file:  serialized prefix tree, Huffman-coded payload, zero
//              padding up to the next byte boundary
//
// Payload byte offsets are relative to the first byte after the
// signature.

const (
	// Extension is appended to the first input entry to name the
	// archive, and stripped from the archive to name the output
	// directory on extraction.
	Extension = ".hzip"

	recSep byte = 0x1E
	grpSep byte = 0x1D

	signatureSize = 8
)

var signature = [signatureSize]byte{'h', 'z', 'i', 'p'}

var (
	// ErrSignature reports that a file is not an hzip archive. It is
	// distinct from generic IO failure so callers can tell a bad file
	// apart from a broken read.
	ErrSignature = errors.New("not a valid hzip archive")

	// ErrCorrupt reports an internal-consistency failure: the archive
	// or an in-memory tree violates a structural invariant.
	ErrCorrupt = errors.New("archive structure is corrupt")

	// ErrCodeOverflow reports a pathologically skewed input whose
	// optimal Huffman tree is deeper than a code can represent.
	ErrCodeOverflow = errors.New("huffman code exceeds 64 bits")
)

func signatureValue() uint64 {
	return binary.LittleEndian.Uint64(signature[:])
}

// FileBlock is one entry's archive metadata. PathAbs locates the input
// file during compression and is never persisted.
type FileBlock struct {
	PathRel      string
	PathAbs      string
	TreeBits     uint64
	DataBits     uint64
	ByteOffset   uint64
	OriginalSize uint64
}

// headerSize is the record's size on disk: the path with its NUL
// terminator plus four 8-byte integers. The record separator is
// accounted separately by the layout arithmetic.
func (b *FileBlock) headerSize() uint64 {
	return uint64(len(b.PathRel)) + 1 + 32
}

// regionSize is the whole number of bytes the file's tree and payload
// occupy once the writer pads to the next byte boundary.
func (b *FileBlock) regionSize() uint64 {
	return (b.TreeBits + b.DataBits + 7) / 8
}

// CompressedSize reports the file's tree plus payload size in whole
// bytes, as shown by the listing.
func (b *FileBlock) CompressedSize() uint64 {
	return (b.TreeBits + b.DataBits) / 8
}

// Ratio is the compressed-to-original size percentage. A zero-byte
// original reports 0 rather than dividing by zero.
func (b *FileBlock) Ratio() float64 {
	if b.OriginalSize == 0 {
		return 0
	}
	return float64(b.CompressedSize()) / float64(b.OriginalSize) * 100
}

func writeBlock(w *BitWriter, b *FileBlock) error {
	for i := 0; i < len(b.PathRel); i++ {
		if err := w.WriteByte(b.PathRel[i]); err != nil {
			return err
		}
	}
	if err := w.WriteByte(0); err != nil {
		return err
	}
	for _, v := range [4]uint64{b.TreeBits, b.DataBits, b.ByteOffset, b.OriginalSize} {
		if err := w.WriteU64(v); err != nil {
			return err
		}
	}
	return nil
}

func readBlock(r *BitReader) (FileBlock, error) {
	var b FileBlock
	var path []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return b, fmt.Errorf("read header path: %w", err)
		}
		if c == 0 {
			break
		}
		path = append(path, c)
	}
	b.PathRel = string(path)
	for _, field := range [4]*uint64{&b.TreeBits, &b.DataBits, &b.ByteOffset, &b.OriginalSize} {
		v, err := r.ReadU64()
		if err != nil {
			return b, fmt.Errorf("read header field: %w", err)
		}
		*field = v
	}
	return b, nil
}

// writeBlockHeaders assigns every block's payload offset and writes the
// header region. Offsets can only be computed here because headers are
// written sequentially before any payload: the header-region size must
// be known first, then each file's region starts where the previous
// one ends.
func writeBlockHeaders(w *BitWriter, books []*codeBook) error {
	headerSize := uint64(1) // trailing group separator
	for _, cb := range books {
		headerSize += cb.block.headerSize() + 1 // record separator
	}

	offset := headerSize
	for _, cb := range books {
		if err := w.WriteByte(recSep); err != nil {
			return err
		}
		cb.block.ByteOffset = offset
		offset += cb.block.regionSize()
		if err := writeBlock(w, cb.block); err != nil {
			return err
		}
	}
	return w.WriteByte(grpSep)
}

// ReadBlocks validates the archive signature and parses the header
// region into file blocks, stopping at the group separator.
func ReadBlocks(r *BitReader) ([]FileBlock, error) {
	sig, err := r.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	if sig != signatureValue() {
		return nil, ErrSignature
	}

	var blocks []FileBlock
	for {
		sep, err := r.ReadByte()
		if err == io.EOF || sep == grpSep {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read header separator: %w", err)
		}
		if sep != recSep {
			return nil, fmt.Errorf("unexpected header separator %#x: %w", sep, ErrCorrupt)
		}
		block, err := readBlock(r)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// List reads only the header region of an archive and returns its file
// blocks.
func List(archive string) ([]FileBlock, error) {
	r, err := NewBitReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadBlocks(r)
}
