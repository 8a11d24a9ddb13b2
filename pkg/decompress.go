package pkg

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UnpackOptions configures one extraction run.
type UnpackOptions struct {
	// Multithreaded enables per-file parallel decompression.
	Multithreaded bool
	// Workers overrides the pool size when positive.
	Workers int
	// Logger receives phase timings and worker counts. Nil discards.
	Logger *slog.Logger
}

// Unpack extracts an archive into a directory named after it with the
// extension stripped, and returns that directory. Each file is
// restored byte-for-byte under its recorded relative path.
func Unpack(archive string, opts UnpackOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()

	outputDir := strings.TrimSuffix(archive, filepath.Ext(archive))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	blocks, err := List(archive)
	if err != nil {
		return "", err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = workerCount(opts.Multithreaded, len(blocks))
	}
	logger.Info("decompressing files", "files", len(blocks), "workers", workers)

	// Each task opens its own reader handle and writes its own output
	// file, so the only shared resource is the read-only archive.
	tasks := make([]func() error, len(blocks))
	for i := range blocks {
		i := i
		tasks[i] = func() error {
			return decompressFile(archive, outputDir, &blocks[i])
		}
	}
	if err := runLimited(workers, tasks); err != nil {
		return "", err
	}

	logger.Info("finished unpacking", "dir", outputDir, "elapsed", time.Since(start))
	return outputDir, nil
}

// decompressFile restores one file: seek past the signature to the
// block's payload region, rebuild the tree from the bitstream, then
// walk it bit-by-bit until the recorded number of payload bits has
// been consumed.
func decompressFile(archive, outputDir string, block *FileBlock) error {
	dest := filepath.Join(outputDir, filepath.FromSlash(block.PathRel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", dest, err)
	}

	w, err := NewBitWriter(dest)
	if err != nil {
		return err
	}
	defer w.Close()

	// A zero tree means the original file was empty.
	if block.TreeBits == 0 {
		return w.Close()
	}

	r, err := NewBitReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Seek(signatureSize + block.ByteOffset); err != nil {
		return err
	}

	root, err := readTree(r)
	if err != nil {
		return err
	}
	if r.ReadLen() != block.TreeBits {
		return fmt.Errorf("tree for %s is %d bits, header says %d: %w",
			block.PathRel, r.ReadLen(), block.TreeBits, ErrCorrupt)
	}

	// The payload bit length is exact, so decoding stops precisely at
	// its end: the alignment padding is never interpreted as a symbol
	// and the final symbol is never truncated.
	payloadStart := r.ReadLen()
	for r.ReadLen()-payloadStart < block.DataBits {
		if err := decodeSymbol(r, w, root); err != nil {
			return err
		}
	}
	return w.Close()
}

// readTree rebuilds the prefix tree from the bitstream: a 1 bit is a
// leaf followed by its 8-bit symbol, which need not be byte-aligned; a
// 0 bit is an internal node followed by its left then right subtrees.
func readTree(r *BitReader) (*huffNode, error) {
	bit, err := r.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	if bit == 1 {
		symbol, err := r.ReadBits(8)
		if err != nil {
			return nil, fmt.Errorf("read tree symbol: %w", err)
		}
		return &huffNode{symbol: symbol}, nil
	}
	left, err := readTree(r)
	if err != nil {
		return nil, err
	}
	right, err := readTree(r)
	if err != nil {
		return nil, err
	}
	return &huffNode{left: left, right: right}, nil
}

// decodeSymbol consumes one codeword and emits its byte. A lone-leaf
// root still consumes one bit per symbol, mirroring the 1-bit code the
// encoder assigns in that degenerate case.
func decodeSymbol(r *BitReader, w *BitWriter, root *huffNode) error {
	node := root
	if node.isLeaf() {
		if _, err := r.ReadBit(); err != nil {
			return err
		}
		return w.WriteByte(node.symbol)
	}
	for !node.isLeaf() {
		bit, err := r.ReadBit()
		if err != nil {
			return err
		}
		if bit == 0 {
			node = node.left
		} else {
			node = node.right
		}
		if node == nil {
			return fmt.Errorf("decode: internal node missing a child: %w", ErrCorrupt)
		}
	}
	return w.WriteByte(node.symbol)
}
