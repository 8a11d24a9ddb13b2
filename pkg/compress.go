package pkg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PackOptions configures one compression run.
type PackOptions struct {
	// Multithreaded enables per-file parallel code book construction.
	Multithreaded bool
	// Workers overrides the pool size when positive.
	Workers int
	// Logger receives phase timings and worker counts. Nil discards.
	Logger *slog.Logger
}

// codeBook holds everything needed to compress one file: its symbol
// table, the prefix tree the table was derived from, and the block the
// sizes were recorded into. Code books exist only during compression;
// the tree is persisted, the book is not.
type codeBook struct {
	table *[tableSize]SymbolCode
	tree  *codeTree
	block *FileBlock
}

// Pack compresses the given files and directories into a single
// archive named after the first entry, and returns the blocks that
// were written alongside the archive path. Any failure aborts the
// whole operation; partially written output is the caller's concern.
func Pack(entries []string, opts PackOptions) (string, []FileBlock, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()

	blocks, err := collectBlocks(entries)
	if err != nil {
		return "", nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = workerCount(opts.Multithreaded, len(blocks))
	}
	logger.Info("building code books", "files", len(blocks), "workers", workers)

	books, err := createCodeBooks(blocks, workers)
	if err != nil {
		return "", nil, err
	}

	archive := filepath.Clean(entries[0]) + Extension
	w, err := NewBitWriter(archive)
	if err != nil {
		return "", nil, err
	}
	defer w.Close()

	if err := w.WriteU64(signatureValue()); err != nil {
		return "", nil, err
	}
	if err := writeBlockHeaders(w, books); err != nil {
		return "", nil, err
	}
	for _, cb := range books {
		if err := compressFile(w, cb); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}

	logger.Info("finished packing", "archive", archive, "elapsed", time.Since(start))
	return archive, blocks, nil
}

// collectBlocks walks every entry and produces one block per regular
// file, keyed by its path relative to the entry's parent directory.
func collectBlocks(entries []string) ([]FileBlock, error) {
	var blocks []FileBlock
	for _, entry := range entries {
		entry = filepath.Clean(entry)
		base := filepath.Dir(entry)
		err := filepath.Walk(entry, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(base, p)
			if err != nil {
				return fmt.Errorf("relative path for %s: %w", p, err)
			}
			blocks = append(blocks, FileBlock{
				PathRel:      filepath.ToSlash(rel),
				PathAbs:      p,
				OriginalSize: uint64(info.Size()),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", entry, err)
		}
	}
	if len(blocks) == 0 {
		return nil, errors.New("no files to pack")
	}
	return blocks, nil
}

// createCodeBooks builds every file's code book on a bounded pool.
// Each task only reads its own input file and fills its own slot, so
// no locking is needed.
func createCodeBooks(blocks []FileBlock, workers int) ([]*codeBook, error) {
	books := make([]*codeBook, len(blocks))
	tasks := make([]func() error, len(blocks))
	for i := range blocks {
		i := i
		tasks[i] = func() error {
			cb, err := createCodeBook(&blocks[i])
			if err != nil {
				return err
			}
			books[i] = cb
			return nil
		}
	}
	if err := runLimited(workers, tasks); err != nil {
		return nil, err
	}
	return books, nil
}

// createCodeBook scans the file's byte frequencies, builds its tree and
// symbol table, and records the exact bit sizes the layout arithmetic
// needs before anything is written.
func createCodeBook(block *FileBlock) (*codeBook, error) {
	freq, err := countFrequencies(block.PathAbs)
	if err != nil {
		return nil, err
	}
	tree := buildTree(freq)
	table, err := buildSymbolTable(tree)
	if err != nil {
		return nil, fmt.Errorf("code book for %s: %w", block.PathAbs, err)
	}

	var dataBits uint64
	for i, f := range freq {
		dataBits += f * uint64(table[i].BitLen)
	}
	block.DataBits = dataBits
	block.TreeBits = tree.treeBits()

	return &codeBook{table: table, tree: tree, block: block}, nil
}

func countFrequencies(path string) (*[tableSize]uint64, error) {
	r, err := NewBitReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	freq := new([tableSize]uint64)
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		freq[b]++
	}
	return freq, nil
}

// compressFile writes one file's region: the serialized tree, then a
// symbol per input byte, then zero padding so the next region starts
// byte-aligned to match the offsets recorded in the headers.
func compressFile(w *BitWriter, cb *codeBook) error {
	if cb.tree.root == nil {
		return nil // empty file: no tree, no payload
	}
	if err := writeTree(w, cb.tree.root); err != nil {
		return err
	}
	if err := encodeFile(w, cb.block.PathAbs, cb.table); err != nil {
		return err
	}
	w.AlignToByte()
	return nil
}

// writeTree serializes the tree in preorder: a leaf is a 1 bit followed
// by the 8-bit symbol, an internal node is a 0 bit followed by its left
// then right subtrees.
func writeTree(w *BitWriter, n *huffNode) error {
	if n.isLeaf() {
		if err := w.WriteBit(1); err != nil {
			return err
		}
		return w.WriteBits(n.symbol, 8)
	}
	if n.left == nil || n.right == nil {
		return fmt.Errorf("write tree: internal node missing a child: %w", ErrCorrupt)
	}
	if err := w.WriteBit(0); err != nil {
		return err
	}
	if err := writeTree(w, n.left); err != nil {
		return err
	}
	return writeTree(w, n.right)
}

func encodeFile(w *BitWriter, path string, table *[tableSize]SymbolCode) error {
	r, err := NewBitReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := w.WriteSymbol(table[b]); err != nil {
			return err
		}
	}
	return nil
}
