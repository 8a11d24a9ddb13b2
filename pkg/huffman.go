package pkg

import (
	"container/heap"
	"fmt"
)

// Huffman tree construction and symbol-table derivation. Every file in
// an archive gets its own independently built tree.

const tableSize = 256

// SymbolCode is one byte value's Huffman code. The bit pattern is
// stored least-significant-bit-first: bit 0 of Code is the first bit
// emitted.
type SymbolCode struct {
	Symbol byte
	Code   uint64
	BitLen uint8
}

func (c SymbolCode) appendBit(bit uint64) SymbolCode {
	return SymbolCode{Symbol: c.Symbol, Code: c.Code | bit<<c.BitLen, BitLen: c.BitLen + 1}
}

// huffNode is a node of the prefix tree. A leaf carries a byte value;
// an internal node has exactly two children and no meaningful symbol.
// The weight only orders the build queue and is irrelevant afterwards.
type huffNode struct {
	left   *huffNode
	right  *huffNode
	symbol byte
	weight uint64
}

func (n *huffNode) isLeaf() bool { return n.left == nil && n.right == nil }

// huffHeap is a min-heap: Less compares weight ascending so Pop always
// yields the lowest-weight node. The ordering is on weight only; ties
// pop in unspecified order, which is fine because the resulting tree
// is serialized verbatim into the archive.
type huffHeap []*huffNode

func (h huffHeap) Len() int            { return len(h) }
func (h huffHeap) Less(i, j int) bool  { return h[i].weight < h[j].weight }
func (h huffHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x interface{}) { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}

// codeTree is a built prefix tree. A file with a single distinct byte
// value has a lone leaf as its root; an empty file has a nil root.
type codeTree struct {
	root        *huffNode
	symbolCount int
}

// buildTree runs the Huffman algorithm over a byte frequency table:
// push a leaf per nonzero byte value, then repeatedly combine the two
// lowest-weight nodes until one remains.
func buildTree(freq *[tableSize]uint64) *codeTree {
	h := &huffHeap{}
	heap.Init(h)

	count := 0
	for i, f := range freq {
		if f > 0 {
			heap.Push(h, &huffNode{symbol: byte(i), weight: f})
			count++
		}
	}
	if count == 0 {
		return &codeTree{}
	}

	for h.Len() > 1 {
		first := heap.Pop(h).(*huffNode)
		second := heap.Pop(h).(*huffNode)
		heap.Push(h, &huffNode{
			left:   first,
			right:  second,
			weight: first.weight + second.weight,
		})
	}

	return &codeTree{root: heap.Pop(h).(*huffNode), symbolCount: count}
}

// treeBits is the serialized size of the tree: each leaf costs 1
// is-leaf bit plus 8 symbol bits, each internal node 1 bit, and a full
// binary tree with L leaves has L-1 internal nodes, so 10L-1 total.
func (t *codeTree) treeBits() uint64 {
	if t.symbolCount == 0 {
		return 0
	}
	return 10*uint64(t.symbolCount) - 1
}

// buildSymbolTable walks the tree accumulating a code bit per step, 0
// descending left and 1 descending right, and records the code at each
// leaf. A lone-leaf root gets the 1-bit code 0 so that every symbol
// occurrence still consumes a bit on decode.
func buildSymbolTable(t *codeTree) (*[tableSize]SymbolCode, error) {
	table := new([tableSize]SymbolCode)
	if t.root == nil {
		return table, nil
	}
	if t.root.isLeaf() {
		table[t.root.symbol] = SymbolCode{Symbol: t.root.symbol, Code: 0, BitLen: 1}
		return table, nil
	}
	if err := walkTree(t.root, SymbolCode{}, table); err != nil {
		return nil, err
	}
	return table, nil
}

func walkTree(n *huffNode, code SymbolCode, table *[tableSize]SymbolCode) error {
	if n.isLeaf() {
		code.Symbol = n.symbol
		table[n.symbol] = code
		return nil
	}
	if n.left == nil || n.right == nil {
		return fmt.Errorf("walk tree: internal node missing a child: %w", ErrCorrupt)
	}
	if code.BitLen >= 64 {
		return fmt.Errorf("walk tree: %w", ErrCodeOverflow)
	}
	if err := walkTree(n.left, code.appendBit(0), table); err != nil {
		return err
	}
	return walkTree(n.right, code.appendBit(1), table)
}
