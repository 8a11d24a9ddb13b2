package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeScenarioAAABC(t *testing.T) {
	freq := new([tableSize]uint64)
	freq['a'] = 3
	freq['b'] = 1
	freq['c'] = 1

	tree := buildTree(freq)
	require.NotNil(t, tree.root)
	assert.Equal(t, 3, tree.symbolCount)
	assert.Equal(t, uint64(29), tree.treeBits(), "10L-1 for L=3")

	table, err := buildSymbolTable(tree)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), table['a'].BitLen, "most frequent symbol gets the shortest code")
	assert.Equal(t, uint8(2), table['b'].BitLen)
	assert.Equal(t, uint8(2), table['c'].BitLen)

	var dataBits uint64
	for i, f := range freq {
		dataBits += f * uint64(table[i].BitLen)
	}
	assert.Equal(t, uint64(7), dataBits)
}

func TestTreeSingleSymbol(t *testing.T) {
	freq := new([tableSize]uint64)
	freq['x'] = 42

	tree := buildTree(freq)
	require.NotNil(t, tree.root)
	assert.True(t, tree.root.isLeaf())
	assert.Equal(t, uint64(9), tree.treeBits(), "10L-1 for L=1")

	table, err := buildSymbolTable(tree)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), table['x'].BitLen, "lone symbol still gets a 1-bit code")
	assert.Equal(t, uint64(0), table['x'].Code)
}

func TestTreeEmptyInput(t *testing.T) {
	tree := buildTree(new([tableSize]uint64))
	assert.Nil(t, tree.root)
	assert.Equal(t, uint64(0), tree.treeBits())

	table, err := buildSymbolTable(tree)
	require.NoError(t, err)
	for i := range table {
		assert.Equal(t, uint8(0), table[i].BitLen)
	}
}

func TestTreeBitsFormula(t *testing.T) {
	for _, distinct := range []int{1, 2, 3, 17, 100, 256} {
		freq := new([tableSize]uint64)
		for i := 0; i < distinct; i++ {
			freq[i] = uint64(i + 1)
		}
		tree := buildTree(freq)
		assert.Equal(t, uint64(10*distinct-1), tree.treeBits(), "L=%d", distinct)
	}
}

func TestSymbolTableCompleteness(t *testing.T) {
	freq := new([tableSize]uint64)
	for i := range freq {
		if i%3 != 0 {
			freq[i] = uint64(i*31 + 7)
		}
	}

	table, err := buildSymbolTable(buildTree(freq))
	require.NoError(t, err)
	for i, f := range freq {
		if f > 0 {
			assert.Greater(t, table[i].BitLen, uint8(0), "symbol %d has a code", i)
			assert.Equal(t, byte(i), table[i].Symbol)
		} else {
			assert.Equal(t, uint8(0), table[i].BitLen, "symbol %d is absent", i)
		}
	}
}

func TestSymbolCodesArePrefixFree(t *testing.T) {
	freq := new([tableSize]uint64)
	for i := range freq {
		freq[i] = uint64(i%7 + 1)
	}
	table, err := buildSymbolTable(buildTree(freq))
	require.NoError(t, err)

	for i := range table {
		for j := range table {
			if i == j {
				continue
			}
			a, b := table[i], table[j]
			if a.BitLen == 0 || b.BitLen == 0 || a.BitLen > b.BitLen {
				continue
			}
			mask := uint64(1)<<a.BitLen - 1
			assert.NotEqual(t, a.Code&mask, b.Code&mask,
				"code of symbol %d is a prefix of symbol %d", i, j)
		}
	}
}
