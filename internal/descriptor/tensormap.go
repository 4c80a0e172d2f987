package descriptor

import "fmt"

// TensorMap is an ordered key -> block structure. Row i of the key table
// describes block i; blocks are enumerated by ordinal index.
type TensorMap struct {
	keys   *Labels
	blocks []*TensorBlock
}

// NewTensorMap creates a tensor map from a key table and blocks.
// There must be exactly one block per key row.
func NewTensorMap(keys *Labels, blocks []*TensorBlock) (*TensorMap, error) {
	if keys.Count() != len(blocks) {
		return nil, fmt.Errorf("tensor map has %d keys but %d blocks", keys.Count(), len(blocks))
	}
	return &TensorMap{
		keys:   keys,
		blocks: blocks,
	}, nil
}

// Keys returns the key label table.
func (m *TensorMap) Keys() *Labels {
	return m.keys
}

// Len returns the number of blocks.
func (m *TensorMap) Len() int {
	return len(m.blocks)
}

// BlockByID returns the block with the given ordinal index.
func (m *TensorMap) BlockByID(i int) *TensorBlock {
	if i < 0 || i >= len(m.blocks) {
		panic(fmt.Sprintf("tensor map: block index %d out of range [0, %d)", i, len(m.blocks)))
	}
	return m.blocks[i]
}

// Blocks returns all blocks in key order.
func (m *TensorMap) Blocks() []*TensorBlock {
	return m.blocks
}
