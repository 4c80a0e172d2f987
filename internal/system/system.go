// Package system represents atomic configurations processed as a batch.
package system

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// System is one atomic configuration: per-atom species and positions plus
// a 3x3 cell matrix. The useNativeSystem flag records whether the system
// carries a pre-supplied neighbor list the calculator should reuse.
type System struct {
	species         []int32
	positions       *tensor.RawTensor // Float64, [size, 3]
	cell            *tensor.RawTensor // Float64, [3, 3]
	useNativeSystem bool
}

// New creates a system and validates array shapes against the species list.
func New(species []int32, positions, cell *tensor.RawTensor, useNativeSystem bool) (*System, error) {
	if len(species) == 0 {
		return nil, fmt.Errorf("system needs at least one atom")
	}
	if !positions.Shape().Equal(tensor.Shape{len(species), 3}) {
		return nil, fmt.Errorf("positions shape %v does not match %d atoms", positions.Shape(), len(species))
	}
	if positions.DType() != tensor.Float64 {
		return nil, fmt.Errorf("positions dtype is %s, expected float64", positions.DType())
	}
	if !cell.Shape().Equal(tensor.Shape{3, 3}) {
		return nil, fmt.Errorf("cell shape %v is not [3, 3]", cell.Shape())
	}
	if cell.DType() != tensor.Float64 {
		return nil, fmt.Errorf("cell dtype is %s, expected float64", cell.DType())
	}

	return &System{
		species:         append([]int32(nil), species...),
		positions:       positions,
		cell:            cell,
		useNativeSystem: useNativeSystem,
	}, nil
}

// Size returns the number of atoms.
func (s *System) Size() int {
	return len(s.species)
}

// Species returns the per-atom species numbers.
func (s *System) Species() []int32 {
	return s.species
}

// Positions returns the [size, 3] positions array.
func (s *System) Positions() *tensor.RawTensor {
	return s.positions
}

// Cell returns the [3, 3] cell matrix.
func (s *System) Cell() *tensor.RawTensor {
	return s.cell
}

// UseNativeSystem reports whether this system carries a pre-supplied
// neighbor list.
func (s *System) UseNativeSystem() bool {
	return s.useNativeSystem
}

// ConcatPositions assembles the [totalAtoms, 3] positions array for a
// batch, in system order. This is the tensor the host engine treats as the
// differentiable positions input.
func ConcatPositions(systems []*System) *tensor.RawTensor {
	total := 0
	for _, s := range systems {
		total += s.Size()
	}

	out := tensor.Zeros(tensor.Shape{total, 3}, tensor.Float64, tensor.CPU)
	data := out.AsFloat64()
	offset := 0
	for _, s := range systems {
		copy(data[offset:], s.positions.AsFloat64())
		offset += s.Size() * 3
	}
	return out
}

// ConcatCells assembles the [len(systems), 3, 3] cell array for a batch,
// the differentiable cell input of the host engine.
func ConcatCells(systems []*System) *tensor.RawTensor {
	out := tensor.Zeros(tensor.Shape{len(systems), 3, 3}, tensor.Float64, tensor.CPU)
	data := out.AsFloat64()
	for i, s := range systems {
		copy(data[i*9:], s.cell.AsFloat64())
	}
	return out
}
