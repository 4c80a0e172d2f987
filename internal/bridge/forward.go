// Package bridge connects calculator outputs to the differentiation
// engine. It implements the two custom derivative rules of this library:
// the gradient of a block-sparse descriptor with respect to atomic
// positions, and with respect to the per-structure 3x3 cell matrix. All
// other differentiation is delegated to the recorded tape.
package bridge

import (
	"github.com/featgrad-ml/featgrad/internal/autodiff"
	"github.com/featgrad-ml/featgrad/internal/calculator"
	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// Result is the outcome of a bridged forward pass.
//
// The host graph only carries plain arrays, so the per-block values are
// what gets registered as differentiable outputs; the structured
// descriptor travels on the side.
type Result struct {
	// Descriptor is the externally visible output. It carries only the
	// gradient sub-blocks that were explicitly requested in
	// forwardGradients; kinds computed solely to support backward are
	// stripped before exposure.
	Descriptor *descriptor.TensorMap

	// Values holds each block's values array, in block order. These are
	// the tensors registered on the tape.
	Values []*tensor.RawTensor

	// Op is the recorded operation holding the backward state.
	Op *CalculatorOp
}

// Forward invokes the calculator exactly once over the batch and registers
// the resulting block values on the tape (when one is given). This is the
// pipeline's sole blocking point: the calculator may be arbitrarily
// expensive and may parallelize internally, which is opaque here.
//
// positions is the [totalAtoms, 3] concatenated positions leaf and cells
// the [len(systems), 3, 3] cell leaf; flags states which of the two is
// differentiable. forwardGradients lists the gradient kinds the caller
// wants present on the returned descriptor, independently of
// differentiability.
func Forward(
	positions, cells *tensor.RawTensor,
	calc calculator.Calculator,
	systems []*system.System,
	forwardGradients []string,
	flags GradientFlags,
	tape *autodiff.GradientTape,
) (*Result, error) {
	options, allForwardGradients, err := resolveOptions(forwardGradients, flags, systems)
	if err != nil {
		return nil, err
	}

	// Atom-offset table: global index of each system's first atom.
	systemOffsets := make([]int, len(systems))
	current := 0
	for i, s := range systems {
		systemOffsets[i] = current
		current += s.Size()
	}

	desc, err := calc.Compute(systems, options)
	if err != nil {
		return nil, err
	}

	values := make([]*tensor.RawTensor, 0, desc.Len())
	for i := 0; i < desc.Len(); i++ {
		values = append(values, desc.BlockByID(i).Values())
	}

	state := captureBackwardState(positions, cells, systemOffsets, desc, flags)

	op := &CalculatorOp{
		inputs:  []*tensor.RawTensor{positions, cells},
		outputs: values,
		state:   state,
	}
	if tape != nil {
		tape.Record(op)
	}

	visible := desc
	if !allForwardGradients {
		visible, err = trimGradients(desc, forwardGradients)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Descriptor: visible,
		Values:     values,
		Op:         op,
	}, nil
}

// trimGradients builds a copy of the map where each block keeps its values
// and labels but only the explicitly requested gradient sub-blocks. Values
// arrays are shared with the original blocks, not copied.
func trimGradients(desc *descriptor.TensorMap, forwardGradients []string) (*descriptor.TensorMap, error) {
	blocks := make([]*descriptor.TensorBlock, 0, desc.Len())
	for i := 0; i < desc.Len(); i++ {
		block := desc.BlockByID(i)
		trimmed, err := descriptor.NewTensorBlock(
			block.Values(),
			block.Samples(),
			block.Components(),
			block.Properties(),
		)
		if err != nil {
			return nil, err
		}

		for _, parameter := range forwardGradients {
			gradient, ok := block.Gradient(parameter)
			assertf(ok, "calculator did not compute the requested %q gradient for block %d", parameter, i)
			if err := trimmed.AddGradient(parameter, gradient); err != nil {
				return nil, err
			}
		}

		blocks = append(blocks, trimmed)
	}

	return descriptor.NewTensorMap(desc.Keys(), blocks)
}
