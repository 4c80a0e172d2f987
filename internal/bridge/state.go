package bridge

import (
	"github.com/featgrad-ml/featgrad/internal/calculator"
	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// backwardState is the minimal data captured at forward time for the
// backward pass. It deliberately does NOT hold the output TensorMap: the
// map's block values are wired into the host graph through the recorded
// operation, and the operation holds this state — retaining the map here
// would close an ownership cycle that keeps the whole output alive
// forever. Instead each accumulator's inputs are projected out of the
// descriptor at capture time.
//
// A state is written once here and read once by the matching backward
// call; the bridge does not guard against a second backward invocation.
type backwardState struct {
	positions *tensor.RawTensor // [totalAtoms, 3]
	cells     *tensor.RawTensor // [numStructures, 3, 3]

	// systemOffsets[k] is the global index of the first atom of system k
	// (prefix sum of system sizes).
	systemOffsets []int

	// Per-kind captures. The boolean tags make presence explicit: a kind
	// is either captured for backward or it is not, there is no
	// type-erased middle ground.
	hasPositionsGradients bool
	positionsGradients    []*descriptor.TensorBlock

	hasCellGradients bool
	cellGradients    []*descriptor.TensorBlock
	valueSamples     []*descriptor.Labels // parent sample tables, one per block
}

// captureBackwardState projects the data the accumulators need out of the
// descriptor, according to which inputs are differentiable.
func captureBackwardState(
	positions, cells *tensor.RawTensor,
	systemOffsets []int,
	desc *descriptor.TensorMap,
	flags GradientFlags,
) *backwardState {
	state := &backwardState{
		positions:     positions,
		cells:         cells,
		systemOffsets: systemOffsets,
	}

	if flags.Positions {
		state.hasPositionsGradients = true
		state.positionsGradients = extractGradientBlocks(desc, calculator.GradientPositions)
	}

	if flags.Cell {
		state.hasCellGradients = true
		state.cellGradients = extractGradientBlocks(desc, calculator.GradientCell)

		state.valueSamples = make([]*descriptor.Labels, 0, desc.Len())
		for i := 0; i < desc.Len(); i++ {
			state.valueSamples = append(state.valueSamples, desc.BlockByID(i).Samples())
		}
	}

	return state
}

// extractGradientBlocks re-wraps each block's gradient sub-block for the
// given parameter as a standalone block, dropping any nested gradients.
// The values arrays are shared, not copied.
func extractGradientBlocks(desc *descriptor.TensorMap, parameter string) []*descriptor.TensorBlock {
	gradients := make([]*descriptor.TensorBlock, 0, desc.Len())
	for i := 0; i < desc.Len(); i++ {
		block := desc.BlockByID(i)
		gradient, ok := block.Gradient(parameter)
		assertf(ok, "calculator did not compute the requested %q gradient for block %d", parameter, i)

		standalone, err := descriptor.NewTensorBlock(
			gradient.Values(),
			gradient.Samples(),
			gradient.Components(),
			gradient.Properties(),
		)
		assertf(err == nil, "re-wrapping %q gradient of block %d: %v", parameter, i, err)

		gradients = append(gradients, standalone)
	}
	return gradients
}
