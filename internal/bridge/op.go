package bridge

import (
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// CalculatorOp is the differentiable operation recorded for one bridged
// calculation: one output tensor per descriptor block, with custom
// backward rules contracting the forward-captured partials against the
// upstream gradients.
//
// The operation is created once per forward call and consumed at most once
// by the matching backward call. Behavior under a second backward
// invocation of the same operation is undefined; the engine's discipline
// is relied upon, as is usual for tape-recorded operations.
type CalculatorOp struct {
	inputs  []*tensor.RawTensor // [positions, cells]
	outputs []*tensor.RawTensor // per-block values
	state   *backwardState
}

// backwardArity is the fixed size of the gradient tuple returned by
// BackwardMulti: positions, cell, then one nil placeholder per
// non-differentiable forward argument (calculator, systems, descriptor
// side channel, requested gradient kinds).
const backwardArity = 6

// Inputs returns the differentiable inputs: positions and cells.
func (op *CalculatorOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the first block's values tensor, or nil for an empty
// descriptor. The tape drives multi-output operations through Outputs.
func (op *CalculatorOp) Output() *tensor.RawTensor {
	if len(op.outputs) == 0 {
		return nil
	}
	return op.outputs[0]
}

// Outputs returns every block's values tensor, in block order.
func (op *CalculatorOp) Outputs() []*tensor.RawTensor {
	return op.outputs
}

// Backward is unsupported: the operation has one output per block, so the
// tape always dispatches through BackwardMulti.
func (op *CalculatorOp) Backward(_ *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	panic("CalculatorOp produces multiple outputs, use BackwardMulti")
}

// BackwardMulti finishes the chain rule for both differentiable inputs.
// outputGrads holds one upstream gradient per output block. The returned
// slice has the fixed backward arity; slots without a gradient are nil.
//
// Either accumulation runs to completion or the call panics on a broken
// calculator contract before any result is returned; there is no partial
// output.
func (op *CalculatorOp) BackwardMulti(outputGrads []*tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, backwardArity)

	if len(outputGrads) == 0 {
		return grads
	}

	// Index arithmetic below assumes dense row-major buffers.
	contiguous := make([]*tensor.RawTensor, len(outputGrads))
	for i, grad := range outputGrads {
		contiguous[i] = grad.Contiguous()
	}

	if op.state.hasPositionsGradients {
		grads[0] = op.state.accumulatePositionsGrad(contiguous)
	}
	if op.state.hasCellGradients {
		grads[1] = op.state.accumulateCellGrad(contiguous)
	}

	return grads
}
