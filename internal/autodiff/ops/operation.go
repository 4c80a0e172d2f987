// Package ops defines the operation interfaces recorded on the gradient
// tape, plus the small set of built-in operations this library ships.
//
// The calculator bridge contributes the only multi-output operation (one
// output tensor per descriptor block); SumOp provides a scalar reduction
// used as a loss head on top of descriptor values.
package ops

import "github.com/featgrad-ml/featgrad/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients aligned with Inputs(); nil entries mean
	// no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation represents an operation that produces multiple
// outputs. The tape handles these specially by collecting gradients for
// ALL outputs before calling BackwardMulti.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes gradients for inputs given gradients for ALL
	// outputs. This is used instead of Backward for multi-output
	// operations.
	BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}
