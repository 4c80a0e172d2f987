package ops

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// SumOp reduces one or more tensors to a single scalar total:
// output = sum over every element of every input. With descriptor block
// values as inputs this is the usual "energy" head on top of a bridged
// calculation.
//
// Backward pass: d(sum)/d(x) = 1 for every element of every input, so each
// input gradient is the scalar upstream gradient broadcast to that input's
// shape.
type SumOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor // scalar, shape [1]
}

// NewSumOp computes the total of the given Float64 tensors and returns the
// operation.
func NewSumOp(inputs ...*tensor.RawTensor) *SumOp {
	if len(inputs) == 0 {
		panic("sum: at least one input required")
	}

	total := 0.0
	for _, input := range inputs {
		for _, v := range input.Contiguous().AsFloat64() {
			total += v
		}
	}

	output, err := tensor.FromFloat64([]float64{total}, tensor.Shape{1})
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	return &SumOp{
		inputs: inputs,
		output: output,
	}
}

// Backward broadcasts the scalar upstream gradient to every input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	seed := outputGrad.Contiguous().AsFloat64()[0]

	grads := make([]*tensor.RawTensor, len(op.inputs))
	for j, input := range op.inputs {
		grad := tensor.Zeros(input.Shape(), tensor.Float64, input.Device())
		data := grad.AsFloat64()
		for i := range data {
			data[i] = seed
		}
		grads[j] = grad
	}

	return grads
}

// Inputs returns the input tensors.
func (op *SumOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the scalar sum.
func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}
