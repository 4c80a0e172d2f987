package autodiff

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// Backward computes gradients for a Float64 output tensor, seeding the
// backward pass with ones.
//
// Returns a map from tensor to its accumulated gradient; inputs that no
// gradient reached are absent from the map.
func Backward(t *tensor.RawTensor, tape *GradientTape, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call StartRecording()?)")
	}
	if t.DType() != tensor.Float64 {
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float64 outputs are differentiable)", t.DType()))
	}

	seed := tensor.Zeros(t.Shape(), t.DType(), t.Device())
	data := seed.AsFloat64()
	for i := range data {
		data[i] = 1.0
	}

	return tape.Backward(seed, backend)
}
