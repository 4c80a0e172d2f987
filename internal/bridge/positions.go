package bridge

import (
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// accumulatePositionsGrad reconstructs the gradient with respect to atomic
// positions from the forward-captured partials.
//
// For every row of each block's positions gradient sub-block, the row's
// (sample, structure, atom) labels say which upstream gradient row and
// which global atom it connects. The contraction runs over the flattened
// component x property axis:
//
//	result[offsets[structure]+atom][d] +=
//	    dot(forward[row, d, :], upstream[sample, :])
//
// The result is dense [totalAtoms, 3], zero-initialized and additively
// accumulated; only floating-point rounding depends on the accumulation
// order.
func (s *backwardState) accumulatePositionsGrad(outputGrads []*tensor.RawTensor) *tensor.RawTensor {
	numBlocks := len(outputGrads)
	assertf(len(s.positionsGradients) == numBlocks,
		"captured %d positions gradient blocks for %d output blocks", len(s.positionsGradients), numBlocks)

	result := tensor.ZerosLike(s.positions)
	out := result.AsFloat64()

	for blockI, gradient := range s.positionsGradients {
		samples := gradient.Samples()
		names := samples.Names()
		assertf(len(names) == 3 && names[0] == "sample" && names[1] == "structure" && names[2] == "atom",
			"positions gradient samples must be (sample, structure, atom), got %v", names)
		sampleValues := samples.Values().AsInt32()

		// dX/dr, computed in the forward pass.
		forward := gradient.Values().Contiguous().AsFloat64()

		// dA/dX, computed by the engine upstream of this operation.
		upstream := outputGrads[blockI].AsFloat64()

		// Total size of the component x property axis.
		dotSize := outputGrads[blockI].Shape().RowNumElements()

		for row := 0; row < samples.Count(); row++ {
			sample := int(sampleValues[row*3+0])
			structure := int(sampleValues[row*3+1])
			atom := int(sampleValues[row*3+2])

			globalAtom := s.systemOffsets[structure] + atom

			for direction := 0; direction < 3; direction++ {
				acc := 0.0
				forwardBase := (row*3 + direction) * dotSize
				upstreamBase := sample * dotSize
				for i := 0; i < dotSize; i++ {
					acc += forward[forwardBase+i] * upstream[upstreamBase+i]
				}
				out[globalAtom*3+direction] += acc
			}
		}
	}

	return result
}
