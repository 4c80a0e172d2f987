package bridge

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// accumulateCellGrad reconstructs the gradient with respect to each
// structure's 3x3 cell matrix from the forward-captured partials.
//
// A cell gradient row only identifies its parent sample; the structure is
// looked up in the parent block's sample table, through the `structure`
// column located by name. The forward values encode two implicit 3-valued
// direction axes per row, stored so that the row for (d1, d2) sits at
// flattened index (row*3+d2)*3+d1:
//
//	result[structure][d1][d2] +=
//	    dot(forward[(row*3+d2)*3+d1, :], upstream[sample, :])
//
// The result is dense [numStructures, 3, 3], zero-initialized and
// additively accumulated.
func (s *backwardState) accumulateCellGrad(outputGrads []*tensor.RawTensor) *tensor.RawTensor {
	numBlocks := len(outputGrads)
	assertf(len(s.cellGradients) == numBlocks,
		"captured %d cell gradient blocks for %d output blocks", len(s.cellGradients), numBlocks)
	assertf(len(s.valueSamples) == numBlocks,
		"captured %d sample tables for %d output blocks", len(s.valueSamples), numBlocks)

	result := tensor.ZerosLike(s.cells)
	out := result.AsFloat64()

	// Locate the structure column by name in the first block's parent
	// samples; every block must share the same column layout.
	firstSamples := s.valueSamples[0]
	structureColumn, ok := firstSamples.Position("structure")
	if !ok {
		panic(fmt.Sprintf("%v: could not find 'structure' in the samples, this calculator does not support cell gradients",
			ErrInvalidArgument))
	}

	for blockI, gradient := range s.cellGradients {
		parentSamples := s.valueSamples[blockI]
		assertf(parentSamples.NamesEqual(firstSamples),
			"inconsistent sample names across blocks: %v vs %v", parentSamples.Names(), firstSamples.Names())

		samples := gradient.Samples()
		names := samples.Names()
		assertf(len(names) == 1 && names[0] == "sample",
			"cell gradient samples must be (sample), got %v", names)
		sampleValues := samples.Values().AsInt32()

		// dX/dH, computed in the forward pass.
		forward := gradient.Values().Contiguous().AsFloat64()

		// dA/dX, computed by the engine upstream of this operation.
		upstream := outputGrads[blockI].AsFloat64()

		// Total size of the component x property axis.
		dotSize := outputGrads[blockI].Shape().RowNumElements()

		for row := 0; row < samples.Count(); row++ {
			sample := int(sampleValues[row])
			structure := int(parentSamples.Value(sample, structureColumn))

			for d1 := 0; d1 < 3; d1++ {
				for d2 := 0; d2 < 3; d2++ {
					acc := 0.0
					forwardBase := ((row*3+d2)*3 + d1) * dotSize
					upstreamBase := sample * dotSize
					for i := 0; i < dotSize; i++ {
						acc += forward[forwardBase+i] * upstream[upstreamBase+i]
					}
					out[(structure*3+d1)*3+d2] += acc
				}
			}
		}
	}

	return result
}
