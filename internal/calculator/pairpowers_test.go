package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

func makeSystem(t *testing.T, coords []float64, species []int32) *system.System {
	t.Helper()

	positions, err := tensor.FromFloat64(coords, tensor.Shape{len(species), 3})
	require.NoError(t, err)
	cell, err := tensor.FromFloat64([]float64{
		10, 0, 0,
		0, 10, 0,
		0, 0, 10,
	}, tensor.Shape{3, 3})
	require.NoError(t, err)

	s, err := system.New(species, positions, cell, false)
	require.NoError(t, err)
	return s
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{Gradients: []string{GradientPositions, GradientCell}}.Validate())
	assert.Error(t, Options{Gradients: []string{"volume"}}.Validate())

	selected, err := descriptor.Range("power", 1)
	require.NoError(t, err)
	assert.Error(t, Options{SelectedProperties: selected}.Validate())
	assert.Error(t, Options{SelectedSamples: selected}.Validate())
}

func TestNewPairPowers_Validation(t *testing.T) {
	_, err := NewPairPowers(0)
	assert.Error(t, err)
}

func TestNewPairPowersFromYAML(t *testing.T) {
	calc, err := NewPairPowersFromYAML([]byte("max_power: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "pair_powers", calc.Name())

	_, err = NewPairPowersFromYAML([]byte("max_power: [oops]\n"))
	assert.Error(t, err)
}

func TestPairPowers_Values(t *testing.T) {
	calc, err := NewPairPowers(2)
	require.NoError(t, err)

	// Two atoms 2 apart along x: squared distance 4.
	sys := makeSystem(t, []float64{
		0, 0, 0,
		2, 0, 0,
	}, []int32{1, 1})

	desc, err := calc.Compute([]*system.System{sys}, Options{})
	require.NoError(t, err)

	require.Equal(t, 1, desc.Len())
	block := desc.BlockByID(0)
	assert.Equal(t, []string{"structure", "center"}, block.Samples().Names())
	require.True(t, block.Values().Shape().Equal(tensor.Shape{2, 2}))

	values := block.Values().AsFloat64()
	assert.InDelta(t, 4.0, values[0], 1e-12)  // center 0, power 2
	assert.InDelta(t, 16.0, values[1], 1e-12) // center 0, power 4
	assert.InDelta(t, 4.0, values[2], 1e-12)  // center 1, power 2

	// No gradients were requested, none should be attached.
	assert.Empty(t, block.GradientNames())
}

func TestPairPowers_BlocksKeyedBySpecies(t *testing.T) {
	calc, err := NewPairPowers(1)
	require.NoError(t, err)

	a := makeSystem(t, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}, []int32{8, 1, 1})
	b := makeSystem(t, []float64{
		0, 0, 0,
		0, 0, 1.5,
	}, []int32{1, 6})

	desc, err := calc.Compute([]*system.System{a, b}, Options{})
	require.NoError(t, err)

	// Species 1, 6, 8 in increasing order.
	require.Equal(t, 3, desc.Len())
	assert.Equal(t, []int32{1}, desc.Keys().Row(0))
	assert.Equal(t, []int32{6}, desc.Keys().Row(1))
	assert.Equal(t, []int32{8}, desc.Keys().Row(2))

	// Species 1 appears twice in system 0 and once in system 1.
	hydrogen := desc.BlockByID(0)
	require.Equal(t, 3, hydrogen.Samples().Count())
	assert.Equal(t, []int32{0, 1}, hydrogen.Samples().Row(0))
	assert.Equal(t, []int32{0, 2}, hydrogen.Samples().Row(1))
	assert.Equal(t, []int32{1, 0}, hydrogen.Samples().Row(2))
}

func TestPairPowers_EmptyBatch(t *testing.T) {
	calc, err := NewPairPowers(1)
	require.NoError(t, err)

	desc, err := calc.Compute(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, desc.Len())
}

// computeAt recomputes descriptor values with one coordinate displaced, for
// finite-difference checks.
func computeAt(t *testing.T, calc *PairPowers, batches [][]float64, species [][]int32, structure, atom, dim int, delta float64) *descriptor.TensorMap {
	t.Helper()

	systems := make([]*system.System, len(batches))
	for i := range batches {
		coords := append([]float64(nil), batches[i]...)
		if i == structure {
			coords[atom*3+dim] += delta
		}
		systems[i] = makeSystem(t, coords, species[i])
	}

	desc, err := calc.Compute(systems, Options{})
	require.NoError(t, err)
	return desc
}

func TestPairPowers_PositionGradients_FiniteDifference(t *testing.T) {
	const numProps = 2
	calc, err := NewPairPowers(numProps)
	require.NoError(t, err)

	batches := [][]float64{
		{
			0.0, 0.1, 0.2,
			1.1, 0.0, -0.3,
			-0.4, 0.9, 0.5,
		},
		{
			0.2, 0.0, 0.0,
			0.0, 1.3, 0.7,
		},
	}
	species := [][]int32{{1, 8, 1}, {8, 1}}

	systems := make([]*system.System, len(batches))
	for i := range batches {
		systems[i] = makeSystem(t, batches[i], species[i])
	}

	desc, err := calc.Compute(systems, Options{Gradients: []string{GradientPositions}})
	require.NoError(t, err)

	const h = 1e-5
	for blockI := 0; blockI < desc.Len(); blockI++ {
		block := desc.BlockByID(blockI)
		gradient, ok := block.Gradient(GradientPositions)
		require.True(t, ok)

		assert.Equal(t, []string{"sample", "structure", "atom"}, gradient.Samples().Names())
		gradValues := gradient.Values().AsFloat64()

		for row := 0; row < gradient.Samples().Count(); row++ {
			labels := gradient.Samples().Row(row)
			sample, structure, atom := int(labels[0]), int(labels[1]), int(labels[2])

			for dim := 0; dim < 3; dim++ {
				plus := computeAt(t, calc, batches, species, structure, atom, dim, +h)
				minus := computeAt(t, calc, batches, species, structure, atom, dim, -h)

				plusValues := plus.BlockByID(blockI).Values().AsFloat64()
				minusValues := minus.BlockByID(blockI).Values().AsFloat64()

				for p := 0; p < numProps; p++ {
					numeric := (plusValues[sample*numProps+p] - minusValues[sample*numProps+p]) / (2 * h)
					analytic := gradValues[(row*3+dim)*numProps+p]
					assert.InDelta(t, numeric, analytic, 1e-6,
						"block %d row %d dim %d power %d", blockI, row, dim, p)
				}
			}
		}
	}
}

func TestPairPowers_CellGradient_Virial(t *testing.T) {
	calc, err := NewPairPowers(2)
	require.NoError(t, err)

	// Two atoms 2 apart along x: the pair vector only has an x component,
	// so the virial has a single nonzero entry at (0, 0).
	sys := makeSystem(t, []float64{
		0, 0, 0,
		2, 0, 0,
	}, []int32{1, 1})

	desc, err := calc.Compute([]*system.System{sys}, Options{Gradients: []string{GradientCell}})
	require.NoError(t, err)

	block := desc.BlockByID(0)
	gradient, ok := block.Gradient(GradientCell)
	require.True(t, ok)

	assert.Equal(t, []string{"sample"}, gradient.Samples().Names())
	require.True(t, gradient.Values().Shape().Equal(tensor.Shape{2, 3, 3, 2}))

	values := gradient.Values().AsFloat64()
	// Center 0, pair vector (2, 0, 0), squared distance 4:
	//   power 2: 2 * 1 * rij_x * rij_x = 8
	//   power 4: 2 * 2 * 4 * rij_x * rij_x = 64
	const numProps = 2
	for d1 := 0; d1 < 3; d1++ {
		for d2 := 0; d2 < 3; d2++ {
			wantFirst, wantSecond := 0.0, 0.0
			if d1 == 0 && d2 == 0 {
				wantFirst, wantSecond = 8.0, 64.0
			}
			assert.InDelta(t, wantFirst, values[((0*3+d1)*3+d2)*numProps+0], 1e-12)
			assert.InDelta(t, wantSecond, values[((0*3+d1)*3+d2)*numProps+1], 1e-12)
		}
	}
}
