package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/featgrad-ml/featgrad/internal/calculator"
	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// stubCalculator returns a prescribed descriptor and records how it was
// invoked.
type stubCalculator struct {
	desc        *descriptor.TensorMap
	err         error
	calls       int
	lastOptions calculator.Options
}

func (s *stubCalculator) Name() string {
	return "stub"
}

func (s *stubCalculator) Compute(_ []*system.System, options calculator.Options) (*descriptor.TensorMap, error) {
	s.calls++
	s.lastOptions = options
	if s.err != nil {
		return nil, s.err
	}
	return s.desc, nil
}

func mkLabels(t *testing.T, names []string, rows [][]int32) *descriptor.Labels {
	t.Helper()
	labels, err := descriptor.NewLabels(names, rows)
	require.NoError(t, err)
	return labels
}

// mkSystems builds one single-species system per requested size, with
// arbitrary distinct positions and an orthorhombic cell.
func mkSystems(t *testing.T, sizes ...int) []*system.System {
	t.Helper()

	systems := make([]*system.System, len(sizes))
	for i, size := range sizes {
		species := make([]int32, size)
		coords := make([]float64, size*3)
		for a := 0; a < size; a++ {
			species[a] = 1
			coords[a*3+0] = float64(i) + 0.5*float64(a)
			coords[a*3+1] = 0.25 * float64(a)
			coords[a*3+2] = -0.125 * float64(a)
		}
		positions, err := tensor.FromFloat64(coords, tensor.Shape{size, 3})
		require.NoError(t, err)
		cell, err := tensor.FromFloat64([]float64{
			10, 0, 0,
			0, 10, 0,
			0, 0, 10,
		}, tensor.Shape{3, 3})
		require.NoError(t, err)

		s, err := system.New(species, positions, cell, false)
		require.NoError(t, err)
		systems[i] = s
	}
	return systems
}

// mkValueBlock builds a block with the given sample rows and zero values.
func mkValueBlock(t *testing.T, sampleNames []string, sampleRows [][]int32, numProps int) *descriptor.TensorBlock {
	t.Helper()

	samples := mkLabels(t, sampleNames, sampleRows)
	properties, err := descriptor.Range("power", numProps)
	require.NoError(t, err)

	values := tensor.Zeros(tensor.Shape{len(sampleRows), numProps}, tensor.Float64, tensor.CPU)
	block, err := descriptor.NewTensorBlock(values, samples, nil, properties)
	require.NoError(t, err)
	return block
}

// addPositionsGradient attaches a positions gradient sub-block with the
// given (sample, structure, atom) rows and values of shape
// [len(rows), 3, numProps].
func addPositionsGradient(t *testing.T, block *descriptor.TensorBlock, rows [][]int32, values []float64) {
	t.Helper()
	addPositionsGradientNamed(t, block, []string{"sample", "structure", "atom"}, rows, values)
}

func addPositionsGradientNamed(t *testing.T, block *descriptor.TensorBlock, names []string, rows [][]int32, values []float64) {
	t.Helper()

	numProps := block.Properties().Count()
	samples := mkLabels(t, names, rows)
	direction := mkLabels(t, []string{"direction"}, [][]int32{{0}, {1}, {2}})

	gradValues, err := tensor.FromFloat64(values, tensor.Shape{len(rows), 3, numProps})
	require.NoError(t, err)
	gradient, err := descriptor.NewTensorBlock(gradValues, samples, []*descriptor.Labels{direction}, block.Properties())
	require.NoError(t, err)
	require.NoError(t, block.AddGradient(calculator.GradientPositions, gradient))
}

// addCellGradient attaches a cell gradient sub-block with one row per
// given sample index and values of shape [len(rows), 3, 3, numProps].
func addCellGradient(t *testing.T, block *descriptor.TensorBlock, sampleIndexes []int32, values []float64) {
	t.Helper()

	numProps := block.Properties().Count()
	rows := make([][]int32, len(sampleIndexes))
	for i, s := range sampleIndexes {
		rows[i] = []int32{s}
	}
	samples := mkLabels(t, []string{"sample"}, rows)
	direction1 := mkLabels(t, []string{"direction_1"}, [][]int32{{0}, {1}, {2}})
	direction2 := mkLabels(t, []string{"direction_2"}, [][]int32{{0}, {1}, {2}})

	gradValues, err := tensor.FromFloat64(values, tensor.Shape{len(rows), 3, 3, numProps})
	require.NoError(t, err)
	gradient, err := descriptor.NewTensorBlock(gradValues, samples, []*descriptor.Labels{direction1, direction2}, block.Properties())
	require.NoError(t, err)
	require.NoError(t, block.AddGradient(calculator.GradientCell, gradient))
}

// mkMap wraps blocks into a tensor map with a trivial one-column key.
func mkMap(t *testing.T, blocks ...*descriptor.TensorBlock) *descriptor.TensorMap {
	t.Helper()

	keyRows := make([][]int32, len(blocks))
	for i := range blocks {
		keyRows[i] = []int32{int32(i)}
	}
	keys := mkLabels(t, []string{"key"}, keyRows)

	tmap, err := descriptor.NewTensorMap(keys, blocks)
	require.NoError(t, err)
	return tmap
}

// upstream builds a contiguous [numSamples, numProps] gradient tensor.
func upstream(t *testing.T, values []float64, numSamples, numProps int) *tensor.RawTensor {
	t.Helper()
	grad, err := tensor.FromFloat64(values, tensor.Shape{numSamples, numProps})
	require.NoError(t, err)
	return grad
}
