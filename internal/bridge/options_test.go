package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featgrad-ml/featgrad/internal/calculator"
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

func TestResolveOptions_UnionOfRequestedAndFlags(t *testing.T) {
	systems := mkSystems(t, 2)

	options, allForward, err := resolveOptions(
		[]string{calculator.GradientCell},
		GradientFlags{Positions: true},
		systems,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{calculator.GradientPositions, calculator.GradientCell}, options.Gradients)
	// positions was computed only for backward, so the visible output must
	// be trimmed.
	assert.False(t, allForward)
}

func TestResolveOptions_AllForwardGradients(t *testing.T) {
	systems := mkSystems(t, 2)

	options, allForward, err := resolveOptions(
		[]string{calculator.GradientPositions, calculator.GradientCell},
		GradientFlags{Positions: true, Cell: true},
		systems,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{calculator.GradientPositions, calculator.GradientCell}, options.Gradients)
	assert.True(t, allForward)

	// No gradients at all is trivially all-forward.
	options, allForward, err = resolveOptions(nil, GradientFlags{}, systems)
	require.NoError(t, err)
	assert.Empty(t, options.Gradients)
	assert.True(t, allForward)
}

func TestResolveOptions_DuplicateRequestNotDuplicated(t *testing.T) {
	systems := mkSystems(t, 1)

	options, allForward, err := resolveOptions(
		[]string{calculator.GradientPositions},
		GradientFlags{Positions: true},
		systems,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{calculator.GradientPositions}, options.Gradients)
	assert.True(t, allForward)
}

func TestResolveOptions_UnknownParameter(t *testing.T) {
	systems := mkSystems(t, 1)

	_, _, err := resolveOptions([]string{"volume"}, GradientFlags{}, systems)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "volume")
}

func TestResolveOptions_EmptyBatch(t *testing.T) {
	_, _, err := resolveOptions(nil, GradientFlags{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveOptions_NativeSystemDisagreement(t *testing.T) {
	systems := mkSystems(t, 2, 2)

	positions, err := tensor.FromFloat64([]float64{0, 0, 0}, tensor.Shape{1, 3})
	require.NoError(t, err)
	cell, err := tensor.FromFloat64(make([]float64, 9), tensor.Shape{3, 3})
	require.NoError(t, err)
	native, err := system.New([]int32{1}, positions, cell, true)
	require.NoError(t, err)
	systems = append(systems, native)

	_, _, err = resolveOptions(nil, GradientFlags{}, systems)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "neighbor lists")
}
