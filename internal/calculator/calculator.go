// Package calculator defines the feature-computation interface consumed by
// the autograd bridge, together with the calculation options and a built-in
// calculator.
package calculator

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/system"
)

// Gradient parameter names understood by calculators.
const (
	GradientPositions = "positions"
	GradientCell      = "cell"
)

// Options controls a single Compute call.
type Options struct {
	// Gradients lists the parameters to compute forward gradients for.
	// Supported values are GradientPositions and GradientCell.
	Gradients []string

	// UseNativeSystem tells the calculator to reuse the neighbor lists
	// pre-supplied on the systems instead of building its own.
	UseNativeSystem bool

	// SelectedProperties and SelectedSamples are reserved. Setting either
	// is rejected with an explicit error until their behavior is
	// specified; they are not silently-ignored filters.
	SelectedProperties *descriptor.Labels
	SelectedSamples    *descriptor.Labels
}

// Validate checks the options for reserved or unknown settings.
func (o Options) Validate() error {
	for _, parameter := range o.Gradients {
		if parameter != GradientPositions && parameter != GradientCell {
			return fmt.Errorf("unknown gradient parameter %q", parameter)
		}
	}
	if o.SelectedProperties != nil {
		return fmt.Errorf("selected_properties is reserved and not implemented")
	}
	if o.SelectedSamples != nil {
		return fmt.Errorf("selected_samples is reserved and not implemented")
	}
	return nil
}

// HasGradient reports whether the options request a forward gradient for
// the given parameter.
func (o Options) HasGradient(parameter string) bool {
	for _, p := range o.Gradients {
		if p == parameter {
			return true
		}
	}
	return false
}

// Calculator computes a block-sparse descriptor for a batch of systems.
// Compute is synchronous and may be arbitrarily expensive; implementations
// are free to parallelize internally.
type Calculator interface {
	// Name returns the calculator's registered name.
	Name() string

	// Compute runs the calculation once over the whole batch.
	Compute(systems []*system.System, options Options) (*descriptor.TensorMap, error)
}
