package descriptor

import (
	"fmt"

	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// TensorBlock is one dense entry of a block-sparse tensor map. Its values
// array is indexed as [samples, components..., properties], each axis
// described by a label table. A block can carry named gradient sub-blocks
// (for example "positions" or "cell"), each laid out like a block itself
// with its own sample table.
type TensorBlock struct {
	values     *tensor.RawTensor
	samples    *Labels
	components []*Labels
	properties *Labels

	gradientNames []string // insertion order
	gradients     map[string]*TensorBlock
}

// NewTensorBlock creates a block and validates that the values shape agrees
// with the label tables: one leading axis per the sample table, one middle
// axis per component table, one trailing axis per the property table.
func NewTensorBlock(values *tensor.RawTensor, samples *Labels, components []*Labels, properties *Labels) (*TensorBlock, error) {
	shape := values.Shape()
	if len(shape) != 2+len(components) {
		return nil, fmt.Errorf("block values have %d axes, expected %d (samples + %d components + properties)",
			len(shape), 2+len(components), len(components))
	}
	if shape[0] != samples.Count() {
		return nil, fmt.Errorf("block values have %d sample rows, sample labels have %d", shape[0], samples.Count())
	}
	for i, component := range components {
		if shape[1+i] != component.Count() {
			return nil, fmt.Errorf("block values axis %d has size %d, component labels have %d",
				1+i, shape[1+i], component.Count())
		}
	}
	if shape[len(shape)-1] != properties.Count() {
		return nil, fmt.Errorf("block values have %d property columns, property labels have %d",
			shape[len(shape)-1], properties.Count())
	}

	return &TensorBlock{
		values:     values,
		samples:    samples,
		components: components,
		properties: properties,
		gradients:  make(map[string]*TensorBlock),
	}, nil
}

// Values returns the block's values array.
func (b *TensorBlock) Values() *tensor.RawTensor {
	return b.values
}

// Samples returns the block's sample label table.
func (b *TensorBlock) Samples() *Labels {
	return b.samples
}

// Components returns the block's component label tables, one per middle axis.
func (b *TensorBlock) Components() []*Labels {
	return b.components
}

// Properties returns the block's property label table.
func (b *TensorBlock) Properties() *Labels {
	return b.properties
}

// AddGradient attaches a gradient sub-block under the given parameter name.
// The gradient must share the parent's property table; its sample table is
// its own (gradient rows do not map one-to-one to parent rows).
func (b *TensorBlock) AddGradient(parameter string, gradient *TensorBlock) error {
	if parameter == "" {
		return fmt.Errorf("gradient parameter name can not be empty")
	}
	if _, exists := b.gradients[parameter]; exists {
		return fmt.Errorf("block already has a gradient for parameter %q", parameter)
	}
	if !gradient.properties.NamesEqual(b.properties) || gradient.properties.Count() != b.properties.Count() {
		return fmt.Errorf("gradient for %q does not share the parent block's property labels", parameter)
	}

	b.gradientNames = append(b.gradientNames, parameter)
	b.gradients[parameter] = gradient
	return nil
}

// Gradient returns the gradient sub-block for the given parameter name.
func (b *TensorBlock) Gradient(parameter string) (*TensorBlock, bool) {
	gradient, ok := b.gradients[parameter]
	return gradient, ok
}

// GradientNames returns the attached gradient parameter names, in insertion
// order.
func (b *TensorBlock) GradientNames() []string {
	return append([]string(nil), b.gradientNames...)
}

// HasGradient reports whether the block carries a gradient for the given
// parameter.
func (b *TensorBlock) HasGradient(parameter string) bool {
	_, ok := b.gradients[parameter]
	return ok
}
