package tensor

import "fmt"

// Zeros creates a zero-initialized tensor with the given shape and dtype.
// Panics on an invalid shape; callers construct shapes from validated
// label tables and system sizes.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return raw
}

// ZerosLike creates a zero-initialized tensor with the same shape, dtype
// and device as the given tensor.
func ZerosLike(t *RawTensor) *RawTensor {
	return Zeros(t.Shape(), t.DType(), t.Device())
}

// FromFloat64 creates a Float64 tensor from a slice.
// The data is copied; the slice length must match the shape.
//
// Example:
//
//	positions, err := tensor.FromFloat64(coords, tensor.Shape{nAtoms, 3})
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float64, CPU)
	if err != nil {
		return nil, err
	}
	if len(data) != raw.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, raw.NumElements())
	}
	copy(raw.AsFloat64(), data)
	return raw, nil
}

// FromInt32 creates an Int32 tensor from a slice.
// The data is copied; the slice length must match the shape.
func FromInt32(data []int32, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Int32, CPU)
	if err != nil {
		return nil, err
	}
	if len(data) != raw.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, raw.NumElements())
	}
	copy(raw.AsInt32(), data)
	return raw, nil
}
