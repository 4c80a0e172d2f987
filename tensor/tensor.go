// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense arrays used
// throughout featgrad: descriptor values, gradient sub-block values, label
// tables, and the tensors flowing through the differentiation engine.
//
// Example:
//
//	positions, err := tensor.FromFloat64(coords, tensor.Shape{nAtoms, 3})
package tensor

import (
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// RawTensor is the low-level dense array representation.
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Device represents the compute device for tensor operations.
type Device = tensor.Device

// Backend defines the compute interface the gradient tape relies on.
type Backend = tensor.Backend

// Supported data types.
const (
	Float64 = tensor.Float64
	Float32 = tensor.Float32
	Int32   = tensor.Int32
	Int64   = tensor.Int64
)

// CPU is the host-memory device.
const CPU = tensor.CPU

// NewRaw creates a new zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Zeros creates a zero-initialized tensor, panicking on an invalid shape.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// ZerosLike creates a zero-initialized tensor shaped like the given one.
func ZerosLike(t *RawTensor) *RawTensor {
	return tensor.ZerosLike(t)
}

// FromFloat64 creates a Float64 tensor from a slice, copying the data.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// FromInt32 creates an Int32 tensor from a slice, copying the data.
func FromInt32(data []int32, shape Shape) (*RawTensor, error) {
	return tensor.FromInt32(data, shape)
}
