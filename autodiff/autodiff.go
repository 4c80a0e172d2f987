// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the public API of the reverse-mode
// differentiation engine the calculator bridge plugs into.
//
// Example:
//
//	tape := autodiff.NewGradientTape()
//	tape.StartRecording()
//	// ... bridge.Forward(...), ops recorded on the tape ...
//	grads := autodiff.Backward(loss, tape, cpu.New())
package autodiff

import (
	"github.com/featgrad-ml/featgrad/internal/autodiff"
	"github.com/featgrad-ml/featgrad/internal/autodiff/ops"
	"github.com/featgrad-ml/featgrad/tensor"
)

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// Operation is a differentiable operation recorded on the tape.
type Operation = ops.Operation

// MultiOutputOperation is an operation producing multiple outputs.
type MultiOutputOperation = ops.MultiOutputOperation

// SumOp reduces a tensor to its scalar total.
type SumOp = ops.SumOp

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// NewSumOp computes the scalar total of the given Float64 tensors and
// returns the operation.
func NewSumOp(inputs ...*tensor.RawTensor) *SumOp {
	return ops.NewSumOp(inputs...)
}

// Backward computes gradients for a Float64 output tensor, seeding the
// backward pass with ones.
func Backward(t *tensor.RawTensor, tape *GradientTape, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, tape, backend)
}
