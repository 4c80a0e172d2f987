// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge provides the public API for running a calculator inside
// the differentiation engine: a forward pass that registers descriptor
// block values on the tape, and custom backward rules reconstructing
// gradients with respect to atomic positions and per-structure cells.
//
// Example:
//
//	tape := autodiff.NewGradientTape()
//	tape.StartRecording()
//
//	positions := system.ConcatPositions(systems)
//	cells := system.ConcatCells(systems)
//	result, err := bridge.Forward(positions, cells, calc, systems,
//	    []string{"positions"}, bridge.GradientFlags{Positions: true}, tape)
package bridge

import (
	"github.com/featgrad-ml/featgrad/autodiff"
	"github.com/featgrad-ml/featgrad/calculator"
	"github.com/featgrad-ml/featgrad/internal/bridge"
	"github.com/featgrad-ml/featgrad/system"
	"github.com/featgrad-ml/featgrad/tensor"
)

// ErrInvalidArgument marks user-facing argument errors reported at
// forward time. Test with errors.Is.
var ErrInvalidArgument = bridge.ErrInvalidArgument

// GradientFlags states which differentiable inputs require gradients.
type GradientFlags = bridge.GradientFlags

// Result is the outcome of a bridged forward pass.
type Result = bridge.Result

// CalculatorOp is the recorded differentiable operation.
type CalculatorOp = bridge.CalculatorOp

// Forward invokes the calculator once over the batch and registers the
// resulting block values on the tape (which may be nil to skip graph
// registration).
func Forward(
	positions, cells *tensor.RawTensor,
	calc calculator.Calculator,
	systems []*system.System,
	forwardGradients []string,
	flags GradientFlags,
	tape *autodiff.GradientTape,
) (*Result, error) {
	return bridge.Forward(positions, cells, calc, systems, forwardGradients, flags, tape)
}
