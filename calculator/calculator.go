// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package calculator provides the public API for descriptor calculators.
package calculator

import (
	"github.com/featgrad-ml/featgrad/internal/calculator"
)

// Gradient parameter names understood by calculators.
const (
	GradientPositions = calculator.GradientPositions
	GradientCell      = calculator.GradientCell
)

// Options controls a single Compute call.
type Options = calculator.Options

// Calculator computes a block-sparse descriptor for a batch of systems.
type Calculator = calculator.Calculator

// PairPowers is the built-in even-distance-powers calculator.
type PairPowers = calculator.PairPowers

// NewPairPowers creates a PairPowers calculator with maxPower properties.
func NewPairPowers(maxPower int) (*PairPowers, error) {
	return calculator.NewPairPowers(maxPower)
}

// NewPairPowersFromYAML creates a PairPowers calculator from YAML
// hyperparameters.
func NewPairPowersFromYAML(data []byte) (*PairPowers, error) {
	return calculator.NewPairPowersFromYAML(data)
}
