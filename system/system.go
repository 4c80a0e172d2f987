// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package system provides the public API for atomic configurations and
// batch assembly.
package system

import (
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/tensor"
)

// System is one atomic configuration.
type System = system.System

// New creates a system from species, positions and a 3x3 cell.
func New(species []int32, positions, cell *tensor.RawTensor, useNativeSystem bool) (*System, error) {
	return system.New(species, positions, cell, useNativeSystem)
}

// ConcatPositions assembles the [totalAtoms, 3] differentiable positions
// leaf for a batch.
func ConcatPositions(systems []*System) *tensor.RawTensor {
	return system.ConcatPositions(systems)
}

// ConcatCells assembles the [len(systems), 3, 3] differentiable cell leaf
// for a batch.
func ConcatCells(systems []*System) *tensor.RawTensor {
	return system.ConcatCells(systems)
}
