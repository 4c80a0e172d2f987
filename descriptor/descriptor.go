// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package descriptor provides the public API for the block-sparse
// container: named-column label tables, tensor blocks with gradient
// sub-blocks, and key-indexed tensor maps.
package descriptor

import (
	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/tensor"
)

// Labels is a named-column integer table.
type Labels = descriptor.Labels

// TensorBlock is one dense entry of a block-sparse tensor map.
type TensorBlock = descriptor.TensorBlock

// TensorMap is an ordered key -> block structure.
type TensorMap = descriptor.TensorMap

// NewLabels creates a label table from explicit rows.
func NewLabels(names []string, rows [][]int32) (*Labels, error) {
	return descriptor.NewLabels(names, rows)
}

// Range creates a single-column label table with values 0..count-1.
func Range(name string, count int) (*Labels, error) {
	return descriptor.Range(name, count)
}

// NewTensorBlock creates a block, validating values against label tables.
func NewTensorBlock(values *tensor.RawTensor, samples *Labels, components []*Labels, properties *Labels) (*TensorBlock, error) {
	return descriptor.NewTensorBlock(values, samples, components, properties)
}

// NewTensorMap creates a tensor map from a key table and blocks.
func NewTensorMap(keys *Labels, blocks []*TensorBlock) (*TensorMap, error) {
	return descriptor.NewTensorMap(keys, blocks)
}
