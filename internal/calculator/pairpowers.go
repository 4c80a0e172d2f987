package calculator

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/featgrad-ml/featgrad/internal/descriptor"
	"github.com/featgrad-ml/featgrad/internal/parallel"
	"github.com/featgrad-ml/featgrad/internal/system"
	"github.com/featgrad-ml/featgrad/internal/tensor"
)

// PairPowers computes a per-atom descriptor from even powers of
// interatomic distances:
//
//	X[i, p] = sum over j != i in the same system of |r_j - r_i|^(2(p+1))
//
// for p = 0..maxPower-1. Blocks are keyed by the species of the center
// atom. Position and cell gradients are analytic; the cell gradient is the
// virial contraction of the position gradients with the pair vectors.
//
// The UseNativeSystem option is accepted but has no effect here: this
// calculator iterates all pairs and never builds a neighbor list.
type PairPowers struct {
	maxPower int
}

type pairPowersHypers struct {
	MaxPower int `yaml:"max_power"`
}

// NewPairPowers creates a PairPowers calculator with maxPower properties.
func NewPairPowers(maxPower int) (*PairPowers, error) {
	if maxPower < 1 {
		return nil, fmt.Errorf("pair_powers: max_power must be at least 1, got %d", maxPower)
	}
	return &PairPowers{maxPower: maxPower}, nil
}

// NewPairPowersFromYAML creates a PairPowers calculator from YAML
// hyperparameters: `{max_power: <int>}`.
func NewPairPowersFromYAML(data []byte) (*PairPowers, error) {
	var hypers pairPowersHypers
	if err := yaml.Unmarshal(data, &hypers); err != nil {
		return nil, fmt.Errorf("pair_powers hyperparameters: %w", err)
	}
	return NewPairPowers(hypers.MaxPower)
}

// Name returns the calculator name.
func (c *PairPowers) Name() string {
	return "pair_powers"
}

// blockBuilder accumulates one species block while scanning the batch.
type blockBuilder struct {
	species    int32
	sampleRows [][]int32 // (structure, center)
	posRows    [][]int32 // (sample, structure, atom)

	// Per-system start offsets into sampleRows/posRows, so systems can be
	// filled concurrently into disjoint ranges.
	sampleStart []int
	posStart    []int

	values     []float64 // [samples, maxPower]
	posValues  []float64 // [posRows, 3, maxPower]
	cellValues []float64 // [samples, 3, 3, maxPower]
}

// Compute runs the calculation over the whole batch, parallelizing over
// systems.
func (c *PairPowers) Compute(systems []*system.System, options Options) (*descriptor.TensorMap, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	wantPositions := options.HasGradient(GradientPositions)
	wantCell := options.HasGradient(GradientCell)

	// One block per species present in the batch, in increasing order.
	speciesSet := make(map[int32]bool)
	for _, sys := range systems {
		for _, sp := range sys.Species() {
			speciesSet[sp] = true
		}
	}
	allSpecies := make([]int32, 0, len(speciesSet))
	for sp := range speciesSet {
		allSpecies = append(allSpecies, sp)
	}
	sort.Slice(allSpecies, func(i, j int) bool { return allSpecies[i] < allSpecies[j] })

	blockIndex := make(map[int32]int, len(allSpecies))
	builders := make([]*blockBuilder, len(allSpecies))
	for i, sp := range allSpecies {
		blockIndex[sp] = i
		builders[i] = &blockBuilder{species: sp}
	}

	// First pass: lay out sample and gradient rows, recording per-system
	// offsets.
	for structureIdx, sys := range systems {
		for _, b := range builders {
			b.sampleStart = append(b.sampleStart, len(b.sampleRows))
			b.posStart = append(b.posStart, len(b.posRows))
		}
		size := sys.Size()
		for center, sp := range sys.Species() {
			b := builders[blockIndex[sp]]
			sampleIdx := len(b.sampleRows)
			b.sampleRows = append(b.sampleRows, []int32{int32(structureIdx), int32(center)})
			if wantPositions {
				// Every atom of the system contributes to this center.
				for atom := 0; atom < size; atom++ {
					b.posRows = append(b.posRows, []int32{int32(sampleIdx), int32(structureIdx), int32(atom)})
				}
			}
		}
	}

	numProps := c.maxPower
	for _, b := range builders {
		b.values = make([]float64, len(b.sampleRows)*numProps)
		if wantPositions {
			b.posValues = make([]float64, len(b.posRows)*3*numProps)
		}
		if wantCell {
			b.cellValues = make([]float64, len(b.sampleRows)*9*numProps)
		}
	}

	// Second pass: fill the values system by system. Systems write into
	// disjoint row ranges, so this runs in parallel.
	parallel.For(len(systems), func(structureIdx int) {
		c.computeSystem(systems[structureIdx], structureIdx, builders, blockIndex, wantPositions, wantCell)
	}, parallel.DefaultConfig())

	return c.assemble(allSpecies, builders, wantPositions, wantCell)
}

// computeSystem fills values and gradients for every center of one system.
func (c *PairPowers) computeSystem(
	sys *system.System,
	structureIdx int,
	builders []*blockBuilder,
	blockIndex map[int32]int,
	wantPositions, wantCell bool,
) {
	positions := sys.Positions().AsFloat64()
	size := sys.Size()
	numProps := c.maxPower

	// localSample counts samples of each block already filled for this
	// system, to recover block-global row indices.
	localSample := make([]int, len(builders))

	for center := 0; center < size; center++ {
		b := builders[blockIndex[sys.Species()[center]]]
		sampleIdx := b.sampleStart[structureIdx] + localSample[blockIndex[sys.Species()[center]]]

		// dX/dr_center accumulates the negative of every neighbor term.
		var selfGrad [3][]float64
		if wantPositions {
			for d := 0; d < 3; d++ {
				selfGrad[d] = make([]float64, numProps)
			}
		}

		for neighbor := 0; neighbor < size; neighbor++ {
			if neighbor == center {
				continue
			}

			var rij [3]float64
			distSq := 0.0
			for d := 0; d < 3; d++ {
				rij[d] = positions[neighbor*3+d] - positions[center*3+d]
				distSq += rij[d] * rij[d]
			}

			// values: add distSq^(p+1) for every power
			w := distSq
			for p := 0; p < numProps; p++ {
				b.values[sampleIdx*numProps+p] += w
				w *= distSq
			}

			if wantPositions {
				// d/dr_neighbor distSq^(p+1) = 2(p+1) distSq^p * rij
				neighborRow := b.posStart[structureIdx] +
					(sampleIdx-b.sampleStart[structureIdx])*size + neighbor
				w = 1.0
				for p := 0; p < numProps; p++ {
					scale := 2.0 * float64(p+1) * w
					for d := 0; d < 3; d++ {
						g := scale * rij[d]
						b.posValues[(neighborRow*3+d)*numProps+p] += g
						selfGrad[d][p] -= g
					}
					w *= distSq
				}
			}

			if wantCell {
				// Virial contraction: dX/dH[d1][d2] += dX/drij[d1] * rij[d2].
				w = 1.0
				for p := 0; p < numProps; p++ {
					scale := 2.0 * float64(p+1) * w
					for d1 := 0; d1 < 3; d1++ {
						for d2 := 0; d2 < 3; d2++ {
							b.cellValues[((sampleIdx*3+d1)*3+d2)*numProps+p] += scale * rij[d1] * rij[d2]
						}
					}
					w *= distSq
				}
			}
		}

		if wantPositions {
			centerRow := b.posStart[structureIdx] +
				(sampleIdx-b.sampleStart[structureIdx])*size + center
			for d := 0; d < 3; d++ {
				for p := 0; p < numProps; p++ {
					b.posValues[(centerRow*3+d)*numProps+p] = selfGrad[d][p]
				}
			}
		}

		localSample[blockIndex[sys.Species()[center]]]++
	}
}

// assemble packs the builders into a TensorMap with gradient sub-blocks.
func (c *PairPowers) assemble(allSpecies []int32, builders []*blockBuilder, wantPositions, wantCell bool) (*descriptor.TensorMap, error) {
	keyRows := make([][]int32, len(allSpecies))
	for i, sp := range allSpecies {
		keyRows[i] = []int32{sp}
	}
	keys, err := descriptor.NewLabels([]string{"species_center"}, keyRows)
	if err != nil {
		return nil, err
	}

	properties, err := descriptor.Range("power", c.maxPower)
	if err != nil {
		return nil, err
	}

	directions := [][]int32{{0}, {1}, {2}}
	direction, err := descriptor.NewLabels([]string{"direction"}, directions)
	if err != nil {
		return nil, err
	}
	direction1, err := descriptor.NewLabels([]string{"direction_1"}, directions)
	if err != nil {
		return nil, err
	}
	direction2, err := descriptor.NewLabels([]string{"direction_2"}, directions)
	if err != nil {
		return nil, err
	}

	blocks := make([]*descriptor.TensorBlock, 0, len(builders))
	for _, b := range builders {
		samples, err := descriptor.NewLabels([]string{"structure", "center"}, b.sampleRows)
		if err != nil {
			return nil, err
		}
		values, err := tensor.FromFloat64(b.values, tensor.Shape{len(b.sampleRows), c.maxPower})
		if err != nil {
			return nil, err
		}
		block, err := descriptor.NewTensorBlock(values, samples, nil, properties)
		if err != nil {
			return nil, err
		}

		if wantPositions {
			gradSamples, err := descriptor.NewLabels([]string{"sample", "structure", "atom"}, b.posRows)
			if err != nil {
				return nil, err
			}
			gradValues, err := tensor.FromFloat64(b.posValues, tensor.Shape{len(b.posRows), 3, c.maxPower})
			if err != nil {
				return nil, err
			}
			gradient, err := descriptor.NewTensorBlock(gradValues, gradSamples, []*descriptor.Labels{direction}, properties)
			if err != nil {
				return nil, err
			}
			if err := block.AddGradient(GradientPositions, gradient); err != nil {
				return nil, err
			}
		}

		if wantCell {
			rows := make([][]int32, len(b.sampleRows))
			for s := range rows {
				rows[s] = []int32{int32(s)}
			}
			gradSamples, err := descriptor.NewLabels([]string{"sample"}, rows)
			if err != nil {
				return nil, err
			}
			gradValues, err := tensor.FromFloat64(b.cellValues, tensor.Shape{len(b.sampleRows), 3, 3, c.maxPower})
			if err != nil {
				return nil, err
			}
			gradient, err := descriptor.NewTensorBlock(gradValues, gradSamples, []*descriptor.Labels{direction1, direction2}, properties)
			if err != nil {
				return nil, err
			}
			if err := block.AddGradient(GradientCell, gradient); err != nil {
				return nil, err
			}
		}

		blocks = append(blocks, block)
	}

	return descriptor.NewTensorMap(keys, blocks)
}
