// Copyright 2025 The FeatGrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the featgrad CLI: compute block-sparse descriptors
// for a batch of systems and backpropagate forces and virials through the
// calculator bridge.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/featgrad-ml/featgrad/autodiff"
	"github.com/featgrad-ml/featgrad/backend/cpu"
	"github.com/featgrad-ml/featgrad/bridge"
	"github.com/featgrad-ml/featgrad/calculator"
	"github.com/featgrad-ml/featgrad/system"
	"github.com/featgrad-ml/featgrad/tensor"
)

const version = "v0.1.0-dev"

type systemConfig struct {
	Species   []int32     `yaml:"species"`
	Positions [][]float64 `yaml:"positions"`
	Cell      [][]float64 `yaml:"cell"`
}

type calculatorConfig struct {
	MaxPower int `yaml:"max_power"`
}

type configFile struct {
	Calculator calculatorConfig `yaml:"calculator"`
	Systems    []systemConfig   `yaml:"systems"`
}

type computeCmd struct {
	Config    string   `arg:"" help:"YAML file with systems and calculator hyperparameters." type:"existingfile"`
	Gradients []string `help:"Gradient kinds to keep on the output descriptor (positions, cell)."`
	Forces    bool     `help:"Backpropagate and print per-atom forces."`
	Stress    bool     `help:"Backpropagate and print per-structure virials."`
}

type versionCmd struct{}

var cli struct {
	Compute computeCmd `cmd:"" help:"Compute a descriptor and its gradients."`
	Version versionCmd `cmd:"" help:"Show version."`
}

func (c *versionCmd) Run() error {
	fmt.Printf("featgrad %s\n", version)
	return nil
}

func (c *computeCmd) Run() error {
	data, err := os.ReadFile(c.Config)
	if err != nil {
		return err
	}

	var config configFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing %s: %w", c.Config, err)
	}

	systems, err := buildSystems(config.Systems)
	if err != nil {
		return err
	}

	calc, err := calculator.NewPairPowers(config.Calculator.MaxPower)
	if err != nil {
		return err
	}

	positions := system.ConcatPositions(systems)
	cells := system.ConcatCells(systems)

	tape := autodiff.NewGradientTape()
	tape.StartRecording()

	flags := bridge.GradientFlags{Positions: c.Forces, Cell: c.Stress}
	result, err := bridge.Forward(positions, cells, calc, systems, c.Gradients, flags, tape)
	if err != nil {
		return err
	}

	printDescriptor(result)

	if !c.Forces && !c.Stress {
		return nil
	}

	energy := autodiff.NewSumOp(result.Values...)
	tape.Record(energy)
	fmt.Printf("\nenergy (sum of descriptor values): %.8f\n", energy.Output().AsFloat64()[0])

	grads := autodiff.Backward(energy.Output(), tape, cpu.New())

	if c.Forces {
		printForces(grads[positions], systems)
	}
	if c.Stress {
		printVirials(grads[cells], len(systems))
	}

	return nil
}

func buildSystems(configs []systemConfig) ([]*system.System, error) {
	systems := make([]*system.System, 0, len(configs))
	for i, cfg := range configs {
		flat := make([]float64, 0, len(cfg.Positions)*3)
		for _, row := range cfg.Positions {
			if len(row) != 3 {
				return nil, fmt.Errorf("system %d: position rows must have 3 coordinates", i)
			}
			flat = append(flat, row...)
		}
		positions, err := tensor.FromFloat64(flat, tensor.Shape{len(cfg.Positions), 3})
		if err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}

		cellFlat := make([]float64, 0, 9)
		for _, row := range cfg.Cell {
			cellFlat = append(cellFlat, row...)
		}
		cell, err := tensor.FromFloat64(cellFlat, tensor.Shape{3, 3})
		if err != nil {
			return nil, fmt.Errorf("system %d cell: %w", i, err)
		}

		s, err := system.New(cfg.Species, positions, cell, false)
		if err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}
		systems = append(systems, s)
	}
	return systems, nil
}

func printDescriptor(result *bridge.Result) {
	desc := result.Descriptor
	fmt.Printf("descriptor: %d block(s), keys %v\n", desc.Len(), desc.Keys().Names())
	for i := 0; i < desc.Len(); i++ {
		block := desc.BlockByID(i)
		fmt.Printf("  block %d (key %v): values %v", i, desc.Keys().Row(i), block.Values().Shape())
		if names := block.GradientNames(); len(names) > 0 {
			fmt.Printf(", gradients %v", names)
		}
		fmt.Println()
	}
}

func printForces(positionsGrad *tensor.RawTensor, systems []*system.System) {
	if positionsGrad == nil {
		return
	}
	grad := positionsGrad.AsFloat64()
	fmt.Println("\nforces (-dE/dr):")
	atom := 0
	for i, s := range systems {
		for local := 0; local < s.Size(); local++ {
			fmt.Printf("  system %d atom %d: [%12.6f %12.6f %12.6f]\n",
				i, local, -grad[atom*3+0], -grad[atom*3+1], -grad[atom*3+2])
			atom++
		}
	}
}

func printVirials(cellsGrad *tensor.RawTensor, numSystems int) {
	if cellsGrad == nil {
		return
	}
	grad := cellsGrad.AsFloat64()
	fmt.Println("\nvirials (dE/dH):")
	for i := 0; i < numSystems; i++ {
		fmt.Printf("  system %d:\n", i)
		for d1 := 0; d1 < 3; d1++ {
			fmt.Printf("    [%12.6f %12.6f %12.6f]\n",
				grad[(i*3+d1)*3+0], grad[(i*3+d1)*3+1], grad[(i*3+d1)*3+2])
		}
	}
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("featgrad"),
		kong.Description("Block-sparse atomistic descriptors with autograd-bridged forces and virials."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "featgrad: %v\n", err)
		os.Exit(1)
	}
}
