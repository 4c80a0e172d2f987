package bridge

import (
	"github.com/featgrad-ml/featgrad/internal/calculator"
	"github.com/featgrad-ml/featgrad/internal/system"
)

// GradientFlags states which of the two differentiable inputs actually
// require gradients for the current invocation. The flags are threaded
// explicitly through forward and backward instead of living in ambient
// state, so concurrent invocations can not observe each other.
type GradientFlags struct {
	// Positions is true when the per-atom positions input is
	// differentiable.
	Positions bool

	// Cell is true when the per-structure cell input is differentiable.
	Cell bool
}

// resolveOptions decides which gradients to request from the calculator:
// everything the caller explicitly asked for in forwardGradients, plus
// whatever the differentiability flags require for the backward pass.
//
// The second return value reports whether every computed gradient was
// explicitly requested; when false, gradients computed only for backward
// are stripped from the externally visible output.
func resolveOptions(
	forwardGradients []string,
	flags GradientFlags,
	systems []*system.System,
) (calculator.Options, bool, error) {
	options := calculator.Options{}

	for _, parameter := range forwardGradients {
		if parameter != calculator.GradientPositions && parameter != calculator.GradientCell {
			return options, false, invalidArgumentf("invalid parameter in forward gradients: %s", parameter)
		}
	}

	if contains(forwardGradients, calculator.GradientPositions) || flags.Positions {
		options.Gradients = append(options.Gradients, calculator.GradientPositions)
	}
	if contains(forwardGradients, calculator.GradientCell) || flags.Cell {
		options.Gradients = append(options.Gradients, calculator.GradientCell)
	}

	allForwardGradients := true
	for _, parameter := range options.Gradients {
		if !contains(forwardGradients, parameter) {
			allForwardGradients = false
		}
	}

	useNative, err := allSystemsUseNative(systems)
	if err != nil {
		return options, false, err
	}
	options.UseNativeSystem = useNative

	return options, allForwardGradients, nil
}

// allSystemsUseNative verifies the whole batch agrees on whether systems
// carry pre-supplied neighbor lists.
func allSystemsUseNative(systems []*system.System) (bool, error) {
	if len(systems) == 0 {
		return false, invalidArgumentf("at least one system is required")
	}
	result := systems[0].UseNativeSystem()
	for _, s := range systems {
		if s.UseNativeSystem() != result {
			return false, invalidArgumentf("either all or none of the systems should have pre-defined neighbor lists")
		}
	}
	return result, nil
}

func contains(haystack []string, needle string) bool {
	for _, value := range haystack {
		if value == needle {
			return true
		}
	}
	return false
}
