package chain

import (
	"context"
	"fmt"

	"circle-inspector/internal/debug/timing"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/safe"
)

type ProcessingStep interface {
	Apply(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error)
	Name() string
	ShouldExecute(params models.CleanerParams) bool
}

// Stage is the output of one executed step
type Stage struct {
	Name   string
	Output *safe.Mat
}

type ProcessingChain struct {
	steps  []ProcessingStep
	timing *timing.Tracker
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// WithTiming records the duration of every executed step under its name
func (pc *ProcessingChain) WithTiming(tracker *timing.Tracker) *ProcessingChain {
	pc.timing = tracker
	return pc
}

// Execute runs every applicable step and returns the final output. Intermediates are closed;
// input is never closed or modified.
func (pc *ProcessingChain) Execute(ctx context.Context, input *safe.Mat, params models.CleanerParams) (*safe.Mat, error) {
	current := input

	err := pc.run(ctx, input, params, func(name string, result *safe.Mat) {
		if current != input {
			current.Close()
		}
		current = result
	})
	if err != nil {
		if current != input {
			current.Close()
		}
		return nil, err
	}

	if current == input {
		return input.Clone("chain_passthrough")
	}
	return current, nil
}

// ExecuteStages runs every applicable step and keeps each output. The caller owns the
// returned stages and must close them; on error they are already closed.
func (pc *ProcessingChain) ExecuteStages(ctx context.Context, input *safe.Mat, params models.CleanerParams) ([]Stage, error) {
	var stages []Stage

	err := pc.run(ctx, input, params, func(name string, result *safe.Mat) {
		stages = append(stages, Stage{Name: name, Output: result})
	})
	if err != nil {
		CloseStages(stages)
		return nil, err
	}

	return stages, nil
}

func (pc *ProcessingChain) run(ctx context.Context, input *safe.Mat, params models.CleanerParams, emit func(string, *safe.Mat)) error {
	current := input

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !step.ShouldExecute(params) {
			continue
		}

		timingCtx := pc.timing.StartTimingWith(ctx, step.Name())
		result, err := step.Apply(timingCtx, current, params)
		pc.timing.EndTiming(timingCtx)
		if err != nil {
			return fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		emit(step.Name(), result)
		current = result
	}

	return nil
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}

func CloseStages(stages []Stage) {
	for _, stage := range stages {
		stage.Output.Close()
	}
}
