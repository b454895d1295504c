//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package criterion provides configurable evaluation criteria.
package criterion

import (
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/paramaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/responseaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/toolselection"
)

// Criterion encapsulates the scoring rules a metric can carry.
type Criterion struct {
	// ToolSelection configures tool name matching.
	ToolSelection *toolselection.ToolSelectionCriterion `json:"toolSelection,omitempty"`
	// ParamAccuracy configures tool argument comparison.
	ParamAccuracy *paramaccuracy.ParamAccuracyCriterion `json:"paramAccuracy,omitempty"`
	// ResponseAccuracy configures final answer comparison.
	ResponseAccuracy *responseaccuracy.ResponseAccuracyCriterion `json:"responseAccuracy,omitempty"`
	// Weights distributes the composite score across the dimensions.
	// Nil means the evaluator's own weighting applies.
	Weights *Weights `json:"weights,omitempty"`
}

// New creates a Criterion with the provided options.
func New(opt ...Option) *Criterion {
	opts := newOptions(opt...)
	return &Criterion{
		ToolSelection:    opts.toolSelection,
		ParamAccuracy:    opts.paramAccuracy,
		ResponseAccuracy: opts.responseAccuracy,
		Weights:          opts.weights,
	}
}

// Weights distributes a composite score across the three dimensions.
// They are expected to sum to 1.
type Weights struct {
	// ToolSelection weighs whether the right tool was picked.
	ToolSelection float64 `json:"toolSelection"`
	// ParamAccuracy weighs whether the tool got the right arguments.
	ParamAccuracy float64 `json:"paramAccuracy"`
	// ResponseAccuracy weighs whether the final answer was right.
	ResponseAccuracy float64 `json:"responseAccuracy"`
}

// DefaultWeights returns the standard composite weighting. The final
// answer carries slightly more weight than either tool dimension.
func DefaultWeights() Weights {
	return Weights{
		ToolSelection:    0.3,
		ParamAccuracy:    0.3,
		ResponseAccuracy: 0.4,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.ToolSelection + w.ParamAccuracy + w.ResponseAccuracy
}
