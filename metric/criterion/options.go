//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package criterion

import (
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/paramaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/responseaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/toolselection"
)

// options aggregates configurable parts of Criterion.
type options struct {
	toolSelection    *toolselection.ToolSelectionCriterion
	paramAccuracy    *paramaccuracy.ParamAccuracyCriterion
	responseAccuracy *responseaccuracy.ResponseAccuracyCriterion
	weights          *Weights
}

// newOptions creates options with every criterion at its defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		toolSelection:    toolselection.New(),
		paramAccuracy:    paramaccuracy.New(),
		responseAccuracy: responseaccuracy.New(),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures Criterion.
type Option func(*options)

// WithToolSelection sets the tool selection criterion.
func WithToolSelection(toolSelection *toolselection.ToolSelectionCriterion) Option {
	return func(o *options) {
		o.toolSelection = toolSelection
	}
}

// WithParamAccuracy sets the parameter accuracy criterion.
func WithParamAccuracy(paramAccuracy *paramaccuracy.ParamAccuracyCriterion) Option {
	return func(o *options) {
		o.paramAccuracy = paramAccuracy
	}
}

// WithResponseAccuracy sets the response accuracy criterion.
func WithResponseAccuracy(responseAccuracy *responseaccuracy.ResponseAccuracyCriterion) Option {
	return func(o *options) {
		o.responseAccuracy = responseAccuracy
	}
}

// WithWeights sets the composite weighting carried by the criterion.
func WithWeights(weights Weights) Option {
	return func(o *options) {
		o.weights = &weights
	}
}
