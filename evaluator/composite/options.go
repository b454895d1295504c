//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package composite

import (
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
)

// options aggregates configurable parts of the composite evaluator.
type options struct {
	weights metric.Weights
}

// newOptions creates options with default weights.
func newOptions(opt ...Option) *options {
	opts := &options{
		weights: metric.DefaultWeights(),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures the composite evaluator.
type Option func(*options)

// WithWeights sets the dimension weights.
func WithWeights(weights metric.Weights) Option {
	return func(o *options) {
		o.weights = weights
	}
}
