//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package paramaccuracy

// options configures ParamAccuracyCriterion.
type options struct {
	valuesMatch func(actual, expected any) bool
}

func newOptions(opt ...Option) *options {
	opts := &options{}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures ParamAccuracyCriterion.
type Option func(*options)

// WithValuesMatch overrides the value equivalence rules.
func WithValuesMatch(match func(actual, expected any) bool) Option {
	return func(o *options) {
		o.valuesMatch = match
	}
}
