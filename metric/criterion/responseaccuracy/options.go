//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package responseaccuracy

// options configures ResponseAccuracyCriterion.
type options struct {
	statusMapping map[string]string
}

func newOptions(opt ...Option) *options {
	opts := &options{}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures ResponseAccuracyCriterion.
type Option func(*options)

// WithStatusMapping adds status mappings on top of the built-in ones.
func WithStatusMapping(mapping map[string]string) Option {
	return func(o *options) {
		o.statusMapping = mapping
	}
}
