//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package toolselection

import "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/text"

// options configures ToolSelectionCriterion.
type options struct {
	name *text.TextCriterion
}

func newOptions(opt ...Option) *options {
	opts := &options{
		name: defaultNameCriterion,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures ToolSelectionCriterion.
type Option func(*options)

// WithName sets the tool name comparison criterion.
func WithName(name *text.TextCriterion) Option {
	return func(o *options) {
		o.name = name
	}
}
