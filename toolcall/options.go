//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package toolcall

// Options is the configuration for the extractor.
type Options struct {
	// KnownTools are the tool names recognized in marker lines and
	// plain-text mentions.
	KnownTools []string
}

// NewOptions builds the extractor options with given option list.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		KnownTools: DefaultKnownTools(),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Option is the functional option for the extractor.
type Option func(*Options)

// WithKnownTools replaces the recognized tool names.
func WithKnownTools(tools []string) Option {
	return func(opts *Options) {
		opts.KnownTools = tools
	}
}
