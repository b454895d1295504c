//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package service

import (
	"context"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	evalresultinmemory "trpc.group/trpc-go/trpc-agenteval-go/evalresult/inmemory"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	evalsetinmemory "trpc.group/trpc-go/trpc-agenteval-go/evalset/inmemory"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator/registry"
)

// defaultEvalCaseParallelism bounds concurrent eval case inference.
const defaultEvalCaseParallelism = 3

// Options holds the options for the evaluation service.
type Options struct {
	EvalSetManager    evalset.Manager                  // EvalSetManager is used to store and retrieve eval sets.
	EvalResultManager evalresult.Manager               // EvalResultManager is used to store and retrieve eval results.
	Registry          registry.Registry                // Registry is used to store and retrieve evaluators.
	SessionIDSupplier func(ctx context.Context) string // SessionIDSupplier is used to generate session IDs.
	Callbacks         *Callbacks                       // Callbacks are invoked around inference and evaluation stages.
	// EvalCaseParallelism bounds concurrent eval case inference when
	// parallel inference is enabled.
	EvalCaseParallelism int
	// EvalCaseParallelInferenceEnabled turns on parallel eval case inference.
	EvalCaseParallelInferenceEnabled bool
	// SessionCleanupEnabled removes each eval case session once its turns
	// are captured. Cleanup is best effort.
	SessionCleanupEnabled bool
}

// Option defines a function type for configuring the evaluation service.
type Option func(*Options)

// NewOptions creates a new Options with the default values.
func NewOptions(opt ...Option) *Options {
	opts := &Options{
		EvalSetManager:    evalsetinmemory.New(),
		EvalResultManager: evalresultinmemory.New(),
		Registry:          registry.New(),
		SessionIDSupplier: func(ctx context.Context) string {
			return uuid.New().String()
		},
		EvalCaseParallelism:   defaultEvalCaseParallelism,
		SessionCleanupEnabled: true,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithEvalSetManager sets the eval set manager.
// InMemory eval set manager is used by default.
func WithEvalSetManager(m evalset.Manager) Option {
	return func(o *Options) {
		o.EvalSetManager = m
	}
}

// WithEvalResultManager sets the eval result manager.
// InMemory eval result manager is used by default.
func WithEvalResultManager(m evalresult.Manager) Option {
	return func(o *Options) {
		o.EvalResultManager = m
	}
}

// WithRegistry sets the evaluator registry.
// Default evaluator registry is used by default.
func WithRegistry(r registry.Registry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithSessionIDSupplier sets the function used to generate session IDs.
// UUID generator is used by default.
func WithSessionIDSupplier(s func(ctx context.Context) string) Option {
	return func(o *Options) {
		o.SessionIDSupplier = s
	}
}

// WithCallbacks sets the lifecycle callbacks.
func WithCallbacks(c *Callbacks) Option {
	return func(o *Options) {
		o.Callbacks = c
	}
}

// WithEvalCaseParallelism sets the maximum number of eval cases inferred
// concurrently.
func WithEvalCaseParallelism(n int) Option {
	return func(o *Options) {
		o.EvalCaseParallelism = n
	}
}

// WithEvalCaseParallelInferenceEnabled enables parallel eval case inference.
func WithEvalCaseParallelInferenceEnabled(enabled bool) Option {
	return func(o *Options) {
		o.EvalCaseParallelInferenceEnabled = enabled
	}
}

// WithSessionCleanupEnabled controls whether each eval case session is
// removed after its turns are captured. Enabled by default.
func WithSessionCleanupEnabled(enabled bool) Option {
	return func(o *Options) {
		o.SessionCleanupEnabled = enabled
	}
}
