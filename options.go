//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package agenteval

import (
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	evalresultinmemory "trpc.group/trpc-go/trpc-agenteval-go/evalresult/inmemory"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	evalsetinmemory "trpc.group/trpc-go/trpc-agenteval-go/evalset/inmemory"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator/registry"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	metricinmemory "trpc.group/trpc-go/trpc-agenteval-go/metric/inmemory"
	"trpc.group/trpc-go/trpc-agenteval-go/service"
)

// defaultEvalCaseParallelism bounds concurrent eval case inference when
// parallel inference is enabled without an explicit limit.
const defaultEvalCaseParallelism = 3

type options struct {
	evalService                      service.Service
	evalSetManager                   evalset.Manager
	evalResultManager                evalresult.Manager
	metricManager                    metric.Manager
	registry                         registry.Registry
	callbacks                        *service.Callbacks
	numRuns                          int
	evalCaseParallelism              int
	evalCaseParallelInferenceEnabled bool
	sessionCleanupEnabled            bool
}

func newOptions(opt ...Option) *options {
	opts := &options{
		evalSetManager:        evalsetinmemory.New(),
		evalResultManager:     evalresultinmemory.New(),
		metricManager:         metricinmemory.New(),
		registry:              registry.New(),
		numRuns:               1,
		evalCaseParallelism:   defaultEvalCaseParallelism,
		sessionCleanupEnabled: true,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option configures the agent evaluator.
type Option func(*options)

// WithEvaluationService sets the evaluation service. A local service
// built from the managers is used by default.
func WithEvaluationService(s service.Service) Option {
	return func(o *options) {
		o.evalService = s
	}
}

// WithEvalSetManager sets the eval set manager.
// The in-memory eval set manager is used by default.
func WithEvalSetManager(m evalset.Manager) Option {
	return func(o *options) {
		o.evalSetManager = m
	}
}

// WithEvalResultManager sets the eval result manager.
// The in-memory eval result manager is used by default.
func WithEvalResultManager(m evalresult.Manager) Option {
	return func(o *options) {
		o.evalResultManager = m
	}
}

// WithMetricManager sets the metric manager.
// The in-memory metric manager is used by default. The built-in default
// metrics apply when the manager has no metrics stored for an eval set.
func WithMetricManager(m metric.Manager) Option {
	return func(o *options) {
		o.metricManager = m
	}
}

// WithEvaluatorRegistry sets the evaluator registry.
// The built-in registry is used by default.
func WithEvaluatorRegistry(r registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithCallbacks sets the service lifecycle callbacks.
func WithCallbacks(c *service.Callbacks) Option {
	return func(o *options) {
		o.callbacks = c
	}
}

// WithNumRuns sets how many times the eval set is run. Multiple runs
// smooth out agent nondeterminism; case scores are averaged across runs.
func WithNumRuns(numRuns int) Option {
	return func(o *options) {
		if numRuns > 0 {
			o.numRuns = numRuns
		}
	}
}

// WithEvalCaseParallelism sets the maximum number of eval cases inferred
// concurrently when parallel inference is enabled.
func WithEvalCaseParallelism(n int) Option {
	return func(o *options) {
		o.evalCaseParallelism = n
	}
}

// WithEvalCaseParallelInferenceEnabled enables parallel eval case inference.
func WithEvalCaseParallelInferenceEnabled(enabled bool) Option {
	return func(o *options) {
		o.evalCaseParallelInferenceEnabled = enabled
	}
}

// WithSessionCleanupEnabled controls whether each eval case session is
// removed after its turns are captured. Enabled by default.
func WithSessionCleanupEnabled(enabled bool) Option {
	return func(o *options) {
		o.sessionCleanupEnabled = enabled
	}
}
