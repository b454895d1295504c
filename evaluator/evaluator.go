//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package evaluator defines the scoring interface metrics are evaluated with.
package evaluator

import (
	"context"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// Evaluator scores actual invocations against expected ones for a single metric.
type Evaluator interface {
	// Name returns the metric name this evaluator scores.
	Name() string
	// Description returns a description of what this evaluator measures.
	Description() string
	// Evaluate scores actual invocations against expected invocations.
	Evaluate(ctx context.Context, actuals, expecteds []*evalset.Invocation,
		evalMetric *metric.EvalMetric) (*EvaluateResult, error)
}

// EvaluateResult is the outcome of evaluating one eval case for one metric.
type EvaluateResult struct {
	// OverallScore is the mean of the per invocation scores. It is nil when
	// nothing was evaluated.
	OverallScore *float64
	// OverallStatus is the status derived from OverallScore and the metric
	// threshold.
	OverallStatus status.EvalStatus
	// PerInvocationResults holds one result per invocation pair.
	PerInvocationResults []PerInvocationResult
}

// PerInvocationResult is the outcome for a single invocation pair.
type PerInvocationResult struct {
	// ActualInvocation is the invocation observed from the agent.
	ActualInvocation *evalset.Invocation
	// ExpectedInvocation is the reference invocation from the eval set.
	ExpectedInvocation *evalset.Invocation
	// Score is the score for this invocation, nil when not evaluated.
	Score *float64
	// EvalStatus is the status derived from Score and the metric threshold.
	EvalStatus status.EvalStatus
	// Reason explains how the score came about.
	Reason string
}
