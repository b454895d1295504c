//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package toolselection provides tool selection evaluation.
package toolselection

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// toolSelectionEvaluator scores whether each invocation called the expected tool.
type toolSelectionEvaluator struct {
}

// New creates a new tool selection evaluator.
func New() evaluator.Evaluator {
	return &toolSelectionEvaluator{}
}

// Name returns the evaluator identifier.
func (e *toolSelectionEvaluator) Name() string {
	return metric.MetricToolSelectionScore
}

// Description describes the evaluator purpose.
func (e *toolSelectionEvaluator) Description() string {
	return "Evaluates whether the agent selected the expected tool"
}

// Evaluate compares selected tool names between actual and expected invocations.
func (e *toolSelectionEvaluator) Evaluate(ctx context.Context, actuals, expecteds []*evalset.Invocation,
	evalMetric *metric.EvalMetric) (*evaluator.EvaluateResult, error) {
	if evalMetric == nil || evalMetric.Criterion == nil || evalMetric.Criterion.ToolSelection == nil {
		return nil, errors.New("tool selection criterion not configured")
	}
	if len(actuals) != len(expecteds) {
		return nil, fmt.Errorf("toolselection: actual invocations (%d) and expected invocations (%d) count mismatch",
			len(actuals), len(expecteds))
	}
	perInvocation := make([]evaluator.PerInvocationResult, 0, len(actuals))
	var totalScore float64
	for i := range len(actuals) {
		actual := actuals[i]
		expected := expecteds[i]
		score, reason := evalMetric.Criterion.ToolSelection.Score(latestToolName(actual), latestToolName(expected))
		perInvocation = append(perInvocation, evaluator.PerInvocationResult{
			ActualInvocation:   actual,
			ExpectedInvocation: expected,
			Score:              &score,
			EvalStatus:         e.statusForScore(score, evalMetric),
			Reason:             reason,
		})
		totalScore += score
	}
	if len(perInvocation) == 0 {
		return &evaluator.EvaluateResult{
			OverallStatus: status.EvalStatusNotEvaluated,
		}, nil
	}
	overallScore := totalScore / float64(len(perInvocation))
	return &evaluator.EvaluateResult{
		OverallScore:         &overallScore,
		OverallStatus:        e.statusForScore(overallScore, evalMetric),
		PerInvocationResults: perInvocation,
	}, nil
}

func (e *toolSelectionEvaluator) statusForScore(score float64, evalMetric *metric.EvalMetric) status.EvalStatus {
	if score >= evalMetric.Threshold {
		return status.EvalStatusPassed
	}
	return status.EvalStatusFailed
}

// latestToolName returns the name of the most recent tool call of the
// invocation, or empty when none was recorded.
func latestToolName(inv *evalset.Invocation) string {
	if call := inv.LatestToolCall(); call != nil {
		return call.Name
	}
	return ""
}
