//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package responseaccuracy provides final answer accuracy evaluation.
package responseaccuracy

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	cresponseaccuracy "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/responseaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// responseAccuracyEvaluator scores agreement between actual and expected answers.
type responseAccuracyEvaluator struct {
}

// New creates a new response accuracy evaluator.
func New() evaluator.Evaluator {
	return &responseAccuracyEvaluator{}
}

// Name returns the evaluator identifier.
func (e *responseAccuracyEvaluator) Name() string {
	return metric.MetricResponseAccuracyScore
}

// Description describes the evaluator purpose.
func (e *responseAccuracyEvaluator) Description() string {
	return "Evaluates the agent's final answer against the expected answer"
}

// Evaluate compares final answers between actual and expected invocations.
// The actual side also contributes tool response payloads captured in the
// turn record, so warnings surface even when the answer text omits them.
func (e *responseAccuracyEvaluator) Evaluate(ctx context.Context, actuals, expecteds []*evalset.Invocation,
	evalMetric *metric.EvalMetric) (*evaluator.EvaluateResult, error) {
	if evalMetric == nil || evalMetric.Criterion == nil || evalMetric.Criterion.ResponseAccuracy == nil {
		return nil, errors.New("response accuracy criterion not configured")
	}
	if len(actuals) != len(expecteds) {
		return nil, fmt.Errorf("responseaccuracy: actual invocations (%d) and expected invocations (%d) count mismatch",
			len(actuals), len(expecteds))
	}
	perInvocation := make([]evaluator.PerInvocationResult, 0, len(actuals))
	var totalScore float64
	for i := range len(actuals) {
		actual := actuals[i]
		expected := expecteds[i]
		score, reason := scoreInvocation(actual, expected, evalMetric.Criterion.ResponseAccuracy)
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

func (e *responseAccuracyEvaluator) statusForScore(score float64, evalMetric *metric.EvalMetric) status.EvalStatus {
	if score >= evalMetric.Threshold {
		return status.EvalStatusPassed
	}
	return status.EvalStatusFailed
}

// scoreInvocation rates answer agreement for one invocation pair.
func scoreInvocation(actual, expected *evalset.Invocation,
	criterion *cresponseaccuracy.ResponseAccuracyCriterion) (float64, string) {
	actualInfo := criterion.Extract(finalResponse(actual), toolPayloads(actual))
	expectedInfo := criterion.Extract(finalResponse(expected), nil)
	return criterion.Similarity(actualInfo, expectedInfo)
}

func finalResponse(inv *evalset.Invocation) string {
	if inv == nil {
		return ""
	}
	return inv.FinalResponse
}

func toolPayloads(inv *evalset.Invocation) []map[string]any {
	if inv == nil {
		return nil
	}
	return transcript.ToolResponsePayloads(inv.Turn)
}
