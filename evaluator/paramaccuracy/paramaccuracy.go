//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package paramaccuracy provides tool parameter accuracy evaluation.
package paramaccuracy

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	cparamaccuracy "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/paramaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// paramAccuracyEvaluator scores the arguments of each invocation's latest tool call.
type paramAccuracyEvaluator struct {
}

// New creates a new parameter accuracy evaluator.
func New() evaluator.Evaluator {
	return &paramAccuracyEvaluator{}
}

// Name returns the evaluator identifier.
func (e *paramAccuracyEvaluator) Name() string {
	return metric.MetricParamAccuracyScore
}

// Description describes the evaluator purpose.
func (e *paramAccuracyEvaluator) Description() string {
	return "Evaluates whether the agent passed the expected tool parameters"
}

// Evaluate compares tool call arguments between actual and expected invocations.
func (e *paramAccuracyEvaluator) Evaluate(ctx context.Context, actuals, expecteds []*evalset.Invocation,
	evalMetric *metric.EvalMetric) (*evaluator.EvaluateResult, error) {
	if evalMetric == nil || evalMetric.Criterion == nil || evalMetric.Criterion.ParamAccuracy == nil {
		return nil, errors.New("param accuracy criterion not configured")
	}
	if len(actuals) != len(expecteds) {
		return nil, fmt.Errorf("paramaccuracy: actual invocations (%d) and expected invocations (%d) count mismatch",
			len(actuals), len(expecteds))
	}
	perInvocation := make([]evaluator.PerInvocationResult, 0, len(actuals))
	var totalScore float64
	for i := range len(actuals) {
		actual := actuals[i]
		expected := expecteds[i]
		score, reason := scoreInvocation(actual, expected, evalMetric.Criterion.ParamAccuracy)
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

func (e *paramAccuracyEvaluator) statusForScore(score float64, evalMetric *metric.EvalMetric) status.EvalStatus {
	if score >= evalMetric.Threshold {
		return status.EvalStatusPassed
	}
	return status.EvalStatusFailed
}

// scoreInvocation rates the observed arguments of the latest tool call
// against the expected ones.
func scoreInvocation(actual, expected *evalset.Invocation,
	criterion *cparamaccuracy.ParamAccuracyCriterion) (float64, string) {
	expectedCall := expected.LatestToolCall()
	if expectedCall == nil || len(expectedCall.Arguments) == 0 {
		return 0, "Expected parameters not found in context"
	}
	var actualArgs map[string]any
	if actualCall := actual.LatestToolCall(); actualCall != nil {
		actualArgs = actualCall.Arguments
	}
	report := criterion.Compare(actualArgs, expectedCall.Arguments)
	return report.Score, report.Reason
}
