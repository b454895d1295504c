//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package composite provides weighted multi-dimension evaluation.
package composite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion"
	cparamaccuracy "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/paramaccuracy"
	cresponseaccuracy "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/responseaccuracy"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// compositeEvaluator folds the three dimension scores into one weighted score.
type compositeEvaluator struct {
	weights metric.Weights
}

// New creates a new composite evaluator.
func New(opt ...Option) evaluator.Evaluator {
	opts := newOptions(opt...)
	return &compositeEvaluator{
		weights: opts.weights,
	}
}

// Name returns the evaluator identifier.
func (e *compositeEvaluator) Name() string {
	return metric.MetricCompositeScore
}

// Description describes the evaluator purpose.
func (e *compositeEvaluator) Description() string {
	return "Combines tool selection, parameter accuracy and response accuracy into a weighted score"
}

// Evaluate scores every dimension per invocation pair and reports the
// weighted combination.
func (e *compositeEvaluator) Evaluate(ctx context.Context, actuals, expecteds []*evalset.Invocation,
	evalMetric *metric.EvalMetric) (*evaluator.EvaluateResult, error) {
	if evalMetric == nil || evalMetric.Criterion == nil {
		return nil, errors.New("composite criterion not configured")
	}
	crit := evalMetric.Criterion
	if crit.ToolSelection == nil || crit.ParamAccuracy == nil || crit.ResponseAccuracy == nil {
		return nil, errors.New("composite criterion not configured")
	}
	if len(actuals) != len(expecteds) {
		return nil, fmt.Errorf("composite: actual invocations (%d) and expected invocations (%d) count mismatch",
			len(actuals), len(expecteds))
	}
	perInvocation := make([]evaluator.PerInvocationResult, 0, len(actuals))
	var totalScore float64
	for i := range len(actuals) {
		actual := actuals[i]
		expected := expecteds[i]
		score, reason := e.scoreInvocation(actual, expected, crit)
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

func (e *compositeEvaluator) statusForScore(score float64, evalMetric *metric.EvalMetric) status.EvalStatus {
	if score >= evalMetric.Threshold {
		return status.EvalStatusPassed
	}
	return status.EvalStatusFailed
}

// scoreInvocation scores each dimension for one invocation pair and folds
// them into a weighted score with a combined rationale. Weights carried on
// the criterion take precedence over the evaluator's own.
func (e *compositeEvaluator) scoreInvocation(actual, expected *evalset.Invocation,
	crit *criterion.Criterion) (float64, string) {
	weights := e.weights
	if crit.Weights != nil {
		weights = *crit.Weights
	}
	toolScore, toolReason := crit.ToolSelection.Score(latestToolName(actual), latestToolName(expected))
	paramScore, paramReason := scoreParams(actual, expected, crit.ParamAccuracy)
	responseScore, responseReason := scoreResponse(actual, expected, crit.ResponseAccuracy)
	weighted := toolScore*weights.ToolSelection +
		paramScore*weights.ParamAccuracy +
		responseScore*weights.ResponseAccuracy
	reason := strings.Join([]string{
		fmt.Sprintf("Tool Selection (%.1f%%): %.2f - %s", weights.ToolSelection*100, toolScore, toolReason),
		fmt.Sprintf("Parameter Accuracy (%.1f%%): %.2f - %s", weights.ParamAccuracy*100, paramScore, paramReason),
		fmt.Sprintf("Response Accuracy (%.1f%%): %.2f - %s", weights.ResponseAccuracy*100, responseScore, responseReason),
		fmt.Sprintf("Weighted Score: %.3f", weighted),
	}, " | ")
	return weighted, reason
}

// scoreParams rates the observed arguments of the latest tool call against
// the expected ones.
func scoreParams(actual, expected *evalset.Invocation,
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

// scoreResponse rates answer agreement for one invocation pair.
func scoreResponse(actual, expected *evalset.Invocation,
	criterion *cresponseaccuracy.ResponseAccuracyCriterion) (float64, string) {
	var actualText string
	var payloads []map[string]any
	if actual != nil {
		actualText = actual.FinalResponse
		payloads = transcript.ToolResponsePayloads(actual.Turn)
	}
	var expectedText string
	if expected != nil {
		expectedText = expected.FinalResponse
	}
	actualInfo := criterion.Extract(actualText, payloads)
	expectedInfo := criterion.Extract(expectedText, nil)
	return criterion.Similarity(actualInfo, expectedInfo)
}

// latestToolName returns the name of the most recent tool call of the
// invocation, or empty when none was recorded.
func latestToolName(inv *evalset.Invocation) string {
	if call := inv.LatestToolCall(); call != nil {
		return call.Name
	}
	return ""
}
