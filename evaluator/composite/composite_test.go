//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package composite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

func newEvalMetric() *metric.EvalMetric {
	return &metric.EvalMetric{
		MetricName: metric.MetricCompositeScore,
		Threshold:  0.7,
		Criterion:  criterion.New(),
	}
}

func invocation(tool string, args map[string]any, response string) *evalset.Invocation {
	inv := &evalset.Invocation{FinalResponse: response}
	if tool != "" {
		inv.ToolCalls = []*transcript.ToolCall{{Name: tool, Arguments: args}}
	}
	return inv
}

// TestCompositeEvaluator_FullAgreement verifies the weighted score and the
// combined rationale when every dimension passes.
func TestCompositeEvaluator_FullAgreement(t *testing.T) {
	ev := New()
	assert.Equal(t, metric.MetricCompositeScore, ev.Name())

	actual := invocation("calc_penalty", map[string]any{"days_late": 15},
		"Late fee: $50. Your payment PASSED review.")
	expected := invocation("calc_penalty", map[string]any{"days_late": "15"},
		"Late fee is $50. Payment PASSED.")
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.InDelta(t, 1.0, *result.OverallScore, 1e-9)
	assert.Equal(t, status.EvalStatusPassed, result.OverallStatus)
	reason := result.PerInvocationResults[0].Reason
	assert.Contains(t, reason, "Tool Selection (30.0%): 1.00")
	assert.Contains(t, reason, "Parameter Accuracy (30.0%): 1.00")
	assert.Contains(t, reason, "Response Accuracy (40.0%): 1.00")
	assert.Contains(t, reason, "Weighted Score: 1.000")
}

// TestCompositeEvaluator_WrongTool verifies that a failed tool selection
// drags the weighted score below the threshold.
func TestCompositeEvaluator_WrongTool(t *testing.T) {
	ev := New()
	actual := invocation("check_voting", nil, "I cannot help with that.")
	expected := invocation("calc_tax", map[string]any{"income": 50000}, "Tax owed is $6,000.")
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	// Tool selection and parameters score zero; the response dimension only
	// has the warning-presence agreement left, worth its full 0.4 weight.
	assert.InDelta(t, 0.4, *result.OverallScore, 1e-9)
	assert.Equal(t, status.EvalStatusFailed, result.OverallStatus)
	reason := result.PerInvocationResults[0].Reason
	assert.Contains(t, reason, "Incorrect tool selected. Expected: calc_tax, Got: check_voting")
	assert.Contains(t, reason, "Weighted Score: 0.400")
}

// TestCompositeEvaluator_CustomWeights verifies weight overrides.
func TestCompositeEvaluator_CustomWeights(t *testing.T) {
	ev := New(WithWeights(metric.Weights{ToolSelection: 1.0}))
	actual := invocation("calc_tax", nil, "")
	expected := invocation("calc_tax", map[string]any{"income": 50000}, "Tax owed is $6,000.")
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.InDelta(t, 1.0, *result.OverallScore, 1e-9)
	assert.Equal(t, status.EvalStatusPassed, result.OverallStatus)
	assert.Contains(t, result.PerInvocationResults[0].Reason, "Tool Selection (100.0%)")
}

// TestCompositeEvaluator_CriterionWeights verifies that weights carried on
// the metric criterion win over the evaluator's construction-time weights.
func TestCompositeEvaluator_CriterionWeights(t *testing.T) {
	ev := New()
	evalMetric := &metric.EvalMetric{
		MetricName: metric.MetricCompositeScore,
		Threshold:  0.7,
		Criterion:  criterion.New(criterion.WithWeights(metric.Weights{ToolSelection: 1.0})),
	}
	actual := invocation("calc_tax", nil, "")
	expected := invocation("calc_tax", map[string]any{"income": 50000}, "Tax owed is $6,000.")
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, evalMetric)
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	// Under the default 0.3/0.3/0.4 weighting this pair scores well below
	// 1.0; the criterion weighting puts everything on the matching tool.
	assert.InDelta(t, 1.0, *result.OverallScore, 1e-9)
	assert.Equal(t, status.EvalStatusPassed, result.OverallStatus)
	assert.Contains(t, result.PerInvocationResults[0].Reason, "Tool Selection (100.0%)")
}

// TestCompositeEvaluator_Errors verifies input validation and the
// not-evaluated outcome.
func TestCompositeEvaluator_Errors(t *testing.T) {
	ev := New()
	_, err := ev.Evaluate(context.Background(), nil, nil, nil)
	require.Error(t, err)

	_, err = ev.Evaluate(context.Background(), nil, nil,
		&metric.EvalMetric{Threshold: 0.7, Criterion: &criterion.Criterion{}})
	require.Error(t, err)

	_, err = ev.Evaluate(context.Background(),
		[]*evalset.Invocation{{}}, nil, newEvalMetric())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")

	result, err := ev.Evaluate(context.Background(), nil, nil, newEvalMetric())
	require.NoError(t, err)
	assert.Nil(t, result.OverallScore)
	assert.Equal(t, status.EvalStatusNotEvaluated, result.OverallStatus)
}
