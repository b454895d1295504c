//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package paramaccuracy

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
		MetricName: metric.MetricParamAccuracyScore,
		Threshold:  0.8,
		Criterion:  criterion.New(),
	}
}

func invocationWithCall(name string, args map[string]any) *evalset.Invocation {
	return &evalset.Invocation{
		ToolCalls: []*transcript.ToolCall{{Name: name, Arguments: args}},
	}
}

// TestParamAccuracyEvaluator_AllCorrect verifies the passing path.
func TestParamAccuracyEvaluator_AllCorrect(t *testing.T) {
	ev := New()
	assert.Equal(t, metric.MetricParamAccuracyScore, ev.Name())

	actual := invocationWithCall("calc_tax", map[string]any{"income": 50000, "year": 2024})
	expected := invocationWithCall("calc_tax", map[string]any{"income": 50000, "year": 2024})
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 1.0, *result.OverallScore)
	assert.Equal(t, status.EvalStatusPassed, result.OverallStatus)
	assert.Equal(t, "2/2 parameters correct", result.PerInvocationResults[0].Reason)
}

// TestParamAccuracyEvaluator_CrossTypeMatch verifies that stringified
// numbers from streamed logs still match their typed expectations.
func TestParamAccuracyEvaluator_CrossTypeMatch(t *testing.T) {
	ev := New()
	actual := invocationWithCall("calc_penalty", map[string]any{"days_late": "15", "rent_amount": "1200"})
	expected := invocationWithCall("calc_penalty", map[string]any{"days_late": 15, "rent_amount": 1200})
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 1.0, *result.OverallScore)
	assert.Equal(t, status.EvalStatusPassed, result.OverallStatus)
}

// TestParamAccuracyEvaluator_MissingAndMismatched verifies partial credit
// and the combined reason.
func TestParamAccuracyEvaluator_MissingAndMismatched(t *testing.T) {
	ev := New()
	actual := invocationWithCall("check_housing_grant", map[string]any{"ami": 55000, "household_size": 2})
	expected := invocationWithCall("check_housing_grant",
		map[string]any{"ami": 55000, "household_size": 4, "county": "King"})
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.InDelta(t, 1.0/3.0, *result.OverallScore, 1e-9)
	assert.Equal(t, status.EvalStatusFailed, result.OverallStatus)
	reason := result.PerInvocationResults[0].Reason
	assert.Contains(t, reason, "1/3 parameters correct")
	assert.Contains(t, reason, "Missing: county")
	assert.Contains(t, reason, "household_size: expected 4, got 2")
}

// TestParamAccuracyEvaluator_ExpectedParamsAbsent verifies the zero score
// when the eval case carries no reference parameters.
func TestParamAccuracyEvaluator_ExpectedParamsAbsent(t *testing.T) {
	ev := New()
	tests := []struct {
		name     string
		expected *evalset.Invocation
	}{
		{name: "no tool call", expected: &evalset.Invocation{}},
		{name: "empty arguments", expected: invocationWithCall("calc_tax", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := invocationWithCall("calc_tax", map[string]any{"income": 50000})
			result, err := ev.Evaluate(context.Background(),
				[]*evalset.Invocation{actual}, []*evalset.Invocation{tt.expected}, newEvalMetric())
			require.NoError(t, err)
			require.NotNil(t, result.OverallScore)
			assert.Equal(t, 0.0, *result.OverallScore)
			assert.Equal(t, status.EvalStatusFailed, result.OverallStatus)
			assert.Equal(t, "Expected parameters not found in context", result.PerInvocationResults[0].Reason)
		})
	}
}

// TestParamAccuracyEvaluator_NoActualCall verifies that a missing
// observed call marks every expected parameter as missing.
func TestParamAccuracyEvaluator_NoActualCall(t *testing.T) {
	ev := New()
	expected := invocationWithCall("calc_tax", map[string]any{"income": 50000})
	result, err := ev.Evaluate(context.Background(),
		[]*evalset.Invocation{{}}, []*evalset.Invocation{expected}, newEvalMetric())
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 0.0, *result.OverallScore)
	assert.Contains(t, result.PerInvocationResults[0].Reason, "Missing: income")
}

// TestParamAccuracyEvaluator_Errors verifies input validation.
func TestParamAccuracyEvaluator_Errors(t *testing.T) {
	ev := New()
	_, err := ev.Evaluate(context.Background(), nil, nil, nil)
	require.Error(t, err)

	_, err = ev.Evaluate(context.Background(),
		[]*evalset.Invocation{{}}, nil, newEvalMetric())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")

	result, err := ev.Evaluate(context.Background(), nil, nil, newEvalMetric())
	require.NoError(t, err)
	assert.Equal(t, status.EvalStatusNotEvaluated, result.OverallStatus)
	assert.Nil(t, result.OverallScore)
}
