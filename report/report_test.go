//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agenteval-go/config"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

func floatPtr(f float64) *float64 { return &f }

func sampleResult() *evalresult.EvalSetResult {
	return &evalresult.EvalSetResult{
		EvalSetID: "set",
		EvalCaseResults: []*evalresult.EvalCaseResult{
			{
				EvalSetID:       "set",
				EvalID:          "case_001",
				RunID:           1,
				FinalEvalStatus: status.EvalStatusPassed,
				OverallEvalMetricResults: []*metric.EvalMetricResult{
					{
						MetricName: metric.MetricCompositeScore,
						Score:      floatPtr(0.95),
						EvalStatus: status.EvalStatusPassed,
						Threshold:  metric.DefaultCompositeThreshold,
						Reason:     "Tool Selection (30.0%): 1.000",
					},
				},
			},
			{
				EvalSetID:       "set",
				EvalID:          "case_002",
				RunID:           1,
				FinalEvalStatus: status.EvalStatusFailed,
				OverallEvalMetricResults: []*metric.EvalMetricResult{
					{
						MetricName: metric.MetricCompositeScore,
						Score:      floatPtr(0.40),
						EvalStatus: status.EvalStatusFailed,
						Threshold:  metric.DefaultCompositeThreshold,
					},
				},
			},
			{
				EvalSetID:       "set",
				EvalID:          "case_003",
				RunID:           1,
				FinalEvalStatus: status.EvalStatusFailed,
				ErrorMessage:    "agent transport failed",
			},
		},
	}
}

func sampleEvalSet() *evalset.EvalSet {
	return &evalset.EvalSet{
		EvalSetID: "set",
		EvalCases: []*evalset.EvalCase{
			{
				EvalID:   "case_001",
				Category: "loan",
				Conversation: []*evalset.Invocation{
					{UserContent: "Calculate the penalty for a payment 15 days late"},
				},
			},
			{EvalID: "case_002", Category: "loan"},
			{EvalID: "case_003", Category: "tax"},
		},
	}
}

func TestNewRequiresResult(t *testing.T) {
	_, err := New("app", nil)
	assert.EqualError(t, err, "eval set result is nil")
}

func TestSummarySections(t *testing.T) {
	cfg := config.New()
	cfg.Model.Name = "llama-3-2-3b"
	cfg.Model.BaseURL = "http://localhost:8321/v1"
	cfg.Tools = []string{"calc_penalty", "calc_tax"}

	r, err := New("app", sampleResult(),
		WithEvalSet(sampleEvalSet()),
		WithConfig(cfg),
		WithGeneratedAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	)
	require.NoError(t, err)

	summary := r.Summary()
	assert.Contains(t, summary, "AGENT EVALUATION REPORT")
	assert.Contains(t, summary, "Generated: 2025-06-01 12:00:00")
	assert.Contains(t, summary, "Total test cases: 3")
	assert.Contains(t, summary, "Successful evaluations: 1")
	assert.Contains(t, summary, "Failed evaluations: 2")
	assert.Contains(t, summary, "Overall success rate: 33.33%")

	assert.Contains(t, summary, "METRIC PERFORMANCE:")
	assert.Contains(t, summary, "composite_score:")
	assert.Contains(t, summary, "Average Score: 0.675")
	assert.Contains(t, summary, "Success Rate: 50.00%")

	assert.Contains(t, summary, "CATEGORY BREAKDOWN:")
	assert.Contains(t, summary, "loan: 1/2 (50.00%)")
	assert.Contains(t, summary, "tax: 0/1 (0.00%)")

	assert.Contains(t, summary, "CONFIGURATION:")
	assert.Contains(t, summary, "Model: llama-3-2-3b")
	assert.Contains(t, summary, "Tools: calc_penalty, calc_tax")
	assert.Contains(t, summary, "Base URL: http://localhost:8321/v1")
}

func TestSummaryIsDeterministic(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first, err := New("app", sampleResult(), WithEvalSet(sampleEvalSet()), WithGeneratedAt(at))
	require.NoError(t, err)
	second, err := New("app", sampleResult(), WithEvalSet(sampleEvalSet()), WithGeneratedAt(at))
	require.NoError(t, err)
	assert.Equal(t, first.Summary(), second.Summary())
}

func TestSummaryPrefersMultiRunSummary(t *testing.T) {
	result := sampleResult()
	result.Summary = &evalresult.EvalSetResultSummary{
		EvalCaseSummaries: []*evalresult.EvalCaseResultSummary{
			{EvalID: "case_001", OverallStatus: status.EvalStatusPassed},
			{EvalID: "case_002", OverallStatus: status.EvalStatusPassed},
		},
	}
	r, err := New("app", result)
	require.NoError(t, err)
	summary := r.Summary()
	assert.Contains(t, summary, "Total test cases: 2")
	assert.Contains(t, summary, "Successful evaluations: 2")
	assert.Contains(t, summary, "Overall success rate: 100.00%")
}

func TestDetailedReport(t *testing.T) {
	r, err := New("app", sampleResult(), WithEvalSet(sampleEvalSet()))
	require.NoError(t, err)
	detailed := r.Detailed()

	assert.Contains(t, detailed, "DETAILED RESULTS:")
	assert.Contains(t, detailed, "Test Case 1: case_001 (run 1)")
	assert.Contains(t, detailed, "Input: Calculate the penalty for a payment 15 days late")
	assert.Contains(t, detailed, "Score: 0.950")
	assert.Contains(t, detailed, "Reason: Tool Selection (30.0%): 1.000")
	assert.Contains(t, detailed, "Test Case 3: case_003 (run 1)")
	assert.Contains(t, detailed, "Status: ERROR")
	assert.Contains(t, detailed, "Error: agent transport failed")

	// Case order follows the eval set definition.
	require.Less(t,
		strings.Index(detailed, "case_001"),
		strings.Index(detailed, "case_002"))
}

func TestDetailedTruncatesLongInput(t *testing.T) {
	set := sampleEvalSet()
	set.EvalCases[0].Conversation[0].UserContent = strings.Repeat("x", 150)
	r, err := New("app", sampleResult(), WithEvalSet(set))
	require.NoError(t, err)
	assert.Contains(t, r.Detailed(), strings.Repeat("x", 100)+"...")
	assert.NotContains(t, r.Detailed(), strings.Repeat("x", 101))
}

func TestSaveWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	r, err := New("app", sampleResult(), WithGeneratedAt(time.Unix(0, 0).UTC()))
	require.NoError(t, err)

	path := filepath.Join(dir, "reports", "summary.txt")
	require.NoError(t, r.Save(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r.Summary(), string(data))
	_, err = os.Stat(path + defaultTempFileSuffix)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, r.Save(path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r.Detailed(), string(data))
}

func TestSaveJSON(t *testing.T) {
	dir := t.TempDir()
	r, err := New("app", sampleResult())
	require.NoError(t, err)

	path := filepath.Join(dir, "result.json")
	require.NoError(t, r.SaveJSON(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var restored evalresult.EvalSetResult
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, "set", restored.EvalSetID)
	require.Len(t, restored.EvalCaseResults, 3)
	assert.Equal(t, "case_001", restored.EvalCaseResults[0].EvalID)
}
