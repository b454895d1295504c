//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package metric

import "trpc.group/trpc-go/trpc-agenteval-go/metric/criterion"

// Built-in metric names.
const (
	// MetricToolSelectionScore scores whether the expected tool was called.
	MetricToolSelectionScore = "tool_selection_score"
	// MetricParamAccuracyScore scores the arguments of the tool call.
	MetricParamAccuracyScore = "param_accuracy_score"
	// MetricResponseAccuracyScore scores the final answer content.
	MetricResponseAccuracyScore = "response_accuracy_score"
	// MetricCompositeScore combines the three dimensions into one score.
	MetricCompositeScore = "composite_score"
)

// Default passing thresholds for the built-in metrics. Tool selection is
// all or nothing, the others tolerate partial credit.
const (
	DefaultToolSelectionThreshold    = 1.0
	DefaultParamAccuracyThreshold    = 0.8
	DefaultResponseAccuracyThreshold = 0.7
	DefaultCompositeThreshold        = 0.7
)

// DefaultMetrics returns the built-in metrics with default thresholds and
// criteria.
func DefaultMetrics() []*EvalMetric {
	return []*EvalMetric{
		{
			MetricName: MetricToolSelectionScore,
			Threshold:  DefaultToolSelectionThreshold,
			Criterion:  criterion.New(),
		},
		{
			MetricName: MetricParamAccuracyScore,
			Threshold:  DefaultParamAccuracyThreshold,
			Criterion:  criterion.New(),
		},
		{
			MetricName: MetricResponseAccuracyScore,
			Threshold:  DefaultResponseAccuracyThreshold,
			Criterion:  criterion.New(),
		},
		{
			MetricName: MetricCompositeScore,
			Threshold:  DefaultCompositeThreshold,
			Criterion:  criterion.New(),
		},
	}
}
