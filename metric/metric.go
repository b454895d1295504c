//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package metric provides evaluation metrics.
package metric

import (
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// EvalMetric represents a metric used to evaluate a particular aspect of
// an eval case.
type EvalMetric struct {
	// MetricName identifies the metric.
	MetricName string `json:"metricName"`
	// Threshold is the minimum passing score for this metric.
	Threshold float64 `json:"threshold"`
	// Criterion carries the scoring rules for this metric.
	Criterion *criterion.Criterion `json:"criterion,omitempty"`
}

// EvalMetricResult represents the result of a single metric evaluation.
type EvalMetricResult struct {
	// MetricName identifies the metric.
	MetricName string `json:"metricName,omitempty"`
	// Score obtained for this metric, nil when not evaluated.
	Score *float64 `json:"score,omitempty"`
	// EvalStatus of this metric evaluation.
	EvalStatus status.EvalStatus `json:"evalStatus,omitempty"`
	// Threshold that was used.
	Threshold float64 `json:"threshold,omitempty"`
	// Reason explains the score.
	Reason string `json:"reason,omitempty"`
}

// Weights distributes a composite score across the three dimensions.
// The type lives in the criterion package so a composite criterion can
// carry its own weighting; the alias keeps metric the usual entry point.
type Weights = criterion.Weights

// DefaultWeights returns the standard composite weighting. The final
// answer carries slightly more weight than either tool dimension.
func DefaultWeights() Weights {
	return criterion.DefaultWeights()
}
