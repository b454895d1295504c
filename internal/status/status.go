//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package status provides functions to summarize evaluation statuses.
package status

import (
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// SummarizeMetricsStatus folds per-metric results into a single status.
func SummarizeMetricsStatus(metrics []*metric.EvalMetricResult) (status.EvalStatus, error) {
	evalStatuses := make([]status.EvalStatus, 0, len(metrics))
	for _, metricResult := range metrics {
		if metricResult == nil {
			continue
		}
		evalStatuses = append(evalStatuses, metricResult.EvalStatus)
	}
	return Summarize(evalStatuses)
}

// Summarize folds statuses into one value.
// The precedence rules are:
// 1. If there is a Failed, the overall status is Failed.
// 2. If there is a Passed, the overall status is Passed.
// 3. Otherwise, the overall status is NotEvaluated.
func Summarize(statuses []status.EvalStatus) (status.EvalStatus, error) {
	combined := status.EvalStatusNotEvaluated
	for _, s := range statuses {
		switch s {
		case status.EvalStatusFailed:
			return status.EvalStatusFailed, nil
		case status.EvalStatusPassed:
			combined = status.EvalStatusPassed
		case status.EvalStatusNotEvaluated:
			continue
		default:
			return status.EvalStatusFailed, fmt.Errorf("unexpected eval status %v", s)
		}
	}
	return combined, nil
}
