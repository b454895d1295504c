//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package status defines the evaluation status shared by metric results.
package status

// EvalStatus is the outcome of evaluating a metric, a case or a set.
type EvalStatus int

const (
	// EvalStatusUnknown means the status has not been set.
	EvalStatusUnknown EvalStatus = iota
	// EvalStatusPassed means the score reached the metric threshold.
	EvalStatusPassed
	// EvalStatusFailed means the score stayed below the metric threshold.
	EvalStatusFailed
	// EvalStatusNotEvaluated means no score was produced.
	EvalStatusNotEvaluated
)

// String returns the string representation of the evaluation status.
func (s EvalStatus) String() string {
	switch s {
	case EvalStatusPassed:
		return "passed"
	case EvalStatusFailed:
		return "failed"
	case EvalStatusNotEvaluated:
		return "not_evaluated"
	default:
		return "unknown"
	}
}
