//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package evalresult defines evaluation result types and their storage interface.
package evalresult

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// EvalSetResult represents the evaluation result for an entire eval set,
// possibly accumulated across multiple runs.
type EvalSetResult struct {
	// EvalSetResultID uniquely identifies this result.
	EvalSetResultID string `json:"evalSetResultId,omitempty"`
	// EvalSetResultName is the name of this result.
	EvalSetResultName string `json:"evalSetResultName,omitempty"`
	// EvalSetID identifies the eval set.
	EvalSetID string `json:"evalSetId,omitempty"`
	// EvalCaseResults contains results for each eval case and run.
	EvalCaseResults []*EvalCaseResult `json:"evalCaseResults,omitempty"`
	// Summary aggregates the case results across runs.
	Summary *EvalSetResultSummary `json:"summary,omitempty"`
	// CreationTimestamp when this result was created.
	CreationTimestamp *epochtime.EpochTime `json:"creationTimestamp,omitempty"`
}

// EvalCaseResult represents the result of a single evaluation case in a single run.
type EvalCaseResult struct {
	// EvalSetID identifies the eval set.
	EvalSetID string `json:"evalSetId,omitempty"`
	// EvalID identifies the eval case.
	EvalID string `json:"evalId,omitempty"`
	// RunID identifies the eval set run that produced this result, starting from 1.
	RunID int `json:"runId,omitempty"`
	// FinalEvalStatus is the final eval status for this eval case.
	FinalEvalStatus status.EvalStatus `json:"finalEvalStatus,omitempty"`
	// OverallEvalMetricResults contains the overall result for each metric across the eval case.
	OverallEvalMetricResults []*metric.EvalMetricResult `json:"overallEvalMetricResults,omitempty"`
	// EvalMetricResultPerInvocation contains the result for each metric on a per invocation basis.
	EvalMetricResultPerInvocation []*EvalMetricResultPerInvocation `json:"evalMetricResultPerInvocation,omitempty"`
	// SessionID is the id of the session generated during the inference stage.
	SessionID string `json:"sessionId,omitempty"`
	// UserID is the user id used during the inference stage.
	UserID string `json:"userId,omitempty"`
	// ErrorMessage is set when the case could not be evaluated.
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// EvalMetricResultPerInvocation represents metric results for a single invocation.
type EvalMetricResultPerInvocation struct {
	// ActualInvocation is the invocation captured from the agent run.
	ActualInvocation *evalset.Invocation `json:"actualInvocation,omitempty"`
	// ExpectedInvocation is the expected invocation from the eval set.
	ExpectedInvocation *evalset.Invocation `json:"expectedInvocation,omitempty"`
	// EvalMetricResults contains results for each metric for this invocation.
	EvalMetricResults []*metric.EvalMetricResult `json:"evalMetricResults,omitempty"`
}

// NewResultID generates a unique eval set result ID for the given app and eval set.
func NewResultID(appName, evalSetID string) string {
	return fmt.Sprintf("%s_%s_%s", appName, evalSetID, uuid.New().String())
}

// Manager defines the interface for managing evaluation results.
type Manager interface {
	// Save stores an evaluation result and returns its ID, generating one when
	// the result carries none.
	Save(ctx context.Context, appName string, evalSetResult *EvalSetResult) (string, error)
	// Get retrieves an evaluation result by evalSetResultID.
	Get(ctx context.Context, appName, evalSetResultID string) (*EvalSetResult, error)
	// List returns the IDs of all stored evaluation results for the app.
	List(ctx context.Context, appName string) ([]string, error)
	// Close releases resources held by the manager.
	Close() error
}
