//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package service provides the evaluation service pipeline.
package service

import (
	"context"

	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// Service defines the main interface for evaluation operations.
type Service interface {
	// Inference runs the agent against the eval cases of an eval set and
	// returns one result per case.
	Inference(ctx context.Context, request *InferenceRequest) ([]*InferenceResult, error)
	// Evaluate scores inference results against the eval set expectations
	// and stores the eval set result.
	Evaluate(ctx context.Context, request *EvaluateRequest) (*evalresult.EvalSetResult, error)
	// Close releases resources held by the service.
	Close() error
}

// InferenceRequest represents a request for agent inference.
type InferenceRequest struct {
	// AppName is the name of the app.
	AppName string `json:"app_name"`
	// EvalSetID is the ID of the eval set.
	EvalSetID string `json:"eval_set_id"`
	// EvalCaseIDs are the IDs of eval cases to process. All cases run when empty.
	EvalCaseIDs []string `json:"eval_case_ids,omitempty"`
}

// InferenceResult represents the result of agent inference for one eval case.
type InferenceResult struct {
	// AppName is the name of the app.
	AppName string `json:"app_name"`
	// EvalSetID is the ID of the eval set.
	EvalSetID string `json:"eval_set_id"`
	// EvalCaseID is the ID of the eval case.
	EvalCaseID string `json:"eval_case_id"`
	// Inferences are the generated invocations.
	Inferences []*evalset.Invocation `json:"inferences,omitempty"`
	// SessionID is the ID of the inference session.
	SessionID string `json:"session_id,omitempty"`
	// UserID is the ID of the user the session ran for.
	UserID string `json:"user_id,omitempty"`
	// Status is the status of the inference.
	Status status.EvalStatus `json:"status"`
	// ErrorMessage contains error details if inference failed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// EvaluateRequest represents a request for evaluation.
type EvaluateRequest struct {
	// AppName is the name of the app.
	AppName string `json:"app_name"`
	// EvalSetID is the ID of the eval set.
	EvalSetID string `json:"eval_set_id"`
	// InferenceResults are the results to be evaluated.
	InferenceResults []*InferenceResult `json:"inference_results"`
	// EvaluateConfig carries the evaluation settings.
	EvaluateConfig *EvaluateConfig `json:"evaluate_config,omitempty"`
}

// EvaluateConfig carries the metrics an evaluation runs with.
type EvaluateConfig struct {
	// EvalMetrics are the metrics to evaluate.
	EvalMetrics []*metric.EvalMetric `json:"eval_metrics,omitempty"`
}
