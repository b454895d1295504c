//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	icallback "trpc.group/trpc-go/trpc-agenteval-go/internal/callback"
	"trpc.group/trpc-go/trpc-agenteval-go/service"
)

// runBeforeInferenceSetCallbacks runs the before inference set callbacks
// and returns the context to use for the rest of the inference stage.
func (s *local) runBeforeInferenceSetCallbacks(ctx context.Context, req *service.InferenceRequest) (context.Context, error) {
	result, err := icallback.RunBeforeInferenceSet(ctx, s.callbacks, &service.BeforeInferenceSetArgs{Request: req})
	if err != nil {
		return ctx, fmt.Errorf("run before inference set callbacks: %w", err)
	}
	if result != nil && result.Context != nil {
		ctx = result.Context
	}
	return ctx, nil
}

func (s *local) runAfterInferenceSetCallbacks(ctx context.Context, req *service.InferenceRequest,
	results []*service.InferenceResult, inferErr error, startTime time.Time) error {
	_, err := icallback.RunAfterInferenceSet(ctx, s.callbacks, &service.AfterInferenceSetArgs{
		Request:   req,
		Results:   results,
		Error:     inferErr,
		StartTime: startTime,
	})
	if err != nil {
		return fmt.Errorf("run after inference set callbacks (app=%s, evalSetID=%s): %w",
			req.AppName, req.EvalSetID, err)
	}
	return nil
}

// runBeforeInferenceCaseCallbacks runs the before inference case callbacks
// and returns the context to use for the eval case inference.
func (s *local) runBeforeInferenceCaseCallbacks(ctx context.Context, req *service.InferenceRequest,
	evalCaseID, sessionID string) (context.Context, error) {
	result, err := icallback.RunBeforeInferenceCase(ctx, s.callbacks, &service.BeforeInferenceCaseArgs{
		Request:    req,
		EvalCaseID: evalCaseID,
		SessionID:  sessionID,
	})
	if err != nil {
		return ctx, fmt.Errorf("run before inference case callbacks: %w", err)
	}
	if result != nil && result.Context != nil {
		ctx = result.Context
	}
	return ctx, nil
}

func (s *local) runAfterInferenceCaseCallbacks(ctx context.Context, req *service.InferenceRequest,
	result *service.InferenceResult, inferErr error, startTime time.Time) error {
	_, err := icallback.RunAfterInferenceCase(ctx, s.callbacks, &service.AfterInferenceCaseArgs{
		Request:   req,
		Result:    result,
		Error:     inferErr,
		StartTime: startTime,
	})
	if err != nil {
		return fmt.Errorf("run after inference case callbacks: %w", err)
	}
	return nil
}

// runBeforeEvaluateSetCallbacks runs the before evaluate set callbacks
// and returns the context to use for the rest of the evaluation stage.
func (s *local) runBeforeEvaluateSetCallbacks(ctx context.Context, req *service.EvaluateRequest) (context.Context, error) {
	result, err := icallback.RunBeforeEvaluateSet(ctx, s.callbacks, &service.BeforeEvaluateSetArgs{Request: req})
	if err != nil {
		return ctx, fmt.Errorf("run before evaluate set callbacks: %w", err)
	}
	if result != nil && result.Context != nil {
		ctx = result.Context
	}
	return ctx, nil
}

func (s *local) runAfterEvaluateSetCallbacks(ctx context.Context, req *service.EvaluateRequest,
	result *evalresult.EvalSetResult, evalErr error, startTime time.Time) error {
	_, err := icallback.RunAfterEvaluateSet(ctx, s.callbacks, &service.AfterEvaluateSetArgs{
		Request:   req,
		Result:    result,
		Error:     evalErr,
		StartTime: startTime,
	})
	if err != nil {
		return fmt.Errorf("run after evaluate set callbacks: %w", err)
	}
	return nil
}

// runBeforeEvaluateCaseCallbacks runs the before evaluate case callbacks
// and returns the context to use for the eval case evaluation.
func (s *local) runBeforeEvaluateCaseCallbacks(ctx context.Context, req *service.EvaluateRequest,
	evalCaseID string) (context.Context, error) {
	result, err := icallback.RunBeforeEvaluateCase(ctx, s.callbacks, &service.BeforeEvaluateCaseArgs{
		Request:    req,
		EvalCaseID: evalCaseID,
	})
	if err != nil {
		return ctx, fmt.Errorf("run before evaluate case callbacks: %w", err)
	}
	if result != nil && result.Context != nil {
		ctx = result.Context
	}
	return ctx, nil
}

func (s *local) runAfterEvaluateCaseCallbacks(ctx context.Context, req *service.EvaluateRequest,
	inferenceResult *service.InferenceResult, caseResult *evalresult.EvalCaseResult, evalErr error,
	startTime time.Time) error {
	_, err := icallback.RunAfterEvaluateCase(ctx, s.callbacks, &service.AfterEvaluateCaseArgs{
		Request:         req,
		InferenceResult: inferenceResult,
		Result:          caseResult,
		Error:           evalErr,
		StartTime:       startTime,
	})
	if err != nil {
		return fmt.Errorf("run after evaluate case callbacks (evalCaseID=%s): %w", evalCaseID(inferenceResult), err)
	}
	return nil
}
