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
	"errors"
	"fmt"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/service"
	"trpc.group/trpc-go/trpc-agenteval-go/service/internal/inference"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

// Inference runs the agent for the requested eval cases and returns the inference results for each case.
func (s *local) Inference(ctx context.Context, req *service.InferenceRequest) ([]*service.InferenceResult, error) {
	if err := s.validateInferenceRequest(req); err != nil {
		return nil, fmt.Errorf("validate inference request: %w", err)
	}
	startTime := time.Now()
	ctx, err := s.runBeforeInferenceSetCallbacks(ctx, req)
	if err != nil {
		return nil, err
	}
	results, inferErr := s.inferenceSet(ctx, req)
	if cbErr := s.runAfterInferenceSetCallbacks(ctx, req, results, inferErr, startTime); cbErr != nil {
		return nil, cbErr
	}
	return results, inferErr
}

// inferenceSet loads the requested eval cases and infers each of them.
// The before inference set callbacks run first, so a callback may still
// narrow the requested eval case IDs.
func (s *local) inferenceSet(ctx context.Context, req *service.InferenceRequest) ([]*service.InferenceResult, error) {
	evalCases, err := s.loadInferenceEvalCases(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load inference eval cases: %w", err)
	}
	if len(evalCases) == 0 {
		return []*service.InferenceResult{}, nil
	}
	return s.inferEvalCases(ctx, req, evalCases)
}

func (s *local) validateInferenceRequest(req *service.InferenceRequest) error {
	if req == nil {
		return errors.New("inference request is nil")
	}
	if req.AppName == "" {
		return errors.New("app name is empty")
	}
	if req.EvalSetID == "" {
		return errors.New("eval set id is empty")
	}
	return nil
}

func (s *local) loadInferenceEvalCases(ctx context.Context, req *service.InferenceRequest) ([]*evalset.EvalCase, error) {
	evalSet, err := s.evalSetManager.Get(ctx, req.AppName, req.EvalSetID)
	if err != nil {
		return nil, fmt.Errorf("get eval set: %w", err)
	}
	if len(req.EvalCaseIDs) == 0 {
		filtered := make([]*evalset.EvalCase, 0, len(evalSet.EvalCases))
		for _, evalCase := range evalSet.EvalCases {
			if evalCase == nil {
				continue
			}
			filtered = append(filtered, evalCase)
		}
		return filtered, nil
	}
	wanted := make(map[string]struct{}, len(req.EvalCaseIDs))
	for _, id := range req.EvalCaseIDs {
		wanted[id] = struct{}{}
	}
	filtered := make([]*evalset.EvalCase, 0, len(evalSet.EvalCases))
	for _, evalCase := range evalSet.EvalCases {
		if evalCase == nil {
			continue
		}
		if _, ok := wanted[evalCase.EvalID]; ok {
			filtered = append(filtered, evalCase)
		}
	}
	return filtered, nil
}

func (s *local) inferEvalCases(ctx context.Context, req *service.InferenceRequest, evalCases []*evalset.EvalCase) ([]*service.InferenceResult, error) {
	if s.evalCaseParallelInferenceEnabled && s.evalCaseInferencePool != nil {
		return s.inferEvalCasesParallel(ctx, req, evalCases)
	}
	return s.inferEvalCasesSerial(ctx, req, evalCases)
}

func (s *local) inferEvalCasesSerial(ctx context.Context, req *service.InferenceRequest, evalCases []*evalset.EvalCase) ([]*service.InferenceResult, error) {
	results := make([]*service.InferenceResult, 0, len(evalCases))
	for _, evalCase := range evalCases {
		results = append(results, s.inferenceEvalCase(ctx, req, evalCase))
	}
	return results, nil
}

func (s *local) inferEvalCasesParallel(ctx context.Context, req *service.InferenceRequest, evalCases []*evalset.EvalCase) ([]*service.InferenceResult, error) {
	results := make([]*service.InferenceResult, len(evalCases))
	var wg sync.WaitGroup
	for idx, evalCase := range evalCases {
		wg.Add(1)
		param := evalCaseInferenceParamPool.Get().(*evalCaseInferenceParam)
		param.idx = idx
		param.ctx = ctx
		param.req = req
		param.evalCase = evalCase
		param.svc = s
		param.results = results
		param.wg = &wg
		if err := s.evalCaseInferencePool.Invoke(param); err != nil {
			wg.Done()
			sessionID := s.sessionIDSupplier(ctx)
			results[idx] = newFailedInferenceResult(
				newInferenceResult(req.AppName, req.EvalSetID, sessionID, evalCase),
				fmt.Errorf("submit inference task for eval case %s: %w", evalCase.EvalID, err),
			)
			param.reset()
			evalCaseInferenceParamPool.Put(param)
		}
	}
	wg.Wait()
	return results, nil
}

// inferenceEvalCase infers a single eval case between its before and
// after callbacks. Failures surface through the inference result, never
// as an error, so one case cannot abort the set.
func (s *local) inferenceEvalCase(ctx context.Context, req *service.InferenceRequest, evalCase *evalset.EvalCase) *service.InferenceResult {
	startTime := time.Now()
	sessionID := s.sessionIDSupplier(ctx)
	result := newInferenceResult(req.AppName, req.EvalSetID, sessionID, evalCase)
	ctx, err := s.runBeforeInferenceCaseCallbacks(ctx, req, evalCase.EvalID, sessionID)
	if err != nil {
		return newFailedInferenceResult(result, err)
	}
	inferences, inferErr := s.runCaseInference(ctx, sessionID, evalCase)
	if inferErr != nil {
		result = newFailedInferenceResult(result, inferErr)
	} else {
		result.Inferences = inferences
		result.Status = status.EvalStatusPassed
	}
	if cbErr := s.runAfterInferenceCaseCallbacks(ctx, req, result, inferErr, startTime); cbErr != nil {
		return newFailedInferenceResult(result, cbErr)
	}
	return result
}

func (s *local) runCaseInference(ctx context.Context, sessionID string, evalCase *evalset.EvalCase) ([]*evalset.Invocation, error) {
	if evalCase.SessionInput == nil {
		return nil, errors.New("session input is nil")
	}
	if len(evalCase.Conversation) == 0 {
		return nil, errors.New("invocations are empty")
	}
	return inference.Inference(ctx, s.runner, s.sessions, s.extractor,
		evalCase.Conversation, evalCase.SessionInput, sessionID, s.sessionCleanupEnabled)
}

func newInferenceResult(appName, evalSetID, sessionID string, evalCase *evalset.EvalCase) *service.InferenceResult {
	userID := ""
	if evalCase.SessionInput != nil {
		userID = evalCase.SessionInput.UserID
	}
	return &service.InferenceResult{
		AppName:    appName,
		EvalSetID:  evalSetID,
		EvalCaseID: evalCase.EvalID,
		SessionID:  sessionID,
		UserID:     userID,
	}
}

func newFailedInferenceResult(result *service.InferenceResult, err error) *service.InferenceResult {
	result.Status = status.EvalStatusFailed
	result.ErrorMessage = err.Error()
	result.Inferences = nil
	return result
}
