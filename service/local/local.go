//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local implementation of service.Service.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator/registry"
	istatus "trpc.group/trpc-go/trpc-agenteval-go/internal/status"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/runner"
	"trpc.group/trpc-go/trpc-agenteval-go/service"
	"trpc.group/trpc-go/trpc-agenteval-go/session"
	evalstatus "trpc.group/trpc-go/trpc-agenteval-go/status"
	"trpc.group/trpc-go/trpc-agenteval-go/toolcall"
)

const reasonSeparator = ";"

// local is a local implementation of service.Service.
type local struct {
	runner                           runner.Runner
	evalSetManager                   evalset.Manager
	evalResultManager                evalresult.Manager
	registry                         registry.Registry
	sessionIDSupplier                func(ctx context.Context) string
	callbacks                        *service.Callbacks
	sessions                         *session.Store
	extractor                        *toolcall.Extractor
	evalCaseParallelism              int
	evalCaseParallelInferenceEnabled bool
	sessionCleanupEnabled            bool
	evalCaseInferencePool            *ants.PoolWithFunc
}

// New returns a new local evaluation service.
// If no service.Option is provided, the service will use the default options.
func New(runner runner.Runner, opt ...service.Option) (service.Service, error) {
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	opts := service.NewOptions(opt...)
	if opts.EvalCaseParallelInferenceEnabled && opts.EvalCaseParallelism <= 0 {
		return nil, errors.New("eval case parallelism must be greater than 0")
	}
	if opts.EvalSetManager == nil {
		return nil, errors.New("eval set manager is nil")
	}
	if opts.EvalResultManager == nil {
		return nil, errors.New("eval result manager is nil")
	}
	if opts.Registry == nil {
		return nil, errors.New("registry is nil")
	}
	if opts.SessionIDSupplier == nil {
		return nil, errors.New("session id supplier is nil")
	}
	service := &local{
		runner:                           runner,
		evalSetManager:                   opts.EvalSetManager,
		evalResultManager:                opts.EvalResultManager,
		registry:                         opts.Registry,
		sessionIDSupplier:                opts.SessionIDSupplier,
		callbacks:                        opts.Callbacks,
		sessions:                         session.NewStore(),
		extractor:                        toolcall.New(),
		evalCaseParallelism:              opts.EvalCaseParallelism,
		evalCaseParallelInferenceEnabled: opts.EvalCaseParallelInferenceEnabled,
		sessionCleanupEnabled:            opts.SessionCleanupEnabled,
	}
	if service.evalCaseParallelInferenceEnabled {
		pool, err := createEvalCaseInferencePool(service.evalCaseParallelism)
		if err != nil {
			return nil, err
		}
		service.evalCaseInferencePool = pool
	}
	return service, nil
}

// Close closes the eval service and releases owned resources.
func (s *local) Close() error {
	if s.evalCaseInferencePool != nil {
		s.evalCaseInferencePool.Release()
	}
	if s.sessions != nil {
		s.sessions.CleanupAll()
	}
	return nil
}

// Evaluate runs the evaluation on the inference results and returns the persisted eval set result.
func (s *local) Evaluate(ctx context.Context, req *service.EvaluateRequest) (*evalresult.EvalSetResult, error) {
	if req == nil {
		return nil, errors.New("evaluate request is nil")
	}
	if req.AppName == "" {
		return nil, errors.New("app name is empty")
	}
	if req.EvalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	if req.EvaluateConfig == nil {
		return nil, errors.New("evaluate config is nil")
	}
	startTime := time.Now()
	ctx, err := s.runBeforeEvaluateSetCallbacks(ctx, req)
	if err != nil {
		return nil, err
	}
	evalSetResult, evalErr := s.evaluateSet(ctx, req)
	if cbErr := s.runAfterEvaluateSetCallbacks(ctx, req, evalSetResult, evalErr, startTime); cbErr != nil {
		return nil, cbErr
	}
	return evalSetResult, evalErr
}

// evaluateSet evaluates every inference result and persists the eval set result.
func (s *local) evaluateSet(ctx context.Context, req *service.EvaluateRequest) (*evalresult.EvalSetResult, error) {
	evalCaseResults := make([]*evalresult.EvalCaseResult, 0, len(req.InferenceResults))
	for _, inferenceResult := range req.InferenceResults {
		caseResult, err := s.evaluateCase(ctx, req, inferenceResult)
		if err != nil {
			return nil, fmt.Errorf("evaluate case (evalCaseID=%s): %w", evalCaseID(inferenceResult), err)
		}
		evalCaseResults = append(evalCaseResults, caseResult)
	}
	evalSetResult := &evalresult.EvalSetResult{
		EvalSetID:         req.EvalSetID,
		EvalCaseResults:   evalCaseResults,
		CreationTimestamp: epochtime.Now(),
	}
	evalSetResultID, err := s.evalResultManager.Save(ctx, req.AppName, evalSetResult)
	if err != nil {
		return nil, fmt.Errorf("save eval set result: %w", err)
	}
	evalSetResult.EvalSetResultID = evalSetResultID
	evalSetResult.EvalSetResultName = evalSetResultID
	return evalSetResult, nil
}

// evaluateCase runs the evaluation for a single inference result between
// its before and after callbacks. A failed evaluation yields a failed
// case result; only callback errors and nil inference results abort the
// set.
func (s *local) evaluateCase(ctx context.Context, req *service.EvaluateRequest,
	inferenceResult *service.InferenceResult) (*evalresult.EvalCaseResult, error) {
	startTime := time.Now()
	ctx, err := s.runBeforeEvaluateCaseCallbacks(ctx, req, evalCaseID(inferenceResult))
	if err != nil {
		return nil, err
	}
	caseResult, evalErr := s.evaluateInferenceResult(ctx, req, inferenceResult)
	if cbErr := s.runAfterEvaluateCaseCallbacks(ctx, req, inferenceResult, caseResult, evalErr, startTime); cbErr != nil {
		return nil, cbErr
	}
	return caseResult, evalErr
}

// evaluateInferenceResult turns one inference result into an eval case result.
func (s *local) evaluateInferenceResult(ctx context.Context, req *service.EvaluateRequest,
	inferenceResult *service.InferenceResult) (*evalresult.EvalCaseResult, error) {
	if inferenceResult == nil {
		return nil, errors.New("inference result is nil")
	}
	if inferenceResult.Status != evalstatus.EvalStatusPassed {
		return s.failedEvalCaseResult(req.EvalSetID, inferenceResult, inferenceResult.ErrorMessage), nil
	}
	caseResult, err := s.evaluatePerCase(ctx, inferenceResult, req.EvaluateConfig)
	if err != nil {
		return s.failedEvalCaseResult(req.EvalSetID, inferenceResult, err.Error()), nil
	}
	return caseResult, nil
}

func (s *local) failedEvalCaseResult(evalSetID string, inferenceResult *service.InferenceResult, errorMessage string) *evalresult.EvalCaseResult {
	return &evalresult.EvalCaseResult{
		EvalSetID:       evalSetID,
		EvalID:          inferenceResult.EvalCaseID,
		FinalEvalStatus: evalstatus.EvalStatusFailed,
		ErrorMessage:    errorMessage,
		SessionID:       inferenceResult.SessionID,
		UserID:          inferenceResult.UserID,
	}
}

// evaluatePerCase runs the evaluation on the inference result and returns the case evaluation result.
func (s *local) evaluatePerCase(ctx context.Context, inferenceResult *service.InferenceResult,
	evaluateConfig *service.EvaluateConfig) (*evalresult.EvalCaseResult, error) {
	if inferenceResult == nil {
		return nil, errors.New("inference result is nil")
	}
	if evaluateConfig == nil {
		return nil, errors.New("evaluate config is nil")
	}
	evalCase, err := s.evalSetManager.GetCase(ctx,
		inferenceResult.AppName,
		inferenceResult.EvalSetID,
		inferenceResult.EvalCaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get eval case: %w", err)
	}
	inputs, err := prepareCaseEvaluationInputs(inferenceResult, evalCase)
	if err != nil {
		return nil, err
	}
	// overallMetricResults collects the metric results for the entire eval case.
	overallMetricResults := make([]*metric.EvalMetricResult, 0, len(evaluateConfig.EvalMetrics))
	perInvocation := make([]*evalresult.EvalMetricResultPerInvocation, len(inputs.actuals))
	for i, actual := range inputs.actuals {
		perInvocation[i] = &evalresult.EvalMetricResultPerInvocation{
			ActualInvocation:   actual,
			ExpectedInvocation: inputs.expecteds[i],
			EvalMetricResults:  make([]*metric.EvalMetricResult, 0, len(evaluateConfig.EvalMetrics)),
		}
	}
	// Iterate through every configured metric and run the evaluation.
	for _, evalMetric := range evaluateConfig.EvalMetrics {
		result, err := s.evaluateMetric(ctx, evalMetric, inputs.actuals, inputs.expecteds)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Skip metrics without a registered evaluator.
				continue
			}
			return nil, fmt.Errorf("run evaluation for metric %s: %w", evalMetric.MetricName, err)
		}
		if len(result.PerInvocationResults) != len(perInvocation) {
			return nil, fmt.Errorf("metric %s returned %d per-invocation results, expected %d", evalMetric.MetricName,
				len(result.PerInvocationResults), len(perInvocation))
		}
		reasons := make([]string, 0, len(result.PerInvocationResults))
		for i, invocationResult := range result.PerInvocationResults {
			// Record the metric outcome for the corresponding invocation.
			perInvocation[i].EvalMetricResults = append(perInvocation[i].EvalMetricResults, &metric.EvalMetricResult{
				MetricName: evalMetric.MetricName,
				Threshold:  evalMetric.Threshold,
				Score:      invocationResult.Score,
				EvalStatus: invocationResult.EvalStatus,
				Reason:     invocationResult.Reason,
			})
			if invocationResult.Reason != "" {
				reasons = append(reasons, invocationResult.Reason)
			}
		}
		overallMetricResults = append(overallMetricResults, &metric.EvalMetricResult{
			MetricName: evalMetric.MetricName,
			Threshold:  evalMetric.Threshold,
			Score:      result.OverallScore,
			EvalStatus: result.OverallStatus,
			Reason:     strings.Join(reasons, reasonSeparator),
		})
	}
	// Summarize the overall metric results and return the final eval status.
	finalStatus, err := istatus.SummarizeMetricsStatus(overallMetricResults)
	if err != nil {
		return nil, fmt.Errorf("summarize overall metric results: %w", err)
	}
	return &evalresult.EvalCaseResult{
		EvalSetID:                     inferenceResult.EvalSetID,
		EvalID:                        inferenceResult.EvalCaseID,
		FinalEvalStatus:               finalStatus,
		OverallEvalMetricResults:      overallMetricResults,
		EvalMetricResultPerInvocation: perInvocation,
		SessionID:                     inferenceResult.SessionID,
		UserID:                        inputs.userID,
	}, nil
}

// evaluateMetric locates the evaluator registered for the metric and runs the evaluation.
func (s *local) evaluateMetric(ctx context.Context, evalMetric *metric.EvalMetric,
	actuals, expecteds []*evalset.Invocation) (*evaluator.EvaluateResult, error) {
	metricEvaluator, err := s.registry.Get(evalMetric.MetricName)
	if err != nil {
		return nil, fmt.Errorf("get evaluator for metric %s: %w", evalMetric.MetricName, err)
	}
	// Run the evaluation on the actual and expected invocations and return the evaluation result.
	return metricEvaluator.Evaluate(ctx, actuals, expecteds, evalMetric)
}

func evalCaseID(inferenceResult *service.InferenceResult) string {
	if inferenceResult == nil {
		return ""
	}
	return inferenceResult.EvalCaseID
}

type caseEvaluationInputs struct {
	actuals   []*evalset.Invocation
	expecteds []*evalset.Invocation
	userID    string
}

func prepareCaseEvaluationInputs(inferenceResult *service.InferenceResult, evalCase *evalset.EvalCase) (*caseEvaluationInputs, error) {
	if len(evalCase.Conversation) == 0 {
		return nil, errors.New("invalid eval case")
	}
	if evalCase.SessionInput == nil {
		return nil, errors.New("session input is nil")
	}
	actuals := inferenceResult.Inferences
	expecteds := evalCase.Conversation
	if len(actuals) != len(expecteds) {
		return nil, fmt.Errorf("inference count %d does not match expected conversation length %d",
			len(actuals), len(expecteds))
	}
	return &caseEvaluationInputs{
		actuals:   actuals,
		expecteds: expecteds,
		userID:    evalCase.SessionInput.UserID,
	}, nil
}
