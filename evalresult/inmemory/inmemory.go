//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for evaluation results.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
)

var _ evalresult.Manager = (*manager)(nil)

// manager implements evalresult.Manager using in-memory storage. Every read
// returns deep-cloned objects so callers cannot mutate stored state.
type manager struct {
	mu      sync.RWMutex
	results map[string]map[string]*evalresult.EvalSetResult
}

// New creates a new in-memory evaluation result manager.
func New() evalresult.Manager {
	return &manager{
		results: make(map[string]map[string]*evalresult.EvalSetResult),
	}
}

// Save stores an evaluation result, generating an ID when the result carries none.
func (m *manager) Save(_ context.Context, appName string, evalSetResult *evalresult.EvalSetResult) (string, error) {
	if appName == "" {
		return "", errors.New("app name is empty")
	}
	if evalSetResult == nil {
		return "", errors.New("eval set result is nil")
	}
	if evalSetResult.EvalSetID == "" {
		return "", errors.New("the eval set id of eval set result is empty")
	}
	stored, err := clone.Clone(evalSetResult)
	if err != nil {
		return "", fmt.Errorf("clone eval set result: %w", err)
	}
	if stored.EvalSetResultID == "" {
		stored.EvalSetResultID = evalresult.NewResultID(appName, stored.EvalSetID)
	}
	if stored.EvalSetResultName == "" {
		stored.EvalSetResultName = stored.EvalSetResultID
	}
	if stored.CreationTimestamp == nil {
		stored.CreationTimestamp = epochtime.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results[appName] == nil {
		m.results[appName] = make(map[string]*evalresult.EvalSetResult)
	}
	m.results[appName][stored.EvalSetResultID] = stored
	return stored.EvalSetResultID, nil
}

// Get retrieves an evaluation result by evalSetResultID.
func (m *manager) Get(_ context.Context, appName, evalSetResultID string) (*evalresult.EvalSetResult, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetResultID == "" {
		return nil, errors.New("eval set result id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.results[appName][evalSetResultID]
	if !ok {
		return nil, fmt.Errorf("eval set result %s.%s not found: %w", appName, evalSetResultID, os.ErrNotExist)
	}
	cloned, err := clone.Clone(stored)
	if err != nil {
		return nil, fmt.Errorf("clone eval set result %s.%s: %w", appName, evalSetResultID, err)
	}
	return cloned, nil
}

// List returns the IDs of all stored evaluation results for the app.
func (m *manager) List(_ context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.results[appName]))
	for id := range m.results[appName] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements evalresult.Manager.
func (m *manager) Close() error {
	return nil
}
