//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for evaluation sets.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
)

var _ evalset.Manager = (*manager)(nil)

// manager implements evalset.Manager using in-memory storage. Every read
// returns deep-cloned objects so callers cannot mutate stored state.
type manager struct {
	mu       sync.RWMutex
	evalSets map[string]map[string]*evalset.EvalSet
}

// New creates a new in-memory evaluation set manager.
func New() evalset.Manager {
	return &manager{
		evalSets: make(map[string]map[string]*evalset.EvalSet),
	}
}

// Get returns an EvalSet identified by evalSetID.
func (m *manager) Get(_ context.Context, appName, evalSetID string) (*evalset.EvalSet, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	es, err := m.find(appName, evalSetID)
	if err != nil {
		return nil, err
	}
	cloned, err := clone.Clone(es)
	if err != nil {
		return nil, fmt.Errorf("clone eval set %s.%s: %w", appName, evalSetID, err)
	}
	return cloned, nil
}

// Create creates an empty EvalSet. Returns an error if it already exists.
func (m *manager) Create(_ context.Context, appName, evalSetID string) (*evalset.EvalSet, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evalSets[appName][evalSetID]; ok {
		return nil, fmt.Errorf("eval set %s.%s already exists", appName, evalSetID)
	}
	es := &evalset.EvalSet{
		EvalSetID:         evalSetID,
		Name:              evalSetID,
		EvalCases:         []*evalset.EvalCase{},
		CreationTimestamp: epochtime.Now(),
	}
	if m.evalSets[appName] == nil {
		m.evalSets[appName] = make(map[string]*evalset.EvalSet)
	}
	m.evalSets[appName][evalSetID] = es
	cloned, err := clone.Clone(es)
	if err != nil {
		return nil, fmt.Errorf("clone eval set %s.%s: %w", appName, evalSetID, err)
	}
	return cloned, nil
}

// List lists all EvalSet IDs for the given appName.
func (m *manager) List(_ context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.evalSets[appName]))
	for id := range m.evalSets[appName] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete deletes the EvalSet identified by evalSetID.
func (m *manager) Delete(_ context.Context, appName, evalSetID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if evalSetID == "" {
		return errors.New("eval set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.find(appName, evalSetID); err != nil {
		return err
	}
	delete(m.evalSets[appName], evalSetID)
	return nil
}

// GetCase returns an EvalCase identified by evalSetID and evalCaseID.
func (m *manager) GetCase(_ context.Context, appName, evalSetID, evalCaseID string) (*evalset.EvalCase, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	if evalCaseID == "" {
		return nil, errors.New("eval case id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	es, err := m.find(appName, evalSetID)
	if err != nil {
		return nil, err
	}
	for _, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCaseID {
			cloned, err := clone.Clone(c)
			if err != nil {
				return nil, fmt.Errorf("clone eval case %s.%s.%s: %w", appName, evalSetID, evalCaseID, err)
			}
			return cloned, nil
		}
	}
	return nil, fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCaseID, os.ErrNotExist)
}

// AddCase adds the given EvalCase to an existing EvalSet.
func (m *manager) AddCase(_ context.Context, appName, evalSetID string, evalCase *evalset.EvalCase) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if evalSetID == "" {
		return errors.New("eval set id is empty")
	}
	if evalCase == nil {
		return errors.New("evalCase is nil")
	}
	if evalCase.EvalID == "" {
		return errors.New("evalCase.EvalID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	es, err := m.find(appName, evalSetID)
	if err != nil {
		return err
	}
	for _, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCase.EvalID {
			return fmt.Errorf("eval case %s.%s.%s already exists", appName, evalSetID, evalCase.EvalID)
		}
	}
	cloned, err := clone.Clone(evalCase)
	if err != nil {
		return fmt.Errorf("clone eval case: %w", err)
	}
	stampTimestamps(cloned)
	es.EvalCases = append(es.EvalCases, cloned)
	return nil
}

// UpdateCase updates an existing EvalCase.
func (m *manager) UpdateCase(_ context.Context, appName, evalSetID string, evalCase *evalset.EvalCase) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if evalSetID == "" {
		return errors.New("eval set id is empty")
	}
	if evalCase == nil {
		return errors.New("evalCase is nil")
	}
	if evalCase.EvalID == "" {
		return errors.New("evalCase.EvalID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	es, err := m.find(appName, evalSetID)
	if err != nil {
		return err
	}
	for i, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCase.EvalID {
			cloned, err := clone.Clone(evalCase)
			if err != nil {
				return fmt.Errorf("clone eval case: %w", err)
			}
			es.EvalCases[i] = cloned
			return nil
		}
	}
	return fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCase.EvalID, os.ErrNotExist)
}

// DeleteCase deletes the given EvalCase.
func (m *manager) DeleteCase(_ context.Context, appName, evalSetID, evalCaseID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if evalSetID == "" {
		return errors.New("eval set id is empty")
	}
	if evalCaseID == "" {
		return errors.New("eval case id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	es, err := m.find(appName, evalSetID)
	if err != nil {
		return err
	}
	for i, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCaseID {
			es.EvalCases = append(es.EvalCases[:i], es.EvalCases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCaseID, os.ErrNotExist)
}

// Close implements evalset.Manager.
func (m *manager) Close() error {
	return nil
}

// find returns the stored eval set, holding at least a read lock.
func (m *manager) find(appName, evalSetID string) (*evalset.EvalSet, error) {
	es, ok := m.evalSets[appName][evalSetID]
	if !ok {
		return nil, fmt.Errorf("eval set %s.%s not found: %w", appName, evalSetID, os.ErrNotExist)
	}
	return es, nil
}

// stampTimestamps fills missing creation timestamps on the case and its
// invocations.
func stampTimestamps(evalCase *evalset.EvalCase) {
	if evalCase.CreationTimestamp == nil {
		evalCase.CreationTimestamp = epochtime.Now()
	}
	for _, invocation := range evalCase.Conversation {
		if invocation == nil {
			continue
		}
		if invocation.CreationTimestamp == nil {
			invocation.CreationTimestamp = epochtime.Now()
		}
	}
}
