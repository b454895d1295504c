//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for evaluation sets.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

var _ evalset.Manager = (*manager)(nil)

// manager implements evalset.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	locator evalset.Locator
}

// New creates a local file evaluation set manager.
func New(opt ...evalset.Option) evalset.Manager {
	opts := evalset.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
	}
}

// Get gets an EvalSet identified by evalSetID.
// Returns an error if the EvalSet does not exist.
func (m *manager) Get(_ context.Context, appName, evalSetID string) (*evalset.EvalSet, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	es, err := m.load(appName, evalSetID)
	if err != nil {
		return nil, fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	return es, nil
}

// Create creates an EvalSet.
// Returns an error if the EvalSet already exists.
func (m *manager) Create(_ context.Context, appName, evalSetID string) (*evalset.EvalSet, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(appName, evalSetID); err == nil {
		return nil, fmt.Errorf("eval set %s.%s already exists", appName, evalSetID)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	es := &evalset.EvalSet{
		EvalSetID:         evalSetID,
		Name:              evalSetID,
		EvalCases:         []*evalset.EvalCase{},
		CreationTimestamp: epochtime.Now(),
	}
	if err := m.store(appName, es); err != nil {
		return nil, fmt.Errorf("store eval set %s.%s: %w", appName, evalSetID, err)
	}
	return es, nil
}

// List lists all EvalSet IDs for the given appName.
func (m *manager) List(_ context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	evalSetIDs, err := m.locator.List(m.baseDir, appName)
	if err != nil {
		return nil, fmt.Errorf("list eval sets for app %s: %w", appName, err)
	}
	return evalSetIDs, nil
}

// Delete deletes the EvalSet identified by evalSetID.
// Returns an error if the EvalSet does not exist.
func (m *manager) Delete(_ context.Context, appName, evalSetID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if evalSetID == "" {
		return errors.New("eval set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(appName, evalSetID); err != nil {
		return fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	path := m.evalSetPath(appName, evalSetID)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

// GetCase gets an EvalCase.
// Returns an error if the EvalCase does not exist.
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
	es, err := m.load(appName, evalSetID)
	if err != nil {
		return nil, fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	for _, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCaseID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCaseID, os.ErrNotExist)
}

// AddCase adds the given EvalCase to an existing EvalSet identified by evalSetID.
// If the EvalSet does not exist or the EvalCase already exists, returns an error.
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
	es, err := m.load(appName, evalSetID)
	if err != nil {
		return fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
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
	if cloned.CreationTimestamp == nil {
		cloned.CreationTimestamp = epochtime.Now()
	}
	for _, invocation := range cloned.Conversation {
		if invocation == nil {
			continue
		}
		if invocation.CreationTimestamp == nil {
			invocation.CreationTimestamp = epochtime.Now()
		}
	}
	es.EvalCases = append(es.EvalCases, cloned)
	if err := m.store(appName, es); err != nil {
		return fmt.Errorf("store eval set %s.%s: %w", appName, evalSetID, err)
	}
	return nil
}

// UpdateCase updates an existing EvalCase.
// If the EvalSet does not exist or the EvalCase does not exist, returns an error.
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
	es, err := m.load(appName, evalSetID)
	if err != nil {
		return fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	for i, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCase.EvalID {
			es.EvalCases[i] = evalCase
			if err := m.store(appName, es); err != nil {
				return fmt.Errorf("store eval set %s.%s: %w", appName, evalSetID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCase.EvalID, os.ErrNotExist)
}

// DeleteCase deletes the given EvalCase.
// If the EvalSet does not exist or the EvalCase does not exist, returns an error.
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
	es, err := m.load(appName, evalSetID)
	if err != nil {
		return fmt.Errorf("load eval set %s.%s: %w", appName, evalSetID, err)
	}
	for i, c := range es.EvalCases {
		if c != nil && c.EvalID == evalCaseID {
			es.EvalCases = append(es.EvalCases[:i], es.EvalCases[i+1:]...)
			if err := m.store(appName, es); err != nil {
				return fmt.Errorf("store eval set %s.%s: %w", appName, evalSetID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("eval case %s.%s.%s not found: %w", appName, evalSetID, evalCaseID, os.ErrNotExist)
}

// Close implements evalset.Manager.
func (m *manager) Close() error {
	return nil
}

// evalSetPath builds the path to the EvalSet file.
func (m *manager) evalSetPath(appName, evalSetID string) string {
	return m.locator.Build(m.baseDir, appName, evalSetID)
}

// load loads the EvalSet from the file system.
func (m *manager) load(appName, evalSetID string) (*evalset.EvalSet, error) {
	path := m.evalSetPath(appName, evalSetID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var es evalset.EvalSet
	if err := json.Unmarshal(data, &es); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if es.EvalCases == nil {
		es.EvalCases = []*evalset.EvalCase{}
	}
	return &es, nil
}

// store stores the EvalSet to the file system.
func (m *manager) store(appName string, es *evalset.EvalSet) error {
	if es == nil {
		return errors.New("evalSet is nil")
	}
	path := m.evalSetPath(appName, es.EvalSetID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(es); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode file %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}
