//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for evaluation results.
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
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

var _ evalresult.Manager = (*manager)(nil)

// manager implements evalresult.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	locator evalresult.Locator
}

// New creates a local file evaluation result manager.
func New(opt ...evalresult.Option) evalresult.Manager {
	opts := evalresult.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
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
	if err := m.store(appName, stored); err != nil {
		return "", fmt.Errorf("store eval set result %s.%s: %w", appName, stored.EvalSetResultID, err)
	}
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
	result, err := m.load(appName, evalSetResultID)
	if err != nil {
		return nil, fmt.Errorf("load eval set result %s.%s: %w", appName, evalSetResultID, err)
	}
	return result, nil
}

// List returns the IDs of all stored evaluation results for the app.
func (m *manager) List(_ context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	ids, err := m.locator.List(m.baseDir, appName)
	if err != nil {
		return nil, fmt.Errorf("list eval set results for app %s: %w", appName, err)
	}
	return ids, nil
}

// Close implements evalresult.Manager.
func (m *manager) Close() error {
	return nil
}

// resultPath builds the path to the eval set result file.
func (m *manager) resultPath(appName, evalSetResultID string) string {
	return m.locator.Build(m.baseDir, appName, evalSetResultID)
}

// load loads the eval set result from the file system.
func (m *manager) load(appName, evalSetResultID string) (*evalresult.EvalSetResult, error) {
	path := m.resultPath(appName, evalSetResultID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var result evalresult.EvalSetResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if result.EvalCaseResults == nil {
		result.EvalCaseResults = []*evalresult.EvalCaseResult{}
	}
	return &result, nil
}

// store stores the eval set result to the file system.
func (m *manager) store(appName string, result *evalresult.EvalSetResult) error {
	if result == nil {
		return errors.New("result is nil")
	}
	path := m.resultPath(appName, result.EvalSetResultID)
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
	if err := encoder.Encode(result); err != nil {
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
