//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a filesystem-backed metric manager implementation.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
)

// manager implements metric.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	locator metric.Locator
}

// New creates a filesystem-backed metric manager.
func New(opts ...metric.Option) metric.Manager {
	options := metric.NewOptions(opts...)
	return &manager{
		baseDir: options.BaseDir,
		locator: options.Locator,
	}
}

// List lists all metrics identified by the given app name and eval set ID.
// A missing metric file means no metrics were configured yet.
func (m *manager) List(_ context.Context, appName, evalSetID string) ([]*metric.EvalMetric, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if evalSetID == "" {
		return nil, errors.New("empty eval set id")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	metrics, err := m.load(appName, evalSetID)
	if errors.Is(err, os.ErrNotExist) {
		return []*metric.EvalMetric{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load metrics %s.%s: %w", appName, evalSetID, err)
	}
	return metrics, nil
}

// Save stores the given metrics, replacing any previous ones.
func (m *manager) Save(_ context.Context, appName, evalSetID string, metrics []*metric.EvalMetric) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if evalSetID == "" {
		return errors.New("empty eval set id")
	}
	cloned, err := clone.CloneSlice(metrics)
	if err != nil {
		return fmt.Errorf("clone metrics: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(appName, evalSetID, cloned)
}

// Get gets a metric identified by the given app name, eval set ID and metric name.
func (m *manager) Get(ctx context.Context, appName, evalSetID, metricName string) (*metric.EvalMetric, error) {
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	metrics, err := m.List(ctx, appName, evalSetID)
	if err != nil {
		return nil, err
	}
	for _, evalMetric := range metrics {
		if evalMetric != nil && evalMetric.MetricName == metricName {
			return evalMetric, nil
		}
	}
	return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, evalSetID, metricName, os.ErrNotExist)
}

func (m *manager) metricPath(appName, evalSetID string) string {
	return m.locator.Build(m.baseDir, appName, evalSetID)
}

func (m *manager) load(appName, evalSetID string) ([]*metric.EvalMetric, error) {
	data, err := os.ReadFile(m.metricPath(appName, evalSetID))
	if err != nil {
		return nil, err
	}
	var metrics []*metric.EvalMetric
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = []*metric.EvalMetric{}
	}
	return metrics, nil
}

func (m *manager) store(appName, evalSetID string, metrics []*metric.EvalMetric) error {
	path := m.metricPath(appName, evalSetID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir all %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	if metrics == nil {
		metrics = []*metric.EvalMetric{}
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metrics); err != nil {
		file.Close()
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// Close implements metric.Manager.
func (m *manager) Close() error {
	return nil
}
