//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory metric manager implementation.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/internal/clone"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
)

// manager implements metric.Manager backed by in-memory storage.
// Each API returns deep-copied objects to avoid accidental mutation.
type manager struct {
	mu      sync.RWMutex
	metrics map[string]map[string][]*metric.EvalMetric // appName -> evalSetID -> metrics.
}

// New creates an in-memory metric manager.
func New() metric.Manager {
	return &manager{
		metrics: make(map[string]map[string][]*metric.EvalMetric),
	}
}

// List lists all metrics identified by the given app name and eval set ID.
func (m *manager) List(_ context.Context, appName, evalSetID string) ([]*metric.EvalMetric, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if evalSetID == "" {
		return nil, errors.New("empty eval set id")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	metrics, err := clone.CloneSlice(m.metrics[appName][evalSetID])
	if err != nil {
		return nil, fmt.Errorf("clone metrics: %w", err)
	}
	if metrics == nil {
		metrics = []*metric.EvalMetric{}
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
	if _, ok := m.metrics[appName]; !ok {
		m.metrics[appName] = make(map[string][]*metric.EvalMetric)
	}
	m.metrics[appName][evalSetID] = cloned
	return nil
}

// Get gets a metric identified by the given app name, eval set ID and metric name.
func (m *manager) Get(_ context.Context, appName, evalSetID, metricName string) (*metric.EvalMetric, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if evalSetID == "" {
		return nil, errors.New("empty eval set id")
	}
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, evalMetric := range m.metrics[appName][evalSetID] {
		if evalMetric != nil && evalMetric.MetricName == metricName {
			cloned, err := clone.Clone(evalMetric)
			if err != nil {
				return nil, fmt.Errorf("clone metric: %w", err)
			}
			return cloned, nil
		}
	}
	return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, evalSetID, metricName, os.ErrNotExist)
}

// Close implements metric.Manager.
func (m *manager) Close() error {
	return nil
}
