//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package metric

import (
	"context"
)

// Manager defines the interface for managing evaluation metrics.
type Manager interface {
	// List returns all metrics identified by the given app name and eval set ID.
	List(ctx context.Context, appName, evalSetID string) ([]*EvalMetric, error)
	// Save stores the given metrics identified by the given app name and eval set ID.
	Save(ctx context.Context, appName, evalSetID string, metrics []*EvalMetric) error
	// Get gets a metric identified by the given app name, eval set ID and metric name.
	Get(ctx context.Context, appName, evalSetID, metricName string) (*EvalMetric, error)
	// Close releases resources held by the manager.
	Close() error
}
