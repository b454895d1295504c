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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agenteval-go/metric"
)

func TestSaveListGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(metric.WithBaseDir(dir))

	require.NoError(t, m.Save(ctx, "app", "set1", metric.DefaultMetrics()))

	// The file lands under <base>/<app>/<set>.metrics.json.
	_, err := os.Stat(filepath.Join(dir, "app", "set1.metrics.json"))
	require.NoError(t, err)

	metrics, err := m.List(ctx, "app", "set1")
	require.NoError(t, err)
	require.Len(t, metrics, 4)

	got, err := m.Get(ctx, "app", "set1", metric.MetricParamAccuracyScore)
	require.NoError(t, err)
	require.Equal(t, 0.8, got.Threshold)
}

func TestListMissingFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	m := New(metric.WithBaseDir(t.TempDir()))

	metrics, err := m.List(ctx, "app", "none")
	require.NoError(t, err)
	require.Empty(t, metrics)
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	m := New(metric.WithBaseDir(t.TempDir()))

	_, err := m.Get(ctx, "app", "set1", "missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	m := New(metric.WithBaseDir(t.TempDir()))

	require.NoError(t, m.Save(ctx, "app", "set1", metric.DefaultMetrics()))
	require.NoError(t, m.Save(ctx, "app", "set1", []*metric.EvalMetric{
		{MetricName: metric.MetricCompositeScore, Threshold: 0.9},
	}))

	metrics, err := m.List(ctx, "app", "set1")
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	require.Equal(t, 0.9, metrics[0].Threshold)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	m := New(metric.WithBaseDir(t.TempDir()))

	_, err := m.List(ctx, "", "set1")
	require.Error(t, err)
	require.Error(t, m.Save(ctx, "app", "", nil))
	_, err = m.Get(ctx, "app", "set1", "")
	require.Error(t, err)
}
