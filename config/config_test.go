//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/evaluator/composite"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultAppName, cfg.AppName)
	assert.Equal(t, DefaultModel, cfg.Model.Name)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Model.APIKeyEnv)
	require.NotNil(t, cfg.Model.Temperature)
	assert.Equal(t, 0.0, *cfg.Model.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.Model.MaxTokens)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 0.3, cfg.Weights.ToolSelection)
	assert.Equal(t, 0.3, cfg.Weights.ParamAccuracy)
	assert.Equal(t, 0.4, cfg.Weights.ResponseAccuracy)
	assert.Equal(t, 1.0, cfg.Thresholds.ToolSelection)
	assert.Equal(t, 0.8, cfg.Thresholds.ParamAccuracy)
	assert.Equal(t, 0.7, cfg.Thresholds.ResponseAccuracy)
	assert.Equal(t, 0.7, cfg.Thresholds.Composite)
	assert.False(t, cfg.Parallel.Enabled)
	assert.Equal(t, DefaultMaxConcurrentEvaluations, cfg.Parallel.MaxConcurrentEvaluations)
	assert.True(t, cfg.SessionCleanupEnabled())
	assert.Equal(t, DefaultNumRuns, cfg.NumRuns)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)

	assert.NoError(t, cfg.Validate())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evaluation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app_name: tax-assistant
model:
  name: llama-4-scout-17b
  base_url: http://localhost:8321/v1
  temperature: 0.1
  max_tokens: 4096
tools:
  - calc_tax
  - calc_penalty
dataset_file: scratch/compatibility.csv
thresholds:
  composite: 0.75
parallel:
  enabled: true
  max_concurrent_evaluations: 5
session_cleanup: false
num_runs: 3
log_level: DEBUG
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tax-assistant", cfg.AppName)
	assert.Equal(t, "llama-4-scout-17b", cfg.Model.Name)
	assert.Equal(t, "http://localhost:8321/v1", cfg.Model.BaseURL)
	require.NotNil(t, cfg.Model.Temperature)
	assert.Equal(t, 0.1, *cfg.Model.Temperature)
	assert.Equal(t, 4096, cfg.Model.MaxTokens)
	assert.Equal(t, []string{"calc_tax", "calc_penalty"}, cfg.Tools)
	assert.Equal(t, "scratch/compatibility.csv", cfg.DatasetFile)
	assert.Equal(t, 0.75, cfg.Thresholds.Composite)
	assert.True(t, cfg.Parallel.Enabled)
	assert.Equal(t, 5, cfg.Parallel.MaxConcurrentEvaluations)
	assert.False(t, cfg.SessionCleanupEnabled())
	assert.Equal(t, 3, cfg.NumRuns)
	assert.Equal(t, "DEBUG", cfg.LogLevel)

	// Absent fields keep their defaults.
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Model.APIKeyEnv)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 1.0, cfg.Thresholds.ToolSelection)
	assert.Equal(t, 0.3, cfg.Weights.ToolSelection)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "app_name: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
weights:
  tool_selection: 0.5
  param_accuracy: 0.5
  response_accuracy: 0.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config file")
	assert.Contains(t, err.Error(), "metric weights sum to 1.5")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "empty app name",
			mutate:  func(cfg *Config) { cfg.AppName = "" },
			wantErr: "app name is empty",
		},
		{
			name:    "empty model name",
			mutate:  func(cfg *Config) { cfg.Model.Name = "" },
			wantErr: "model name is empty",
		},
		{
			name: "negative weight",
			mutate: func(cfg *Config) {
				cfg.Weights.ToolSelection = -0.1
				cfg.Weights.ResponseAccuracy = 0.8
			},
			wantErr: "metric weights must be non-negative",
		},
		{
			name:    "weights do not sum to one",
			mutate:  func(cfg *Config) { cfg.Weights.ResponseAccuracy = 0.5 },
			wantErr: "metric weights sum to 1.1, expected 1.0",
		},
		{
			name:    "threshold out of range",
			mutate:  func(cfg *Config) { cfg.Thresholds.ParamAccuracy = 1.5 },
			wantErr: "threshold param_accuracy is out of range [0, 1]: 1.5",
		},
		{
			name:    "empty tool name",
			mutate:  func(cfg *Config) { cfg.Tools = []string{"calc_tax", ""} },
			wantErr: "tool name is empty",
		},
		{
			name:    "zero max concurrent evaluations",
			mutate:  func(cfg *Config) { cfg.Parallel.MaxConcurrentEvaluations = 0 },
			wantErr: "max concurrent evaluations must be greater than 0",
		},
		{
			name:    "zero num runs",
			mutate:  func(cfg *Config) { cfg.NumRuns = 0 },
			wantErr: "num runs must be greater than 0",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "verbose" },
			wantErr: `unknown log level "verbose"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateAcceptsUppercaseLogLevel(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "INFO"
	assert.NoError(t, cfg.Validate())
}

func TestEvalMetrics(t *testing.T) {
	cfg := New()
	cfg.Thresholds = ThresholdsConfig{
		ToolSelection:    0.9,
		ParamAccuracy:    0.85,
		ResponseAccuracy: 0.65,
		Composite:        0.75,
	}

	metrics := cfg.EvalMetrics()
	require.Len(t, metrics, 4)

	byName := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		require.NotNil(t, m.Criterion, "metric %s has no criterion", m.MetricName)
		byName[m.MetricName] = m.Threshold
	}
	assert.Equal(t, 0.9, byName[metric.MetricToolSelectionScore])
	assert.Equal(t, 0.85, byName[metric.MetricParamAccuracyScore])
	assert.Equal(t, 0.65, byName[metric.MetricResponseAccuracyScore])
	assert.Equal(t, 0.75, byName[metric.MetricCompositeScore])
}

// TestLoadedWeightsDriveCompositeScore walks configured weights all the
// way to a composite score: the YAML weighting is carried on the composite
// criterion and overrides the evaluator's default 0.3/0.3/0.4 split.
func TestLoadedWeightsDriveCompositeScore(t *testing.T) {
	path := writeConfigFile(t, `
weights:
  tool_selection: 1.0
  param_accuracy: 0.0
  response_accuracy: 0.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	metrics := cfg.EvalMetrics()
	require.Len(t, metrics, 4)
	compositeMetric := metrics[3]
	require.Equal(t, metric.MetricCompositeScore, compositeMetric.MetricName)
	require.NotNil(t, compositeMetric.Criterion.Weights)
	assert.Equal(t, metric.Weights{ToolSelection: 1.0}, *compositeMetric.Criterion.Weights)

	// The right tool with wrong arguments and no answer only scores 1.0
	// when the configured weighting is in effect.
	actual := &evalset.Invocation{
		ToolCalls: []*transcript.ToolCall{{Name: "calc_tax"}},
	}
	expected := &evalset.Invocation{
		ToolCalls:     []*transcript.ToolCall{{Name: "calc_tax", Arguments: map[string]any{"income": 50000}}},
		FinalResponse: "Tax owed is $6,000.",
	}
	result, err := composite.New().Evaluate(context.Background(),
		[]*evalset.Invocation{actual}, []*evalset.Invocation{expected}, compositeMetric)
	require.NoError(t, err)
	require.NotNil(t, result.OverallScore)
	assert.InDelta(t, 1.0, *result.OverallScore, 1e-9)
	assert.Contains(t, result.PerInvocationResults[0].Reason, "Tool Selection (100.0%)")
}

func TestMetricWeights(t *testing.T) {
	cfg := New()
	cfg.Weights = WeightsConfig{ToolSelection: 0.2, ParamAccuracy: 0.2, ResponseAccuracy: 0.6}

	weights := cfg.MetricWeights()
	assert.Equal(t, metric.Weights{
		ToolSelection:    0.2,
		ParamAccuracy:    0.2,
		ResponseAccuracy: 0.6,
	}, weights)
}

func TestSessionCleanupEnabled(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.SessionCleanupEnabled())

	cfg.SessionCleanup = nil
	assert.True(t, cfg.SessionCleanupEnabled())

	disabled := false
	cfg.SessionCleanup = &disabled
	assert.False(t, cfg.SessionCleanupEnabled())
}

func TestModelAPIKey(t *testing.T) {
	t.Setenv("AGENTEVAL_TEST_API_KEY", "secret")

	model := ModelConfig{APIKeyEnv: "AGENTEVAL_TEST_API_KEY"}
	assert.Equal(t, "secret", model.APIKey())

	assert.Empty(t, ModelConfig{}.APIKey())
}

func TestEnsureOutputDir(t *testing.T) {
	cfg := New()
	cfg.OutputDir = filepath.Join(t.TempDir(), "results", "nested")

	dir, err := cfg.EnsureOutputDir()
	require.NoError(t, err)
	assert.Equal(t, cfg.OutputDir, dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cfg.OutputDir = ""
	_, err = cfg.EnsureOutputDir()
	assert.EqualError(t, err, "output directory is empty")
}
