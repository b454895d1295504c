//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads evaluation run configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-agenteval-go/log"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion"
)

// Default values for evaluation configuration.
const (
	DefaultAppName                  = "agent-evaluation"
	DefaultModel                    = "llama-3-2-3b"
	DefaultAPIKeyEnv                = "OPENAI_API_KEY"
	DefaultMaxTokens                = 2048
	DefaultOutputDir                = "evaluation_results"
	DefaultMaxConcurrentEvaluations = 3
	DefaultNumRuns                  = 1
	DefaultLogLevel                 = log.LevelInfo
)

// weightSumTolerance is the allowed deviation of the metric weight sum
// from 1.0.
const weightSumTolerance = 0.001

// ModelConfig holds the model endpoint settings.
type ModelConfig struct {
	// Name is the model identifier sent with each request.
	Name string `yaml:"name,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	// Temperature is the sampling temperature, zero for greedy decoding.
	Temperature *float64 `yaml:"temperature,omitempty"`
	// MaxTokens caps the completion tokens per request.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// APIKey resolves the API key from the configured environment variable.
func (m ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

// WeightsConfig distributes the composite score across the three metric
// dimensions. The weights are expected to sum to 1.
type WeightsConfig struct {
	ToolSelection    float64 `yaml:"tool_selection"`
	ParamAccuracy    float64 `yaml:"param_accuracy"`
	ResponseAccuracy float64 `yaml:"response_accuracy"`
}

// ThresholdsConfig holds the minimum passing score per metric.
type ThresholdsConfig struct {
	ToolSelection    float64 `yaml:"tool_selection"`
	ParamAccuracy    float64 `yaml:"param_accuracy"`
	ResponseAccuracy float64 `yaml:"response_accuracy"`
	Composite        float64 `yaml:"composite"`
}

// ParallelConfig holds the concurrent evaluation settings.
type ParallelConfig struct {
	// Enabled turns on concurrent case inference.
	Enabled bool `yaml:"enabled"`
	// MaxConcurrentEvaluations bounds the number of cases in flight.
	MaxConcurrentEvaluations int `yaml:"max_concurrent_evaluations,omitempty"`
}

// Config is the top-level evaluation configuration.
type Config struct {
	// AppName groups eval sets and results.
	AppName string `yaml:"app_name,omitempty"`
	// Model configures the endpoint under evaluation.
	Model ModelConfig `yaml:"model,omitempty"`
	// Tools lists the tool names exposed to the agent.
	Tools []string `yaml:"tools,omitempty"`
	// DatasetFile is the CSV dataset to load eval cases from.
	DatasetFile string `yaml:"dataset_file,omitempty"`
	// OutputDir receives reports and persisted results.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Weights configures the composite score weighting.
	Weights WeightsConfig `yaml:"weights,omitempty"`
	// Thresholds configures per-metric passing scores.
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
	// Parallel configures concurrent case inference.
	Parallel ParallelConfig `yaml:"parallel,omitempty"`
	// SessionCleanup removes agent sessions once a case is captured.
	SessionCleanup *bool `yaml:"session_cleanup,omitempty"`
	// NumRuns repeats the evaluation to smooth out nondeterminism.
	NumRuns int `yaml:"num_runs,omitempty"`
	// LogLevel follows the log package levels.
	LogLevel string `yaml:"log_level,omitempty"`
}

// New returns a Config with all defaults populated.
func New() *Config {
	weights := metric.DefaultWeights()
	return &Config{
		AppName: DefaultAppName,
		Model: ModelConfig{
			Name:        DefaultModel,
			APIKeyEnv:   DefaultAPIKeyEnv,
			Temperature: floatPtr(0),
			MaxTokens:   DefaultMaxTokens,
		},
		OutputDir: DefaultOutputDir,
		Weights: WeightsConfig{
			ToolSelection:    weights.ToolSelection,
			ParamAccuracy:    weights.ParamAccuracy,
			ResponseAccuracy: weights.ResponseAccuracy,
		},
		Thresholds: ThresholdsConfig{
			ToolSelection:    metric.DefaultToolSelectionThreshold,
			ParamAccuracy:    metric.DefaultParamAccuracyThreshold,
			ResponseAccuracy: metric.DefaultResponseAccuracyThreshold,
			Composite:        metric.DefaultCompositeThreshold,
		},
		Parallel: ParallelConfig{
			MaxConcurrentEvaluations: DefaultMaxConcurrentEvaluations,
		},
		SessionCleanup: boolPtr(true),
		NumRuns:        DefaultNumRuns,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads a YAML config file, overlays it onto the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	if c.AppName == "" {
		return errors.New("app name is empty")
	}
	if c.Model.Name == "" {
		return errors.New("model name is empty")
	}
	if c.Weights.ToolSelection < 0 || c.Weights.ParamAccuracy < 0 || c.Weights.ResponseAccuracy < 0 {
		return errors.New("metric weights must be non-negative")
	}
	if sum := c.MetricWeights().Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("metric weights sum to %v, expected 1.0", sum)
	}
	thresholds := []struct {
		name  string
		value float64
	}{
		{"tool_selection", c.Thresholds.ToolSelection},
		{"param_accuracy", c.Thresholds.ParamAccuracy},
		{"response_accuracy", c.Thresholds.ResponseAccuracy},
		{"composite", c.Thresholds.Composite},
	}
	for _, threshold := range thresholds {
		if threshold.value < 0 || threshold.value > 1 {
			return fmt.Errorf("threshold %s is out of range [0, 1]: %v", threshold.name, threshold.value)
		}
	}
	for _, tool := range c.Tools {
		if tool == "" {
			return errors.New("tool name is empty")
		}
	}
	if c.Parallel.MaxConcurrentEvaluations <= 0 {
		return errors.New("max concurrent evaluations must be greater than 0")
	}
	if c.NumRuns <= 0 {
		return errors.New("num runs must be greater than 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError, log.LevelFatal:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// EvalMetrics materializes the four built-in metrics with the configured
// thresholds. The composite criterion carries the configured weights so
// they reach the evaluator regardless of how it was constructed.
func (c *Config) EvalMetrics() []*metric.EvalMetric {
	return []*metric.EvalMetric{
		{
			MetricName: metric.MetricToolSelectionScore,
			Threshold:  c.Thresholds.ToolSelection,
			Criterion:  criterion.New(),
		},
		{
			MetricName: metric.MetricParamAccuracyScore,
			Threshold:  c.Thresholds.ParamAccuracy,
			Criterion:  criterion.New(),
		},
		{
			MetricName: metric.MetricResponseAccuracyScore,
			Threshold:  c.Thresholds.ResponseAccuracy,
			Criterion:  criterion.New(),
		},
		{
			MetricName: metric.MetricCompositeScore,
			Threshold:  c.Thresholds.Composite,
			Criterion:  criterion.New(criterion.WithWeights(c.MetricWeights())),
		},
	}
}

// MetricWeights converts the configured weights for the composite
// evaluator.
func (c *Config) MetricWeights() metric.Weights {
	return metric.Weights{
		ToolSelection:    c.Weights.ToolSelection,
		ParamAccuracy:    c.Weights.ParamAccuracy,
		ResponseAccuracy: c.Weights.ResponseAccuracy,
	}
}

// SessionCleanupEnabled reports whether agent sessions are removed after
// each case. Defaults to true when unset.
func (c *Config) SessionCleanupEnabled() bool {
	return c.SessionCleanup == nil || *c.SessionCleanup
}

// EnsureOutputDir creates the output directory if needed and returns its
// path.
func (c *Config) EnsureOutputDir() (string, error) {
	if c.OutputDir == "" {
		return "", errors.New("output directory is empty")
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return c.OutputDir, nil
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
