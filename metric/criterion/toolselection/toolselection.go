//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package toolselection defines the tool selection scoring criterion.
package toolselection

import (
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/metric/criterion/text"
)

// defaultNameCriterion compares tool names case-insensitively, so a model
// that answers with CALC_TAX still counts as having picked calc_tax.
var defaultNameCriterion = &text.TextCriterion{CaseInsensitive: true}

// ToolSelectionCriterion scores whether the observed tool call names the
// expected tool. The score is binary: selection either matched or it did
// not.
type ToolSelectionCriterion struct {
	// Name compares tool names. Defaults to case-insensitive exact matching.
	Name *text.TextCriterion `json:"name,omitempty"`
}

// New creates a ToolSelectionCriterion with the provided options.
func New(opt ...Option) *ToolSelectionCriterion {
	opts := newOptions(opt...)
	return &ToolSelectionCriterion{
		Name: opts.name,
	}
}

// Score rates the observed tool name against the expected one and explains
// the outcome.
func (c *ToolSelectionCriterion) Score(actual, expected string) (float64, string) {
	if expected == "" {
		return 0, "Expected tool not found in context"
	}
	if actual == "" {
		return 0, fmt.Sprintf("No tool detected in response. Expected: %s", expected)
	}
	matcher := c.Name
	if matcher == nil {
		matcher = defaultNameCriterion
	}
	if ok, _ := matcher.Match(actual, expected); ok {
		return 1, fmt.Sprintf("Correctly selected tool: %s", expected)
	}
	return 0, fmt.Sprintf("Incorrect tool selected. Expected: %s, Got: %s", expected, actual)
}
