//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package responseaccuracy defines the response accuracy criterion. It
// distills a free-form answer into comparable signals: dollar amounts,
// percentages, a PASSED/FAILED style status and warning mentions, then
// scores how closely two answers agree on them.
package responseaccuracy

import (
	"fmt"
	"math"
	"strings"
)

// StatusPassed and StatusFailed are the canonical status values that
// semantic variations are folded into.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// defaultStatusMapping folds semantic variations onto canonical statuses.
// Unmapped matches such as ELIGIBLE pass through unchanged.
var defaultStatusMapping = map[string]string{
	"PASSES":       StatusPassed,
	"PASS":         StatusPassed,
	"FAILS":        StatusFailed,
	"FAIL":         StatusFailed,
	"APPROVED":     StatusPassed,
	"APPROVE":      StatusPassed,
	"REJECTED":     StatusFailed,
	"REJECT":       StatusFailed,
	"VALID":        StatusPassed,
	"INVALID":      StatusFailed,
	"SUCCESSFUL":   StatusPassed,
	"SUCCESS":      StatusPassed,
	"UNSUCCESSFUL": StatusFailed,
}

// ExtractedInfo is the comparable content distilled from one answer.
type ExtractedInfo struct {
	// Numbers are all numeric values in the text, commas removed.
	Numbers []float64 `json:"numbers,omitempty"`
	// Percentages are values written with a trailing percent sign.
	Percentages []float64 `json:"percentages,omitempty"`
	// Amounts are dollar values in order of appearance. The first one is
	// treated as the primary result of the answer.
	Amounts []float64 `json:"amounts,omitempty"`
	// Warnings are warning texts, from tool payloads or from prose.
	Warnings []string `json:"warnings,omitempty"`
	// Status is the canonical outcome keyword, empty when none was found.
	Status string `json:"status,omitempty"`
}

// ResponseAccuracyCriterion scores agreement between two answers.
type ResponseAccuracyCriterion struct {
	// StatusMapping maps raw status matches onto canonical values. It is
	// merged over the built-in mapping.
	StatusMapping map[string]string `json:"statusMapping,omitempty"`
}

// New creates a ResponseAccuracyCriterion with the provided options.
func New(opt ...Option) *ResponseAccuracyCriterion {
	opts := newOptions(opt...)
	return &ResponseAccuracyCriterion{
		StatusMapping: opts.statusMapping,
	}
}

// Similarity scores how closely the actual answer agrees with the
// expected one. Each comparable element contributes one sub-score and the
// result is their mean: status agreement is binary, the primary amounts
// are compared by relative error, percentages by fraction matched within
// 0.1, and warning presence either matches or costs half a point.
func (c *ResponseAccuracyCriterion) Similarity(actual, expected *ExtractedInfo) (float64, string) {
	if actual == nil {
		actual = &ExtractedInfo{}
	}
	if expected == nil {
		expected = &ExtractedInfo{}
	}
	var scores []float64
	var reasons []string

	switch {
	case expected.Status != "" && actual.Status != "":
		if expected.Status == actual.Status {
			scores = append(scores, 1)
			reasons = append(reasons, "Status matches")
		} else {
			scores = append(scores, 0)
			reasons = append(reasons, fmt.Sprintf("Status mismatch: expected %s, got %s", expected.Status, actual.Status))
		}
	case expected.Status != "":
		scores = append(scores, 0)
		reasons = append(reasons, fmt.Sprintf("Missing status: expected %s", expected.Status))
	}

	if len(expected.Amounts) > 0 && len(actual.Amounts) > 0 {
		mainExpected := expected.Amounts[0]
		mainActual := actual.Amounts[0]
		var accuracy float64
		if mainExpected > 0 {
			accuracy = math.Max(0, 1-math.Abs(mainExpected-mainActual)/mainExpected)
		} else if mainActual == 0 {
			accuracy = 1
		}
		scores = append(scores, accuracy)
		reasons = append(reasons, fmt.Sprintf("Main amount accuracy: %.2f", accuracy))
	}

	if len(expected.Percentages) > 0 && len(actual.Percentages) > 0 {
		matched := 0
		for _, expectedPct := range expected.Percentages {
			for _, actualPct := range actual.Percentages {
				if math.Abs(expectedPct-actualPct) < 0.1 {
					matched++
					break
				}
			}
		}
		pctScore := float64(matched) / float64(len(expected.Percentages))
		scores = append(scores, pctScore)
		reasons = append(reasons, fmt.Sprintf("Percentage accuracy: %.2f", pctScore))
	}

	if (len(expected.Warnings) > 0) == (len(actual.Warnings) > 0) {
		scores = append(scores, 1)
		reasons = append(reasons, "Warning presence matches")
	} else {
		scores = append(scores, 0.5)
		reasons = append(reasons, "Warning presence mismatch")
	}

	if len(scores) == 0 {
		return 0, "No comparable elements found"
	}
	var total float64
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores)), strings.Join(reasons, "; ")
}
