//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package paramaccuracy defines the parameter accuracy comparison
// criterion. Parameters arrive from loosely typed model output, so values
// are matched across representations: 15, 15.0, "15" and "15" all count
// as the same argument, and true, "true", "yes" and 1 as the same flag.
package paramaccuracy

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ParamAccuracyCriterion scores how many expected parameters the observed
// call carried with an equivalent value.
type ParamAccuracyCriterion struct {
	// ValuesMatch overrides the built-in value equivalence.
	ValuesMatch func(actual, expected any) bool `json:"-"`
}

// New creates a ParamAccuracyCriterion with the provided options.
func New(opt ...Option) *ParamAccuracyCriterion {
	opts := newOptions(opt...)
	return &ParamAccuracyCriterion{
		ValuesMatch: opts.valuesMatch,
	}
}

// Report details one parameter comparison. Missing and Mismatched keep
// expected keys in sorted order so reports are stable.
type Report struct {
	// Total is the number of expected parameters.
	Total int `json:"total"`
	// Correct is the number of matched parameters.
	Correct int `json:"correct"`
	// Missing lists expected keys absent from the observed call.
	Missing []string `json:"missing,omitempty"`
	// Mismatched lists keys whose values differed, formatted as
	// "key: expected X, got Y".
	Mismatched []string `json:"mismatched,omitempty"`
	// Score is Correct over Total, or 1.0 when nothing was expected.
	Score float64 `json:"score"`
	// Reason is a human readable summary of the comparison.
	Reason string `json:"reason"`
}

// Err folds the report's problems into a single error, nil when every
// parameter matched.
func (r *Report) Err() error {
	var err *multierror.Error
	for _, key := range r.Missing {
		err = multierror.Append(err, fmt.Errorf("missing parameter %s", key))
	}
	for _, entry := range r.Mismatched {
		err = multierror.Append(err, fmt.Errorf("mismatched parameter %s", entry))
	}
	return err.ErrorOrNil()
}

// Compare rates observed parameters against expected ones. Extra observed
// parameters are ignored; only expected keys are scored.
func (c *ParamAccuracyCriterion) Compare(actual, expected map[string]any) *Report {
	if len(expected) == 0 {
		return &Report{Score: 1, Reason: "No parameters expected"}
	}
	match := c.ValuesMatch
	if match == nil {
		match = valuesMatch
	}
	report := &Report{Total: len(expected)}
	keys := make([]string, 0, len(expected))
	for key := range expected {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		expectedValue := expected[key]
		actualValue, ok := actual[key]
		if !ok {
			report.Missing = append(report.Missing, key)
			continue
		}
		if match(actualValue, expectedValue) {
			report.Correct++
			continue
		}
		report.Mismatched = append(report.Mismatched,
			fmt.Sprintf("%s: expected %s, got %s", key, valueString(expectedValue), valueString(actualValue)))
	}
	report.Score = float64(report.Correct) / float64(report.Total)
	report.Reason = report.buildReason()
	return report
}

func (r *Report) buildReason() string {
	var parts []string
	if r.Correct > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d parameters correct", r.Correct, r.Total))
	}
	if len(r.Missing) > 0 {
		parts = append(parts, "Missing: "+strings.Join(r.Missing, ", "))
	}
	if len(r.Mismatched) > 0 {
		parts = append(parts, "Incorrect: "+strings.Join(r.Mismatched, ", "))
	}
	if len(parts) == 0 {
		return "All parameters correct"
	}
	return strings.Join(parts, "; ")
}

// valuesMatch applies the equivalence rules in order: deep equality,
// equal string forms, equal integer values for numeric-looking inputs,
// then canonical boolean equality when either side is boolean-like.
func valuesMatch(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	actualStr := valueString(actual)
	expectedStr := valueString(expected)
	if actualStr == expectedStr {
		return true
	}
	if looksNumeric(actualStr) && looksNumeric(expectedStr) {
		actualNum, errA := strconv.ParseFloat(actualStr, 64)
		expectedNum, errE := strconv.ParseFloat(expectedStr, 64)
		return errA == nil && errE == nil && int64(actualNum) == int64(expectedNum)
	}
	if booleanLike(actual) || booleanLike(expected) {
		return toBoolean(actual) == toBoolean(expected)
	}
	return false
}

// valueString formats a value the way it would appear in an argument
// payload. Floats use the shortest decimal form so 15.0 and 15 agree.
func valueString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// looksNumeric reports whether s is all digits once dots and minus signs
// are removed, the loose test used on raw argument text.
func looksNumeric(s string) bool {
	stripped := strings.ReplaceAll(s, ".", "")
	stripped = strings.ReplaceAll(stripped, "-", "")
	if stripped == "" {
		return false
	}
	for i := 0; i < len(stripped); i++ {
		if stripped[i] < '0' || stripped[i] > '9' {
			return false
		}
	}
	return true
}

// booleanLike reports whether the value plausibly encodes a boolean.
func booleanLike(v any) bool {
	switch value := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(value) {
		case "true", "false", "yes", "no", "1", "0":
			return true
		}
		return false
	case int:
		return value == 0 || value == 1
	case int64:
		return value == 0 || value == 1
	case float64:
		return value == 0 || value == 1
	default:
		return false
	}
}

// toBoolean maps a boolean-like value onto its canonical bool.
func toBoolean(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(value) {
		case "true", "yes", "1":
			return true
		}
		return false
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	default:
		return v != nil
	}
}
