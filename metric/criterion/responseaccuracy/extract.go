//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package responseaccuracy

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	numberPattern     = regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?\b`)
	percentagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	amountPattern     = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)`)
)

// statusPatterns are tried in order and the first match wins, so exact
// outcome keywords beat verb forms and verb forms beat weaker synonyms.
var statusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(passed|failed|eligible|not eligible)\b`),
	regexp.MustCompile(`(?i)\b(passes|pass)\b`),
	regexp.MustCompile(`(?i)\b(fails|fail)\b`),
	regexp.MustCompile(`(?i)\b(approved?|approve)\b`),
	regexp.MustCompile(`(?i)\b(rejected?|reject)\b`),
	regexp.MustCompile(`(?i)\b(valid|invalid)\b`),
	regexp.MustCompile(`(?i)\b(successful|success)\b`),
	regexp.MustCompile(`(?i)\b(unsuccessful)\b`),
}

// warningIndicators mark an additional requirement as warning-grade.
var warningIndicators = []string{"close to threshold", "verify", "caution", "warning", "alert"}

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

// Extract distills the comparable content of one answer. When payloads is
// non-nil the warnings come from those structured tool responses alone;
// a nil payloads falls back to scanning the prose for warning sentences.
func (c *ResponseAccuracyCriterion) Extract(text string, payloads []map[string]any) *ExtractedInfo {
	info := &ExtractedInfo{}
	for _, match := range numberPattern.FindAllString(text, -1) {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64); err == nil {
			info.Numbers = append(info.Numbers, v)
		}
	}
	for _, match := range percentagePattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			info.Percentages = append(info.Percentages, v)
		}
	}
	for _, match := range amountPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			info.Amounts = append(info.Amounts, v)
		}
	}
	if payloads != nil {
		info.Warnings = payloadWarnings(payloads)
	} else {
		info.Warnings = warningSentences(text)
	}
	info.Status = c.extractStatus(text)
	return info
}

// extractStatus finds the first outcome keyword and folds it onto its
// canonical value.
func (c *ResponseAccuracyCriterion) extractStatus(text string) string {
	for _, pattern := range statusPatterns {
		match := pattern.FindStringSubmatch(text)
		if len(match) < 2 {
			continue
		}
		raw := strings.ToUpper(match[1])
		if mapped, ok := c.StatusMapping[raw]; ok {
			return mapped
		}
		if mapped, ok := defaultStatusMapping[raw]; ok {
			return mapped
		}
		return raw
	}
	return ""
}

// payloadWarnings collects warning texts from structured tool responses:
// the warnings array verbatim, plus any additional requirement carrying a
// warning indicator.
func payloadWarnings(payloads []map[string]any) []string {
	var all []string
	for _, payload := range payloads {
		for _, w := range stringSlice(payload["warnings"]) {
			all = append(all, w)
		}
		for _, req := range stringSlice(payload["additional_requirements"]) {
			lowered := strings.ToLower(req)
			for _, indicator := range warningIndicators {
				if strings.Contains(lowered, indicator) {
					all = append(all, req)
					break
				}
			}
		}
	}
	return all
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// warningSentences returns the sentences of text that mention a warning.
func warningSentences(text string) []string {
	if !strings.Contains(strings.ToLower(text), "warning") {
		return nil
	}
	tokenizerOnce.Do(func() {
		if t, err := english.NewSentenceTokenizer(nil); err == nil {
			tokenizer = t
		}
	})
	if tokenizer == nil {
		return []string{text}
	}
	var out []string
	for _, sentence := range tokenizer.Tokenize(text) {
		if strings.Contains(strings.ToLower(sentence.Text), "warning") {
			out = append(out, strings.TrimSpace(sentence.Text))
		}
	}
	return out
}
