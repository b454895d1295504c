//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package report renders evaluation results as human readable reports.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-agenteval-go/config"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/status"
)

const (
	bannerWidth           = 60
	reportTitle           = "AGENT EVALUATION REPORT"
	inputPreviewLimit     = 100
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// Report renders one eval set result as text or JSON.
type Report struct {
	appName     string
	result      *evalresult.EvalSetResult
	evalSet     *evalset.EvalSet
	cfg         *config.Config
	generatedAt time.Time
}

// Option configures a Report.
type Option func(*Report)

// WithEvalSet supplies the eval set the result was produced from. It
// enables the category breakdown and input previews.
func WithEvalSet(s *evalset.EvalSet) Option {
	return func(r *Report) {
		r.evalSet = s
	}
}

// WithConfig supplies the evaluation configuration rendered in the
// CONFIGURATION section.
func WithConfig(c *config.Config) Option {
	return func(r *Report) {
		r.cfg = c
	}
}

// WithGeneratedAt overrides the report timestamp. The current time is
// used by default.
func WithGeneratedAt(t time.Time) Option {
	return func(r *Report) {
		r.generatedAt = t
	}
}

// New creates a report over the given eval set result.
func New(appName string, result *evalresult.EvalSetResult, opt ...Option) (*Report, error) {
	if result == nil {
		return nil, errors.New("eval set result is nil")
	}
	r := &Report{
		appName:     appName,
		result:      result,
		generatedAt: time.Now(),
	}
	for _, o := range opt {
		o(r)
	}
	return r, nil
}

// Summary renders the summary report: banner, case totals, per-metric
// performance, category breakdown and configuration.
func (r *Report) Summary() string {
	banner := strings.Repeat("=", bannerWidth)
	lines := []string{
		banner,
		reportTitle,
		banner,
		fmt.Sprintf("Generated: %s", r.generatedAt.Format("2006-01-02 15:04:05")),
		"",
	}
	lines = append(lines, r.summarySection()...)
	lines = append(lines, r.metricSection()...)
	lines = append(lines, r.categorySection()...)
	lines = append(lines, r.configurationSection()...)
	lines = append(lines, banner)
	return strings.Join(lines, "\n") + "\n"
}

// Detailed renders the summary followed by per-case, per-run results.
func (r *Report) Detailed() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	b.WriteString("\n")
	b.WriteString("DETAILED RESULTS:\n")
	b.WriteString(strings.Repeat("=", bannerWidth) + "\n\n")
	for i, caseResult := range r.orderedCaseResults() {
		b.WriteString(fmt.Sprintf("Test Case %d: %s (run %d)\n", i+1, caseResult.EvalID, caseResult.RunID))
		if input := r.caseInput(caseResult); input != "" {
			b.WriteString(fmt.Sprintf("  Input: %s\n", truncate(input, inputPreviewLimit)))
		}
		if caseResult.ErrorMessage != "" {
			b.WriteString("  Status: ERROR\n")
			b.WriteString(fmt.Sprintf("  Error: %s\n\n", caseResult.ErrorMessage))
			continue
		}
		b.WriteString(fmt.Sprintf("  Status: %s\n", caseResult.FinalEvalStatus))
		if len(caseResult.OverallEvalMetricResults) > 0 {
			b.WriteString("  Metric Results:\n")
			for _, metricResult := range caseResult.OverallEvalMetricResults {
				if metricResult == nil {
					continue
				}
				b.WriteString(fmt.Sprintf("    %s:\n", metricResult.MetricName))
				if metricResult.Score != nil {
					b.WriteString(fmt.Sprintf("      Score: %.3f\n", *metricResult.Score))
				}
				b.WriteString(fmt.Sprintf("      Status: %s\n", metricResult.EvalStatus))
				if metricResult.Reason != "" {
					b.WriteString(fmt.Sprintf("      Reason: %s\n", metricResult.Reason))
				}
			}
		}
		b.WriteString(strings.Repeat("-", 40) + "\n\n")
	}
	return b.String()
}

// Save writes the text report to path atomically.
func (r *Report) Save(path string, detailed bool) error {
	content := r.Summary()
	if detailed {
		content = r.Detailed()
	}
	return writeFileAtomic(path, []byte(content))
}

// SaveJSON writes the full eval set result as indented JSON.
func (r *Report) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r.result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal eval set result: %w", err)
	}
	return writeFileAtomic(path, data)
}

func (r *Report) summarySection() []string {
	statuses := r.caseStatuses()
	total := len(statuses)
	passed, failed := 0, 0
	for _, s := range statuses {
		switch s {
		case status.EvalStatusPassed:
			passed++
		case status.EvalStatusFailed:
			failed++
		}
	}
	successRate := 0.0
	if total > 0 {
		successRate = float64(passed) / float64(total)
	}
	return []string{
		"SUMMARY:",
		fmt.Sprintf("  Total test cases: %d", total),
		fmt.Sprintf("  Successful evaluations: %d", passed),
		fmt.Sprintf("  Failed evaluations: %d", failed),
		fmt.Sprintf("  Overall success rate: %s", formatPercent(successRate)),
		"",
	}
}

func (r *Report) metricSection() []string {
	type metricStats struct {
		scoreSum  float64
		scored    int
		passed    int
		evaluated int
	}
	stats := make(map[string]*metricStats)
	for _, caseResult := range r.result.EvalCaseResults {
		if caseResult == nil {
			continue
		}
		for _, metricResult := range caseResult.OverallEvalMetricResults {
			if metricResult == nil || metricResult.EvalStatus == status.EvalStatusNotEvaluated {
				continue
			}
			s, ok := stats[metricResult.MetricName]
			if !ok {
				s = &metricStats{}
				stats[metricResult.MetricName] = s
			}
			s.evaluated++
			if metricResult.Score != nil {
				s.scoreSum += *metricResult.Score
				s.scored++
			}
			if metricResult.EvalStatus == status.EvalStatusPassed {
				s.passed++
			}
		}
	}
	if len(stats) == 0 {
		return nil
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := []string{"METRIC PERFORMANCE:", ""}
	for _, name := range names {
		s := stats[name]
		average := 0.0
		if s.scored > 0 {
			average = s.scoreSum / float64(s.scored)
		}
		lines = append(lines,
			fmt.Sprintf("  %s:", name),
			fmt.Sprintf("    Average Score: %.3f", average),
			fmt.Sprintf("    Success Rate: %s", formatPercent(float64(s.passed)/float64(s.evaluated))),
			"",
		)
	}
	return lines
}

func (r *Report) categorySection() []string {
	if r.evalSet == nil {
		return nil
	}
	categoryByCase := make(map[string]string)
	for _, evalCase := range r.evalSet.EvalCases {
		if evalCase == nil || evalCase.Category == "" {
			continue
		}
		categoryByCase[evalCase.EvalID] = evalCase.Category
	}
	if len(categoryByCase) == 0 {
		return nil
	}
	type categoryStats struct {
		passed int
		total  int
	}
	stats := make(map[string]*categoryStats)
	for caseID, caseStatus := range r.caseStatuses() {
		category, ok := categoryByCase[caseID]
		if !ok {
			continue
		}
		s, ok := stats[category]
		if !ok {
			s = &categoryStats{}
			stats[category] = s
		}
		s.total++
		if caseStatus == status.EvalStatusPassed {
			s.passed++
		}
	}
	if len(stats) == 0 {
		return nil
	}
	categories := make([]string, 0, len(stats))
	for category := range stats {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	lines := []string{"CATEGORY BREAKDOWN:", ""}
	for _, category := range categories {
		s := stats[category]
		rate := float64(s.passed) / float64(s.total)
		lines = append(lines, fmt.Sprintf("  %s: %d/%d (%s)", category, s.passed, s.total, formatPercent(rate)))
	}
	lines = append(lines, "")
	return lines
}

func (r *Report) configurationSection() []string {
	if r.cfg == nil {
		return nil
	}
	lines := []string{
		"CONFIGURATION:",
		fmt.Sprintf("  Model: %s", r.cfg.Model.Name),
	}
	if len(r.cfg.Tools) > 0 {
		lines = append(lines, fmt.Sprintf("  Tools: %s", strings.Join(r.cfg.Tools, ", ")))
	}
	if r.cfg.Model.BaseURL != "" {
		lines = append(lines, fmt.Sprintf("  Base URL: %s", r.cfg.Model.BaseURL))
	}
	return append(lines, "")
}

// caseStatuses folds the per-run case results into one status per case:
// the multi-run summary when present, a failed-over-passed fold otherwise.
func (r *Report) caseStatuses() map[string]status.EvalStatus {
	statuses := make(map[string]status.EvalStatus)
	if r.result.Summary != nil && len(r.result.Summary.EvalCaseSummaries) > 0 {
		for _, caseSummary := range r.result.Summary.EvalCaseSummaries {
			if caseSummary == nil {
				continue
			}
			statuses[caseSummary.EvalID] = caseSummary.OverallStatus
		}
		return statuses
	}
	for _, caseResult := range r.result.EvalCaseResults {
		if caseResult == nil {
			continue
		}
		current, seen := statuses[caseResult.EvalID]
		switch {
		case !seen:
			statuses[caseResult.EvalID] = caseResult.FinalEvalStatus
		case current == status.EvalStatusFailed:
			// Failed dominates, keep it.
		case caseResult.FinalEvalStatus == status.EvalStatusFailed:
			statuses[caseResult.EvalID] = status.EvalStatusFailed
		case caseResult.FinalEvalStatus == status.EvalStatusPassed:
			statuses[caseResult.EvalID] = status.EvalStatusPassed
		}
	}
	return statuses
}

// orderedCaseResults returns the case results in eval set order, then by
// case ID and run ID for cases unknown to the set.
func (r *Report) orderedCaseResults() []*evalresult.EvalCaseResult {
	order := make(map[string]int)
	if r.evalSet != nil {
		for i, evalCase := range r.evalSet.EvalCases {
			if evalCase != nil {
				order[evalCase.EvalID] = i
			}
		}
	}
	results := make([]*evalresult.EvalCaseResult, 0, len(r.result.EvalCaseResults))
	for _, caseResult := range r.result.EvalCaseResults {
		if caseResult != nil {
			results = append(results, caseResult)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		leftIndex, leftOK := order[results[i].EvalID]
		rightIndex, rightOK := order[results[j].EvalID]
		if leftOK && rightOK && leftIndex != rightIndex {
			return leftIndex < rightIndex
		}
		if leftOK != rightOK {
			return leftOK
		}
		if results[i].EvalID != results[j].EvalID {
			return results[i].EvalID < results[j].EvalID
		}
		return results[i].RunID < results[j].RunID
	})
	return results
}

// caseInput returns the first user input of the case, preferring the
// recorded invocation and falling back to the eval set definition.
func (r *Report) caseInput(caseResult *evalresult.EvalCaseResult) string {
	for _, perInvocation := range caseResult.EvalMetricResultPerInvocation {
		if perInvocation == nil {
			continue
		}
		if perInvocation.ActualInvocation != nil && perInvocation.ActualInvocation.UserContent != "" {
			return perInvocation.ActualInvocation.UserContent
		}
		if perInvocation.ExpectedInvocation != nil && perInvocation.ExpectedInvocation.UserContent != "" {
			return perInvocation.ExpectedInvocation.UserContent
		}
	}
	if r.evalSet == nil {
		return ""
	}
	for _, evalCase := range r.evalSet.EvalCases {
		if evalCase == nil || evalCase.EvalID != caseResult.EvalID {
			continue
		}
		for _, invocation := range evalCase.Conversation {
			if invocation != nil && invocation.UserContent != "" {
				return invocation.UserContent
			}
		}
	}
	return ""
}

func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// writeFileAtomic writes data through a temp file renamed into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	if err := os.WriteFile(tmp, data, defaultFilePermission); err != nil {
		return fmt.Errorf("write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}
