//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package evalset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// CSV column names understood by LoadCSV.
const (
	csvColQuestion           = "question"
	csvColExpectedAnswer     = "expected_answer"
	csvColToolName           = "tool_name"
	csvColToolParameters     = "tool_parameters"
	csvColEvaluationCriteria = "evaluation_criteria"
	csvColCategory           = "category"
)

// requiredCSVColumns must be present in the header and non-empty in every row.
// tool_parameters is optional.
var requiredCSVColumns = []string{
	csvColQuestion,
	csvColExpectedAnswer,
	csvColToolName,
	csvColEvaluationCriteria,
	csvColCategory,
}

// LoadCSV reads evaluation cases from a CSV file. Each row becomes a
// single-invocation EvalCase: question maps to the user content,
// expected_answer to the final response and tool_name/tool_parameters to
// the expected tool call. Rows that fail validation are skipped and their
// errors aggregated into the returned error, so a partial load yields
// both cases and a non-nil error.
func LoadCSV(path string) ([]*EvalCase, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()
	return loadCSV(file, path)
}

func loadCSV(r io.Reader, path string) ([]*EvalCase, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv file %s is empty", path)
		}
		return nil, fmt.Errorf("read csv header %s: %w", path, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredCSVColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("csv file %s is missing required column %q", path, name)
		}
	}
	var (
		cases []*EvalCase
		errs  *multierror.Error
	)
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv file %s: %w", path, err)
		}
		evalCase, rowErr := caseFromRow(record, columns, rowNum, len(cases)+1)
		if rowErr != nil {
			errs = multierror.Append(errs, rowErr)
			continue
		}
		cases = append(cases, evalCase)
	}
	return cases, errs.ErrorOrNil()
}

// caseFromRow validates one CSV row and converts it into an EvalCase.
// seq numbers the valid cases, rowNum reports the file position.
func caseFromRow(record []string, columns map[string]int, rowNum, seq int) (*EvalCase, error) {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	for _, name := range requiredCSVColumns {
		if get(name) == "" {
			return nil, fmt.Errorf("row %d: missing required field %q", rowNum, name)
		}
	}
	var arguments map[string]any
	if raw := get(csvColToolParameters); raw != "" {
		if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
			return nil, fmt.Errorf("row %d: invalid tool_parameters JSON: %w", rowNum, err)
		}
	}
	return &EvalCase{
		EvalID: fmt.Sprintf("case_%03d", seq),
		Conversation: []*Invocation{
			{
				UserContent:   get(csvColQuestion),
				FinalResponse: get(csvColExpectedAnswer),
				ToolCalls: []*transcript.ToolCall{
					{Name: get(csvColToolName), Arguments: arguments},
				},
			},
		},
		EvaluationCriteria: get(csvColEvaluationCriteria),
		Category:           get(csvColCategory),
	}, nil
}

// Categories returns the sorted unique categories across the given cases.
func Categories(cases []*EvalCase) []string {
	seen := make(map[string]struct{})
	for _, c := range cases {
		if c == nil || c.Category == "" {
			continue
		}
		seen[c.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// FilterByCategory returns the cases tagged with the given category.
func FilterByCategory(cases []*EvalCase, category string) []*EvalCase {
	var filtered []*EvalCase
	for _, c := range cases {
		if c != nil && c.Category == category {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
