//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package toolcall

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const (
	oldToolMarker = "Tool:"
	oldArgsMarker = "Args:"
	newToolMarker = "tool_name="
	newArgsMarker = "arguments="
)

// kvPairPattern recovers individual "key": value pairs from argument text
// that failed to decode as a whole, typically because the payload was
// truncated mid-stream.
var kvPairPattern = regexp.MustCompile(`"([^"]+)":\s*((?:"[^"]*")|(?:'[^']*')|(?:\d+(?:\.\d+)?)|(?:true|false|null))`)

// jsonBlockPattern finds brace-delimited blocks in free text.
var jsonBlockPattern = regexp.MustCompile(`\{[^}]*\}`)

// textPattern recovers one named parameter from answer prose.
type textPattern struct {
	name    string
	pattern *regexp.Regexp
	decode  func(string) any
}

var defaultTextPatterns = buildTextPatterns()

func buildTextPatterns() []textPattern {
	intParam := func(name string) textPattern {
		return textPattern{
			name:    name,
			pattern: regexp.MustCompile(`(?i)` + name + `["'\s]*[:=]["'\s]*(\d+)`),
			decode:  decodeIntOrString,
		}
	}
	return []textPattern{
		intParam("days_late"),
		intParam("income"),
		intParam("eligible_voters"),
		intParam("turnout"),
		intParam("yes_votes"),
		intParam("cash_available"),
		intParam("senior_debt"),
		intParam("junior_debt"),
		intParam("ami"),
		intParam("household_size"),
		{
			name:    "has_other_subsidy",
			pattern: regexp.MustCompile(`(?i)has_other_subsidy["'\s]*[:=]["'\s]*(true|false)`),
			decode:  func(v string) any { return strings.EqualFold(v, "true") },
		},
		{
			name:    "proposal_type",
			pattern: regexp.MustCompile(`(?i)proposal_type["'\s]*[:=]["'\s]*["'](\w+)["']*`),
			decode:  func(v string) any { return v },
		},
	}
}

func decodeIntOrString(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}

// argumentsFromFragment decodes the arguments carried by one marker line.
// The old Args: format takes precedence over the newer arguments= format.
func argumentsFromFragment(line string) (map[string]any, bool) {
	if strings.Contains(line, oldArgsMarker) {
		return parseOldArguments(line)
	}
	if strings.Contains(line, newArgsMarker) && strings.Contains(line, newToolMarker) {
		return parseNewArguments(line)
	}
	return nil, false
}

// parseOldArguments handles Args:{'key': 'value'} payloads, which use
// Python literal syntax rather than JSON.
func parseOldArguments(line string) (map[string]any, bool) {
	_, after, found := strings.Cut(line, oldArgsMarker)
	if !found {
		return nil, false
	}
	argsStr := strings.TrimSpace(after)
	if !strings.HasPrefix(argsStr, "{") || !strings.HasSuffix(argsStr, "}") {
		return nil, false
	}
	jsonStr := strings.ReplaceAll(argsStr, "'", `"`)
	jsonStr = strings.ReplaceAll(jsonStr, "False", "false")
	jsonStr = strings.ReplaceAll(jsonStr, "True", "true")
	var decoded map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		return nil, false
	}
	return coerceArguments(decoded), true
}

// parseNewArguments handles arguments='...' payloads. The payload is
// quoted with either quote character and may be truncated; double-quoted
// JSON bodies additionally contain unescaped inner quotes, so those are
// recovered by brace counting instead of quote scanning.
func parseNewArguments(line string) (map[string]any, bool) {
	idx := strings.Index(line, newArgsMarker)
	if idx < 0 {
		return nil, false
	}
	section := line[idx+len(newArgsMarker):]
	if section == "" {
		return nil, false
	}
	quote := section[0]
	if quote != '\'' && quote != '"' {
		return nil, false
	}
	var argsStr string
	if quote == '"' && strings.Contains(section, `{"`) {
		jsonStart := strings.IndexByte(section, '{')
		if jsonStart > 0 {
			argsStr = wellNestedBlock(section[jsonStart:])
		}
	} else {
		end := 1
		for end < len(section) {
			if section[end] == quote && section[end-1] != '\\' {
				break
			}
			end++
		}
		argsStr = section[1:end]
	}
	if !strings.HasPrefix(argsStr, "{") {
		return nil, false
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(argsStr), &decoded); err == nil {
		return coerceArguments(decoded), true
	}
	return argumentsFromPairs(argsStr)
}

// wellNestedBlock returns the prefix of s up to the brace that closes the
// leading one, or all of s when the block never closes.
func wellNestedBlock(s string) string {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

// argumentsFromPairs salvages whatever key/value pairs survive in an
// undecodable payload.
func argumentsFromPairs(s string) (map[string]any, bool) {
	if !strings.Contains(s, "{") {
		return nil, false
	}
	matches := kvPairPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil, false
	}
	args := make(map[string]any, len(matches))
	for _, m := range matches {
		args[m[1]] = decodeScalarText(strings.Trim(strings.TrimSpace(m[2]), `"'`))
	}
	return args, true
}

func decodeScalarText(value string) any {
	switch {
	case isDigits(value):
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		return value
	case value != "" && isDigits(strings.ReplaceAll(value, ".", "")):
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	case strings.EqualFold(value, "true"):
		return true
	case strings.EqualFold(value, "false"):
		return false
	case strings.EqualFold(value, "null"):
		return nil
	default:
		return value
	}
}

// coerceArguments normalizes decoded values: digit-only strings become
// ints and boolean words become bools, matching how the tools themselves
// interpret loosely typed model output.
func coerceArguments(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = coerceScalar(v)
	}
	return out
}

func coerceScalar(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return s
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ArgumentsFromText recovers parameters mentioned in answer prose, first
// through per-parameter patterns and then by merging any brace-delimited
// JSON blocks, later blocks overriding earlier ones.
func (e *Extractor) ArgumentsFromText(text string) map[string]any {
	args := make(map[string]any)
	if text == "" {
		return args
	}
	for _, tp := range defaultTextPatterns {
		m := tp.pattern.FindStringSubmatch(text)
		if len(m) > 1 {
			args[tp.name] = tp.decode(m[1])
		}
	}
	for _, block := range jsonBlockPattern.FindAllString(text, -1) {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			continue
		}
		for k, v := range decoded {
			args[k] = v
		}
	}
	return args
}
