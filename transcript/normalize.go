//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package transcript

import (
	"strings"
)

// NoResponseSentinel is the final output recorded when nothing usable was
// captured from the transport. Turns always carry a non-empty answer.
const NoResponseSentinel = "Error: No response captured from agent"

// Markers that classify streamed log lines.
const (
	markerToolExecution = "tool_execution>"
	markerInference     = "inference>"
	markerStepComplete  = "step_complete>"
	markerCallID        = "call_id="
	markerToolName      = "tool_name="
)

var noSpaceBefore = map[string]bool{
	".": true, ",": true, ":": true, ";": true, "!": true, "?": true, "%": true,
}

var currencySymbols = map[string]bool{
	"$": true, "€": true, "£": true, "¥": true,
}

// Normalize reduces a raw turn payload to a TurnRecord. Structured
// payloads keep their steps verbatim; streamed lines are classified and
// the answer tokens are stitched back together.
func Normalize(input string, out *TurnOutput) *TurnRecord {
	if out != nil && out.Structured != nil {
		final := strings.TrimSpace(out.Structured.OutputContent)
		if final == "" {
			final = NoResponseSentinel
		}
		return &TurnRecord{
			Input:       input,
			FinalOutput: final,
			Transport:   TransportStructured,
			Steps:       out.Structured.Steps,
		}
	}
	var lines []string
	if out != nil {
		lines = out.Lines
	}
	return &TurnRecord{
		Input:        input,
		FinalOutput:  stitchFinalOutput(lines),
		Transport:    TransportStreaming,
		RawFragments: append([]string(nil), lines...),
	}
}

// stitchFinalOutput assembles the final answer from streamed lines.
// When no inference tokens were collected the last non-blank line that is
// neither a tool-execution nor an inference fragment is used, and the
// sentinel covers the rest.
func stitchFinalOutput(lines []string) string {
	tokens := collectInferenceTokens(lines)
	if len(tokens) > 0 {
		return joinTokens(tokens)
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, markerToolExecution) || strings.Contains(line, markerInference) {
			continue
		}
		return strings.TrimSpace(line)
	}
	return NoResponseSentinel
}

// collectInferenceTokens walks lines in order and gathers the answer
// tokens. Tool-execution fragments and tool-call fragments never
// contribute; collection starts at the first inference marker and stops
// when a step boundary or a tool call shows up. Blank lines are skipped
// without ending the collection.
func collectInferenceTokens(lines []string) []string {
	var tokens []string
	collecting := false
	for _, line := range lines {
		switch {
		case strings.Contains(line, markerToolExecution):
		case strings.Contains(line, markerCallID) && strings.Contains(line, markerToolName):
		case strings.Contains(line, markerInference):
			collecting = true
			_, after, _ := strings.Cut(line, markerInference)
			token := strings.TrimSpace(after)
			if token == "" {
				continue
			}
			if strings.Contains(token, markerCallID) && strings.Contains(token, markerToolName) {
				continue
			}
			tokens = append(tokens, token)
		case collecting && strings.TrimSpace(line) != "":
			if strings.Contains(line, markerStepComplete) || strings.Contains(line, markerCallID) {
				collecting = false
				continue
			}
			tokens = append(tokens, strings.TrimSpace(line))
		}
	}
	return tokens
}

// joinTokens stitches answer tokens into prose. No space is inserted
// before closing punctuation, after a currency symbol, between two digit
// runs, or between a decimal point and the digits that follow it.
func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, token := range tokens {
		if i == 0 {
			b.WriteString(token)
			continue
		}
		prev := tokens[i-1]
		switch {
		case noSpaceBefore[token]:
			b.WriteString(token)
		case currencySymbols[prev]:
			b.WriteString(token)
		case isDigits(prev) && isDigits(token):
			b.WriteString(token)
		case prev == "." && isDigits(token):
			b.WriteString(token)
		default:
			b.WriteByte(' ')
			b.WriteString(token)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
