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
	"encoding/json"
	"strings"
)

const (
	markerResponse    = "Response:"
	markerTextContent = "TextContentItem(text="
)

// ToolResponsePayloads recovers decoded tool-response objects from a
// turn, in order of appearance. Streamed fragments must carry both the
// tool-execution marker and a Response section whose text item holds a
// JSON object bounded by single quotes; structured step content is taken
// when it parses as a JSON object. Fragments that do not decode are
// skipped, never fatal.
func ToolResponsePayloads(turn *TurnRecord) []map[string]any {
	if turn == nil {
		return nil
	}
	var payloads []map[string]any
	for _, line := range turn.RawFragments {
		if !strings.Contains(line, markerToolExecution) || !strings.Contains(line, markerResponse) {
			continue
		}
		_, section, _ := strings.Cut(line, markerResponse)
		section = strings.TrimSpace(section)
		if !strings.Contains(section, markerTextContent) {
			continue
		}
		start := strings.Index(section, "'")
		if start < 0 {
			continue
		}
		body := section[start+1:]
		// The text item renders as text='<payload>', type='text', so the
		// type delimiter bounds the payload more reliably than the last
		// quote of the section.
		if cut := strings.Index(body, "', type="); cut >= 0 {
			body = body[:cut]
		} else if end := strings.LastIndex(body, "'"); end >= 0 {
			body = body[:end]
		} else {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			continue
		}
		payloads = append(payloads, payload)
	}
	for _, step := range turn.Steps {
		if step == nil || strings.TrimSpace(step.Content) == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(step.Content), &payload); err != nil {
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads
}
