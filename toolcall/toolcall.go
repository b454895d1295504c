//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package toolcall extracts tool invocations from captured turns. Turns
// report tool usage in several shapes: typed steps on the structured
// transport, marker lines on the streaming transport (an older
// Tool:/Args: format and a newer tool_name=/arguments= format), and as a
// last resort plain mentions in the answer text. The extractor scans all
// of them in order and the newest observation wins.
package toolcall

import (
	"strings"

	"trpc.group/trpc-go/trpc-agenteval-go/session"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// Observation is one extracted tool call. TurnIndex and FragmentIndex
// locate it inside its session; the pair orders observations so the most
// recent one can be selected.
type Observation struct {
	ToolName      string         `json:"toolName"`
	Arguments     map[string]any `json:"arguments,omitempty"`
	SessionID     string         `json:"sessionId,omitempty"`
	TurnIndex     int            `json:"turnIndex"`
	FragmentIndex int            `json:"fragmentIndex"`
}

// Extractor recognizes tool calls against a known-tool list.
type Extractor struct {
	tools []string
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	options := NewOptions(opts...)
	return &Extractor{tools: options.KnownTools}
}

// DefaultKnownTools returns the built-in tool names recognized in marker
// lines and plain-text mentions.
func DefaultKnownTools() []string {
	return []string{
		"calc_penalty",
		"calc_tax",
		"check_voting",
		"distribute_waterfall",
		"check_housing_grant",
	}
}

// FromTurn returns every observation found in the turn, in scan order:
// structured steps first, then raw fragments. A marker line that names a
// tool but carries undecodable arguments still yields an observation with
// nil arguments.
func (e *Extractor) FromTurn(turn *transcript.TurnRecord, sessionID string, turnIndex int) []*Observation {
	if turn == nil {
		return nil
	}
	var observations []*Observation
	for stepIdx, step := range turn.Steps {
		if step == nil {
			continue
		}
		for _, call := range step.ToolCalls {
			if call == nil || call.Name == "" {
				continue
			}
			observations = append(observations, &Observation{
				ToolName:      call.Name,
				Arguments:     call.Arguments,
				SessionID:     sessionID,
				TurnIndex:     turnIndex,
				FragmentIndex: stepIdx,
			})
		}
	}
	for fragIdx, line := range turn.RawFragments {
		names := e.toolNamesFromFragment(line)
		if len(names) == 0 {
			continue
		}
		args, _ := argumentsFromFragment(line)
		for _, name := range names {
			observations = append(observations, &Observation{
				ToolName:      name,
				Arguments:     args,
				SessionID:     sessionID,
				TurnIndex:     turnIndex,
				FragmentIndex: fragIdx,
			})
		}
	}
	return observations
}

// LatestFromTurn returns the newest observation in one turn, falling back
// to a plain-text mention in the final output. Absence of any tool call
// is a valid outcome reported as false, never an error.
func (e *Extractor) LatestFromTurn(turn *transcript.TurnRecord, sessionID string, turnIndex int) (*Observation, bool) {
	observations := e.FromTurn(turn, sessionID, turnIndex)
	if len(observations) > 0 {
		return observations[len(observations)-1], true
	}
	return e.mentionFromText(turn, sessionID, turnIndex)
}

// Latest returns the newest observation across all turns of one session
// record. Only this record is consulted; calls from other sessions can
// never surface here.
func (e *Extractor) Latest(record *session.Record) (*Observation, bool) {
	if record == nil {
		return nil, false
	}
	var latest *Observation
	for turnIdx, turn := range record.Turns {
		observations := e.FromTurn(turn, record.ID, turnIdx)
		if len(observations) > 0 {
			latest = observations[len(observations)-1]
		}
	}
	if latest != nil {
		return latest, true
	}
	for turnIdx := len(record.Turns) - 1; turnIdx >= 0; turnIdx-- {
		if obs, ok := e.mentionFromText(record.Turns[turnIdx], record.ID, turnIdx); ok {
			return obs, true
		}
	}
	return nil, false
}

// LatestFromStore returns the newest observation of the current session.
// An empty store yields no observation.
func (e *Extractor) LatestFromStore(store *session.Store) (*Observation, bool) {
	if store == nil {
		return nil, false
	}
	current, ok := store.Current()
	if !ok {
		return nil, false
	}
	return e.Latest(current)
}

// LatestArguments returns the most recent decoded tool arguments in the
// turn. Structured steps win immediately with the first populated call;
// otherwise marker lines are scanned and the last decodable one wins.
func (e *Extractor) LatestArguments(turn *transcript.TurnRecord) (map[string]any, bool) {
	if turn == nil {
		return nil, false
	}
	for _, step := range turn.Steps {
		if step == nil {
			continue
		}
		for _, call := range step.ToolCalls {
			if call != nil && len(call.Arguments) > 0 {
				return call.Arguments, true
			}
		}
	}
	var latest map[string]any
	for _, line := range turn.RawFragments {
		if args, ok := argumentsFromFragment(line); ok {
			latest = args
		}
	}
	if latest != nil {
		return latest, true
	}
	return nil, false
}

// toolNamesFromFragment matches known tools in one marker line. The old
// Tool: format takes precedence over the newer tool_name= format within
// the same line.
func (e *Extractor) toolNamesFromFragment(line string) []string {
	var names []string
	if strings.Contains(line, oldToolMarker) {
		for _, tool := range e.tools {
			if strings.Contains(line, oldToolMarker+tool) {
				names = append(names, tool)
			}
		}
		return names
	}
	if strings.Contains(line, newToolMarker) {
		for _, tool := range e.tools {
			if strings.Contains(line, newToolMarker+"'"+tool+"'") ||
				strings.Contains(line, newToolMarker+`"`+tool+`"`) {
				names = append(names, tool)
			}
		}
	}
	return names
}

// mentionFromText recognizes a case-insensitive tool-name mention in the
// final output. Arguments are recovered from the text itself.
func (e *Extractor) mentionFromText(turn *transcript.TurnRecord, sessionID string, turnIndex int) (*Observation, bool) {
	if turn == nil {
		return nil, false
	}
	lowered := strings.ToLower(turn.FinalOutput)
	for _, tool := range e.tools {
		if strings.Contains(lowered, strings.ToLower(tool)) {
			return &Observation{
				ToolName:  tool,
				Arguments: e.ArgumentsFromText(turn.FinalOutput),
				SessionID: sessionID,
				TurnIndex: turnIndex,
			}, true
		}
	}
	return nil, false
}
