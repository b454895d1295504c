//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package transcript normalizes raw agent transport output into turn
// records. A runner hands back either a stream of opaque log lines or a
// structured response object; both are reduced to the same TurnRecord
// shape that the extractors and evaluators consume.
package transcript

// TransportKind tags which transport produced a turn.
type TransportKind int

const (
	// TransportUnknown means the transport has not been set.
	TransportUnknown TransportKind = iota
	// TransportStreaming marks a turn captured from streamed log lines.
	TransportStreaming
	// TransportStructured marks a turn captured from a structured response.
	TransportStructured
)

// String returns the string representation of the transport kind.
func (k TransportKind) String() string {
	switch k {
	case TransportStreaming:
		return "streaming"
	case TransportStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// ToolCall is a single tool invocation with decoded arguments.
// The same shape is used for observed calls inside structured steps and
// for expected calls declared by eval cases.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Step is one execution step reported by the structured transport.
type Step struct {
	ToolCalls []*ToolCall `json:"toolCalls,omitempty"`
	Content   string      `json:"content,omitempty"`
}

// StructuredTurn is the structured transport payload for one turn.
type StructuredTurn struct {
	OutputContent string  `json:"outputContent"`
	Steps         []*Step `json:"steps,omitempty"`
}

// TurnOutput is the raw payload captured from a runner before
// normalization. Exactly one of Lines or Structured is expected to be
// populated; when both are set the structured payload wins.
type TurnOutput struct {
	Lines      []string        `json:"lines,omitempty"`
	Structured *StructuredTurn `json:"structured,omitempty"`
}

// TurnRecord is one normalized conversational exchange. Records are
// immutable once stored: fragments keep their insertion order and are
// never rewritten.
type TurnRecord struct {
	Input        string        `json:"input"`
	FinalOutput  string        `json:"finalOutput"`
	Transport    TransportKind `json:"transport"`
	RawFragments []string      `json:"rawFragments,omitempty"`
	Steps        []*Step       `json:"steps,omitempty"`
}
