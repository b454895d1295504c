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
	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// EvalCase represents a single evaluation case.
type EvalCase struct {
	// EvalID uniquely identifies this evaluation case.
	EvalID string `json:"evalId,omitempty"`
	// Conversation contains the sequence of invocations.
	Conversation []*Invocation `json:"conversation,omitempty"`
	// EvaluationCriteria describes, in prose, what a correct answer covers.
	EvaluationCriteria string `json:"evaluationCriteria,omitempty"`
	// Category groups related cases for per-category reporting.
	Category string `json:"category,omitempty"`
	// SessionInput contains initialization data for the session.
	SessionInput *SessionInput `json:"sessionInput,omitempty"`
	// CreationTimestamp when this eval case was created.
	CreationTimestamp *epochtime.EpochTime `json:"creationTimestamp,omitempty"`
}

// Invocation represents a single invocation in a conversation. Expected
// invocations come from the eval set; actual invocations are built from
// a recorded agent turn and carry the normalized turn alongside.
type Invocation struct {
	// InvocationID uniquely identifies this invocation.
	InvocationID string `json:"invocationId,omitempty"`
	// UserContent is the user's input.
	UserContent string `json:"userContent,omitempty"`
	// FinalResponse is the agent's final response.
	FinalResponse string `json:"finalResponse,omitempty"`
	// ToolCalls are the tool calls observed (or expected) for this invocation.
	ToolCalls []*transcript.ToolCall `json:"toolCalls,omitempty"`
	// Turn is the normalized turn record for actual invocations. It is nil
	// on expected invocations.
	Turn *transcript.TurnRecord `json:"turn,omitempty"`
	// CreationTimestamp when this invocation was created.
	CreationTimestamp *epochtime.EpochTime `json:"creationTimestamp,omitempty"`
}

// SessionInput represents values that help initialize a session.
type SessionInput struct {
	// AppName identifies the app.
	AppName string `json:"appName,omitempty"`
	// UserID identifies the user.
	UserID string `json:"userId,omitempty"`
	// State contains the initial state of the session.
	State map[string]any `json:"state,omitempty"`
}

// LatestToolCall returns the last tool call of the invocation, or nil
// when the invocation has none.
func (i *Invocation) LatestToolCall() *transcript.ToolCall {
	if i == nil || len(i.ToolCalls) == 0 {
		return nil
	}
	return i.ToolCalls[len(i.ToolCalls)-1]
}
