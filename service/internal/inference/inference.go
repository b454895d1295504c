//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package inference drives the runner over eval case conversations and
// captures each turn as a normalized record.
package inference

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/log"
	"trpc.group/trpc-go/trpc-agenteval-go/runner"
	"trpc.group/trpc-go/trpc-agenteval-go/session"
	"trpc.group/trpc-go/trpc-agenteval-go/toolcall"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// Inference executes the runner against the provided invocations. Every
// captured turn is appended to a session dedicated to the eval case, and
// the session is removed afterwards when cleanup is requested. Cleanup is
// best effort and never fails the eval case.
func Inference(
	ctx context.Context,
	r runner.Runner,
	sessions *session.Store,
	extractor *toolcall.Extractor,
	invocations []*evalset.Invocation,
	initialSession *evalset.SessionInput,
	sessionID string,
	cleanupSession bool,
) ([]*evalset.Invocation, error) {
	if len(invocations) == 0 {
		return nil, errors.New("invocations are empty")
	}
	if initialSession == nil {
		return nil, errors.New("session input is nil")
	}
	if err := sessions.Start(sessionID); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if cleanupSession {
		defer func() {
			if err := sessions.Cleanup(sessionID); err != nil {
				log.WarnfContext(ctx, "cleanup session %s: %v", sessionID, err)
			}
		}()
	}
	// Accumulate each invocation response.
	responseInvocations := make([]*evalset.Invocation, 0, len(invocations))
	for turnIndex, invocation := range invocations {
		responseInvocation, err := inferencePerInvocation(
			ctx, r, sessions, extractor, initialSession.UserID, sessionID, turnIndex, invocation)
		if err != nil {
			return nil, err
		}
		responseInvocations = append(responseInvocations, responseInvocation)
	}
	return responseInvocations, nil
}

// inferencePerInvocation executes the runner for a single invocation and
// converts the captured turn into an actual invocation.
func inferencePerInvocation(
	ctx context.Context,
	r runner.Runner,
	sessions *session.Store,
	extractor *toolcall.Extractor,
	userID string,
	sessionID string,
	turnIndex int,
	invocation *evalset.Invocation,
) (*evalset.Invocation, error) {
	if invocation.UserContent == "" {
		return nil, fmt.Errorf("user content is empty for eval case invocation %q", invocation.InvocationID)
	}
	out, err := r.Run(ctx, userID, sessionID, invocation.UserContent)
	if err != nil {
		return nil, fmt.Errorf("runner run: %w", err)
	}
	turn := transcript.Normalize(invocation.UserContent, out)
	if err := sessions.Append(sessionID, turn); err != nil {
		return nil, fmt.Errorf("append turn to session: %w", err)
	}
	return &evalset.Invocation{
		InvocationID:      invocation.InvocationID,
		UserContent:       invocation.UserContent,
		FinalResponse:     turn.FinalOutput,
		ToolCalls:         observedToolCalls(extractor, turn, sessionID, turnIndex),
		Turn:              turn,
		CreationTimestamp: epochtime.Now(),
	}, nil
}

// observedToolCalls converts extractor observations into invocation tool
// calls. When neither structured steps nor marker lines carry a tool call,
// the plain-text mention tier of LatestFromTurn applies; when the scoring
// call's arguments did not survive the log, they are recovered from the
// turn's marker lines or from the answer prose.
func observedToolCalls(
	extractor *toolcall.Extractor,
	turn *transcript.TurnRecord,
	sessionID string,
	turnIndex int,
) []*transcript.ToolCall {
	observations := extractor.FromTurn(turn, sessionID, turnIndex)
	if len(observations) == 0 {
		observation, ok := extractor.LatestFromTurn(turn, sessionID, turnIndex)
		if !ok {
			return nil
		}
		observations = []*toolcall.Observation{observation}
	}
	toolCalls := make([]*transcript.ToolCall, 0, len(observations))
	for _, observation := range observations {
		toolCalls = append(toolCalls, &transcript.ToolCall{
			Name:      observation.ToolName,
			Arguments: observation.Arguments,
		})
	}
	last := toolCalls[len(toolCalls)-1]
	if len(last.Arguments) == 0 {
		if args, ok := extractor.LatestArguments(turn); ok {
			last.Arguments = args
		} else if args := extractor.ArgumentsFromText(turn.FinalOutput); len(args) > 0 {
			last.Arguments = args
		}
	}
	return toolCalls
}
