//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package runner drives the agent under evaluation one turn at a time.
package runner

import (
	"context"

	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// Runner executes conversational turns against the agent under
// evaluation. Implementations own transport and model specifics; the
// evaluation pipeline only consumes the raw turn output and normalizes
// it afterwards.
type Runner interface {
	// Run executes a single turn within the given session and returns the
	// raw turn output.
	Run(ctx context.Context, userID, sessionID, input string) (*transcript.TurnOutput, error)
}

// RunFunc adapts a plain function to the Runner interface.
type RunFunc func(ctx context.Context, userID, sessionID, input string) (*transcript.TurnOutput, error)

// Run implements Runner.
func (f RunFunc) Run(ctx context.Context, userID, sessionID, input string) (*transcript.TurnOutput, error) {
	return f(ctx, userID, sessionID, input)
}
