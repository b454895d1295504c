//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package evalset provides evaluation set storage for agent evaluation.
package evalset

import (
	"context"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
)

// EvalSet represents a collection of evaluation cases.
type EvalSet struct {
	// EvalSetID uniquely identifies this evaluation set.
	EvalSetID string `json:"eval_set_id"`
	// Name of the evaluation set.
	Name string `json:"name,omitempty"`
	// Description of the evaluation set.
	Description string `json:"description,omitempty"`
	// EvalCases contains all the evaluation cases.
	EvalCases []*EvalCase `json:"eval_cases"`
	// CreationTimestamp when this eval set was created.
	CreationTimestamp *epochtime.EpochTime `json:"creation_timestamp,omitempty"`
}

// Manager defines the interface for managing evaluation sets.
type Manager interface {
	// Get returns an EvalSet identified by appName and evalSetID.
	Get(ctx context.Context, appName, evalSetID string) (*EvalSet, error)
	// Create creates and returns an empty EvalSet given the evalSetID.
	// Returns an error if the EvalSet already exists.
	Create(ctx context.Context, appName, evalSetID string) (*EvalSet, error)
	// List lists all EvalSet IDs for the given appName.
	List(ctx context.Context, appName string) ([]string, error)
	// Delete deletes the EvalSet identified by evalSetID together with its cases.
	Delete(ctx context.Context, appName, evalSetID string) error
	// GetCase returns an EvalCase identified by evalSetID and evalCaseID.
	GetCase(ctx context.Context, appName, evalSetID, evalCaseID string) (*EvalCase, error)
	// AddCase adds the given EvalCase to an existing EvalSet identified by evalSetID.
	AddCase(ctx context.Context, appName, evalSetID string, evalCase *EvalCase) error
	// UpdateCase updates an existing EvalCase given the evalSetID.
	UpdateCase(ctx context.Context, appName, evalSetID string, evalCase *EvalCase) error
	// DeleteCase deletes the given EvalCase identified by evalSetID and evalCaseID.
	DeleteCase(ctx context.Context, appName, evalSetID, evalCaseID string) error
	// Close releases resources held by the manager.
	Close() error
}
