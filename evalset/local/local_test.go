//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agenteval-go/evalset"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

func newCase(evalID string) *evalset.EvalCase {
	return &evalset.EvalCase{
		EvalID:   evalID,
		Category: "finance",
		Conversation: []*evalset.Invocation{
			{
				UserContent:   "What is the penalty?",
				FinalResponse: "The penalty is $1,150.50",
				ToolCalls:     []*transcript.ToolCall{{Name: "calc_penalty"}},
			},
		},
	}
}

func TestCreatePersistsFile(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	m := New(evalset.WithBaseDir(base))

	created, err := m.Create(ctx, "app", "set1")
	require.NoError(t, err)
	assert.Equal(t, "set1", created.EvalSetID)

	path := filepath.Join(base, "app", "set1.evalset.json")
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = m.Create(ctx, "app", "set1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGetMissingSet(t *testing.T) {
	ctx := context.Background()
	m := New(evalset.WithBaseDir(t.TempDir()))

	_, err := m.Get(ctx, "app", "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCaseLifecycle(t *testing.T) {
	ctx := context.Background()
	m := New(evalset.WithBaseDir(t.TempDir()))

	_, err := m.Create(ctx, "app", "set1")
	require.NoError(t, err)
	require.NoError(t, m.AddCase(ctx, "app", "set1", newCase("case_001")))

	got, err := m.GetCase(ctx, "app", "set1", "case_001")
	require.NoError(t, err)
	assert.Equal(t, "case_001", got.EvalID)
	assert.NotNil(t, got.CreationTimestamp)
	assert.NotNil(t, got.Conversation[0].CreationTimestamp)

	err = m.AddCase(ctx, "app", "set1", newCase("case_001"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	updated := newCase("case_001")
	updated.Category = "governance"
	require.NoError(t, m.UpdateCase(ctx, "app", "set1", updated))
	got, err = m.GetCase(ctx, "app", "set1", "case_001")
	require.NoError(t, err)
	assert.Equal(t, "governance", got.Category)

	require.NoError(t, m.DeleteCase(ctx, "app", "set1", "case_001"))
	_, err = m.GetCase(ctx, "app", "set1", "case_001")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersistenceAcrossManagers(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	m1 := New(evalset.WithBaseDir(base))
	_, err := m1.Create(ctx, "app", "set1")
	require.NoError(t, err)
	require.NoError(t, m1.AddCase(ctx, "app", "set1", newCase("case_001")))

	m2 := New(evalset.WithBaseDir(base))
	got, err := m2.Get(ctx, "app", "set1")
	require.NoError(t, err)
	require.Len(t, got.EvalCases, 1)
	assert.Equal(t, "case_001", got.EvalCases[0].EvalID)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	m := New(evalset.WithBaseDir(t.TempDir()))

	for _, id := range []string{"b", "a"} {
		_, err := m.Create(ctx, "app", id)
		require.NoError(t, err)
	}
	ids, err := m.List(ctx, "app")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, m.Delete(ctx, "app", "a"))
	ids, err = m.List(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	assert.ErrorIs(t, m.Delete(ctx, "app", "a"), os.ErrNotExist)
}

func TestAddCaseRequiresSet(t *testing.T) {
	ctx := context.Background()
	m := New(evalset.WithBaseDir(t.TempDir()))

	err := m.AddCase(ctx, "app", "missing", newCase("case_001"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	m := New(evalset.WithBaseDir(t.TempDir()))

	_, err := m.Get(ctx, "", "set1")
	assert.Error(t, err)
	_, err = m.Create(ctx, "app", "")
	assert.Error(t, err)
	_, err = m.List(ctx, "")
	assert.Error(t, err)
	assert.Error(t, m.AddCase(ctx, "app", "set1", nil))
	assert.Error(t, m.UpdateCase(ctx, "app", "set1", &evalset.EvalCase{}))
	_, err = m.GetCase(ctx, "app", "set1", "")
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	m := New(evalset.WithBaseDir(t.TempDir()))
	assert.NoError(t, m.Close())
}
