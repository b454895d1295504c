//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/evalresult"
	"trpc.group/trpc-go/trpc-agenteval-go/internal/sqldb"
)

var _ evalresult.Manager = (*manager)(nil)

// openClient builds the database client, overridable in tests.
var openClient = sqldb.Open

type manager struct {
	opts   options
	db     sqldb.Client
	tables sqldb.Tables
}

// New creates a MySQL-backed eval result manager.
func New(opts ...Option) (evalresult.Manager, error) {
	options := newOptions(opts...)
	db, err := openClient(options.dsn)
	if err != nil {
		return nil, fmt.Errorf("create mysql client failed: %w", err)
	}
	tables := sqldb.BuildTables(options.tablePrefix)
	m := &manager{
		opts:   *options,
		db:     db,
		tables: tables,
	}
	if !options.skipDBInit {
		ctx, cancel := context.WithTimeout(context.Background(), options.initTimeout)
		defer cancel()
		if err := sqldb.EnsureSchema(ctx, db, sqldb.SchemaEvalSetResults, tables); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

// Close implements evalresult.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Save upserts an evaluation result into MySQL.
func (m *manager) Save(ctx context.Context, appName string, evalSetResult *evalresult.EvalSetResult) (string, error) {
	if appName == "" {
		return "", errors.New("app name is empty")
	}
	if evalSetResult == nil {
		return "", errors.New("eval set result is nil")
	}
	if evalSetResult.EvalSetID == "" {
		return "", errors.New("the eval set id of eval set result is empty")
	}
	stored := *evalSetResult
	if stored.EvalSetResultID == "" {
		stored.EvalSetResultID = evalresult.NewResultID(appName, stored.EvalSetID)
	}
	if stored.EvalSetResultName == "" {
		stored.EvalSetResultName = stored.EvalSetResultID
	}
	if stored.CreationTimestamp == nil {
		stored.CreationTimestamp = epochtime.Now()
	}
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("marshal eval set result: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (app_name, eval_set_result_id, eval_set_id, eval_set_result)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   eval_set_id = VALUES(eval_set_id),
		   eval_set_result = VALUES(eval_set_result)`,
		m.tables.EvalSetResults,
	)
	if _, err := m.db.Exec(ctx, query, appName, stored.EvalSetResultID, stored.EvalSetID, payload); err != nil {
		return "", fmt.Errorf("store eval set result %s.%s: %w", appName, stored.EvalSetResultID, err)
	}
	return stored.EvalSetResultID, nil
}

// Get loads an evaluation result from MySQL.
func (m *manager) Get(ctx context.Context, appName, evalSetResultID string) (*evalresult.EvalSetResult, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if evalSetResultID == "" {
		return nil, errors.New("eval set result id is empty")
	}
	var (
		payload   []byte
		createdAt time.Time
	)
	query := fmt.Sprintf(
		"SELECT eval_set_result, created_at FROM %s WHERE app_name = ? AND eval_set_result_id = ?",
		m.tables.EvalSetResults,
	)
	if err := m.db.QueryRow(ctx, []any{&payload, &createdAt}, query, appName, evalSetResultID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("eval set result %s.%s not found: %w", appName, evalSetResultID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("load eval set result %s.%s: %w", appName, evalSetResultID, err)
	}
	var result evalresult.EvalSetResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal eval set result %s.%s: %w", appName, evalSetResultID, err)
	}
	result.EvalSetResultID = evalSetResultID
	if result.EvalCaseResults == nil {
		result.EvalCaseResults = []*evalresult.EvalCaseResult{}
	}
	if result.CreationTimestamp == nil {
		result.CreationTimestamp = &epochtime.EpochTime{Time: createdAt}
	}
	return &result, nil
}

// List lists evaluation result IDs for the given app from MySQL, newest first.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	query := fmt.Sprintf(
		"SELECT eval_set_result_id FROM %s WHERE app_name = ? ORDER BY created_at DESC",
		m.tables.EvalSetResults,
	)
	ids := []string{}
	if err := m.db.Query(ctx, func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}, query, appName); err != nil {
		return nil, fmt.Errorf("list eval set results for app %s: %w", appName, err)
	}
	return ids, nil
}
