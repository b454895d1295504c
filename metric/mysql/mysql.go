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

	"trpc.group/trpc-go/trpc-agenteval-go/internal/sqldb"
	"trpc.group/trpc-go/trpc-agenteval-go/metric"
)

var _ metric.Manager = (*manager)(nil)

// openClient builds the database client, overridable in tests.
var openClient = sqldb.Open

type manager struct {
	opts   options
	db     sqldb.Client
	tables sqldb.Tables
}

// New creates a MySQL-backed metric manager.
func New(opts ...Option) (metric.Manager, error) {
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
		if err := sqldb.EnsureSchema(ctx, db, sqldb.SchemaMetrics, tables); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

// List returns all metrics for the specified evaluation set from MySQL.
func (m *manager) List(ctx context.Context, appName, evalSetID string) ([]*metric.EvalMetric, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if evalSetID == "" {
		return nil, errors.New("empty eval set id")
	}
	query := fmt.Sprintf(
		"SELECT metric FROM %s WHERE app_name = ? AND eval_set_id = ? ORDER BY metric_name ASC",
		m.tables.Metrics,
	)
	metrics := []*metric.EvalMetric{}
	if err := m.db.Query(ctx, func(rows *sql.Rows) error {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		var evalMetric metric.EvalMetric
		if err := json.Unmarshal(payload, &evalMetric); err != nil {
			return fmt.Errorf("unmarshal metric: %w", err)
		}
		metrics = append(metrics, &evalMetric)
		return nil
	}, query, appName, evalSetID); err != nil {
		return nil, fmt.Errorf("list metrics %s.%s: %w", appName, evalSetID, err)
	}
	return metrics, nil
}

// Save replaces all metrics for the specified evaluation set in MySQL.
func (m *manager) Save(ctx context.Context, appName, evalSetID string, metrics []*metric.EvalMetric) error {
	if appName == "" {
		return errors.New("empty app name")
	}
	if evalSetID == "" {
		return errors.New("empty eval set id")
	}
	names := make([]string, 0, len(metrics))
	payloads := make([][]byte, 0, len(metrics))
	for _, evalMetric := range metrics {
		if evalMetric == nil {
			return errors.New("metric is nil")
		}
		if evalMetric.MetricName == "" {
			return errors.New("metric name is empty")
		}
		payload, err := json.Marshal(evalMetric)
		if err != nil {
			return fmt.Errorf("marshal metric %s: %w", evalMetric.MetricName, err)
		}
		names = append(names, evalMetric.MetricName)
		payloads = append(payloads, payload)
	}
	deleteQuery := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND eval_set_id = ?",
		m.tables.Metrics,
	)
	insertQuery := fmt.Sprintf(
		"INSERT INTO %s (app_name, eval_set_id, metric_name, metric) VALUES (?, ?, ?, ?)",
		m.tables.Metrics,
	)
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteQuery, appName, evalSetID); err != nil {
			return fmt.Errorf("clear metrics %s.%s: %w", appName, evalSetID, err)
		}
		for i, payload := range payloads {
			if _, err := tx.ExecContext(ctx, insertQuery, appName, evalSetID, names[i], payload); err != nil {
				return fmt.Errorf("save metric %s.%s.%s: %w", appName, evalSetID, names[i], err)
			}
		}
		return nil
	})
}

// Get retrieves a metric definition from MySQL.
func (m *manager) Get(ctx context.Context, appName, evalSetID, metricName string) (*metric.EvalMetric, error) {
	if appName == "" {
		return nil, errors.New("empty app name")
	}
	if evalSetID == "" {
		return nil, errors.New("empty eval set id")
	}
	if metricName == "" {
		return nil, errors.New("empty metric name")
	}
	var payload []byte
	query := fmt.Sprintf(
		"SELECT metric FROM %s WHERE app_name = ? AND eval_set_id = ? AND metric_name = ?",
		m.tables.Metrics,
	)
	if err := m.db.QueryRow(ctx, []any{&payload}, query, appName, evalSetID, metricName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("metric %s.%s.%s not found: %w", appName, evalSetID, metricName, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get metric %s.%s.%s: %w", appName, evalSetID, metricName, err)
	}
	var evalMetric metric.EvalMetric
	if err := json.Unmarshal(payload, &evalMetric); err != nil {
		return nil, fmt.Errorf("unmarshal metric %s.%s.%s: %w", appName, evalSetID, metricName, err)
	}
	return &evalMetric, nil
}

// Close implements metric.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
