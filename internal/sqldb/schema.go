//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

package sqldb

import (
	"context"
	"fmt"
	"strings"
)

// Base table names shared by the MySQL backends. A deployment scopes
// them with an optional prefix, see BuildTableName.
const (
	evalSetsTableBase       = "agenteval_eval_sets"
	evalCasesTableBase      = "agenteval_eval_cases"
	metricsTableBase        = "agenteval_metrics"
	evalSetResultsTableBase = "agenteval_eval_set_results"
)

// SchemaTarget selects which tables EnsureSchema bootstraps.
type SchemaTarget uint8

// Schema targets, combinable as a bitmask.
const (
	SchemaEvalSets SchemaTarget = 1 << iota
	SchemaEvalCases
	SchemaMetrics
	SchemaEvalSetResults

	SchemaAll = SchemaEvalSets | SchemaEvalCases | SchemaMetrics | SchemaEvalSetResults
)

// Tables holds the resolved table names for one deployment.
type Tables struct {
	EvalSets       string
	EvalCases      string
	Metrics        string
	EvalSetResults string
}

// BuildTables resolves all table names for the given prefix.
func BuildTables(prefix string) Tables {
	return Tables{
		EvalSets:       BuildTableName(prefix, evalSetsTableBase),
		EvalCases:      BuildTableName(prefix, evalCasesTableBase),
		Metrics:        BuildTableName(prefix, metricsTableBase),
		EvalSetResults: BuildTableName(prefix, evalSetResultsTableBase),
	}
}

// BuildTableName joins an optional prefix with a base table name.
func BuildTableName(prefix, base string) string {
	if prefix == "" {
		return base
	}
	if strings.HasSuffix(prefix, "_") {
		return prefix + base
	}
	return prefix + "_" + base
}

const evalSetsTableTemplate = `CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    app_name VARCHAR(255) NOT NULL,
    eval_set_id VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    description TEXT,
    created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
    PRIMARY KEY (id),
    UNIQUE KEY uniq_eval_sets_app_set (app_name, eval_set_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const evalCasesTableTemplate = `CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    app_name VARCHAR(255) NOT NULL,
    eval_set_id VARCHAR(255) NOT NULL,
    eval_id VARCHAR(255) NOT NULL,
    eval_case JSON NOT NULL,
    created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
    PRIMARY KEY (id),
    UNIQUE KEY uniq_eval_cases_app_set_case (app_name, eval_set_id, eval_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const metricsTableTemplate = `CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    app_name VARCHAR(255) NOT NULL,
    eval_set_id VARCHAR(255) NOT NULL,
    metric_name VARCHAR(255) NOT NULL,
    metric JSON NOT NULL,
    created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
    PRIMARY KEY (id),
    UNIQUE KEY uniq_metrics_app_set_name (app_name, eval_set_id, metric_name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const evalSetResultsTableTemplate = `CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    app_name VARCHAR(255) NOT NULL,
    eval_set_result_id VARCHAR(255) NOT NULL,
    eval_set_id VARCHAR(255) NOT NULL,
    eval_set_result JSON NOT NULL,
    created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    PRIMARY KEY (id),
    UNIQUE KEY uniq_results_app_result_id (app_name, eval_set_result_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

type indexStatement struct {
	name     string
	template string
}

type tableSchema struct {
	target  SchemaTarget
	name    func(Tables) string
	table   string
	indexes []indexStatement
}

var tableSchemas = []tableSchema{
	{
		target: SchemaEvalSets,
		name:   func(t Tables) string { return t.EvalSets },
		table:  evalSetsTableTemplate,
	},
	{
		target: SchemaEvalCases,
		name:   func(t Tables) string { return t.EvalCases },
		table:  evalCasesTableTemplate,
		indexes: []indexStatement{
			{
				name:     "idx_eval_cases_app_set",
				template: "CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}} (app_name, eval_set_id)",
			},
		},
	},
	{
		target: SchemaMetrics,
		name:   func(t Tables) string { return t.Metrics },
		table:  metricsTableTemplate,
	},
	{
		target: SchemaEvalSetResults,
		name:   func(t Tables) string { return t.EvalSetResults },
		table:  evalSetResultsTableTemplate,
		indexes: []indexStatement{
			{
				name:     "idx_results_app_set",
				template: "CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}} (app_name, eval_set_id)",
			},
		},
	},
}

// EnsureSchema creates the selected tables and indexes if they do not
// exist yet. Index creation tolerates concurrent bootstraps by ignoring
// duplicate key name errors.
func EnsureSchema(ctx context.Context, db Client, target SchemaTarget, tables Tables) error {
	for _, schema := range tableSchemas {
		if target&schema.target == 0 {
			continue
		}
		tableName := schema.name(tables)
		stmt := strings.ReplaceAll(schema.table, "{{TABLE_NAME}}", tableName)
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", tableName, err)
		}
		for _, idx := range schema.indexes {
			stmt := strings.ReplaceAll(idx.template, "{{TABLE_NAME}}", tableName)
			stmt = strings.ReplaceAll(stmt, "{{INDEX_NAME}}", idx.name)
			if _, err := db.Exec(ctx, stmt); err != nil {
				if IsDuplicateKeyName(err) {
					continue
				}
				return fmt.Errorf("create index %s on %s: %w", idx.name, tableName, err)
			}
		}
	}
	return nil
}
