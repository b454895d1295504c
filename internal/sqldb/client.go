//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package sqldb provides the shared MySQL plumbing for the storage
// backends: a thin client over database/sql, table naming and schema
// bootstrap for the evaluation tables.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the backends care about.
const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrDuplicateKeyName = 1061
)

// Client defines the database operations the storage backends need.
type Client interface {
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	// Query executes a query and calls scan once per returned row.
	Query(ctx context.Context, scan func(*sql.Rows) error, query string, args ...any) error
	// QueryRow executes a query expected to return at most one row and
	// scans it into dest. Returns sql.ErrNoRows when there is none.
	QueryRow(ctx context.Context, dest []any, query string, args ...any) error
	// Transaction runs fn inside a transaction, rolling back on error.
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
	// Close closes the database connection.
	Close() error
}

// Open opens a MySQL connection for the given DSN and verifies it.
func Open(dsn string) (Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: dsn is empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping failed: %w", err)
	}
	return Wrap(db), nil
}

// Wrap wraps an existing database handle. Tests use it to inject mocks.
func Wrap(db *sql.DB) Client {
	return &client{db: db}
}

type client struct {
	db *sql.DB
}

func (c *client) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

func (c *client) Query(ctx context.Context, scan func(*sql.Rows) error, query string, args ...any) error {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *client) QueryRow(ctx context.Context, dest []any, query string, args ...any) error {
	return c.db.QueryRowContext(ctx, query, args...).Scan(dest...)
}

func (c *client) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *client) Close() error {
	return c.db.Close()
}

// IsDuplicateEntry reports whether the error is a MySQL duplicate entry error.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlErrDuplicateEntry
}

// IsDuplicateKeyName reports whether the error is a MySQL duplicate key name error.
func IsDuplicateKeyName(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlErrDuplicateKeyName
}
