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
	"errors"
	"fmt"
	"regexp"
)

// Table names and prefixes must start with a letter or underscore,
// followed by letters, numbers, or underscores.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxTableNameLength is the MySQL identifier length limit.
const maxTableNameLength = 64

// ValidateTableName validates a table name to prevent SQL injection.
// Table names are interpolated into queries, not bound as parameters,
// so they must be restricted to identifier characters.
func ValidateTableName(name string) error {
	if name == "" {
		return errors.New("table name cannot be empty")
	}
	if len(name) > maxTableNameLength {
		return fmt.Errorf("table name too long: %d characters (max %d)",
			len(name), maxTableNameLength)
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must start with letter/underscore and contain only alphanumeric characters and underscores)",
			name)
	}
	return nil
}

// ValidateTablePrefix validates a table prefix. Empty prefixes are allowed.
func ValidateTablePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	return ValidateTableName(prefix)
}

// MustValidateTablePrefix is like ValidateTablePrefix but panics on error.
// This is useful for validating prefixes in option functions.
func MustValidateTablePrefix(prefix string) {
	if err := ValidateTablePrefix(prefix); err != nil {
		panic(fmt.Sprintf("invalid table prefix: %v", err))
	}
}
