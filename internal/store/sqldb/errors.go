// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqldb

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/versocms/verso/internal/store"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// translate converts a raw driver error into the shared taxonomy. The
// uniqueFields are checked in order against the driver message to decide
// which constraint was violated; a duplicate that matches none of them is
// still reported as a backend error rather than guessed.
func translate(err error, notFoundMsg string, uniqueFields ...string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.NotFound(notFoundMsg)
	}
	if field, ok := conflictField(err, uniqueFields); ok {
		return store.Conflict(field)
	}
	return store.Backend(err)
}

// conflictField inspects a driver error for a duplicate-entry condition and
// names the violated field. Handles the MySQL error code and both sqlite
// drivers' "UNIQUE constraint failed: table.column" message shape.
func conflictField(err error, uniqueFields []string) (string, bool) {
	msg := ""

	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &myErr):
		if myErr.Number != mysqlDuplicateEntry {
			return "", false
		}
		msg = myErr.Message
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		msg = err.Error()
	default:
		return "", false
	}

	for _, field := range uniqueFields {
		if strings.Contains(msg, field) {
			return field, true
		}
	}
	return "", false
}
