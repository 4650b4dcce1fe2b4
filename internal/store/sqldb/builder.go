// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqldb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stmt accumulates column/value pairs for dynamically built INSERT and
// UPDATE statements. Values are always bound positionally; nothing is ever
// interpolated into the SQL text.
type stmt struct {
	cols []string
	args []any
}

// set appends a column and its bound value.
func (s *stmt) set(col string, v any) {
	s.cols = append(s.cols, col)
	s.args = append(s.args, v)
}

// empty reports whether no columns were added.
func (s *stmt) empty() bool { return len(s.cols) == 0 }

// insertSQL renders "INSERT INTO table (a, b) VALUES (?, ?)".
func (s *stmt) insertSQL(table string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(s.cols, ", "), placeholders)
}

// updateSQL renders "UPDATE table SET a = ?, b = ? WHERE id = ?" and
// appends id to the bound arguments. Only columns actually set are part of
// the SET list, so unset patch fields can never overwrite stored values.
func (s *stmt) updateSQL(table, id string) string {
	assignments := make([]string, len(s.cols))
	for i, col := range s.cols {
		assignments[i] = col + " = ?"
	}
	s.args = append(s.args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		table, strings.Join(assignments, ", "))
}

// jsonColumn marshals v for storage in a TEXT column.
func jsonColumn(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding json column: %w", err)
	}
	return string(raw), nil
}

// jsonScan unmarshals a TEXT column into out, tolerating empty columns.
func jsonScan(raw string, out any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
