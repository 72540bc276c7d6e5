package store

import (
	"encoding/json"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// valuesList returns rows copies of "(?,...,?)" joined by commas, for
// multi-row inserts of cols columns.
func valuesList(rows, cols int) string {
	if rows <= 0 {
		return ""
	}
	row := "(" + placeholderList(cols) + ")"
	return strings.Repeat(row+",", rows-1) + row
}

// marshalFlags converts flag names to JSON text for storage.
func marshalFlags(flags []string) string {
	if len(flags) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(flags)
	return string(b)
}

// unmarshalFlags converts JSON text back to flag names.
func unmarshalFlags(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var flags []string
	_ = json.Unmarshal([]byte(s), &flags)
	return flags
}
