package dataprocessing

import (
	"strings"

	"finboard/pkg/contracts/domain"
)

// Normalize applies a schema's field rules to one row and guarantees
// the complete-record property: every schema column is present as a key
// afterwards, empty string for columns the sheet did not carry.
//
// Normalize is pure and total. It never fails on absent columns, reads
// nothing but the input row, and returns a new row without touching the
// original. Numeric columns pass through untouched; display formatting
// happens at render time.
func Normalize(schema domain.Schema, row domain.Row) domain.Row {
	out := row.Clone()

	for _, column := range schema.Columns {
		if _, ok := out[column]; !ok {
			out[column] = ""
		}
	}

	for _, rule := range schema.Rules {
		value := out[rule.Source]
		if rule.Trim {
			value = strings.TrimSpace(value)
		}
		if value == "" {
			value = rule.Default
		}
		out[rule.Field] = value
	}

	return out
}
