// Package csvio renders the CSV dialect expected by the downstream import
// tools: every field double-quoted, inner quotes doubled, backslashes
// doubled. encoding/csv cannot produce the backslash doubling, so rows are
// assembled by hand.
package csvio

import "strings"

// Delimiter separates fields in a rendered row.
const Delimiter = ","

// Escape doubles quotes and backslashes so the value survives quoting.
func Escape(value string) string {
	escaped := strings.ReplaceAll(value, `"`, `""`)
	return strings.ReplaceAll(escaped, `\`, `\\`)
}

// EscapeQuotes doubles only quotes, for the plain interval export.
func EscapeQuotes(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}

// Row renders one fully quoted CSV row without a trailing newline.
func Row(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + Escape(field) + `"`
	}
	return strings.Join(quoted, Delimiter)
}

// RowQuotesOnly renders a row using the minimal quote-only escaping.
func RowQuotesOnly(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + EscapeQuotes(field) + `"`
	}
	return strings.Join(quoted, Delimiter)
}
