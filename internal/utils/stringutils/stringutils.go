package stringutils

import (
	"fmt"
	"strings"

	"github.com/mejova/bloggy/internal/utils/functional"
)

// INClause builds the placeholder list and argument slice for a SQL IN
// clause, e.g. ["$1", "$2"] and the matching args.
func INClause[T any](list []T) (placeholders []string, args []any) {
	placeholders = make([]string, len(list))
	args = make([]any, len(list))
	for i, id := range list {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	return placeholders, args
}

// EscapeLike backslash-escapes LIKE metacharacters so the value matches
// as a literal substring inside a LIKE/ILIKE pattern.
func EscapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// NormalizeTags trims, lowercases and drops blank entries, preserving order.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range functional.Map(tags, strings.TrimSpace) {
		if tag == "" {
			continue
		}
		normalized = append(normalized, strings.ToLower(tag))
	}

	return normalized
}
