package store

import (
	"fmt"
	"strconv"
	"strings"
)

var readOnlyPrefixes = []string{"select", "with", "explain", "pragma", "show", "values"}

// CheckReadOnly rejects statements that could modify records. Records are
// owned by the indexer that populates the backend.
func CheckReadOnly(query string) error {
	trimmed := strings.ToLower(strings.TrimLeft(query, " \t\r\n("))
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return nil
		}
	}
	return fmt.Errorf("only read-only statements are allowed")
}

// PositionalArgs orders params keyed "1", "2", ... into driver arguments,
// stopping at the first gap.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		val, ok := params[strconv.Itoa(i)]
		if !ok {
			break
		}
		args = append(args, val)
	}
	return args
}
