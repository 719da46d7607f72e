package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrOwnerNotFound = errors.New("owner not found")

// Ownership is one row of the deployable ERC-721 owners table.
type Ownership struct {
	TokenID string
	Owner   string
}

// MapOwnerResult reads the first ownership row out of an indexer `result`
// payload: a list of tables, each a list of rows whose first row holds the
// column names. Empty, malformed, or owner-less payloads yield
// ErrOwnerNotFound. The owner is returned as given, unvalidated.
func MapOwnerResult(raw json.RawMessage) (Ownership, error) {
	var tableSet [][][]any
	if len(raw) == 0 {
		return Ownership{}, ErrOwnerNotFound
	}
	if err := json.Unmarshal(raw, &tableSet); err != nil {
		return Ownership{}, fmt.Errorf("%w: %v", ErrOwnerNotFound, err)
	}
	if len(tableSet) == 0 || len(tableSet[0]) < 2 {
		return Ownership{}, ErrOwnerNotFound
	}

	header, row := tableSet[0][0], tableSet[0][1]
	var out Ownership
	for i, column := range header {
		name, ok := column.(string)
		if !ok || i >= len(row) {
			continue
		}
		switch name {
		case "tokenId":
			out.TokenID = cellString(row[i])
		case "owner":
			out.Owner = cellString(row[i])
		}
	}

	if strings.TrimSpace(out.Owner) == "" {
		return Ownership{}, ErrOwnerNotFound
	}
	return out, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
