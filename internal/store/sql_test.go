package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT 1",
		"  select * from inventory",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"(SELECT 1)",
		"EXPLAIN SELECT 1",
	}
	for _, q := range allowed {
		assert.NoError(t, CheckReadOnly(q), q)
	}

	rejected := []string{
		"DELETE FROM inventory",
		"insert into inventory values ('1')",
		"DROP TABLE inventory",
		"",
	}
	for _, q := range rejected {
		assert.Error(t, CheckReadOnly(q), q)
	}
}

func TestPositionalArgs(t *testing.T) {
	assert.Equal(t, []any{"a", "b"}, PositionalArgs(map[string]any{"2": "b", "1": "a"}))
	assert.Equal(t, []any{"a"}, PositionalArgs(map[string]any{"1": "a", "3": "c"}))
	assert.Empty(t, PositionalArgs(nil))
}
