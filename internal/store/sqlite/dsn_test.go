package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute", input: "sqlite:///var/lib/world.db", expected: "/var/lib/world.db"},
		{name: "explicit relative", input: "sqlite://./world.db", expected: "./world.db"},
		{name: "bare relative", input: "sqlite://world.db", expected: "./world.db"},
		{name: "escaped path", input: "sqlite://my%20world.db", expected: "./my world.db"},
		{name: "query params", input: "sqlite://world.db?_txlock=immediate", expected: "./world.db?_txlock=immediate"},
		{name: "wrong scheme", input: "postgres://localhost/world", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFilePath(t *testing.T) {
	if filePath(":memory:") != "" {
		t.Fatalf("expected no path for in-memory database")
	}
	if got := filePath("./world.db?_txlock=immediate"); got != "./world.db" {
		t.Fatalf("unexpected path %q", got)
	}
}
