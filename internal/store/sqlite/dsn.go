package sqlite

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const scheme = "sqlite://"

var errScheme = errors.New("invalid sqlite DSN scheme, expected " + scheme)

// IsDSN reports whether dsn selects the sqlite backend.
func IsDSN(dsn string) bool {
	return strings.HasPrefix(dsn, scheme)
}

// parseDSN turns sqlite://<path>[?query] into a driver DSN. Relative paths
// are anchored at the working directory.
func parseDSN(dsn string) (string, error) {
	if !IsDSN(dsn) {
		return "", errScheme
	}

	rest := strings.TrimPrefix(dsn, scheme)
	if rest == ":memory:" {
		return rest, nil
	}

	path, query, hasQuery := strings.Cut(rest, "?")
	if !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "./") {
		unescaped, err := url.PathUnescape(path)
		if err != nil {
			return "", fmt.Errorf("unescaping path: %w", err)
		}
		path = unescaped
		if !filepath.IsAbs(path) {
			path = "./" + path
		}
	}

	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}
