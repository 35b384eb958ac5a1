// AngelaMos | 2026
// query.go

package core

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryInt reads an integer query parameter, returning def when it is
// absent or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return def
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}

	return parsed
}

// QueryBool accepts true/false/1/0 and reports whether the key was set.
func QueryBool(r *http.Request, key string) (bool, bool) {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return false, false
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}

	return parsed, true
}

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
