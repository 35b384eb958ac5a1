// AngelaMos | 2026
// sanitize.go

package core

import (
	"encoding/json"
	"net/http"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"cookie",
	"api_key",
	"apikey",
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func SanitizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if isSensitive(key) {
			out[key] = redacted
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// SanitizeBody decodes a JSON body and redacts sensitive keys at any depth.
// Bodies that are not JSON are replaced wholesale.
func SanitizeBody(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "[unparseable body]"
	}
	return sanitizeValue(v)
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			if isSensitive(key) {
				out[key] = redacted
				continue
			}
			out[key] = sanitizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitizeValue(val)
		}
		return out
	default:
		return v
	}
}
