package logger

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// redactedValue replaces values logged under a sensitive key.
const redactedValue = "***REDACTED***"

// A value with at least minDelimiters "&" is treated as a plain token.
const minDelimiters = 2

// sensitiveKeyParts are substrings of attribute keys whose values are
// never logged.
var sensitiveKeyParts = []string{
	"token", "password", "secret", "key", "credential", "auth", "bearer",
}

// redactSensitive rewrites a string attribute whose key or value looks
// sensitive. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		switch {
		case v == "":
		case IsSensitiveKey(a.Key):
			a.Value = slog.StringValue(redactedValue)
		case IsSensitiveValue(v):
			a.Value = slog.StringValue(maskValue(v))
		}
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i := range group {
			out[i] = redactSensitive(group[i])
		}
		a.Value = slog.GroupValue(out...)
	}
	return a
}

// maskValue keeps the first and last three runes of values of ten runes
// or more, and hides shorter values completely.
func maskValue(v string) string {
	n := utf8.RuneCountInString(v)
	if n < 10 {
		return "***"
	}
	r := []rune(v)
	return string(r[:3]) + "..." + string(r[n-3:])
}

// RedactString masks raw input that may hold a token before it is logged.
func RedactString(v string) string {
	if v == "" {
		return ""
	}
	return maskValue(v)
}

// IsSensitiveKey reports whether key names a secret.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(k, part) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether v is shaped like a plain token.
func IsSensitiveValue(v string) bool {
	return strings.Count(v, "&") >= minDelimiters
}
