// Package redact provides utilities for redacting sensitive information from
// strings and JSON documents before they are logged. The registration response
// carries an access token and the participant's email, and both must stay out
// of log output.
package redact

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
	RedactedJWTPlaceholder  = "[REDACTED_JWT]"
	RedactedEmailPlaceholder = "[REDACTED_EMAIL]"
)

// Precompiled regex patterns
var (
	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Credentials and tokens in key=value or "key": "value" form
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|authorization)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Order matters: JWTs are matched before the generic token pattern eats them.
	patterns = []struct {
		re          *regexp.Regexp
		placeholder string
	}{
		{jwtTokenRegex, RedactedJWTPlaceholder},
		{apiKeyRegex, RedactedKeyPlaceholder},
		{emailRegex, RedactedEmailPlaceholder},
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// JSON returns data with the values of the named keys (matched
// case-insensitively, at any depth) replaced by a placeholder, and the
// remaining string values passed through String. Invalid JSON is redacted
// as plain text.
func JSON(data []byte, keys ...string) string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return String(string(data))
	}

	sensitive := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sensitive[strings.ToLower(k)] = struct{}{}
	}

	out, err := json.Marshal(redactValue(doc, sensitive))
	if err != nil {
		return String(string(data))
	}
	return string(out)
}

func redactValue(v any, sensitive map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if _, ok := sensitive[strings.ToLower(k)]; ok {
				val[k] = RedactionPlaceholder
				continue
			}
			val[k] = redactValue(child, sensitive)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = redactValue(child, sensitive)
		}
		return val
	case string:
		return String(val)
	default:
		return val
	}
}
