// Package lenient decodes loosely typed JSON fields. Clients send the same
// field either as a structured value or as a JSON-encoded string holding
// it, and older exports mix camelCase and snake_case keys. Every decoder in
// this package falls back to a default instead of failing.
package lenient

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var null = []byte("null")

// unwrap returns the payload of raw, decoding one level of JSON string
// quoting when the string itself holds JSON. Plain strings are returned
// unchanged (still quoted).
func unwrap(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	inner := strings.TrimSpace(s)
	if inner == "" {
		return null
	}
	switch inner[0] {
	case '{', '[':
		return []byte(inner)
	}
	return raw
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, null)
}

// Decode unmarshals raw into a T, accepting a JSON string that contains the
// encoded value. It returns def when raw is empty, null or malformed.
func Decode[T any](raw []byte, def T) T {
	raw = unwrap(raw)
	if isNull(raw) {
		return def
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return def
	}
	return out
}

// toFloat coerces a decoded JSON scalar into a float.
func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, finite(t)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && finite(f)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// toString renders a decoded JSON scalar as text. Objects and arrays yield
// false.
func toString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func toBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on", "y":
			return true, true
		case "0", "false", "no", "off", "n", "":
			return false, true
		}
	}
	return false, false
}
