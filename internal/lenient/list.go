package lenient

import (
	"database/sql/driver"
	"strings"

	"github.com/goccy/go-json"
)

// StringList is a list of short labels (tags, abilities, aliases).
type StringList []string

// ParseStringList accepts a JSON array, a JSON string holding an array, or
// a plain comma separated string. Items are trimmed and empty ones dropped.
func ParseStringList(raw []byte) StringList {
	raw = unwrap(raw)
	if isNull(raw) {
		return StringList{}
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return StringList{}
	}
	switch t := v.(type) {
	case []interface{}:
		out := make(StringList, 0, len(t))
		for _, item := range t {
			s, ok := toString(item)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return SplitList(t)
	}
	return StringList{}
}

// SplitList splits comma separated text.
func SplitList(s string) StringList {
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *StringList) UnmarshalJSON(b []byte) error {
	*l = ParseStringList(b)
	return nil
}

// MarshalJSON encodes a nil list as [] rather than null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Contains reports whether s is in the list, ignoring case.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (StringList) GormDataType() string { return "text" }

func (l StringList) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	*l = ParseStringList(scanBytes(src))
	return nil
}
