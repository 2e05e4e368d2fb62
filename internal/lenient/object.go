package lenient

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotObject is returned by ParseObject when the body is not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// Object is a loosely typed request body. Accessors take one or more key
// aliases and return the first present, non-null value.
type Object map[string]json.RawMessage

// ParseObject decodes a JSON object. An empty body yields an empty Object.
func ParseObject(body []byte) (Object, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Object{}, nil
	}
	var o Object
	if err := json.Unmarshal(body, &o); err != nil || o == nil {
		return nil, ErrNotObject
	}
	return o, nil
}

// FromForm builds an Object from form values. Every field becomes a JSON
// string; fields holding JSON (for example abilities) are decoded lazily by
// the typed accessors.
func FromForm(values url.Values) Object {
	o := make(Object, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		b, err := json.Marshal(v[0])
		if err != nil {
			continue
		}
		o[k] = b
	}
	return o
}

// Set stores v under key.
func (o Object) Set(key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	o[key] = b
}

func (o Object) raw(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if r, ok := o[k]; ok && !isNull(r) {
			return r, true
		}
	}
	return nil, false
}

// Has reports whether any alias is present, including explicit nulls.
func (o Object) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := o[k]; ok {
			return true
		}
	}
	return false
}

func (o Object) scalar(keys ...string) (interface{}, bool) {
	r, ok := o.raw(keys...)
	if !ok {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal(r, &v); err != nil {
		return nil, false
	}
	return v, true
}

// String returns the trimmed text value, or "" when absent.
func (o Object) String(keys ...string) string {
	v, ok := o.scalar(keys...)
	if !ok {
		return ""
	}
	s, _ := toString(v)
	return strings.TrimSpace(s)
}

// Int returns the integer value or def.
func (o Object) Int(def int, keys ...string) int {
	v, ok := o.scalar(keys...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// Float returns the numeric value or def.
func (o Object) Float(def float64, keys ...string) float64 {
	if f := o.OptFloat(keys...); f != nil {
		return *f
	}
	return def
}

// OptFloat returns nil when the value is absent or not numeric.
func (o Object) OptFloat(keys ...string) *float64 {
	v, ok := o.scalar(keys...)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// Bool returns the boolean value; "on", "1" and "yes" count as true.
func (o Object) Bool(keys ...string) bool {
	v, ok := o.scalar(keys...)
	if !ok {
		return false
	}
	b, _ := toBool(v)
	return b
}

// Vector3 returns the position or DefaultSpawn.
func (o Object) Vector3(keys ...string) Vector3 {
	r, _ := o.raw(keys...)
	if v, ok := ParseVector3(r); ok {
		return v
	}
	return DefaultSpawn
}

// StringList returns the list, empty when absent.
func (o Object) StringList(keys ...string) StringList {
	r, _ := o.raw(keys...)
	return ParseStringList(r)
}

// LocationData returns the location metadata, zero when absent.
func (o Object) LocationData(keys ...string) LocationData {
	r, _ := o.raw(keys...)
	return ParseLocationData(r)
}

// Object returns a nested object, empty when absent or malformed.
func (o Object) Object(keys ...string) Object {
	r, _ := o.raw(keys...)
	return Decode(r, Object{})
}

// LocationData is the optional metadata carried by location assets.
type LocationData struct {
	Area         string     `json:"area"`
	Type         string     `json:"type"`
	Owner        string     `json:"owner"`
	Interactable bool       `json:"interactable"`
	Tags         StringList `json:"tags"`
}

// ParseLocationData accepts an object or a JSON string holding one.
func ParseLocationData(raw []byte) LocationData {
	o := Decode(raw, Object{})
	return LocationData{
		Area:         o.String("area"),
		Type:         o.String("type"),
		Owner:        o.String("owner"),
		Interactable: o.Bool("interactable"),
		Tags:         o.StringList("tags"),
	}
}

// IsZero reports whether no field is set.
func (d LocationData) IsZero() bool {
	return d.Area == "" && d.Type == "" && d.Owner == "" && !d.Interactable && len(d.Tags) == 0
}

func (d *LocationData) UnmarshalJSON(b []byte) error {
	*d = ParseLocationData(b)
	return nil
}

func (LocationData) GormDataType() string { return "text" }

func (d LocationData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *LocationData) Scan(src interface{}) error {
	*d = ParseLocationData(scanBytes(src))
	return nil
}
