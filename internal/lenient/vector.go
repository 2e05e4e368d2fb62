package lenient

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Vector3 is a world position.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DefaultSpawn is used whenever a spawn position is missing or unreadable.
var DefaultSpawn = Vector3{X: 0, Y: 5, Z: 0}

// ParseVector3 accepts {"x":..,"y":..,"z":..} (keys in any case), an
// [x, y, z] array, or a JSON string holding either. Missing components are
// zero. ok is false when nothing usable was found.
func ParseVector3(raw []byte) (Vector3, bool) {
	raw = unwrap(raw)
	if isNull(raw) {
		return Vector3{}, false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Vector3{}, false
	}
	switch t := v.(type) {
	case map[string]interface{}:
		var out Vector3
		found := false
		for k, val := range t {
			f, ok := toFloat(val)
			if !ok {
				continue
			}
			switch strings.ToLower(k) {
			case "x":
				out.X, found = f, true
			case "y":
				out.Y, found = f, true
			case "z":
				out.Z, found = f, true
			}
		}
		return out, found
	case []interface{}:
		if len(t) < 3 {
			return Vector3{}, false
		}
		var c [3]float64
		for i := 0; i < 3; i++ {
			f, ok := toFloat(t[i])
			if !ok {
				return Vector3{}, false
			}
			c[i] = f
		}
		return Vector3{X: c[0], Y: c[1], Z: c[2]}, true
	}
	return Vector3{}, false
}

// UnmarshalJSON never fails; unreadable input becomes DefaultSpawn.
func (v *Vector3) UnmarshalJSON(b []byte) error {
	if p, ok := ParseVector3(b); ok {
		*v = p
	} else {
		*v = DefaultSpawn
	}
	return nil
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// GormDataType stores the vector as JSON text.
func (Vector3) GormDataType() string { return "text" }

func (v Vector3) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *Vector3) Scan(src interface{}) error {
	return v.UnmarshalJSON(scanBytes(src))
}

func scanBytes(src interface{}) []byte {
	switch t := src.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	}
	return nil
}
