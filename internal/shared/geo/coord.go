package geo

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coord is a latitude or longitude as delivered by the upstream API, which
// sends coordinates sometimes as JSON numbers and sometimes as strings.
// A Coord that could not be parsed to a finite float reports ok=false from
// Value; it never silently becomes zero.
type Coord struct {
	value float64
	known bool
}

func NewCoord(v float64) Coord {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Coord{}
	}
	return Coord{value: v, known: true}
}

func (c Coord) Value() (float64, bool) {
	return c.value, c.known
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	*c = Coord{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*c = Coord{value: v, known: true}
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if !c.known {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// ParseCoord coerces a dynamically typed coordinate (string, float, int or
// nil) to a finite float. Mirrors the JSON behavior of Coord for values that
// arrive through non-JSON paths such as query parameters.
func ParseCoord(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// CoordFrom wraps ParseCoord into a Coord.
func CoordFrom(v any) Coord {
	f, ok := ParseCoord(v)
	if !ok {
		return Coord{}
	}
	return Coord{value: f, known: true}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
