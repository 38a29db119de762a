package siteconfig

import (
	"math"
	"strconv"
	"strings"
)

// Location is one entry of config.locations. Apart from id, name, lat, lon
// and color the keys are industry specific, so the record stays a map and
// each formatter decodes the fields it understands.
type Location map[string]interface{}

func (l Location) ID() string       { return l.String("id") }
func (l Location) Name() string     { return l.String("name") }
func (l Location) Color() string    { return l.String("color") }
func (l Location) Category() string { return l.String("category") }

func (l Location) Lat() float64 {
	v, _ := l.Float("lat")
	return v
}

func (l Location) Lon() float64 {
	v, _ := l.Float("lon")
	return v
}

// String returns the value at key rendered as a string. Missing and null
// values, maps and slices all yield "".
func (l Location) String(key string) string {
	return toString(l[key])
}

// Float returns the numeric value at key. Numeric strings are accepted.
func (l Location) Float(key string) (float64, bool) {
	return toFloat(l[key])
}

// Map returns the nested object at key, or nil.
func (l Location) Map(key string) map[string]interface{} {
	m, _ := l[key].(map[string]interface{})
	return m
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
