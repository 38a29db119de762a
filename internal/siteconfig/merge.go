package siteconfig

import (
	"fmt"
)

// deepMerge returns target overlaid with source. Objects merge key by key;
// arrays and scalars replace. A null or non-object source value never
// replaces an object or array default, so those keys stay present. Neither
// input is modified.
func deepMerge(target, source map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(target)+len(source))
	for k, v := range target {
		out[k] = v
	}

	for k, sv := range source {
		tv, exists := out[k]
		switch s := sv.(type) {
		case map[string]interface{}:
			if tm, ok := tv.(map[string]interface{}); ok {
				out[k] = deepMerge(tm, s)
			} else if !isArray(tv) {
				out[k] = deepMerge(map[string]interface{}{}, s)
			}
		case []interface{}:
			if exists && isObject(tv) {
				continue
			}
			out[k] = s
		case nil:
			if exists && isContainer(tv) {
				continue
			}
			out[k] = nil
		default:
			if exists && isContainer(tv) {
				continue
			}
			out[k] = sv
		}
	}
	return out
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func isArray(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

func isContainer(v interface{}) bool {
	return isObject(v) || isArray(v)
}

// normalizeLocations fills id, name, lat, lon and color on every record and
// re-keys duplicate ids. It returns fresh maps and human-readable warnings.
func normalizeLocations(raw interface{}, primaryColor string) ([]interface{}, []string) {
	list, _ := raw.([]interface{})
	out := make([]interface{}, 0, len(list))
	var warnings []string
	seen := make(map[string]bool, len(list))

	for i, item := range list {
		src, ok := item.(map[string]interface{})
		if !ok {
			warnings = append(warnings, fmt.Sprintf("locations[%d] is not an object, using defaults", i))
			src = nil
		}

		loc := make(map[string]interface{}, len(src)+5)
		for k, v := range src {
			loc[k] = v
		}

		id := toString(loc["id"])
		if id == "" {
			id = fmt.Sprintf("location-%d", i)
		}
		if seen[id] {
			dup := id
			for n := i; seen[id]; n++ {
				id = fmt.Sprintf("%s-%d", dup, n)
			}
			warnings = append(warnings, fmt.Sprintf("duplicate location id %q at index %d renamed to %q", dup, i, id))
		}
		seen[id] = true
		loc["id"] = id

		if toString(loc["name"]) == "" {
			loc["name"] = fmt.Sprintf("Location %d", i+1)
		}

		lat, _ := toFloat(loc["lat"])
		lon, _ := toFloat(loc["lon"])
		loc["lat"] = lat
		loc["lon"] = lon

		if toString(loc["color"]) == "" {
			loc["color"] = primaryColor
		}

		out = append(out, loc)
	}
	return out, warnings
}
