package migration

import (
	"strings"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// asMap unwraps the map shapes decoders produce for nested records.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case models.Resource:
		return m, true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}

// field navigates a dotted path ("profile_setting.group") through nested maps.
func field(r models.Resource, path string) interface{} {
	var cur interface{} = r
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// stringValues returns the strings stored at path. A single string yields one
// value; lists yield their string members and the names of map members.
func stringValues(r models.Resource, path string) []string {
	switch v := field(r, path).(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, e := range v {
			switch ev := e.(type) {
			case string:
				out = append(out, ev)
			default:
				if m, ok := asMap(ev); ok {
					if n := stringField(m, "name"); n != "" {
						out = append(out, n)
					}
				}
			}
		}
		return out
	}
	return nil
}

// stringField safely extracts a string field, returning "" if nil.
func stringField(obj map[string]interface{}, name string) string {
	if v, ok := obj[name].(string); ok {
		return v
	}
	return ""
}

// hasField reports whether path resolves to a non-nil value.
func hasField(r models.Resource, path string) bool {
	return field(r, path) != nil
}
