// Package fieldpath resolves dot-separated paths such as "source.name" inside
// decoded JSON/YAML payloads. A miss is never an error: the caller's default
// comes back instead.
package fieldpath

import (
	"strconv"
	"strings"
)

// Lookup walks record key by key along path. Maps are indexed by key and
// lists by a numeric segment ("media.0.url"). If a step is missing, lands on
// something that is not a map or list, or the final value is nil or an empty
// map, def is returned. Lookup never panics.
func Lookup(record any, path string, def any) (value any) {
	defer func() {
		if recover() != nil {
			value = def
		}
	}()

	if path == "" {
		return def
	}

	cur := record
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return def
			}
			cur = next
		case map[any]any:
			next, ok := node[key]
			if !ok {
				return def
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return def
			}
			cur = node[i]
		default:
			return def
		}
	}

	if isEmpty(cur) {
		return def
	}
	return cur
}

// String is Lookup for text fields. Scalars are formatted; nested values
// (maps, lists) cannot be rendered as a field and yield def. A present but
// empty string is returned as "".
func String(record any, path, def string) string {
	switch v := Lookup(record, path, nil).(type) {
	case nil:
		return def
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

// List resolves path to a list, or returns nil and false.
func List(record any, path string) ([]any, bool) {
	list, ok := Lookup(record, path, nil).([]any)
	return list, ok
}

func isEmpty(v any) bool {
	switch node := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(node) == 0
	case map[any]any:
		return len(node) == 0
	}
	return false
}
