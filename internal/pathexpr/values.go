package pathexpr

import "numgate/internal/jsonx"

// Object-shape helpers shared by the evaluator and the extraction
// strategies. Payloads are usually *jsonx.Object, but plain
// map[string]any is accepted too (html extraction and tests build those
// directly); plain maps have no stable order, so order-dependent
// accessors are only reliable on jsonx objects.

// IsObject reports whether v is an object shape.
func IsObject(v any) bool {
	switch v.(type) {
	case *jsonx.Object, map[string]any:
		return true
	default:
		return false
	}
}

// ObjectKeys returns the keys of an object shape, insertion-ordered for
// jsonx objects. ok is false when v is not an object.
func ObjectKeys(v any) (keys []string, ok bool) {
	switch t := v.(type) {
	case *jsonx.Object:
		return t.Keys(), true
	case map[string]any:
		out := make([]string, 0, len(t))
		for k := range t {
			out = append(out, k)
		}
		return out, true
	default:
		return nil, false
	}
}

// ObjectGet looks up key in an object shape.
func ObjectGet(v any, key string) (any, bool) {
	switch t := v.(type) {
	case *jsonx.Object:
		return t.Get(key)
	case map[string]any:
		val, ok := t[key]
		return val, ok
	default:
		return nil, false
	}
}

// ObjectLen returns the number of keys in an object shape.
func ObjectLen(v any) (int, bool) {
	switch t := v.(type) {
	case *jsonx.Object:
		return t.Len(), true
	case map[string]any:
		return len(t), true
	default:
		return 0, false
	}
}

// IsPrimitive reports whether v is a scalar leaf value (string, number,
// bool). nil is not primitive: it carries no data.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case string, float64, bool, int, int64:
		return true
	default:
		return false
	}
}
