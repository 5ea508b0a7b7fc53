package mapping

import (
	"numgate/internal/jsonx"
	"numgate/internal/pathexpr"
	"numgate/internal/response"
	"numgate/pkg/records"
)

// wrapperKeys are the common envelope keys peeled by auto-unwrap, in
// probe order. The tail entries are operation-flavored keys some vendors
// use instead of a generic envelope.
var wrapperKeys = []string{
	"data", "result", "results", "items", "list", "response",
	"countries", "services", "numbers", "prices", "operators",
}

// applyRootPath narrows the decoded payload to the configured sub-tree.
// A `*` segment flattens one level into a list; for the dictionary type
// a list of objects is instead merged into one object, since dictionary
// extraction needs keyed children.
func applyRootPath(def *Definition, data any) any {
	if def.RootPath == "" {
		return data
	}

	v := pathexpr.Eval(def.RootPath, data, pathexpr.NewContext())
	if v == nil {
		// A stale root path must not hide the whole response.
		return data
	}

	if def.Type == TypeDictionary {
		if arr, ok := v.([]any); ok {
			return mergeObjects(arr)
		}
	}
	return v
}

// mergeObjects folds a list of objects into one ordered object; later
// entries win on key conflicts. Non-object elements are skipped.
func mergeObjects(arr []any) any {
	merged := jsonx.NewObject()
	for _, elem := range arr {
		keys, ok := pathexpr.ObjectKeys(elem)
		if !ok {
			continue
		}
		for _, k := range keys {
			v, _ := pathexpr.ObjectGet(elem, k)
			merged.Set(k, v)
		}
	}
	return merged
}

// autoUnwrap descends one level into the first matching common wrapper
// key when the root is still a plain object. Only container values
// qualify: a record that happens to carry a scalar field named "count"
// or "status" is not an envelope. The bool reports whether a descent
// happened; the values themselves may be slices, so callers must not
// compare them to detect progress.
func autoUnwrap(root any) (any, bool) {
	if !pathexpr.IsObject(root) {
		return root, false
	}
	for _, k := range wrapperKeys {
		v, ok := pathexpr.ObjectGet(root, k)
		if !ok || v == nil {
			continue
		}
		if pathexpr.IsObject(v) {
			return v, true
		}
		if _, isArr := v.([]any); isArr {
			return v, true
		}
	}
	return root, false
}

// genericExtract is the best-effort path used when no mapping exists for
// an operation: peel envelopes, then guess the shape. It copies only
// primitive fields; nothing is fabricated for shapes it cannot read.
func genericExtract(payload response.Payload) []records.Record {
	if payload.Kind == response.KindText {
		return genericText(payload.Text)
	}

	root := payload.JSON
	// Peel nested envelopes ({"data":{"result":{...}}}).
	for i := 0; i < 3; i++ {
		peeled, descended := autoUnwrap(root)
		if !descended {
			break
		}
		root = peeled
	}

	switch {
	case isArray(root):
		arr := root.([]any)
		out := make([]records.Record, 0, len(arr))
		for _, elem := range arr {
			if rec := primitiveFields(elem); len(rec) > 0 {
				out = append(out, rec)
			}
		}
		return out

	case isObjectOfObjects(root):
		keys, _ := pathexpr.ObjectKeys(root)
		out := make([]records.Record, 0, len(keys))
		for _, k := range keys {
			v, _ := pathexpr.ObjectGet(root, k)
			rec := primitiveFields(v)
			if len(rec) == 0 {
				continue
			}
			if _, ok := rec["id"]; !ok {
				rec["id"] = k
			}
			out = append(out, rec)
		}
		return out

	case pathexpr.IsObject(root):
		if rec := primitiveFields(root); len(rec) > 0 {
			return []records.Record{rec}
		}
		return nil

	case root == nil:
		return nil

	default:
		return []records.Record{{"value": root}}
	}
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// primitiveFields copies the primitive top-level fields of an object
// into a record. Scalars wrap as a value record.
func primitiveFields(v any) records.Record {
	keys, ok := pathexpr.ObjectKeys(v)
	if !ok {
		if pathexpr.IsPrimitive(v) {
			return records.Record{"value": v}
		}
		return nil
	}
	rec := make(records.Record, len(keys))
	for _, k := range keys {
		val, _ := pathexpr.ObjectGet(v, k)
		if pathexpr.IsPrimitive(val) {
			rec[k] = val
		}
	}
	return rec
}
