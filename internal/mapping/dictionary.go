package mapping

import (
	"numgate/internal/pathexpr"
	"numgate/pkg/records"
)

// extractDictionary walks an object root, emitting one record per data
// leaf. Nested containers recurse with lineage threaded through the
// context (key -> parentKey -> grandParentKey), so a record always knows
// which country/service/operator branch it came from regardless of how
// deep the vendor nests its pricing tree.
func extractDictionary(def *Definition, root any) []records.Record {
	return walkDictionary(def, root, pathexpr.NewContext())
}

func walkDictionary(def *Definition, node any, ctx pathexpr.Context) []records.Record {
	keys, ok := pathexpr.ObjectKeys(node)
	if !ok {
		return nil
	}

	var out []records.Record
	for _, key := range keys {
		val, _ := pathexpr.ObjectGet(node, key)
		if val == nil {
			continue
		}

		if recs := extractOperators(def, key, val, ctx); recs != nil {
			out = append(out, recs...)
			continue
		}

		switch {
		case isDataLeaf(val):
			if rec := mapLeaf(def, key, val, ctx); len(rec) > 0 {
				out = append(out, rec)
			}

		case pathexpr.IsObject(val):
			out = append(out, walkDictionary(def, val, ctx.Child(key, val))...)

		default:
			if arr, ok := val.([]any); ok {
				for i, elem := range arr {
					if elem == nil {
						continue
					}
					leafCtx := ctx.Child(key, elem).WithIndex(i, elem)
					if rec := mapItem(def, elem, leafCtx); len(rec) > 0 {
						out = append(out, rec)
					}
				}
			}
		}
	}
	return out
}

// extractOperators handles the providers shortcut of multi-level pricing
// dictionaries. When operator extraction is enabled and val carries the
// configured providers key, each child of that key is one operator:
// validated against the required field, bound with operatorKey, and
// force-labeled with service/operator even when the field map omits
// them. Returns nil when the shortcut does not apply at this level.
func extractOperators(def *Definition, key string, val any, ctx pathexpr.Context) []records.Record {
	n := def.Nesting
	if n == nil || !n.ExtractOperators || n.ProvidersKey == "" {
		return nil
	}
	providers, ok := pathexpr.ObjectGet(val, n.ProvidersKey)
	if !ok {
		return nil
	}
	opKeys, ok := pathexpr.ObjectKeys(providers)
	if !ok {
		return nil
	}

	required := n.RequiredField
	if required == "" {
		required = providerIDField
	}

	out := make([]records.Record, 0, len(opKeys))
	for _, opKey := range opKeys {
		opVal, _ := pathexpr.ObjectGet(providers, opKey)
		if rv, ok := pathexpr.ObjectGet(opVal, required); !ok || rv == nil {
			// Not a conforming operator entry; vendors mix metadata
			// into the same level.
			continue
		}

		leafCtx := ctx.Child(key, opVal).WithOperator(opKey)
		rec := mapItem(def, opVal, leafCtx)
		rec["service"] = key
		rec["operator"] = opKey
		out = append(out, rec)
	}
	if len(out) == 0 {
		return []records.Record{}
	}
	return out
}

// mapLeaf maps one data leaf found under key. When operator extraction
// is configured without a providers shortcut at this level, the leaf's
// own key doubles as the operator identifier, unless a required field
// was configured (strict mode): then a missing real identifier must not
// be papered over with a meaningless key.
func mapLeaf(def *Definition, key string, val any, ctx pathexpr.Context) records.Record {
	leafCtx := ctx.Child(key, val)
	rec := mapItem(def, val, leafCtx)

	n := def.Nesting
	if n != nil && n.ExtractOperators && n.RequiredField == "" {
		if _, ok := rec["operator"]; !ok && len(rec) > 0 {
			rec["operator"] = key
		}
	}
	return rec
}

// isDataLeaf classifies a dictionary value: a primitive is a leaf, and
// an object is a leaf when it carries at least one recognized data field
// with a primitive value. Everything else is a container to recurse
// into.
func isDataLeaf(val any) bool {
	if pathexpr.IsPrimitive(val) {
		return true
	}
	if !pathexpr.IsObject(val) {
		return false
	}
	for _, name := range dataFieldNames {
		if v, ok := pathexpr.ObjectGet(val, name); ok && pathexpr.IsPrimitive(v) {
			return true
		}
	}
	return false
}
