package mapping

import (
	"numgate/internal/pathexpr"
	"numgate/internal/response"
	"numgate/pkg/records"
)

// Extract runs the full resolution pipeline for one classified response:
// root narrowing, envelope auto-unwrap, strategy auto-correction, and
// the selected extraction strategy. A nil definition degrades to the
// best-effort generic unwrap.
//
// Extraction never fails: an unrecognized shape yields an empty list and
// the caller decides whether that is an error (singular operations do).
func Extract(def *Definition, payload response.Payload) []records.Record {
	if def == nil {
		return genericExtract(payload)
	}

	if payload.Kind == response.KindText {
		return extractText(def, payload.Text)
	}

	root := applyRootPath(def, payload.JSON)
	root, _ = autoUnwrap(root)

	switch correctedType(def.Type, root) {
	case TypeObject:
		rec := mapItem(def, root, rootContext(root))
		if len(rec) == 0 {
			return nil
		}
		return []records.Record{rec}

	case TypeArray:
		return extractArray(def, root)

	case TypeDictionary:
		return extractDictionary(def, root)

	default:
		// A text-typed mapping met a JSON payload: the vendor moved to
		// JSON without notice. Generic unwrap beats a hard failure.
		return genericExtract(response.Payload{Kind: response.KindJSON, JSON: root})
	}
}

// extractText dispatches the text-family strategies. A structural type
// meeting a text payload degrades to a single value record so singular
// operations can still surface what arrived.
func extractText(def *Definition, text string) []records.Record {
	switch def.Type {
	case TypeTextRegex:
		return extractTextRegex(def, text)
	case TypeTextLines:
		return extractTextLines(def, text)
	case TypeHTML:
		return extractHTML(def, text)
	default:
		return genericText(text)
	}
}

// correctedType applies shape-based auto-correction: an array root
// always extracts with the array strategy and an object-of-objects root
// with the dictionary strategy, overriding the declared type. Vendors
// change shape without notice; silent correction is preferred over hard
// failure.
func correctedType(declared Type, root any) Type {
	if _, ok := root.([]any); ok {
		return TypeArray
	}
	if isObjectOfObjects(root) {
		return TypeDictionary
	}
	return declared
}

// isObjectOfObjects reports whether root is a non-empty object whose
// every non-null value is itself an object.
func isObjectOfObjects(root any) bool {
	keys, ok := pathexpr.ObjectKeys(root)
	if !ok || len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		v, _ := pathexpr.ObjectGet(root, k)
		if v == nil {
			continue
		}
		if !pathexpr.IsObject(v) {
			return false
		}
	}
	return true
}

// extractArray maps each element, binding its index into context.
// Non-object scalar elements are mapped too: their fields come from
// $value / $index accessors.
func extractArray(def *Definition, root any) []records.Record {
	arr, ok := root.([]any)
	if !ok {
		// Auto-correction should have prevented this; map as object.
		rec := mapItem(def, root, rootContext(root))
		if len(rec) == 0 {
			return nil
		}
		return []records.Record{rec}
	}

	out := make([]records.Record, 0, len(arr))
	for i, elem := range arr {
		if elem == nil {
			continue
		}
		ctx := pathexpr.NewContext().WithIndex(i, elem)
		rec := mapItem(def, elem, ctx)
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// rootContext binds the item itself as the raw value so alias fallbacks
// and $value work for the single-object strategy.
func rootContext(item any) pathexpr.Context {
	ctx := pathexpr.NewContext()
	ctx.Raw = item
	return ctx
}
