package mapping

import (
	"strings"

	"numgate/internal/pathexpr"
	"numgate/pkg/records"
)

// fieldAliases is the built-in alias table consulted when a declared
// source path resolves to nothing: each alias is tried as a direct
// property on the item, then on the context's bound raw value. Only
// identity-ish fields participate; anything else stays absent.
var fieldAliases = map[string][]string{
	"id":      {"id", "code", "countryId", "serviceId"},
	"code":    {"code", "id"},
	"name":    {"name", "countryName", "serviceName"},
	"country": {"country", "countryName", "countryId", "countryISO"},
	"service": {"service", "serviceName", "serviceId"},
}

// mapItem applies the definition's field map to one source item and
// returns the assembled canonical record. Fields whose every fallback is
// exhausted are omitted, never defaulted.
func mapItem(def *Definition, item any, ctx pathexpr.Context) records.Record {
	fields := effectiveFields(def, item, ctx)

	rec := make(records.Record, len(fields))
	for target, source := range fields {
		v := pathexpr.Eval(source, item, ctx)
		if v == nil {
			v = aliasLookup(target, item, ctx)
		}
		v = unwrapFieldObject(target, v)
		if v == nil {
			continue
		}
		rec[target] = v
	}

	for field, rule := range def.Transforms {
		if cur, ok := rec[field]; ok {
			rec[field] = applyTransform(rule, cur)
		}
	}
	return rec
}

// effectiveFields merges conditional overrides over the base field map.
// Conditions are evaluated against the item in declaration order; each
// truthy condition's fields are layered on top, later ones winning.
func effectiveFields(def *Definition, item any, ctx pathexpr.Context) map[string]string {
	if len(def.Conditional) == 0 {
		return def.Fields
	}

	merged := make(map[string]string, len(def.Fields))
	for k, v := range def.Fields {
		merged[k] = v
	}
	for _, cond := range def.Conditional {
		if !truthy(pathexpr.Eval(cond.When, item, ctx)) {
			continue
		}
		for k, v := range cond.Fields {
			merged[k] = v
		}
	}
	return merged
}

// aliasLookup probes the built-in aliases for target as direct
// properties, first on the item and then on the bound raw value.
func aliasLookup(target string, item any, ctx pathexpr.Context) any {
	aliases, ok := fieldAliases[target]
	if !ok {
		return nil
	}
	for _, alias := range aliases {
		if v, ok := pathexpr.ObjectGet(item, alias); ok && v != nil {
			return v
		}
	}
	if ctx.Raw != nil {
		for _, alias := range aliases {
			if v, ok := pathexpr.ObjectGet(ctx.Raw, alias); ok && v != nil {
				return v
			}
		}
	}
	return nil
}

// unwrapFieldObject substitutes {field: value} wrappers: when the
// resolved value is a plain object carrying a case-insensitive key
// matching the target field, the sub-value replaces the wrapper. Arrays
// pass through untouched.
func unwrapFieldObject(target string, v any) any {
	keys, ok := pathexpr.ObjectKeys(v)
	if !ok {
		return v
	}
	for _, k := range keys {
		if strings.EqualFold(k, target) {
			sub, _ := pathexpr.ObjectGet(v, k)
			return sub
		}
	}
	return v
}

// truthy implements condition-path truthiness: nil, false, "", and 0 are
// false; everything else (including empty containers) is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
