// Package records defines the canonical record produced by vendor adapters.
//
// A Record is a flat map keyed by vendor-agnostic domain field names
// (id, phone, price, balance, status, country, service, operator, cost,
// count, ...). It is the only response shape downstream code may depend
// on; everything vendor-specific is erased before a Record is returned.
//
// Absent fields are absent keys. A field is never defaulted to a
// placeholder value: callers must check presence explicitly.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one canonical result row extracted from a vendor response.
type Record map[string]any

// Has reports whether the field is present, regardless of its value.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// String returns the field rendered as a trimmed string.
//
// Numeric values are formatted without a trailing ".0" so that vendor ids
// decoded as JSON numbers compare equal to their string forms.
// Returns "" when the field is absent or nil.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float returns the field as a float64.
//
// Strings are parsed; a second return of false means the field is absent
// or not numeric.
func (r Record) Float(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FirstPresent returns the value of the first listed field that is present
// with a non-empty string form, along with the field name that matched.
func (r Record) FirstPresent(fields ...string) (string, string, bool) {
	for _, f := range fields {
		if s := r.String(f); s != "" {
			return f, s, true
		}
	}
	return "", "", false
}

// Keys returns the record's field names in unspecified order.
func (r Record) Keys() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
