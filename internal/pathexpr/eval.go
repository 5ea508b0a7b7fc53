package pathexpr

import (
	"strconv"
	"strings"
)

// Accessor names. Anything else starting with '$' falls through to a
// plain key lookup, so vendor payloads with literal dollar-keys still
// resolve.
const (
	accSelf           = "$"
	accKey            = "$key"
	accValue          = "$value"
	accIndex          = "$index"
	accParentKey      = "$parentKey"
	accGrandParentKey = "$grandParentKey"
	accOperatorKey    = "$operatorKey"
	accFirstKey       = "$firstKey"
	accFirstValue     = "$firstValue"
	accKeys           = "$keys"
	accValues         = "$values"
	accLength         = "$length"
	accJoinPrefix     = "$join:"
	wildcard          = "*"
)

// Eval resolves a path expression against item under ctx.
//
// The path may be a pipe-delimited fallback chain; each alternative is
// evaluated fully and the first one yielding a non-nil value wins.
// Exhaustion yields nil, which callers treat as "field absent".
//
// The pipe split happens before accessor parsing, so a "|" can never be
// part of a $join: separator. No vendor config joins on pipes; pick a
// different separator if one ever does.
func Eval(path string, item any, ctx Context) any {
	if path == "" {
		return nil
	}
	if !strings.Contains(path, "|") {
		return evalOne(path, item, ctx)
	}
	for _, alt := range strings.Split(path, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if v := evalOne(alt, item, ctx); v != nil {
			return v
		}
	}
	return nil
}

// evalOne resolves a single alternative (no pipes).
func evalOne(path string, item any, ctx Context) any {
	segments := strings.Split(path, ".")
	return evalSegments(segments, item, ctx)
}

func evalSegments(segments []string, current any, ctx Context) any {
	for i, seg := range segments {
		switch {
		case seg == accSelf:
			// Keep current; "$" alone yields the item itself.

		case seg == accKey:
			current = emptyAsNil(ctx.Key)
		case seg == accParentKey:
			current = emptyAsNil(ctx.ParentKey)
		case seg == accGrandParentKey:
			current = emptyAsNil(ctx.GrandParentKey)
		case seg == accOperatorKey:
			current = emptyAsNil(ctx.OperatorKey)
		case seg == accValue:
			current = ctx.Raw
		case seg == accIndex:
			if ctx.Index < 0 {
				return nil
			}
			current = ctx.Index

		case seg == accFirstKey:
			keys, ok := ObjectKeys(current)
			if !ok || len(keys) == 0 {
				return nil
			}
			current = keys[0]
		case seg == accFirstValue:
			keys, ok := ObjectKeys(current)
			if !ok || len(keys) == 0 {
				return nil
			}
			current, _ = ObjectGet(current, keys[0])
		case seg == accKeys:
			keys, ok := ObjectKeys(current)
			if !ok {
				return nil
			}
			out := make([]any, len(keys))
			for j, k := range keys {
				out[j] = k
			}
			current = out
		case seg == accValues:
			keys, ok := ObjectKeys(current)
			if !ok {
				return nil
			}
			out := make([]any, 0, len(keys))
			for _, k := range keys {
				v, _ := ObjectGet(current, k)
				out = append(out, v)
			}
			current = out
		case seg == accLength:
			current = lengthOf(current)
		case strings.HasPrefix(seg, accJoinPrefix):
			current = joinValue(current, seg[len(accJoinPrefix):])

		case seg == wildcard:
			// Expand every child and continue each branch in parallel;
			// results concatenate in container order.
			rest := segments[i+1:]
			var out []any
			for _, child := range childValues(current) {
				if len(rest) == 0 {
					out = append(out, child)
					continue
				}
				if v := evalSegments(rest, child, ctx); v != nil {
					if vs, ok := v.([]any); ok {
						out = append(out, vs...)
					} else {
						out = append(out, v)
					}
				}
			}
			if len(out) == 0 {
				return nil
			}
			return out

		default:
			current = step(current, seg)
		}

		if current == nil {
			return nil
		}
	}
	return current
}

// step performs one plain traversal step: object key lookup, or array
// index when the segment is numeric.
func step(current any, seg string) any {
	if v, ok := ObjectGet(current, seg); ok {
		return v
	}
	if arr, ok := current.([]any); ok {
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 && idx < len(arr) {
			return arr[idx]
		}
	}
	return nil
}

// childValues lists the immediate children of a container in order:
// object values for objects, elements for arrays, nothing for scalars.
func childValues(v any) []any {
	if keys, ok := ObjectKeys(v); ok {
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			val, _ := ObjectGet(v, k)
			out = append(out, val)
		}
		return out
	}
	if arr, ok := v.([]any); ok {
		return arr
	}
	return nil
}

func lengthOf(v any) any {
	if n, ok := ObjectLen(v); ok {
		return n
	}
	switch t := v.(type) {
	case []any:
		return len(t)
	case string:
		return len(t)
	default:
		return nil
	}
}

func joinValue(v any, sep string) any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	parts := make([]string, 0, len(arr))
	for _, e := range arr {
		if e == nil {
			continue
		}
		parts = append(parts, Stringify(e))
	}
	return strings.Join(parts, sep)
}

// Stringify renders a scalar for joining and template substitution.
// Floats drop a trailing ".0" so JSON-decoded integers read naturally.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
