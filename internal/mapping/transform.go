package mapping

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"numgate/internal/pathexpr"
)

// Case conversion goes through x/text so vendor strings outside ASCII
// (Turkish dotless i, Cyrillic service names) fold correctly.
var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

// applyTransform applies one transform rule to an assembled field value.
//
// Rules: "number", "string", "boolean", "uppercase", "lowercase",
// "title", or a literal template containing "{value}". Unknown rules and
// non-applicable values (nil, unparseable numbers) leave the value
// untouched; a transform never fabricates data.
func applyTransform(rule string, v any) any {
	if v == nil {
		return nil
	}

	switch rule {
	case "number":
		switch t := v.(type) {
		case float64, int, int64:
			return v
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return v
			}
			return f
		case bool:
			if t {
				return float64(1)
			}
			return float64(0)
		default:
			return v
		}

	case "string":
		return pathexpr.Stringify(v)

	case "boolean":
		switch t := v.(type) {
		case bool:
			return t
		case float64:
			return t != 0
		case int:
			return t != 0
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			return s == "true" || s == "1" || s == "yes" || s == "on"
		default:
			return v
		}

	case "uppercase":
		if s, ok := v.(string); ok {
			return upperCaser.String(s)
		}
		return v

	case "lowercase":
		if s, ok := v.(string); ok {
			return lowerCaser.String(s)
		}
		return v

	case "title":
		if s, ok := v.(string); ok {
			return titleCaser.String(s)
		}
		return v
	}

	if strings.Contains(rule, "{value}") {
		return strings.ReplaceAll(rule, "{value}", pathexpr.Stringify(v))
	}
	return v
}
