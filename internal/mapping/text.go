package mapping

import (
	"regexp"
	"strconv"
	"strings"

	"numgate/pkg/records"
)

// extractTextRegex extracts records from a plain-text body with a
// multiline regular expression, one record per match.
//
// Group resolution, in order of precedence:
//   - named groups with no explicit field map: groups copied verbatim;
//   - explicit field map: each source is a fallback chain of group
//     references, resolved by group name first, then by number;
//   - explicit field map against a pattern with no named groups at all:
//     the legacy numbered-group mode, same numeric resolution.
func extractTextRegex(def *Definition, text string) []records.Record {
	re, err := compileMapping(def.Regex)
	if err != nil {
		// Validate catches this at load time; a bad pattern reaching
		// here extracts nothing rather than panicking.
		return nil
	}

	matches := re.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}

	names := re.SubexpNames()
	nameIndex := make(map[string]int, len(names))
	hasNamed := false
	for i, n := range names {
		if n != "" {
			nameIndex[n] = i
			hasNamed = true
		}
	}

	out := make([]records.Record, 0, len(matches))
	for _, m := range matches {
		var rec records.Record

		if len(def.Fields) == 0 && hasNamed {
			rec = make(records.Record, len(nameIndex))
			for name, idx := range nameIndex {
				if idx < len(m) && m[idx] != "" {
					rec[name] = m[idx]
				}
			}
		} else {
			rec = make(records.Record, len(def.Fields))
			for target, source := range def.Fields {
				if v := resolveGroup(source, m, nameIndex); v != "" {
					rec[target] = v
				}
			}
		}

		for field, rule := range def.Transforms {
			if cur, ok := rec[field]; ok {
				rec[field] = applyTransform(rule, cur)
			}
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// compileMapping compiles a mapping regex in multiline mode, accepting
// both Go's (?P<name>) and the more common (?<name>) named-group syntax
// that externally authored configs use.
func compileMapping(pattern string) (*regexp.Regexp, error) {
	pattern = strings.ReplaceAll(pattern, "(?<", "(?P<")
	return regexp.Compile("(?m)" + pattern)
}

// resolveGroup resolves one pipe-delimited chain of group references
// against a match: by name first, then by number.
func resolveGroup(source string, m []string, nameIndex map[string]int) string {
	for _, ref := range strings.Split(source, "|") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if idx, ok := nameIndex[ref]; ok && idx < len(m) && m[idx] != "" {
			return m[idx]
		}
		if idx, err := strconv.Atoi(ref); err == nil && idx >= 0 && idx < len(m) && m[idx] != "" {
			return m[idx]
		}
	}
	return ""
}

// extractTextLines splits the body into lines, then each line on the
// configured separator (default ":"), and maps target fields to split
// indices. Lines producing an empty record are dropped.
func extractTextLines(def *Definition, text string) []records.Record {
	sep := def.Separator
	if sep == "" {
		sep = ":"
	}

	var out []records.Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, sep)

		rec := make(records.Record, len(def.Fields))
		for target, source := range def.Fields {
			if v := resolvePart(source, parts); v != "" {
				rec[target] = v
			}
		}
		for field, rule := range def.Transforms {
			if cur, ok := rec[field]; ok {
				rec[field] = applyTransform(rule, cur)
			}
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// resolvePart resolves a pipe-delimited chain of split indices against
// the parts of one line.
func resolvePart(source string, parts []string) string {
	for _, ref := range strings.Split(source, "|") {
		ref = strings.TrimSpace(ref)
		idx, err := strconv.Atoi(ref)
		if err != nil || idx < 0 || idx >= len(parts) {
			continue
		}
		if v := strings.TrimSpace(parts[idx]); v != "" {
			return v
		}
	}
	return ""
}

// genericText is the no-mapping fallback for text bodies: the trimmed
// body becomes a single value record, leaving interpretation to the
// operation wrapper.
func genericText(text string) []records.Record {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return []records.Record{{"value": trimmed}}
}
