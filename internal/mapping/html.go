package mapping

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"numgate/pkg/records"
)

// extractHTML extracts fields from an HTML body via CSS selectors. A few
// vendors expose balances or number lists only on HTML dashboards, and
// HTML error pages otherwise defeat the text strategies.
//
// Field sources are CSS selectors, optionally followed by " @attr" to
// read an attribute instead of the text content: "a.buy @href".
//
// With RecordSelector set, each matching element becomes an independent
// extraction root (one record per element, DOM order preserved);
// otherwise the document maps to a single record. Missing selectors
// simply produce no output for that field.
func extractHTML(def *Definition, html string) []records.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	if def.RecordSelector == "" {
		rec := mapHTMLSelection(def, doc.Selection)
		if len(rec) == 0 {
			return nil
		}
		return []records.Record{rec}
	}

	var out []records.Record
	doc.Find(def.RecordSelector).Each(func(_ int, sel *goquery.Selection) {
		if rec := mapHTMLSelection(def, sel); len(rec) > 0 {
			out = append(out, rec)
		}
	})
	return out
}

// mapHTMLSelection applies the field map relative to root and returns a
// record, running configured transforms on the way out.
func mapHTMLSelection(def *Definition, root *goquery.Selection) records.Record {
	rec := make(records.Record, len(def.Fields))

	for target, source := range def.Fields {
		if v := selectHTMLValue(root, source); v != "" {
			rec[target] = v
		}
	}
	for field, rule := range def.Transforms {
		if cur, ok := rec[field]; ok {
			rec[field] = applyTransform(rule, cur)
		}
	}
	return rec
}

// selectHTMLValue resolves one selector chain (pipe fallbacks allowed)
// against root. Returns "" when nothing matches.
func selectHTMLValue(root *goquery.Selection, source string) string {
	for _, alt := range strings.Split(source, "|") {
		selector, attr := splitSelectorAttr(alt)
		if selector == "" {
			continue
		}
		sel := root.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		var v string
		if attr != "" {
			v, _ = sel.Attr(attr)
		} else {
			v = sel.Text()
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// splitSelectorAttr splits "selector @attr" into its parts.
func splitSelectorAttr(source string) (selector, attr string) {
	if i := strings.LastIndex(source, " @"); i >= 0 {
		return strings.TrimSpace(source[:i]), strings.TrimSpace(source[i+2:])
	}
	return strings.TrimSpace(source), ""
}
