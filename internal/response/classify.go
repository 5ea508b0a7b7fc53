// Package response classifies raw vendor response bodies as JSON or
// text. Vendors routinely mislabel content types in both directions, so
// classification trusts the header only as a first hint and falls back
// to sniffing the body.
package response

import (
	"strings"

	"numgate/internal/jsonx"
)

// Kind is the classified payload kind.
type Kind string

const (
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// Payload is a classified response body. Exactly one of JSON / Text is
// meaningful, selected by Kind.
type Payload struct {
	Kind Kind
	// JSON is the decoded document: *jsonx.Object, []any, or a scalar.
	JSON any
	// Text is the raw body when Kind is KindText.
	Text string
}

// Classify decides JSON vs text for a response body.
//
// A JSON content type gets a real parse; if that fails the body is kept
// as text rather than erroring (mislabeled plain-text responses with a
// JSON header exist in the wild). Any other content type is read as text
// but opportunistically sniffed: a body parsing to an object or array is
// promoted to JSON.
func Classify(contentType string, body []byte) Payload {
	if isJSONContentType(contentType) {
		if v, err := jsonx.Decode(body); err == nil {
			return Payload{Kind: KindJSON, JSON: v}
		}
		return Payload{Kind: KindText, Text: string(body)}
	}

	if v, ok := jsonx.Sniff(body); ok {
		return Payload{Kind: KindJSON, JSON: v}
	}
	return Payload{Kind: KindText, Text: string(body)}
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return strings.Contains(ct, "json")
}
