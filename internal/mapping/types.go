// Package mapping implements the declarative response-mapping engine:
// per-operation mapping definitions, the field mapper, and the closed
// set of extraction strategies that turn a classified vendor response
// into canonical records.
package mapping

import "fmt"

// Type selects the extraction strategy for one operation's response.
type Type string

const (
	// TypeObject maps the response root as a single record.
	TypeObject Type = "object"
	// TypeArray maps each element of a response array.
	TypeArray Type = "array"
	// TypeDictionary maps each key/value pair, recursing through nested
	// levels (country -> service -> operator) to the data leaves.
	TypeDictionary Type = "dictionary"
	// TypeTextRegex extracts fields from text via a regular expression.
	TypeTextRegex Type = "text_regex"
	// TypeTextLines splits text into lines and each line on a separator.
	TypeTextLines Type = "text_lines"
	// TypeHTML extracts fields from an HTML page via CSS selectors.
	TypeHTML Type = "html"
)

// knownTypes is the closed strategy set; validation rejects anything else.
var knownTypes = map[Type]bool{
	TypeObject:     true,
	TypeArray:      true,
	TypeDictionary: true,
	TypeTextRegex:  true,
	TypeTextLines:  true,
	TypeHTML:       true,
}

// Nesting configures multi-level dictionary extraction.
type Nesting struct {
	// ExtractOperators enables operator extraction: children of a
	// providers shortcut become one record per operator.
	ExtractOperators bool `json:"extract_operators,omitempty"`
	// ProvidersKey is the shortcut key whose children are operators.
	ProvidersKey string `json:"providers_key,omitempty"`
	// RequiredField must be present on an operator entry for it to be
	// kept. Empty means the default provider-identifier field, and also
	// disables strict mode for the non-shortcut recursion path.
	RequiredField string `json:"required_field,omitempty"`
}

// Conditional is one conditional field override: when the condition path
// evaluates truthy against the item, Fields are merged over the base
// field map. Overrides apply in declaration order, later ones winning.
type Conditional struct {
	When   string            `json:"when"`
	Fields map[string]string `json:"fields"`
}

// Definition is one operation's declarative mapping. Immutable once
// loaded; a single Definition is shared by concurrent extractions.
type Definition struct {
	Type Type `json:"type"`

	// RootPath narrows extraction to a response sub-tree before the
	// strategy runs. A `*` segment flattens one level (or, for
	// dictionary type, merges a list of objects into one object).
	RootPath string `json:"root_path,omitempty"`

	// Fields maps canonical target fields to source path expressions
	// (pipe-delimited fallback chains allowed). For text_regex the
	// sources are group names or numbers, for text_lines split indices,
	// for html CSS selectors (optionally "selector @attr").
	Fields map[string]string `json:"fields,omitempty"`

	// Regex drives text_regex extraction. Compiled with multiline mode.
	Regex string `json:"regex,omitempty"`

	// Separator splits each line for text_lines. Defaults to ":".
	Separator string `json:"separator,omitempty"`

	// RecordSelector switches html extraction to record mode: each
	// matching element becomes an independent extraction root.
	RecordSelector string `json:"record_selector,omitempty"`

	// Transforms post-process assembled fields: number, string,
	// boolean, uppercase, lowercase, title, or a template containing
	// {value}.
	Transforms map[string]string `json:"transforms,omitempty"`

	// Nesting configures dictionary operator extraction.
	Nesting *Nesting `json:"nesting,omitempty"`

	// Conditional lists payload-shape dependent field overrides.
	Conditional []Conditional `json:"conditional_fields,omitempty"`
}

// Validate fails fast on definitions that can never extract anything.
func (d *Definition) Validate() error {
	if !knownTypes[d.Type] {
		return fmt.Errorf("mapping: unknown type %q", d.Type)
	}
	if d.Type == TypeTextRegex {
		if d.Regex == "" {
			return fmt.Errorf("mapping: text_regex requires a regex")
		}
		if _, err := compileMapping(d.Regex); err != nil {
			return fmt.Errorf("mapping: invalid regex: %w", err)
		}
	}
	if d.Type == TypeTextLines && len(d.Fields) == 0 {
		return fmt.Errorf("mapping: text_lines requires a field map")
	}
	for _, c := range d.Conditional {
		if c.When == "" {
			return fmt.Errorf("mapping: conditional override with empty condition")
		}
	}
	return nil
}

// dataFieldNames are the recognized canonical field names used to tell a
// dictionary data leaf from a nested container: an object carrying at
// least one of these with a primitive value is a leaf.
var dataFieldNames = []string{
	"id", "code", "name", "cost", "price", "balance",
	"count", "status", "phone", "number", "rate", "quantity",
}

// providerIDField is the default operator validation field.
const providerIDField = "provider_id"
