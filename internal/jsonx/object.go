// Package jsonx decodes JSON while preserving object key order.
//
// Vendor responses lean on object ordering in ways encoding/json's
// map[string]any erases: "first key" accessors, dictionary extraction
// order, and byte-for-byte reproducible canonical record lists all
// require that {"z":1,"y":2} iterate z before y. Objects therefore
// decode to *Object, which remembers insertion order; arrays decode to
// []any and scalars to string/float64/bool/nil as usual.
package jsonx

// Object is a JSON object with insertion-ordered keys.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores key=value. A key set twice keeps its original position,
// matching how duplicate keys behave in encoding/json (last value wins).
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Value returns the value for key, or nil when absent.
func (o *Object) Value(key string) any {
	return o.values[key]
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (o *Object) Keys() []string {
	return o.keys
}

// Values returns the values in key order.
func (o *Object) Values() []any {
	out := make([]any, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.values[k]
	}
	return out
}

// Map returns a plain map copy, losing order. Useful at the edge where
// results are handed to encoding/json for output.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.keys))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}
