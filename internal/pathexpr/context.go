// Package pathexpr evaluates dot-separated path expressions over decoded
// vendor payloads (jsonx objects, arrays, scalars).
//
// Two accessor families exist. Context accessors ($key, $parentKey, ...)
// read structural metadata captured while a strategy walks the payload;
// they never touch the data itself. Data accessors ($firstKey, $values,
// $join:..., ...) transform the value reached so far and may appear
// mid-path. A path may also be a pipe-delimited fallback chain: the
// first alternative producing a non-nil value wins.
package pathexpr

// Context is the ephemeral structural metadata bound while extracting one
// item. It is a value type: recursion derives new contexts rather than
// mutating shared state, which keeps concurrent extraction safe.
type Context struct {
	// Key is the dictionary key (or see strategies: text line label)
	// the current item was found under.
	Key string
	// ParentKey and GrandParentKey reconstruct lineage through nested
	// dictionary levels (country -> service -> operator).
	ParentKey      string
	GrandParentKey string
	// OperatorKey is bound during operator extraction; empty otherwise.
	OperatorKey string
	// Index is the element index for array extraction, -1 when unbound.
	Index int
	// Raw is the raw vendor-side value the current item was built from,
	// used by $value and as the alias-fallback probe target.
	Raw any
}

// NewContext returns an empty context with Index unbound.
func NewContext() Context {
	return Context{Index: -1}
}

// Child derives the context for descending one dictionary level under
// key, shifting lineage: key becomes Key, the previous Key becomes
// ParentKey, and the previous ParentKey becomes GrandParentKey.
func (c Context) Child(key string, raw any) Context {
	return Context{
		Key:            key,
		ParentKey:      c.Key,
		GrandParentKey: c.ParentKey,
		OperatorKey:    c.OperatorKey,
		Index:          -1,
		Raw:            raw,
	}
}

// WithOperator returns a copy with OperatorKey bound.
func (c Context) WithOperator(operatorKey string) Context {
	c.OperatorKey = operatorKey
	return c
}

// WithIndex returns a copy with the array index and raw element bound.
func (c Context) WithIndex(i int, raw any) Context {
	c.Index = i
	c.Raw = raw
	return c
}
