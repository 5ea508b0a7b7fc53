package pathexpr

import (
	"testing"

	"numgate/internal/jsonx"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	v, err := jsonx.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}

func TestEval_DotTraversal(t *testing.T) {
	item := decode(t, `{"a":{"b":{"c":5}}}`)

	got := Eval("a.b.c", item, NewContext())
	if got != float64(5) {
		t.Fatalf("expected 5, got %v (%T)", got, got)
	}
}

func TestEval_FallbackChain(t *testing.T) {
	item := decode(t, `{"a":{"x":9}}`)

	got := Eval("a.b.c|a.x", item, NewContext())
	if got != float64(9) {
		t.Fatalf("expected 9, got %v (%T)", got, got)
	}
}

func TestEval_FallbackExhaustionYieldsNil(t *testing.T) {
	item := decode(t, `{"a":1}`)

	if got := Eval("x|y.z", item, NewContext()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestEval_FirstKeyFirstValuePreserveOrder(t *testing.T) {
	item := decode(t, `{"z":1,"y":2}`)

	if got := Eval("$firstKey", item, NewContext()); got != "z" {
		t.Fatalf("$firstKey: expected z, got %v", got)
	}
	if got := Eval("$firstValue", item, NewContext()); got != float64(1) {
		t.Fatalf("$firstValue: expected 1, got %v", got)
	}
}

func TestEval_ContextAccessors(t *testing.T) {
	ctx := Context{
		Key:            "service",
		ParentKey:      "country",
		GrandParentKey: "region",
		OperatorKey:    "42",
		Index:          3,
		Raw:            "raw-value",
	}

	cases := []struct {
		path string
		want any
	}{
		{"$key", "service"},
		{"$parentKey", "country"},
		{"$grandParentKey", "region"},
		{"$operatorKey", "42"},
		{"$index", 3},
		{"$value", "raw-value"},
	}
	for _, tc := range cases {
		if got := Eval(tc.path, nil, ctx); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestEval_UnboundContextAccessorsYieldNil(t *testing.T) {
	ctx := NewContext()
	for _, path := range []string{"$key", "$parentKey", "$grandParentKey", "$operatorKey", "$index"} {
		if got := Eval(path, nil, ctx); got != nil {
			t.Fatalf("%s: expected nil for unbound context, got %v", path, got)
		}
	}
}

func TestEval_ValueThenTraverse(t *testing.T) {
	ctx := NewContext()
	ctx.Raw = decode(t, `{"cost":7}`)

	if got := Eval("$value.cost", nil, ctx); got != float64(7) {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestEval_DataAccessors(t *testing.T) {
	item := decode(t, `{"list":["a","b","c"],"obj":{"x":1,"y":2}}`)

	if got := Eval("list.$length", item, NewContext()); got != 3 {
		t.Fatalf("$length: expected 3, got %v", got)
	}
	if got := Eval("list.$join:,", item, NewContext()); got != "a,b,c" {
		t.Fatalf("$join: expected a,b,c, got %v", got)
	}
	keys, ok := Eval("obj.$keys", item, NewContext()).([]any)
	if !ok || len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Fatalf("$keys: unexpected result %v", keys)
	}
	vals, ok := Eval("obj.$values", item, NewContext()).([]any)
	if !ok || len(vals) != 2 || vals[0] != float64(1) {
		t.Fatalf("$values: unexpected result %v", vals)
	}
}

func TestEval_ArrayIndexSegment(t *testing.T) {
	item := decode(t, `{"items":[{"id":10},{"id":20}]}`)

	if got := Eval("items.1.id", item, NewContext()); got != float64(20) {
		t.Fatalf("expected 20, got %v", got)
	}
	if got := Eval("items.5.id", item, NewContext()); got != nil {
		t.Fatalf("out of range index must yield nil, got %v", got)
	}
}

func TestEval_WildcardFlattens(t *testing.T) {
	item := decode(t, `{"ru":{"price":1},"us":{"price":2}}`)

	got, ok := Eval("*.price", item, NewContext()).([]any)
	if !ok {
		t.Fatalf("expected []any result")
	}
	if len(got) != 2 || got[0] != float64(1) || got[1] != float64(2) {
		t.Fatalf("unexpected wildcard result: %v", got)
	}
}

func TestEval_AccessorInFallbackAlternative(t *testing.T) {
	item := decode(t, `{"nothing":null}`)
	ctx := NewContext()
	ctx.Key = "wa"

	if got := Eval("name|$key", item, ctx); got != "wa" {
		t.Fatalf("expected wa, got %v", got)
	}
}

func TestEval_DollarAlone(t *testing.T) {
	item := decode(t, `{"a":1}`)
	got := Eval("$", item, NewContext())
	if got != item {
		t.Fatalf("expected item itself, got %v", got)
	}
}
