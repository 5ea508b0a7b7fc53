package records

import "testing"

func TestString(t *testing.T) {
	rec := Record{
		"id":     float64(4411),
		"cost":   12.5,
		"phone":  " +79001234567 ",
		"active": true,
		"note":   nil,
	}

	tests := []struct {
		field string
		want  string
	}{
		{"id", "4411"}, // JSON numbers render without trailing .0
		{"cost", "12.5"},
		{"phone", "+79001234567"},
		{"active", "true"},
		{"note", ""},
		{"missing", ""},
	}
	for _, tc := range tests {
		if got := rec.String(tc.field); got != tc.want {
			t.Fatalf("String(%q)=%q, want %q", tc.field, got, tc.want)
		}
	}
}

func TestFloat(t *testing.T) {
	rec := Record{
		"cost":    12.5,
		"count":   float64(3),
		"balance": " 99.90 ",
		"status":  "WAIT",
	}

	if v, ok := rec.Float("cost"); !ok || v != 12.5 {
		t.Fatalf("cost=(%v,%v)", v, ok)
	}
	if v, ok := rec.Float("count"); !ok || v != 3 {
		t.Fatalf("count=(%v,%v)", v, ok)
	}
	if v, ok := rec.Float("balance"); !ok || v != 99.9 {
		t.Fatalf("balance=(%v,%v)", v, ok)
	}
	if _, ok := rec.Float("status"); ok {
		t.Fatalf("non-numeric string must not parse")
	}
	if _, ok := rec.Float("missing"); ok {
		t.Fatalf("absent field must not parse")
	}
}

func TestFirstPresent(t *testing.T) {
	rec := Record{"tzid": float64(77), "phone": ""}

	field, value, ok := rec.FirstPresent("id", "tzid", "activation_id")
	if !ok || field != "tzid" || value != "77" {
		t.Fatalf("got (%q,%q,%v)", field, value, ok)
	}

	// An empty string form does not count as present.
	if _, _, ok := rec.FirstPresent("phone", "number"); ok {
		t.Fatalf("empty field treated as present")
	}
}
