package response

import "testing"

func TestClassify_JSONContentType(t *testing.T) {
	p := Classify("application/json; charset=utf-8", []byte(`{"ok":true}`))
	if p.Kind != KindJSON {
		t.Fatalf("expected json, got %s", p.Kind)
	}
}

func TestClassify_MislabeledTextIsSniffed(t *testing.T) {
	p := Classify("text/html", []byte(`[{"id":1}]`))
	if p.Kind != KindJSON {
		t.Fatalf("expected sniffed json, got %s", p.Kind)
	}
}

func TestClassify_JSONHeaderButTextBody(t *testing.T) {
	p := Classify("application/json", []byte(`ACCESS_BALANCE:42`))
	if p.Kind != KindText {
		t.Fatalf("expected text fallback, got %s", p.Kind)
	}
	if p.Text != "ACCESS_BALANCE:42" {
		t.Fatalf("unexpected text: %q", p.Text)
	}
}

func TestClassify_ScalarBodyStaysText(t *testing.T) {
	p := Classify("text/plain", []byte(`12345`))
	if p.Kind != KindText {
		t.Fatalf("scalar body must stay text, got %s", p.Kind)
	}
}
