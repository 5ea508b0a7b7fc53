package mapping

import "testing"

func TestTextRegex_NamedGroupsNoExplicitFields(t *testing.T) {
	def := &Definition{
		Type:  TypeTextRegex,
		Regex: `ACCESS_NUMBER:(?<id>\d+):(?<phone>\d+)`,
	}
	recs := extractTextRegex(def, "ACCESS_NUMBER:12345:9876543210")

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0]["id"] != "12345" || recs[0]["phone"] != "9876543210" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
}

func TestTextRegex_LegacyNumberedGroup(t *testing.T) {
	def := &Definition{
		Type:   TypeTextRegex,
		Regex:  `STATUS_(\d+)`,
		Fields: map[string]string{"status": "1"},
	}
	recs := extractTextRegex(def, "STATUS_8")

	if len(recs) != 1 || recs[0]["status"] != "8" {
		t.Fatalf("expected status=8, got %v", recs)
	}
}

func TestTextRegex_FieldsResolveByNameThenNumber(t *testing.T) {
	def := &Definition{
		Type:   TypeTextRegex,
		Regex:  `(?<code>[A-Z]+):(\d+)`,
		Fields: map[string]string{"status": "code", "count": "missing|2"},
	}
	recs := extractTextRegex(def, "READY:42")

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0]["status"] != "READY" || recs[0]["count"] != "42" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
}

func TestTextRegex_MultilineMatchesAll(t *testing.T) {
	def := &Definition{
		Type:  TypeTextRegex,
		Regex: `^(?<id>\d+);(?<phone>\d+)$`,
	}
	recs := extractTextRegex(def, "1;111\n2;222\n3;333")

	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[2]["id"] != "3" || recs[2]["phone"] != "333" {
		t.Fatalf("unexpected last record: %v", recs[2])
	}
}

func TestTextRegex_NoMatchYieldsNoRecords(t *testing.T) {
	def := &Definition{Type: TypeTextRegex, Regex: `NUMBER:(?<id>\d+)`}
	if recs := extractTextRegex(def, "NO_NUMBERS"); len(recs) != 0 {
		t.Fatalf("expected no records, got %v", recs)
	}
}

func TestTextLines_DefaultSeparator(t *testing.T) {
	def := &Definition{
		Type:   TypeTextLines,
		Fields: map[string]string{"country": "0", "count": "1"},
	}
	recs := extractTextLines(def, "ru:120\nus:55\n\n")

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0]["country"] != "ru" || recs[0]["count"] != "120" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
}

func TestTextLines_CustomSeparatorAndEmptyRecordsDropped(t *testing.T) {
	def := &Definition{
		Type:      TypeTextLines,
		Separator: ";",
		Fields:    map[string]string{"id": "0", "phone": "1"},
	}
	recs := extractTextLines(def, "10;79001112233\n;;\nx")

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(recs), recs)
	}
	if recs[0]["id"] != "10" || recs[0]["phone"] != "79001112233" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
	if recs[1]["id"] != "x" {
		t.Fatalf("unexpected record: %v", recs[1])
	}
}

func TestTextLines_IndexFallbackChain(t *testing.T) {
	def := &Definition{
		Type:   TypeTextLines,
		Fields: map[string]string{"status": "2|1"},
	}
	recs := extractTextLines(def, "ok:ready")

	if len(recs) != 1 || recs[0]["status"] != "ready" {
		t.Fatalf("expected fallback to index 1, got %v", recs)
	}
}
