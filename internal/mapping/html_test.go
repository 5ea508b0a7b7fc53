package mapping

import "testing"

const dashboardHTML = `
<html><body>
  <div id="acct"><span class="balance">12.50</span></div>
  <table>
    <tr class="number"><td class="id">101</td><td class="phone">79001110001</td><td><a class="buy" href="/buy/101">buy</a></td></tr>
    <tr class="number"><td class="id">102</td><td class="phone">79001110002</td><td><a class="buy" href="/buy/102">buy</a></td></tr>
  </table>
</body></html>`

func TestHTML_SingleObjectMode(t *testing.T) {
	def := &Definition{
		Type:       TypeHTML,
		Fields:     map[string]string{"balance": "#acct .balance"},
		Transforms: map[string]string{"balance": "number"},
	}
	recs := extractHTML(def, dashboardHTML)

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0]["balance"] != float64(12.5) {
		t.Fatalf("expected balance 12.5, got %v", recs[0]["balance"])
	}
}

func TestHTML_RecordModePreservesDOMOrder(t *testing.T) {
	def := &Definition{
		Type:           TypeHTML,
		RecordSelector: "tr.number",
		Fields: map[string]string{
			"id":    ".id",
			"phone": ".phone",
			"link":  "a.buy @href",
		},
	}
	recs := extractHTML(def, dashboardHTML)

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0]["id"] != "101" || recs[0]["phone"] != "79001110001" || recs[0]["link"] != "/buy/101" {
		t.Fatalf("unexpected first record: %v", recs[0])
	}
	if recs[1]["id"] != "102" {
		t.Fatalf("unexpected second record: %v", recs[1])
	}
}

func TestHTML_MissingSelectorOmitsField(t *testing.T) {
	def := &Definition{
		Type:   TypeHTML,
		Fields: map[string]string{"balance": ".nope", "id": "#acct .balance"},
	}
	recs := extractHTML(def, dashboardHTML)

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if _, ok := recs[0]["balance"]; ok {
		t.Fatalf("missing selector must omit the field")
	}
}

func TestHTML_SelectorFallbackChain(t *testing.T) {
	def := &Definition{
		Type:   TypeHTML,
		Fields: map[string]string{"balance": ".missing|#acct .balance"},
	}
	recs := extractHTML(def, dashboardHTML)

	if len(recs) != 1 || recs[0]["balance"] != "12.50" {
		t.Fatalf("expected fallback selector hit, got %v", recs)
	}
}
