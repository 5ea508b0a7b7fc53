package adapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"numgate/internal/config"
	"numgate/internal/endpoint"
	"numgate/internal/httpds"
	"numgate/internal/mapping"
)

// vendorStub serves canned responses keyed by the "action" query
// parameter and records every request it sees.
type vendorStub struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	requests  []*http.Request
}

type stubResponse struct {
	status      int
	contentType string
	body        string
}

func (s *vendorStub) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	resp, ok := s.responses[req.URL.Query().Get("action")]
	s.mu.Unlock()

	if !ok {
		resp = stubResponse{status: 404, contentType: "text/plain", body: "unknown action"}
	}
	h := http.Header{}
	if resp.contentType != "" {
		h.Set("Content-Type", resp.contentType)
	}
	return &http.Response{
		StatusCode: resp.status,
		Status:     http.StatusText(resp.status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Request:    req,
	}, nil
}

func (s *vendorStub) lastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func testConfig() *config.VendorConfig {
	ep := func(action string) endpoint.Definition {
		return endpoint.Definition{
			Path:  "/stubs/handler_api.php",
			Query: map[string]string{"action": action, "id": "$id"},
		}
	}
	return &config.VendorConfig{
		Name:    "smsact",
		BaseURL: "https://api.smsact.example",
		Auth:    endpoint.Auth{Type: endpoint.AuthQuery, Param: "api_key", Key: "k-123"},
		Endpoints: map[string]endpoint.Definition{
			config.OpGetNumber:    ep("getNumber"),
			config.OpGetStatus:    ep("getStatus"),
			config.OpCancelNumber: ep("setStatus"),
			config.OpGetBalance:   ep("getBalance"),
			config.OpGetPrices:    ep("getPrices"),
			config.OpGetCountries: ep("getCountries"),
			config.OpGetServices:  ep("getServices"),
		},
		Mappings: map[string]mapping.Definition{
			config.OpGetBalance: {
				Type:  mapping.TypeTextRegex,
				Regex: `ACCESS_BALANCE:(?<balance>[\d.]+)`,
			},
			config.OpGetPrices: {
				Type:   mapping.TypeDictionary,
				Fields: map[string]string{"cost": "cost", "count": "count"},
				Nesting: &mapping.Nesting{
					ExtractOperators: true,
					ProvidersKey:     "providers",
				},
			},
		},
	}
}

func newTestAdapter(stub *vendorStub) *Adapter {
	return New(testConfig(), Options{Transport: stub})
}

func TestGetNumber_Success(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getNumber": {status: 200, contentType: "application/json",
			body: `{"id": 4411, "phone": "+79001234567"}`},
	}}
	a := newTestAdapter(stub)

	rec, err := a.GetNumber(context.Background(), map[string]string{"service": "wa"})
	if err != nil {
		t.Fatalf("GetNumber: %v", err)
	}
	if got := rec.String("id"); got != "4411" {
		t.Fatalf("id=%q", got)
	}
	if got := rec.String("phone"); got != "+79001234567" {
		t.Fatalf("phone=%q", got)
	}

	// Query auth and leftover caller params land on the wire.
	q := stub.lastRequest().URL.Query()
	if q.Get("api_key") != "k-123" {
		t.Fatalf("api_key=%q", q.Get("api_key"))
	}
	if q.Get("service") != "wa" {
		t.Fatalf("service=%q", q.Get("service"))
	}
}

func TestGetNumber_MissingPhoneField(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getNumber": {status: 200, contentType: "application/json",
			body: `{"id": 4411, "status": "WAIT"}`},
	}}
	a := newTestAdapter(stub)

	_, err := a.GetNumber(context.Background(), nil)
	var mf *MissingFieldsError
	if !errors.As(err, &mf) {
		t.Fatalf("error type %T, want *MissingFieldsError", err)
	}
	if len(mf.Expected) == 0 || mf.Expected[0] != "phone" {
		t.Fatalf("expected=%v", mf.Expected)
	}
	var hasID bool
	for _, f := range mf.Received {
		if f == "id" {
			hasID = true
		}
	}
	if !hasID {
		t.Fatalf("received=%v, want the actual field names", mf.Received)
	}
}

func TestPerform_NoEndpointIsConfigError(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Endpoints, config.OpGetServices)
	a := New(cfg, Options{Transport: &vendorStub{}})

	_, err := a.GetServices(context.Background(), nil)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error type %T, want *ConfigError", err)
	}
	if ce.Operation != config.OpGetServices {
		t.Fatalf("operation=%q", ce.Operation)
	}
}

func TestGetBalance_TextRegexMapping(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getBalance": {status: 200, contentType: "text/plain",
			body: "ACCESS_BALANCE:12.50"},
	}}
	a := newTestAdapter(stub)

	bal, err := a.GetBalance(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal != 12.5 {
		t.Fatalf("balance=%v, want 12.5", bal)
	}
}

func TestGetPrices_DictionaryWithOperators(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getPrices": {status: 200, contentType: "application/json",
			body: `{"wa": {"providers": {"11": {"provider_id": "11", "cost": 5, "count": 3}, "junk": {}}}}`},
	}}
	a := newTestAdapter(stub)

	recs, err := a.GetPrices(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%v, want exactly one", recs)
	}
	rec := recs[0]
	if rec.String("service") != "wa" || rec.String("operator") != "11" {
		t.Fatalf("record=%v", rec)
	}
	if rec.String("cost") != "5" || rec.String("count") != "3" {
		t.Fatalf("record=%v", rec)
	}
}

func TestGetCountries_GenericUnwrapWithoutMapping(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getCountries": {status: 200, contentType: "application/json",
			body: `{"status": "ok", "data": [{"id": 7, "name": "russia"}, {"id": 44, "name": "uk"}]}`},
	}}
	a := newTestAdapter(stub)

	recs, err := a.GetCountries(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetCountries: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records=%v, want 2", recs)
	}
	if recs[0].String("name") != "russia" || recs[1].String("id") != "44" {
		t.Fatalf("records=%v", recs)
	}
}

func TestGetStatus_MislabeledJSONIsSniffed(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getStatus": {status: 200, contentType: "text/html",
			body: `{"status": "RECEIVED", "code": "1234"}`},
	}}
	a := newTestAdapter(stub)

	rec, err := a.GetStatus(context.Background(), map[string]string{"id": "4411"})
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if rec.String("status") != "RECEIVED" {
		t.Fatalf("record=%v", rec)
	}
}

func TestPerform_VendorFailureSurfacesAPIError(t *testing.T) {
	stub := &vendorStub{responses: map[string]stubResponse{
		"getStatus": {status: 403, contentType: "text/plain", body: "BAD_KEY"},
	}}
	a := newTestAdapter(stub)

	_, err := a.GetStatus(context.Background(), map[string]string{"id": "4411"})
	var apiErr *httpds.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *httpds.APIError", err)
	}
	if apiErr.Status != 403 || apiErr.Body != "BAD_KEY" {
		t.Fatalf("apiErr=%+v", apiErr)
	}
	if a.LastTrace() == nil || a.LastTrace().Status != 403 {
		t.Fatalf("trace=%+v", a.LastTrace())
	}
}
