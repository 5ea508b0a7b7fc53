// Package adapter binds one vendor's complete configuration into a
// callable instance: operations in, canonical records out. Everything
// vendor-specific lives in the configuration; the adapter just runs
// the pipeline endpoint -> dispatch -> classify -> extract.
package adapter

import (
	"context"
	"net/http"
	"time"

	"numgate/internal/config"
	"numgate/internal/endpoint"
	"numgate/internal/httpds"
	"numgate/internal/mapping"
	"numgate/internal/response"
	"numgate/pkg/records"
)

// Options tunes an adapter beyond its vendor configuration.
type Options struct {
	// Transport overrides the HTTP round tripper (tests, proxies).
	Transport http.RoundTripper
}

// Adapter is one vendor's live instance. Safe for concurrent use: the
// rate-limit watermark inside the dispatch client is its only mutable
// state.
type Adapter struct {
	cfg    *config.VendorConfig
	client *httpds.Client
}

// New constructs an adapter from one vendor's configuration.
func New(cfg *config.VendorConfig, opts Options) *Adapter {
	return &Adapter{
		cfg: cfg,
		client: httpds.NewClient(httpds.Options{
			Vendor:     cfg.Name,
			MinSpacing: time.Duration(cfg.MinSpacingMs) * time.Millisecond,
			Transport:  opts.Transport,
		}),
	}
}

// Vendor returns the configured vendor name.
func (a *Adapter) Vendor() string { return a.cfg.Name }

// LastTrace exposes the diagnostic snapshot of the most recent HTTP
// attempt, or nil before the first dispatch.
func (a *Adapter) LastTrace() *httpds.Trace { return a.client.LastTrace() }

// Perform invokes one operation by name and returns the ordered
// canonical records extracted from the vendor response.
//
// Errors:
//   - *ConfigError when the configuration has no endpoint for op.
//   - *httpds.APIError when the vendor call fails after retries.
//
// A missing mapping definition is not an error: extraction degrades to
// the generic best-effort unwrap.
func (a *Adapter) Perform(ctx context.Context, op string, params map[string]string) ([]records.Record, error) {
	epDef, ok := a.cfg.Endpoints[op]
	if !ok {
		return nil, &ConfigError{Vendor: a.cfg.Name, Operation: op, Reason: "no endpoint configured"}
	}

	req, err := endpoint.Build(ctx, a.cfg.BaseURL, &epDef, params, a.cfg.Auth)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(ctx, op, req)
	if err != nil {
		return nil, err
	}

	payload := response.Classify(resp.Header.Get("Content-Type"), resp.Body)

	var mdef *mapping.Definition
	if d, ok := a.cfg.Mappings[op]; ok {
		mdef = &d
	}
	return mapping.Extract(mdef, payload), nil
}

// Identity field alternatives for the singular operations.
var (
	idFields      = []string{"id", "tzid", "activation_id", "request_id"}
	phoneFields   = []string{"phone", "number", "tel", "telephone"}
	statusFields  = []string{"status", "response", "state", "msg", "message", "value"}
	balanceFields = []string{"balance", "amount", "balance_amount", "value"}
)

// GetNumber purchases a temporary number and returns the record
// carrying the activation id and phone number.
//
// Edge cases:
//   - Both an id-like and a phone-like field are required; absence of
//     either is a *MissingFieldsError naming expected vs received.
func (a *Adapter) GetNumber(ctx context.Context, params map[string]string) (records.Record, error) {
	rec, err := a.singular(ctx, config.OpGetNumber, params, idFields)
	if err != nil {
		return nil, err
	}
	if _, _, ok := rec.FirstPresent(phoneFields...); !ok {
		return nil, a.missingFields(config.OpGetNumber, phoneFields, rec)
	}
	return rec, nil
}

// GetStatus fetches the current activation state (OTP polling calls
// this on a backoff schedule).
func (a *Adapter) GetStatus(ctx context.Context, params map[string]string) (records.Record, error) {
	return a.singular(ctx, config.OpGetStatus, params, statusFields)
}

// CancelNumber releases an activation.
func (a *Adapter) CancelNumber(ctx context.Context, params map[string]string) (records.Record, error) {
	return a.singular(ctx, config.OpCancelNumber, params, statusFields)
}

// GetBalance returns the account balance as reported by the vendor.
func (a *Adapter) GetBalance(ctx context.Context, params map[string]string) (float64, error) {
	rec, err := a.singular(ctx, config.OpGetBalance, params, balanceFields)
	if err != nil {
		return 0, err
	}
	field, _, _ := rec.FirstPresent(balanceFields...)
	v, ok := rec.Float(field)
	if !ok {
		return 0, a.missingFields(config.OpGetBalance, balanceFields, rec)
	}
	return v, nil
}

// GetPrices lists per-country/service/operator pricing records.
func (a *Adapter) GetPrices(ctx context.Context, params map[string]string) ([]records.Record, error) {
	return a.Perform(ctx, config.OpGetPrices, params)
}

// GetCountries lists supported countries.
func (a *Adapter) GetCountries(ctx context.Context, params map[string]string) ([]records.Record, error) {
	return a.Perform(ctx, config.OpGetCountries, params)
}

// GetServices lists supported services.
func (a *Adapter) GetServices(ctx context.Context, params map[string]string) ([]records.Record, error) {
	return a.Perform(ctx, config.OpGetServices, params)
}

// singular runs op and selects the first record, requiring at least
// one of the given identity fields to be present.
func (a *Adapter) singular(ctx context.Context, op string, params map[string]string, required []string) (records.Record, error) {
	recs, err := a.Perform(ctx, op, params)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, a.missingFields(op, required, nil)
	}
	rec := recs[0]
	if _, _, ok := rec.FirstPresent(required...); !ok {
		return nil, a.missingFields(op, required, rec)
	}
	return rec, nil
}

func (a *Adapter) missingFields(op string, expected []string, rec records.Record) *MissingFieldsError {
	var received []string
	if rec != nil {
		received = rec.Keys()
	}
	return &MissingFieldsError{
		Vendor:    a.cfg.Name,
		Operation: op,
		Expected:  expected,
		Received:  received,
	}
}
