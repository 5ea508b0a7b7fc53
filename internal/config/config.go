// Package config loads and validates vendor configuration documents.
// A vendor config is plain JSON authored per upstream provider: where
// it lives, how to authenticate, how fast it may be called, and the
// endpoint plus mapping definition for each supported operation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"numgate/internal/endpoint"
	"numgate/internal/mapping"
)

// Operation names accepted in endpoint/mapping maps.
const (
	OpGetNumber    = "getNumber"
	OpGetStatus    = "getStatus"
	OpCancelNumber = "cancelNumber"
	OpGetBalance   = "getBalance"
	OpGetPrices    = "getPrices"
	OpGetCountries = "getCountries"
	OpGetServices  = "getServices"
)

var knownOperations = map[string]bool{
	OpGetNumber:    true,
	OpGetStatus:    true,
	OpCancelNumber: true,
	OpGetBalance:   true,
	OpGetPrices:    true,
	OpGetCountries: true,
	OpGetServices:  true,
}

// VendorConfig is one upstream provider's complete configuration.
// Immutable once loaded; a single config is shared by concurrent
// adapter calls.
type VendorConfig struct {
	Name         string                         `json:"name"`
	BaseURL      string                         `json:"base_url"`
	Auth         endpoint.Auth                  `json:"auth,omitempty"`
	MinSpacingMs int                            `json:"min_spacing_ms,omitempty"`
	Endpoints    map[string]endpoint.Definition `json:"endpoints"`
	Mappings     map[string]mapping.Definition  `json:"mappings,omitempty"`
}

// Validate fails fast on configs that can never serve a call.
func (c *VendorConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("config: vendor name is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: vendor %q: base_url must be absolute, got %q", c.Name, c.BaseURL)
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("config: vendor %q has no endpoints", c.Name)
	}
	if c.MinSpacingMs < 0 {
		return fmt.Errorf("config: vendor %q: min_spacing_ms must be >= 0", c.Name)
	}

	switch c.Auth.Type {
	case endpoint.AuthNone, endpoint.AuthQuery, endpoint.AuthHeader, endpoint.AuthBearer:
	default:
		return fmt.Errorf("config: vendor %q: unknown auth type %q", c.Name, c.Auth.Type)
	}
	if c.Auth.Type != endpoint.AuthNone && c.Auth.Key == "" {
		return fmt.Errorf("config: vendor %q: auth type %q requires a key", c.Name, c.Auth.Type)
	}

	for op, def := range c.Endpoints {
		if !knownOperations[op] {
			return fmt.Errorf("config: vendor %q: unknown operation %q", c.Name, op)
		}
		if strings.TrimSpace(def.Path) == "" {
			return fmt.Errorf("config: vendor %q: operation %q has no path", c.Name, op)
		}
	}
	for op, def := range c.Mappings {
		if !knownOperations[op] {
			return fmt.Errorf("config: vendor %q: mapping for unknown operation %q", c.Name, op)
		}
		if _, ok := c.Endpoints[op]; !ok {
			return fmt.Errorf("config: vendor %q: mapping for %q has no endpoint", c.Name, op)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("config: vendor %q: operation %q: %w", c.Name, op, err)
		}
	}

	return nil
}

// Parse decodes and validates a vendor config document.
func Parse(b []byte) (*VendorConfig, error) {
	var c VendorConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse vendor config json: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadVendorFile loads and validates a JSON vendor config file.
func LoadVendorFile(path string) (*VendorConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendor config file: %w", err)
	}
	return Parse(b)
}
