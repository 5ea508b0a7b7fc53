// Package endpoint builds concrete HTTP requests from declarative
// per-operation endpoint definitions, caller parameters, and the
// adapter's auth configuration.
package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Definition describes how to reach one logical operation for one
// vendor. Immutable once loaded.
type Definition struct {
	// Method defaults to GET.
	Method string `json:"method,omitempty"`
	// Path is concatenated onto the adapter base URL unless absolute
	// (http:// or https://), in which case it is used verbatim. It may
	// contain {placeholder} segments resolved from caller parameters
	// and the injected {authKey}.
	Path string `json:"path"`
	// Query configures query parameters. A value starting with "$" is
	// a caller-parameter reference with optional pipe-delimited
	// fallback names ("$service|legacy_service"); anything else is a
	// literal passed through (placeholders substituted).
	Query map[string]string `json:"query,omitempty"`
	// Headers override the default header set per entry.
	Headers map[string]string `json:"headers,omitempty"`
}

// Auth is the adapter-level auth configuration applied to every
// operation.
type Auth struct {
	// Type: "query", "header", "bearer", or "" for none.
	Type string `json:"type,omitempty"`
	// Param is the query-parameter or header name carrying the key.
	// Defaults to "api_key" (query) / "X-API-Key" (header).
	Param string `json:"param,omitempty"`
	// Key is the credential. Also available as {authKey} in paths.
	Key string `json:"key,omitempty"`
}

const (
	AuthNone   = ""
	AuthQuery  = "query"
	AuthHeader = "header"
	AuthBearer = "bearer"
)

// defaultHeaders is the browser-like baseline sent on every request.
// Several vendors serve degraded or blocked responses to bare clients.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

// Build constructs the outbound request for one operation.
//
// Query parameters resolve in priority order: configured $variable
// references, configured literals, query-style auth, then (GET only)
// any remaining unconsumed caller parameter, never overwriting a key
// that is already set, so auth cannot be shadowed by a caller.
//
// Unresolved {placeholders} are left literal: that is a caller error
// and the vendor's 4xx makes it visible, it is not retried specially.
func Build(ctx context.Context, baseURL string, def *Definition, params map[string]string, auth Auth) (*http.Request, error) {
	if def == nil {
		return nil, fmt.Errorf("endpoint: nil definition")
	}

	method := strings.ToUpper(def.Method)
	if method == "" {
		method = http.MethodGet
	}

	consumed := make(map[string]bool, len(params))
	rawURL := resolveURL(baseURL, def.Path)
	rawURL = substitutePlaceholders(rawURL, params, auth.Key, consumed)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("endpoint: parse url %q: %w", rawURL, err)
	}

	q := u.Query()

	// (a) + (b): configured variable references and literals.
	for _, name := range sortedKeys(def.Query) {
		raw := def.Query[name]
		if strings.HasPrefix(raw, "$") {
			if v, ok := resolveVariable(raw[1:], params, consumed); ok {
				q.Set(name, v)
			}
			// Absent optional variables are omitted entirely, never
			// serialized empty.
			continue
		}
		q.Set(name, substitutePlaceholders(raw, params, auth.Key, consumed))
	}

	// (d) before (c): query auth goes in before leftover caller params.
	if auth.Type == AuthQuery && auth.Key != "" {
		q.Set(paramOr(auth.Param, "api_key"), auth.Key)
	}

	// (c): GET appends remaining unconsumed caller parameters.
	if method == http.MethodGet {
		for _, name := range sortedKeys(params) {
			if consumed[name] || q.Has(name) {
				continue
			}
			q.Set(name, params[name])
		}
	}

	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("endpoint: build request: %w", err)
	}

	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range def.Headers {
		req.Header.Set(k, v)
	}
	switch auth.Type {
	case AuthHeader:
		req.Header.Set(paramOr(auth.Param, "X-API-Key"), auth.Key)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+auth.Key)
	}

	return req, nil
}

// resolveURL joins path onto baseURL unless path is already absolute.
func resolveURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// substitutePlaceholders replaces every {name} with the matching caller
// parameter ({authKey} with the credential), marking used parameters as
// consumed. Unknown placeholders stay literal.
func substitutePlaceholders(s string, params map[string]string, authKey string, consumed map[string]bool) string {
	if !strings.Contains(s, "{") {
		return s
	}

	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			break
		}
		closing := strings.IndexByte(s[open:], '}')
		if closing < 0 {
			b.WriteString(s)
			break
		}
		closing += open

		name := s[open+1 : closing]
		b.WriteString(s[:open])
		switch {
		case name == "authKey":
			b.WriteString(authKey)
		case params[name] != "":
			b.WriteString(params[name])
			consumed[name] = true
		default:
			// Leave the placeholder literal.
			b.WriteString(s[open : closing+1])
		}
		s = s[closing+1:]
	}
	return b.String()
}

// resolveVariable resolves a pipe-delimited fallback chain of caller
// parameter names.
func resolveVariable(expr string, params map[string]string, consumed map[string]bool) (string, bool) {
	for _, name := range strings.Split(expr, "|") {
		name = strings.TrimSpace(strings.TrimPrefix(name, "$"))
		if name == "" {
			continue
		}
		if v, ok := params[name]; ok && v != "" {
			consumed[name] = true
			return v, true
		}
	}
	return "", false
}

func paramOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
