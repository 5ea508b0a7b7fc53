package httpds

import (
	"net/http"
	"net/url"
	"strings"
)

// Trace is the diagnostic snapshot of the most recent attempt,
// retained regardless of outcome. Header values that carry credentials
// are masked before being stored.
type Trace struct {
	Method    string
	URL       string
	Headers   map[string]string
	Status    int
	Body      string
	ElapsedMs int64
	Error     string
}

// sensitiveHeaders are masked in traces. Matching is case-insensitive;
// anything containing "key", "token" or "secret" is masked too.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
}

func maskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		v := strings.Join(vs, ", ")
		lk := strings.ToLower(k)
		if sensitiveHeaders[lk] ||
			strings.Contains(lk, "key") ||
			strings.Contains(lk, "token") ||
			strings.Contains(lk, "secret") {
			v = maskValue(v)
		}
		out[k] = v
	}
	return out
}

// maskURL redacts credential-bearing query parameters (query-auth
// vendors put the API key right in the URL).
func maskURL(u *url.URL) string {
	q := u.Query()
	changed := false
	for name := range q {
		ln := strings.ToLower(name)
		if strings.Contains(ln, "key") ||
			strings.Contains(ln, "token") ||
			strings.Contains(ln, "secret") {
			q.Set(name, maskValue(q.Get(name)))
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}

// maskValue keeps enough of the value to correlate against vendor
// dashboards without ever logging a usable credential.
func maskValue(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
