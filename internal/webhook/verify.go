// Package webhook verifies signatures on inbound vendor push
// notifications. This is the receiving side of the number lifecycle:
// vendors that push OTP/status events sign the raw body with a shared
// secret, and unverified bodies must never reach the pipeline.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrBadSignature reports a signature that does not match the body.
	ErrBadSignature = errors.New("webhook: signature mismatch")
	// ErrStaleTimestamp reports a signed timestamp outside the
	// configured tolerance window.
	ErrStaleTimestamp = errors.New("webhook: timestamp outside tolerance")
)

// Verifier checks HMAC-SHA256 signatures over raw request bodies.
type Verifier struct {
	secret []byte

	// Tolerance bounds |now - signed timestamp| when a timestamp is
	// supplied. Zero disables the check.
	Tolerance time.Duration

	now func() time.Time
}

// NewVerifier builds a verifier for one vendor's shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Sign computes the hex HMAC-SHA256 signature of body. Exposed so
// tests and outbound callback acknowledgements can produce signatures
// the same way they are checked.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a hex signature against the raw body in constant time.
func (v *Verifier) Verify(body []byte, signature string) error {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("webhook: malformed signature: %w", err)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

// VerifyWithTimestamp checks a signature computed over
// "<timestamp>.<body>" and enforces the tolerance window. The
// timestamp is unix seconds as sent in the vendor's header.
//
// Edge cases:
//   - Tolerance 0 skips the freshness check but still binds the
//     timestamp into the signed payload.
func (v *Verifier) VerifyWithTimestamp(body []byte, timestamp, signature string) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("webhook: malformed timestamp %q: %w", timestamp, err)
	}

	if v.Tolerance > 0 {
		age := v.now().Sub(time.Unix(ts, 0))
		if age < 0 {
			age = -age
		}
		if age > v.Tolerance {
			return ErrStaleTimestamp
		}
	}

	signed := make([]byte, 0, len(timestamp)+1+len(body))
	signed = append(signed, timestamp...)
	signed = append(signed, '.')
	signed = append(signed, body...)
	return v.Verify(signed, signature)
}
