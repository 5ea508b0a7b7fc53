package webhook

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier("shared-secret")
	body := []byte(`{"id":4411,"status":"RECEIVED","code":"1234"}`)

	if err := v.Verify(body, v.Sign(body)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier("shared-secret")
	body := []byte(`{"id":4411}`)
	sig := v.Sign(body)

	if err := v.Verify([]byte(`{"id":4412}`), sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("tampered body err=%v, want ErrBadSignature", err)
	}
	if err := NewVerifier("other-secret").Verify(body, sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("wrong secret err=%v, want ErrBadSignature", err)
	}
	if err := v.Verify(body, "not-hex"); err == nil || errors.Is(err, ErrBadSignature) {
		t.Fatalf("malformed signature err=%v, want a parse error", err)
	}
}

func TestVerifyWithTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := NewVerifier("shared-secret")
	v.Tolerance = 5 * time.Minute
	v.now = func() time.Time { return now }

	body := []byte(`{"id":4411,"code":"9999"}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := v.Sign([]byte(ts + "." + string(body)))

	if err := v.VerifyWithTimestamp(body, ts, sig); err != nil {
		t.Fatalf("fresh: %v", err)
	}

	stale := strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)
	staleSig := v.Sign([]byte(stale + "." + string(body)))
	if err := v.VerifyWithTimestamp(body, stale, staleSig); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("stale err=%v, want ErrStaleTimestamp", err)
	}

	// Replaying a valid signature with a fresher timestamp must fail:
	// the timestamp is bound into the signed payload.
	fresh := strconv.FormatInt(now.Unix(), 10)
	if err := v.VerifyWithTimestamp(body, fresh, staleSig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("replay err=%v, want ErrBadSignature", err)
	}

	if err := v.VerifyWithTimestamp(body, "soon", sig); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}
