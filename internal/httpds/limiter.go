package httpds

import (
	"sync/atomic"
	"time"
)

// Limiter enforces minimum spacing between outbound requests for one
// adapter instance.
//
// The watermark is the timestamp of the latest reserved dispatch slot
// (unix nanos). Reservation advances it BEFORE the caller sleeps, so
// concurrent callers each get a distinct, strictly increasing slot and
// the watermark never moves backward.
type Limiter struct {
	minSpacing time.Duration
	watermark  atomic.Int64
}

// NewLimiter returns a limiter with the given minimum inter-request
// spacing. A spacing <= 0 disables throttling.
func NewLimiter(minSpacing time.Duration) *Limiter {
	return &Limiter{minSpacing: minSpacing}
}

// Reserve claims the next dispatch slot and returns how long the
// caller must wait before dispatching. The returned duration is zero
// when the slot is already due.
func (l *Limiter) Reserve(now time.Time) time.Duration {
	if l.minSpacing <= 0 {
		return 0
	}

	n := now.UnixNano()
	for {
		cur := l.watermark.Load()
		target := n
		if next := cur + int64(l.minSpacing); cur != 0 && next > target {
			target = next
		}
		if l.watermark.CompareAndSwap(cur, target) {
			return time.Duration(target - n)
		}
	}
}
