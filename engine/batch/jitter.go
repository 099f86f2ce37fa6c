package batch

import (
	"context"
	"math/rand"
	"time"
)

// JitterPolicy staggers worker start times so concurrent items do not hit
// the same provider endpoints in lockstep. A zero policy sleeps not at all,
// which keeps tests deterministic.
type JitterPolicy struct {
	Min time.Duration
	Max time.Duration
}

// Sleep blocks for a random duration in [Min, Max], or until the context
// is done.
func (j JitterPolicy) Sleep(ctx context.Context) {
	if j.Max <= 0 || j.Max < j.Min {
		return
	}
	d := j.Min
	if span := j.Max - j.Min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
