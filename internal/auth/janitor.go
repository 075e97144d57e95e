package auth

import (
	"context"
	"time"

	"github.com/dspedroborges/store-api/internal/obs"
)

// DefaultPurgeInterval is the weekly sweep cadence. The cadence
// exceeds the longest refresh lifetime, so every recorded token is past its
// natural expiry by the time it is swept and an unconditional clear is safe.
const DefaultPurgeInterval = 7 * 24 * time.Hour

// Janitor periodically clears the revocation ledger. It is pure maintenance:
// no request awaits its result and cancelling it has no correctness impact.
type Janitor struct {
	ledger   RevocationLedger
	interval time.Duration
}

// NewJanitor constructs a Janitor. A non-positive interval falls back to the
// weekly default.
func NewJanitor(ledger RevocationLedger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return &Janitor{ledger: ledger, interval: interval}
}

// Run sweeps on a fixed schedule until the context is cancelled. Failures are
// logged and retried on the next tick.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	count, err := j.ledger.Purge(ctx)
	if err != nil {
		obs.LogRequest(map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "error",
			"msg":   "revoked token sweep failed",
			"error": err.Error(),
		})
		return
	}
	obs.RevokedTokensPurged(count)
	obs.LogRequest(map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"level":  "info",
		"msg":    "revoked token sweep complete",
		"purged": count,
	})
}
