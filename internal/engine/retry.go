package engine

import "time"

// RetryPolicy bounds BIS fetch attempts per address. The first pass gets
// MaxAttempts tries with AttemptDelay between them; addresses exhausting
// the first pass are requeued into one batched second pass that starts
// after a single BatchCooldown, giving a rate-limited upstream room to
// recover. The second pass uses the same per-address attempt budget.
type RetryPolicy struct {
	MaxAttempts   int
	AttemptDelay  time.Duration
	BatchCooldown time.Duration
}

// DefaultRetryPolicy matches the upstream's observed tolerance: two
// quick attempts, then one minute of silence before the batched retry.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   2,
		AttemptDelay:  2 * time.Second,
		BatchCooldown: 60 * time.Second,
	}
}
