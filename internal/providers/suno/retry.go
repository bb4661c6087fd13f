package suno

import "time"

// RetryPolicy controls how the client re-attempts retryable failures. The
// sleep function is injectable so tests run without real timing.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
	ShouldRetry func(error) bool
}

// DefaultRetryPolicy retries network and rate-limit failures up to three
// attempts with linearly increasing delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Sleep:       time.Sleep,
		ShouldRetry: Retryable,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = time.Sleep
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = Retryable
	}
	return p
}

// delay grows linearly with the attempt number so consecutive waits are
// monotonically increasing.
func (p RetryPolicy) delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// run invokes fn up to MaxAttempts times, sleeping between retryable
// failures. The last classified error is returned when attempts run out.
func (p RetryPolicy) run(fn func() error) error {
	p = p.normalized()
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !p.ShouldRetry(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}
		p.Sleep(p.delay(attempt))
	}
	return lastErr
}
