package resilience

import (
	"errors"
	"net"
	"syscall"
)

// TransientError marks a failure as retryable. Statement-source clients wrap
// rate-limit and upstream-outage responses in it so the retry loop knows to
// try again instead of failing the job stage.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err should be retried. Explicit TransientError
// wrapping wins, otherwise common network failure shapes are recognized.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status code indicates a
// condition worth retrying: throttling or a server-side failure.
func IsTransientHTTPStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
