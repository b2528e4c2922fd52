package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout of zero leaves requests unbounded; callers cancel through ctx.
const DefaultTimeout time.Duration = 0

// NewClient returns an HTTP client with the given timeout. Zero means no timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
