package client

import (
	"context"
	"errors"
	"net"
)

// ErrorCategory is a stable label for fetch failures in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryTimeout       ErrorCategory = "timeout"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryParsing       ErrorCategory = "parsing"
	ErrorCategoryNotConfigured ErrorCategory = "not_configured"
	ErrorCategoryUnknown       ErrorCategory = "unknown"
)

// CategorizeError maps a Fetch error to an ErrorCategory. Returns "" for nil.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCategoryTimeout
	}

	switch {
	case errors.Is(err, ErrNotConfigured):
		return ErrorCategoryNotConfigured
	case errors.Is(err, ErrDecode):
		return ErrorCategoryParsing
	case errors.Is(err, ErrRequest):
		return ErrorCategoryNetwork
	}
	return ErrorCategoryUnknown
}
