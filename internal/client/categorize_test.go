package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// TestCategorizeError verifies that CategorizeError maps errors to the correct ErrorCategory
// for metrics labeling, including sentinel errors and errors wrapped by Fetch.
func TestCategorizeError(t *testing.T) {
	// name: test case description; err: input error; want: expected ErrorCategory.
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryTimeout},
		{"wrapped deadline", fmt.Errorf("%w: %w", ErrRequest, context.DeadlineExceeded), ErrorCategoryTimeout},
		{"net timeout", fmt.Errorf("%w: %w", ErrRequest, timeoutError{}), ErrorCategoryTimeout},
		{"not configured", ErrNotConfigured, ErrorCategoryNotConfigured},
		{"request failure", fmt.Errorf("%w: connection refused", ErrRequest), ErrorCategoryNetwork},
		{"decode failure", fmt.Errorf("%w: HTTP 200: unexpected EOF", ErrDecode), ErrorCategoryParsing},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}
