package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry syncs buffered logs before exit. Metrics are pull-based and need no flush.
// Call after the widget's in-flight fetches have drained so their outcome logs are kept.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
