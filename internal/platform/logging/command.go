package logging

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogCommand records a single command invocation.
//
// Args:
//   - name: the invoked command (e.g., "greet")
//   - result: "success" or "failure"
//   - elapsed: time spent inside the handler
func LogCommand(ctx context.Context, name, result string, elapsed time.Duration, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("command.name", name),
		zap.String("command.result", result),
		zap.Duration("command.elapsed", elapsed),
	}, fields...)
	LoggerFromContext(ctx).Info("command invoked", fields...)
}
