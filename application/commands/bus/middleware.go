package bus

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"graphcore/application/commands"
	"graphcore/pkg/extensions"
	"graphcore/pkg/observability"
)

// outcome labels a call for logs and metrics
func outcome(res commands.Result, err error) string {
	if err != nil {
		return "failed"
	}
	return string(res.Type)
}

// LoggingMiddleware logs every call
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call Call) (commands.Result, error) {
			start := time.Now()
			res, err := next.Handle(ctx, call)

			fields := []zap.Field{
				zap.String("command", call.Command.String()),
				zap.String("operation", string(call.Operation)),
				zap.String("result", outcome(res, err)),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case err != nil:
				logger.Warn("Command failed", append(fields, zap.Error(err))...)
			case res.IsError():
				logger.Info("Command refused", append(fields, zap.Stringer("violations", res.Violations))...)
			default:
				logger.Debug("Command completed", fields...)
			}
			return res, err
		})
	}
}

// MetricsMiddleware counts calls and the violations they report
func MetricsMiddleware(collector *observability.Collector) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call Call) (commands.Result, error) {
			start := time.Now()
			res, err := next.Handle(ctx, call)

			collector.RecordCommand(call.Command.Name(), string(call.Operation), outcome(res, err), time.Since(start))
			if err == nil {
				for _, v := range res.Violations {
					collector.RecordViolation(v.Rule, string(v.Severity))
				}
			}
			return res, err
		})
	}
}

// TracingMiddleware wraps every call in a span
func TracingMiddleware(tracer *observability.Tracer) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call Call) (commands.Result, error) {
			ctx, span := tracer.Start(ctx, call.Command.Name()+"."+string(call.Operation),
				attribute.String("command", call.Command.String()),
				attribute.String("operation", string(call.Operation)),
			)
			defer span.End()

			res, err := next.Handle(ctx, call)
			if err != nil {
				observability.RecordError(span, err)
				return res, err
			}
			span.SetAttributes(
				attribute.String("result", string(res.Type)),
				attribute.Int("violations", len(res.Violations)),
			)
			return res, nil
		})
	}
}

// HooksMiddleware runs extension hooks around every call. A failing
// before_command hook aborts the call.
func HooksMiddleware(hooks *extensions.HookManager) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call Call) (commands.Result, error) {
			data := extensions.HookData{
				Command:   call.Command.String(),
				Operation: string(call.Operation),
			}
			if err := hooks.Execute(ctx, extensions.HookBeforeCommand, data); err != nil {
				return commands.Result{}, err
			}

			res, err := next.Handle(ctx, call)
			data.Result = outcome(res, err)
			data.Violations = len(res.Violations)
			data.Err = err

			point := extensions.HookAfterCommand
			switch {
			case err != nil:
				point = extensions.HookCommandFailed
			case res.IsError():
				point = extensions.HookCommandRefused
			}
			if hookErr := hooks.Execute(ctx, point, data); hookErr != nil && err == nil {
				return res, hookErr
			}
			return res, err
		})
	}
}
