package logging

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/session"
)

// SessionHook logs session events. Field values are never logged, only
// field names and messages.
func SessionHook(logger *slog.Logger) session.Hook {
	if logger == nil {
		logger = Discard()
	}
	return session.HookFunc(func(ev session.Event) {
		ctx := WithFormID(WithSessionID(context.Background(), ev.SessionID), ev.FormID)
		switch ev.Kind {
		case session.EventTransition:
			logTransition(ctx, logger, ev)
		case session.EventIgnored:
			logger.DebugContext(ctx, "submit ignored", slog.String("state", string(ev.From)), slog.Int("attempt", ev.Attempt))
		case session.EventDecision:
			logger.InfoContext(ctx, "navigation decision", slog.String("decision", ev.Decision.String()))
		case session.EventReset:
			logger.DebugContext(ctx, "form reset")
		case session.EventField:
			attrs := []any{slog.String("field", ev.Field)}
			if ev.FieldError != "" {
				attrs = append(attrs, slog.String("error", ev.FieldError))
			}
			if len(ev.Activation.Activated) > 0 {
				attrs = append(attrs, slog.Any("activated", ev.Activation.Activated))
			}
			if len(ev.Activation.Deactivated) > 0 {
				attrs = append(attrs, slog.Any("deactivated", ev.Activation.Deactivated))
			}
			logger.DebugContext(ctx, "field changed", attrs...)
		}
	})
}

func logTransition(ctx context.Context, logger *slog.Logger, ev session.Event) {
	attrs := []any{
		slog.String("from", string(ev.From)),
		slog.String("to", string(ev.To)),
		slog.Int("attempt", ev.Attempt),
	}
	switch ev.To {
	case session.StateInvalid:
		fields := make([]string, 0, len(ev.Errors))
		for name := range ev.Errors {
			fields = append(fields, name)
		}
		attrs = append(attrs, slog.Any("invalid_fields", fields))
		logger.InfoContext(ctx, "submit blocked by validation", attrs...)
	case session.StateSubmitting:
		logger.InfoContext(ctx, "submission started", attrs...)
	case session.StateSuccess:
		attrs = append(attrs, slog.Duration("duration", ev.Duration))
		logger.InfoContext(ctx, "submission succeeded", attrs...)
	case session.StateFailed:
		attrs = append(attrs, slog.Duration("duration", ev.Duration), slog.Any("error", ev.Err))
		logger.WarnContext(ctx, "submission failed", attrs...)
	default:
		logger.DebugContext(ctx, "session transition", attrs...)
	}
}
