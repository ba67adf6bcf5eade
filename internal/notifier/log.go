package notifier

import (
	"context"

	"feedback-bot/internal/logger"
)

// LogNotifier writes staff messages to the log. It is the fallback when no
// staff channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Publish(ctx context.Context, message string) error {
	logger.Info().Str("channel", "log").Str("message", message).Msg("staff notification")
	return nil
}
