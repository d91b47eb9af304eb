package mailx

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. It is
// the development transport; confirmation links show up in the log stream.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.Logger.InfoContext(ctx, "email not delivered (log transport)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
