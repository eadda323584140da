package delivery

import (
	"context"

	"go.uber.org/zap"
)

// Log performs no network calls; each message is written to the logger.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log.Named("delivery")}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Send(_ context.Context, msg Message) error {
	l.log.Info("email",
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
