package consumer

import (
	"context"
	"errors"

	"go-payroll/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// errSkip marks a message that can never succeed, e.g. one that does not decode.
var errSkip = errors.New("skip message")

// run fetches messages until ctx ends. A message is committed when handle
// succeeds or fails permanently; retryable failures leave it uncommitted so
// it is redelivered after a rebalance or restart.
func run(ctx context.Context, reader MessageReader, log *zap.Logger, handle func(ctx context.Context, msg kafkago.Message) error) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg); err != nil {
			if apperror.Retryable(err) || errors.Is(err, context.Canceled) {
				log.Error("handle message failed, will retry",
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				continue
			}
			log.Warn("handle message failed, skipping",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}
