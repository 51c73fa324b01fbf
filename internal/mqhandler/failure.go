package mqhandler

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"labboard/pkg/util"
)

// DefaultMaxRetries is how many requeues a retryable failure gets before the
// message is dead-lettered.
const DefaultMaxRetries = 3

type Deduper interface {
	AcquireOnce(ctx context.Context, handler, id string) bool
	Release(ctx context.Context, handler, id string)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, reason string) error
}

// failurePolicy decides between requeue (return err), ack (return nil) and
// dead-lettering for a failed message.
type failurePolicy struct {
	handler    string
	routingKey string
	retries    RetryCounter
	dlq        DLQPublisher
	maxRetries int64
	logger     *zap.Logger
}

func (f *failurePolicy) deadLetter(ctx context.Context, raw json.RawMessage, reason string) {
	if err := f.dlq.PublishToDLQ(ctx, f.routingKey, raw, reason); err != nil {
		f.logger.Error("Failed to publish to DLQ",
			zap.String("handler", f.handler),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	f.logger.Warn("Message sent to DLQ",
		zap.String("handler", f.handler),
		zap.String("reason", reason),
	)
}

func (f *failurePolicy) onFailure(ctx context.Context, id string, raw json.RawMessage, err error) error {
	// Shutdown: leave the message for the next consumer.
	if errors.Is(err, context.Canceled) {
		return err
	}

	retryable, kind := util.IsRetryableError(err)
	if !retryable {
		if kind == "duplicate_key" {
			f.logger.Info("Duplicate write ignored", zap.String("handler", f.handler), zap.String("id", id))
			return nil
		}
		f.logger.Error("Non-retryable failure",
			zap.String("handler", f.handler),
			zap.String("id", id),
			zap.String("error_type", kind),
			zap.Error(err),
		)
		f.deadLetter(ctx, raw, kind)
		return nil
	}

	key := util.FormatRetryKey(f.handler, id)
	count, cerr := f.retries.IncrementAndGet(ctx, key)
	if cerr != nil {
		f.logger.Warn("Retry counter unavailable, requeueing", zap.String("key", key), zap.Error(cerr))
		return err
	}

	if !util.ShouldRetry(count, f.maxRetries, true) {
		f.deadLetter(ctx, raw, "max_retries_exceeded: "+kind)
		_ = f.retries.Reset(ctx, key)
		return nil
	}

	f.logger.Warn("Retryable failure, requeueing",
		zap.String("handler", f.handler),
		zap.String("id", id),
		zap.String("error_type", kind),
		zap.Int64("attempt", count),
		zap.Error(err),
	)
	return err
}

func (f *failurePolicy) onSuccess(ctx context.Context, id string) {
	_ = f.retries.Reset(ctx, util.FormatRetryKey(f.handler, id))
}
