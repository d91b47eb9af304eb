package mailx

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryingSender retries transient failures of Next with exponential
// backoff. Invalid messages are never retried.
type RetryingSender struct {
	Next       Sender
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewRetryingSender(next Sender, maxRetries uint64, base time.Duration) *RetryingSender {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	return &RetryingSender{
		Next:       next,
		MaxRetries: maxRetries,
		BaseDelay:  base,
		MaxDelay:   5 * time.Second,
	}
}

func (s *RetryingSender) Send(ctx context.Context, msg Message) error {
	b := retry.NewExponential(s.BaseDelay)
	if s.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.MaxDelay, b)
	}
	b = retry.WithMaxRetries(s.MaxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.Next.Send(ctx, msg)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrInvalidMessage),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
}
