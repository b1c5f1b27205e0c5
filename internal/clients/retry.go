package clients

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

// RetrySmartBill decorates a SmartBill client with a bounded
// exponential-backoff retry policy. Retry behavior lives here, not in the
// webhook pipeline, so it can be tuned and tested on its own.
type RetrySmartBill struct {
	inner       SmartBill
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *logrus.Entry
}

// NewRetrySmartBill wraps inner with the configured retry policy.
func NewRetrySmartBill(inner SmartBill, cfg config.RetryConfig, logger *logrus.Logger) *RetrySmartBill {
	return &RetrySmartBill{
		inner:       inner,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		logger:      logger.WithField("component", "clients.smartbill.retry"),
	}
}

// CreateInvoice with retry logic
func (r *RetrySmartBill) CreateInvoice(ctx context.Context, doc *models.InvoiceDocument) (*InvoiceResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*InvoiceResult, error) {
		return r.inner.CreateInvoice(ctx, doc)
	})
}

// DeleteInvoice with retry logic
func (r *RetrySmartBill) DeleteInvoice(ctx context.Context, number string) error {
	_, err := retry(r, ctx, func(ctx context.Context) (*struct{}, error) {
		return nil, r.inner.DeleteInvoice(ctx, number)
	})
	return err
}

// Generic retry helper
func retry[T any](r *RetrySmartBill, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxAttempts-1 {
			delay := r.backoff(attempt)
			r.logger.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"delay":   delay.String(),
			}).Warn("smartbill call failed, retrying")
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// isRetryable treats 5xx and transport errors as transient; any other API
// response is a permanent rejection of the document.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

// backoff doubles the base delay per attempt up to the cap, with jitter so
// concurrent retries spread out.
func (r *RetrySmartBill) backoff(attempt int) time.Duration {
	delay := r.baseDelay << attempt
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
