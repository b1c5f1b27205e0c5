package clients_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/clients"
	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

// scriptedSmartBill returns queued errors in order, then succeeds.
type scriptedSmartBill struct {
	createErrs  []error
	deleteErrs  []error
	createCalls int
	deleteCalls int
	result      *clients.InvoiceResult
}

func (s *scriptedSmartBill) CreateInvoice(_ context.Context, _ *models.InvoiceDocument) (*clients.InvoiceResult, error) {
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return nil, err
	}
	return s.result, nil
}

func (s *scriptedSmartBill) DeleteInvoice(_ context.Context, _ string) error {
	s.deleteCalls++
	if len(s.deleteErrs) > 0 {
		err := s.deleteErrs[0]
		s.deleteErrs = s.deleteErrs[1:]
		return err
	}
	return nil
}

func fastPolicy(maxAttempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}
}

func newRetryClient(inner clients.SmartBill, cfg config.RetryConfig) *clients.RetrySmartBill {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return clients.NewRetrySmartBill(inner, cfg, logger)
}

func TestRetryCreateInvoiceSucceedsFirstAttempt(t *testing.T) {
	inner := &scriptedSmartBill{result: &clients.InvoiceResult{Number: "1042", Series: "RO"}}
	client := newRetryClient(inner, fastPolicy(5))

	result, err := client.CreateInvoice(context.Background(), &models.InvoiceDocument{})

	require.NoError(t, err)
	assert.Equal(t, "1042", result.Number)
	assert.Equal(t, 1, inner.createCalls)
}

func TestRetryCreateInvoiceRetriesOn5xx(t *testing.T) {
	inner := &scriptedSmartBill{
		createErrs: []error{
			&clients.APIError{StatusCode: 503, Body: "unavailable"},
			&clients.APIError{StatusCode: 500, Body: "boom"},
		},
		result: &clients.InvoiceResult{Number: "1043"},
	}
	client := newRetryClient(inner, fastPolicy(5))

	result, err := client.CreateInvoice(context.Background(), &models.InvoiceDocument{})

	require.NoError(t, err)
	assert.Equal(t, "1043", result.Number)
	assert.Equal(t, 3, inner.createCalls)
}

func TestRetryCreateInvoiceDoesNotRetry4xx(t *testing.T) {
	rejection := &clients.APIError{StatusCode: 400, Body: "invalid document"}
	inner := &scriptedSmartBill{createErrs: []error{rejection}}
	client := newRetryClient(inner, fastPolicy(5))

	_, err := client.CreateInvoice(context.Background(), &models.InvoiceDocument{})

	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, 1, inner.createCalls)
}

func TestRetryCreateInvoiceExhaustsAttempts(t *testing.T) {
	inner := &scriptedSmartBill{
		createErrs: []error{
			&clients.APIError{StatusCode: 500},
			&clients.APIError{StatusCode: 500},
			&clients.APIError{StatusCode: 500},
		},
	}
	client := newRetryClient(inner, fastPolicy(3))

	_, err := client.CreateInvoice(context.Background(), &models.InvoiceDocument{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum retries exceeded")
	assert.Equal(t, 3, inner.createCalls)
}

func TestRetryRetriesTransportErrors(t *testing.T) {
	inner := &scriptedSmartBill{
		createErrs: []error{errors.New("connection reset")},
		result:     &clients.InvoiceResult{Number: "1044"},
	}
	client := newRetryClient(inner, fastPolicy(5))

	result, err := client.CreateInvoice(context.Background(), &models.InvoiceDocument{})

	require.NoError(t, err)
	assert.Equal(t, "1044", result.Number)
	assert.Equal(t, 2, inner.createCalls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	inner := &scriptedSmartBill{result: &clients.InvoiceResult{}}
	client := newRetryClient(inner, fastPolicy(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateInvoice(ctx, &models.InvoiceDocument{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, inner.createCalls)
}

func TestRetryDeleteInvoice(t *testing.T) {
	inner := &scriptedSmartBill{
		deleteErrs: []error{&clients.APIError{StatusCode: 502}},
	}
	client := newRetryClient(inner, fastPolicy(5))

	err := client.DeleteInvoice(context.Background(), "1042")

	require.NoError(t, err)
	assert.Equal(t, 2, inner.deleteCalls)
}
