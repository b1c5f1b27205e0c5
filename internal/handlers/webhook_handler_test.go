package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/handlers"
	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

type stubProcessor struct {
	result    *services.Result
	err       error
	body      []byte
	signature string
}

func (p *stubProcessor) ProcessEvent(_ context.Context, body []byte, signature string) (*services.Result, error) {
	p.body = body
	p.signature = signature
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func postWebhook(t *testing.T, processor handlers.EventProcessor, signature string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/webhooks/stripe", handlers.NewWebhookHandler(processor).HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleStripeWebhookSuccess(t *testing.T) {
	processor := &stubProcessor{
		result: &services.Result{Outcome: services.OutcomeSuccess, InvoiceNumber: "1042"},
	}

	recorder := postWebhook(t, processor, "t=1,v1=abc")

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp models.WebhookResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "1042", resp.InvoiceNumber)

	assert.Equal(t, []byte(`{"id":"evt_1"}`), processor.body)
	assert.Equal(t, "t=1,v1=abc", processor.signature)
}

func TestHandleStripeWebhookDuplicate(t *testing.T) {
	processor := &stubProcessor{result: &services.Result{Outcome: services.OutcomeDuplicate}}

	recorder := postWebhook(t, processor, "t=1,v1=abc")

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp models.WebhookResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "duplicate", resp.Status)
	assert.Empty(t, resp.InvoiceNumber)
}

func TestHandleStripeWebhookMissingSignature(t *testing.T) {
	processor := &stubProcessor{}

	recorder := postWebhook(t, processor, "")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, processor.signature, "processor must not be called")

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Missing signature", resp.Error)
}

func TestHandleStripeWebhookInvalidSignature(t *testing.T) {
	processor := &stubProcessor{
		err: fmt.Errorf("%w: bad digest", services.ErrInvalidSignature),
	}

	recorder := postWebhook(t, processor, "t=1,v1=forged")

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid signature", resp.Error)
}

func TestHandleStripeWebhookProcessingErrorResponds200(t *testing.T) {
	processor := &stubProcessor{err: errors.New("billing provider unavailable")}

	recorder := postWebhook(t, processor, "t=1,v1=abc")

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp models.WebhookResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.NotContains(t, resp.Error, "billing provider", "internal detail must not leak")
}
