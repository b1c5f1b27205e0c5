package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

// EventProcessor is the slice of the webhook service the handler needs.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, body []byte, signature string) (*services.Result, error)
}

// WebhookHandler handles webhook-related HTTP requests
type WebhookHandler struct {
	processor EventProcessor
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(processor EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
	}
}

// HandleStripeWebhook handles POST /webhooks/stripe. A bad signature is the
// only client error; processing failures respond 200 with an error body so the
// processor's own retry schedule is not triggered (redelivery happens via the
// rolled-back idempotency record instead).
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Missing signature",
			Message: "Stripe-Signature header is required",
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Failed to read request body",
			Message: err.Error(),
		})
		return
	}

	result, err := h.processor.ProcessEvent(c.Request.Context(), body, signature)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid signature",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, models.WebhookResponse{
			Success: false,
			Status:  string(services.OutcomeError),
			Error:   "internal processing error",
		})
		return
	}

	c.JSON(http.StatusOK, models.WebhookResponse{
		Success:       true,
		Status:        string(result.Outcome),
		InvoiceNumber: result.InvoiceNumber,
	})
}
