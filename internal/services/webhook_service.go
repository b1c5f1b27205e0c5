package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"invoicing-service/internal/clients"
	"invoicing-service/internal/config"
	"invoicing-service/internal/idempotency"
	"invoicing-service/internal/jurisdiction"
)

// ErrInvalidSignature marks a delivery that failed authenticity verification.
// The handler maps it to a client error; no state is mutated for such events.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Outcome classifies a processed delivery for the response body.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeError     Outcome = "error"
)

// Result is what one webhook delivery produced.
type Result struct {
	Outcome       Outcome
	InvoiceNumber string
}

// EventVerifier turns a raw delivery into a verified, typed event, or rejects
// it. Signature mechanics live behind this interface so the pipeline can be
// exercised without Stripe key material.
type EventVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

// StripeVerifier verifies deliveries against the endpoint's webhook secret.
type StripeVerifier struct {
	secret string
}

// NewStripeVerifier creates a verifier for the given webhook secret.
func NewStripeVerifier(secret string) StripeVerifier {
	return StripeVerifier{secret: secret}
}

func (v StripeVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, v.secret)
}

// WebhookService processes verified payment-completion events end to end:
// idempotency gate, jurisdiction resolution, invoice assembly, billing
// submission, confirmation email.
type WebhookService struct {
	invoiceCfg config.InvoiceConfig
	verifier   EventVerifier
	gate       *idempotency.Gate
	resolver   *jurisdiction.Resolver
	billing    clients.SmartBill
	mailer     clients.Mailer
	alerter    clients.Alerter
	logger     *logrus.Entry
}

// NewWebhookService creates a webhook processing service.
func NewWebhookService(
	invoiceCfg config.InvoiceConfig,
	verifier EventVerifier,
	gate *idempotency.Gate,
	resolver *jurisdiction.Resolver,
	billing clients.SmartBill,
	mailer clients.Mailer,
	alerter clients.Alerter,
	logger *logrus.Logger,
) *WebhookService {
	return &WebhookService{
		invoiceCfg: invoiceCfg,
		verifier:   verifier,
		gate:       gate,
		resolver:   resolver,
		billing:    billing,
		mailer:     mailer,
		alerter:    alerter,
		logger:     logger.WithField("component", "services.webhook"),
	}
}

// ProcessEvent verifies and processes one webhook delivery. It returns
// ErrInvalidSignature for unauthentic payloads; any other error means
// processing failed after the event was admitted, in which case the
// idempotency record has already been rolled back and an alert raised.
func (s *WebhookService) ProcessEvent(ctx context.Context, body []byte, signature string) (*Result, error) {
	event, err := s.verifier.Verify(body, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	proceed, err := s.gate.MarkIfUnseen(ctx, event.ID)
	if err != nil {
		s.alerter.Alert(ctx, event.ID, fmt.Sprintf("idempotency store failure: %v", err))
		return &Result{Outcome: OutcomeError}, err
	}
	if !proceed {
		log.Info("duplicate event, skipping")
		return &Result{Outcome: OutcomeDuplicate}, nil
	}

	result, procErr := s.handleEvent(ctx, event)
	s.gate.CommitOrRollback(ctx, event.ID, procErr)
	if procErr != nil {
		log.WithError(procErr).Error("event processing failed")
		s.alerter.Alert(ctx, event.ID, procErr.Error())
		return &Result{Outcome: OutcomeError}, procErr
	}
	return result, nil
}

// handleEvent runs the business logic for an admitted event. Unknown event
// types are a successful no-op and stay marked as handled.
func (s *WebhookService) handleEvent(ctx context.Context, event stripe.Event) (*Result, error) {
	if event.Type != "checkout.session.completed" {
		s.logger.WithField("event_type", event.Type).Info("unhandled event type")
		return &Result{Outcome: OutcomeSuccess}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}

	addr := ExtractAddress(&sess)
	juris := s.resolver.Resolve(ctx, addr)
	doc := BuildInvoice(&sess, juris, s.invoiceCfg)

	invoice, err := s.billing.CreateInvoice(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.sendConfirmation(ctx, event.ID, &sess, invoice)

	if s.invoiceCfg.TestMode {
		s.deleteTestInvoice(ctx, invoice)
	}

	return &Result{Outcome: OutcomeSuccess, InvoiceNumber: invoice.Number}, nil
}

// sendConfirmation emails the customer about the created invoice. The invoice
// is already the source of truth, so a delivery failure is logged and alerted
// but never fails the event.
func (s *WebhookService) sendConfirmation(ctx context.Context, eventID string, sess *stripe.CheckoutSession, invoice *clients.InvoiceResult) {
	var recipient string
	if sess.CustomerDetails != nil {
		recipient = sess.CustomerDetails.Email
	}
	if recipient == "" {
		s.logger.WithField("event_id", eventID).Info("no customer email, skipping confirmation")
		return
	}

	subject := "Invoice Notification"
	body := fmt.Sprintf("Your invoice %s%s has been created successfully.", invoice.Series, invoice.Number)
	if err := s.mailer.Send(ctx, recipient, subject, body); err != nil {
		s.logger.WithError(err).WithField("event_id", eventID).Error("failed to send confirmation email")
		s.alerter.Alert(ctx, eventID, fmt.Sprintf("confirmation email failed: %v", err))
	}
}

// deleteTestInvoice voids the invoice that test mode just created, verifying
// the round trip without leaving documents behind.
func (s *WebhookService) deleteTestInvoice(ctx context.Context, invoice *clients.InvoiceResult) {
	if invoice.Number == "" {
		s.logger.Error("no invoice number in response, cannot delete test invoice")
		return
	}
	if err := s.billing.DeleteInvoice(ctx, invoice.Number); err != nil {
		s.logger.WithError(err).WithField("number", invoice.Number).Error("failed to delete test invoice")
		return
	}
	s.logger.WithField("number", invoice.Number).Info("test invoice deleted")
}
