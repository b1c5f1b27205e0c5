package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

// InvoiceResult is the SmartBill response to invoice creation.
type InvoiceResult struct {
	Number  string `json:"number"`
	Series  string `json:"series"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// SmartBill is the billing API contract the webhook pipeline depends on.
type SmartBill interface {
	CreateInvoice(ctx context.Context, doc *models.InvoiceDocument) (*InvoiceResult, error)
	DeleteInvoice(ctx context.Context, number string) error
}

// APIError is a non-2xx response from the SmartBill API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smartbill returned status %d: %s", e.StatusCode, e.Body)
}

// SmartBillClient calls the SmartBill invoice API with Basic auth.
type SmartBillClient struct {
	endpoint       string
	username       string
	token          string
	companyVatCode string
	seriesName     string
	httpClient     *http.Client
	logger         *logrus.Entry
}

// NewSmartBillClient creates a billing client. The company VAT code and series
// are needed for deletion, which the API addresses by (cif, series, number).
func NewSmartBillClient(sb config.SmartBillConfig, inv config.InvoiceConfig, logger *logrus.Logger) *SmartBillClient {
	return &SmartBillClient{
		endpoint:       sb.Endpoint,
		username:       sb.Username,
		token:          sb.Token,
		companyVatCode: inv.CompanyVatCode,
		seriesName:     inv.SeriesName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.WithField("component", "clients.smartbill"),
	}
}

// CreateInvoice submits the invoice document and returns the assigned number.
func (c *SmartBillClient) CreateInvoice(ctx context.Context, doc *models.InvoiceDocument) (*InvoiceResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result InvoiceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"series": result.Series,
		"number": result.Number,
	}).Info("invoice created")

	return &result, nil
}

// DeleteInvoice voids a previously created invoice.
func (c *SmartBillClient) DeleteInvoice(ctx context.Context, number string) error {
	params := url.Values{}
	params.Set("cif", c.companyVatCode)
	params.Set("seriesname", c.seriesName)
	params.Set("number", number)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s?%s", c.endpoint, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoice deletion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	c.logger.WithField("number", number).Info("invoice deleted")
	return nil
}
