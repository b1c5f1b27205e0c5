package models

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookResponse is returned to the payment processor for every verified
// delivery. Status is "success", "duplicate" or "error"; processing errors are
// reported with a 200 so the processor does not retry on its own schedule.
type WebhookResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Error         string `json:"error,omitempty"`
}
