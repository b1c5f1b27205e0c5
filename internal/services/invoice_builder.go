package services

import (
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

// Defaults used when the checkout session is missing client fields.
const (
	defaultClientName  = "Unknown Client"
	defaultClientEmail = "unknown@example.com"
	defaultVatCode     = "0000000000000"
)

// clientDetails is the billed-party data pulled out of a checkout session.
type clientDetails struct {
	Name    string
	Email   string
	VatCode string
}

// ExtractAddress maps the session's billing address to the internal form. All
// fields stay raw; sentinels are applied by the consumers that need them.
func ExtractAddress(sess *stripe.CheckoutSession) models.Address {
	if sess.CustomerDetails == nil || sess.CustomerDetails.Address == nil {
		return models.Address{}
	}
	addr := sess.CustomerDetails.Address
	return models.Address{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		State:      addr.State,
	}
}

// extractClient pulls name, email and VAT code from the session, falling back
// to documented defaults. The VAT code comes from the first tax ID, if any.
func extractClient(sess *stripe.CheckoutSession) clientDetails {
	client := clientDetails{
		Name:    defaultClientName,
		Email:   defaultClientEmail,
		VatCode: defaultVatCode,
	}

	details := sess.CustomerDetails
	if details == nil {
		return client
	}
	if details.Name != "" {
		client.Name = details.Name
	}
	if details.Email != "" {
		client.Email = details.Email
	}
	if len(details.TaxIDs) > 0 && details.TaxIDs[0] != nil && details.TaxIDs[0].Value != "" {
		client.VatCode = details.TaxIDs[0].Value
	}
	return client
}

// BuildInvoice assembles the SmartBill invoice document from a completed
// checkout session and the resolved jurisdiction. Pure transformation: fixed
// fields come from configuration, amounts are converted from minor units, and
// the payment section is left out in test mode.
func BuildInvoice(sess *stripe.CheckoutSession, juris models.Jurisdiction, cfg config.InvoiceConfig) *models.InvoiceDocument {
	client := extractClient(sess)
	addr := ExtractAddress(sess)

	country := addr.Country
	if country == "" {
		country = models.UnknownCountry
	}

	issueDate := time.Unix(sess.Created, 0).UTC().Format("2006-01-02")
	amount := float64(sess.AmountTotal) / 100

	doc := &models.InvoiceDocument{
		CompanyVatCode: cfg.CompanyVatCode,
		Client: models.InvoiceClient{
			Name:       client.Name,
			VatCode:    client.VatCode,
			IsTaxPayer: strings.HasPrefix(client.VatCode, "RO"),
			Address:    joinAddressParts(addr.Line1, addr.Line2, addr.PostalCode),
			City:       juris.City,
			County:     juris.County,
			Country:    country,
			Email:      client.Email,
			SaveToDb:   cfg.SaveToDb,
		},
		IssueDate:  issueDate,
		SeriesName: cfg.SeriesName,
		IsDraft:    false,
		DueDate:    issueDate,
		Products: []models.InvoiceProduct{
			{
				Name:              "Placeholder Product",
				IsDiscount:        false,
				MeasuringUnitName: cfg.MeasuringUnitName,
				Currency:          cfg.Currency,
				Quantity:          1,
				Price:             amount,
				IsTaxIncluded:     cfg.IsTaxIncluded,
				TaxName:           cfg.TaxName,
				TaxPercentage:     cfg.TaxPercentage,
				SaveToDb:          cfg.SaveToDb,
				IsService:         cfg.IsService,
			},
		},
		Discount: buildDiscount(sess, cfg),
	}

	if !cfg.TestMode {
		doc.Payment = &models.InvoicePayment{
			Value:  amount,
			Type:   "Card",
			IsCash: false,
		}
	}

	return doc
}

// buildDiscount maps the first promotion-code discount on the session, if any.
func buildDiscount(sess *stripe.CheckoutSession, cfg config.InvoiceConfig) *models.InvoiceDiscount {
	for _, d := range sess.Discounts {
		if d == nil || d.PromotionCode == nil {
			continue
		}

		name := d.PromotionCode.Code
		if name == "" {
			name = "Unknown Promotion Code"
		}

		coupon := d.Coupon
		if coupon == nil {
			coupon = d.PromotionCode.Coupon
		}

		discountType := "unknown"
		var discountValue float64
		if coupon != nil {
			switch {
			case coupon.PercentOff > 0:
				discountType = "percentage"
				discountValue = coupon.PercentOff
			case coupon.AmountOff > 0:
				discountType = "amount"
				discountValue = float64(coupon.AmountOff) / 100
			}
		}

		return &models.InvoiceDiscount{
			Name:              name,
			IsDiscount:        true,
			NumberOfItems:     1,
			MeasuringUnitName: cfg.MeasuringUnitName,
			Currency:          cfg.Currency,
			IsTaxIncluded:     cfg.IsTaxIncluded,
			TaxName:           cfg.TaxName,
			TaxPercentage:     cfg.TaxPercentage,
			DiscountType:      discountType,
			DiscountValue:     discountValue,
		}
	}
	return nil
}

// joinAddressParts builds the single-line invoice address, omitting empties.
func joinAddressParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
