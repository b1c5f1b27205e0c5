package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

func invoiceConfig() config.InvoiceConfig {
	return config.InvoiceConfig{
		CompanyVatCode:    "RO12345678",
		SeriesName:        "FCT",
		MeasuringUnitName: "buc",
		Currency:          "RON",
		TaxName:           "Normala",
		TaxPercentage:     19,
		SaveToDb:          false,
		IsService:         true,
		IsTaxIncluded:     true,
	}
}

func completedSession() *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		Created:     1700000000,
		AmountTotal: 14999,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Name:  "Ion Popescu",
			Email: "ion@example.com",
			Address: &stripe.Address{
				Line1:      "Str. Memorandumului 28",
				City:       "Cluj-Napoca",
				PostalCode: "400114",
				Country:    "RO",
				State:      "Cluj",
			},
			TaxIDs: []*stripe.CheckoutSessionCustomerDetailsTaxID{
				{Value: "RO98765432"},
			},
		},
	}
}

func TestBuildInvoice(t *testing.T) {
	juris := models.Jurisdiction{County: "Cluj", City: "Cluj-Napoca"}

	doc := services.BuildInvoice(completedSession(), juris, invoiceConfig())

	assert.Equal(t, "RO12345678", doc.CompanyVatCode)
	assert.Equal(t, "FCT", doc.SeriesName)
	assert.False(t, doc.IsDraft)

	// 1700000000 is 2023-11-14 22:13:20 UTC; both dates carry the event day.
	assert.Equal(t, "2023-11-14", doc.IssueDate)
	assert.Equal(t, "2023-11-14", doc.DueDate)

	assert.Equal(t, "Ion Popescu", doc.Client.Name)
	assert.Equal(t, "RO98765432", doc.Client.VatCode)
	assert.True(t, doc.Client.IsTaxPayer)
	assert.Equal(t, "Str. Memorandumului 28, 400114", doc.Client.Address)
	assert.Equal(t, "Cluj-Napoca", doc.Client.City)
	assert.Equal(t, "Cluj", doc.Client.County)
	assert.Equal(t, "RO", doc.Client.Country)
	assert.Equal(t, "ion@example.com", doc.Client.Email)

	require.Len(t, doc.Products, 1)
	product := doc.Products[0]
	assert.Equal(t, 149.99, product.Price)
	assert.Equal(t, float64(1), product.Quantity)
	assert.Equal(t, "RON", product.Currency)
	assert.Equal(t, float64(19), product.TaxPercentage)
	assert.True(t, product.IsService)

	require.NotNil(t, doc.Payment)
	assert.Equal(t, 149.99, doc.Payment.Value)
	assert.Equal(t, "Card", doc.Payment.Type)
	assert.False(t, doc.Payment.IsCash)

	assert.Nil(t, doc.Discount)
}

func TestBuildInvoiceDefaultsForMissingClient(t *testing.T) {
	sess := &stripe.CheckoutSession{Created: 1700000000, AmountTotal: 5000}
	juris := models.Jurisdiction{County: models.UnknownCounty, City: models.UnknownCity}

	doc := services.BuildInvoice(sess, juris, invoiceConfig())

	assert.Equal(t, "Unknown Client", doc.Client.Name)
	assert.Equal(t, "unknown@example.com", doc.Client.Email)
	assert.Equal(t, "0000000000000", doc.Client.VatCode)
	assert.False(t, doc.Client.IsTaxPayer)
	assert.Equal(t, models.UnknownCountry, doc.Client.Country)
	assert.Empty(t, doc.Client.Address)
}

func TestBuildInvoiceNonRomanianVatIsNotTaxPayer(t *testing.T) {
	sess := completedSession()
	sess.CustomerDetails.TaxIDs[0].Value = "DE811907980"

	doc := services.BuildInvoice(sess, models.Jurisdiction{}, invoiceConfig())

	assert.Equal(t, "DE811907980", doc.Client.VatCode)
	assert.False(t, doc.Client.IsTaxPayer)
}

func TestBuildInvoiceTestModeOmitsPayment(t *testing.T) {
	cfg := invoiceConfig()
	cfg.TestMode = true

	doc := services.BuildInvoice(completedSession(), models.Jurisdiction{}, cfg)

	assert.Nil(t, doc.Payment)
}

func TestBuildInvoicePercentageDiscount(t *testing.T) {
	sess := completedSession()
	sess.Discounts = []*stripe.CheckoutSessionDiscount{
		{
			PromotionCode: &stripe.PromotionCode{Code: "WELCOME10"},
			Coupon:        &stripe.Coupon{PercentOff: 10},
		},
	}

	doc := services.BuildInvoice(sess, models.Jurisdiction{}, invoiceConfig())

	require.NotNil(t, doc.Discount)
	assert.Equal(t, "WELCOME10", doc.Discount.Name)
	assert.True(t, doc.Discount.IsDiscount)
	assert.Equal(t, "percentage", doc.Discount.DiscountType)
	assert.Equal(t, float64(10), doc.Discount.DiscountValue)
}

func TestBuildInvoiceAmountDiscount(t *testing.T) {
	sess := completedSession()
	sess.Discounts = []*stripe.CheckoutSessionDiscount{
		{
			PromotionCode: &stripe.PromotionCode{
				Code:   "MINUS20",
				Coupon: &stripe.Coupon{AmountOff: 2000},
			},
		},
	}

	doc := services.BuildInvoice(sess, models.Jurisdiction{}, invoiceConfig())

	require.NotNil(t, doc.Discount)
	assert.Equal(t, "amount", doc.Discount.DiscountType)
	assert.Equal(t, float64(20), doc.Discount.DiscountValue)
}

func TestBuildInvoiceDiscountWithoutPromotionCodeIgnored(t *testing.T) {
	sess := completedSession()
	sess.Discounts = []*stripe.CheckoutSessionDiscount{
		{Coupon: &stripe.Coupon{PercentOff: 50}},
	}

	doc := services.BuildInvoice(sess, models.Jurisdiction{}, invoiceConfig())

	assert.Nil(t, doc.Discount)
}

func TestExtractAddress(t *testing.T) {
	addr := services.ExtractAddress(completedSession())

	assert.Equal(t, models.Address{
		Line1:      "Str. Memorandumului 28",
		City:       "Cluj-Napoca",
		PostalCode: "400114",
		Country:    "RO",
		State:      "Cluj",
	}, addr)

	assert.Equal(t, models.Address{}, services.ExtractAddress(&stripe.CheckoutSession{}))
}
