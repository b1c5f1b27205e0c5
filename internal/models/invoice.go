package models

// InvoiceClient is the billed party section of a SmartBill invoice.
type InvoiceClient struct {
	Name       string `json:"name"`
	VatCode    string `json:"vatCode"`
	IsTaxPayer bool   `json:"isTaxPayer"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city"`
	County     string `json:"county"`
	Country    string `json:"country"`
	Email      string `json:"email,omitempty"`
	SaveToDb   bool   `json:"saveToDb"`
}

// InvoiceProduct is a single invoice line.
type InvoiceProduct struct {
	Name               string  `json:"name"`
	Code               string  `json:"code,omitempty"`
	ProductDescription string  `json:"productDescription,omitempty"`
	IsDiscount         bool    `json:"isDiscount"`
	MeasuringUnitName  string  `json:"measuringUnitName"`
	Currency           string  `json:"currency"`
	Quantity           float64 `json:"quantity"`
	Price              float64 `json:"price"`
	IsTaxIncluded      bool    `json:"isTaxIncluded"`
	TaxName            string  `json:"taxName"`
	TaxPercentage      float64 `json:"taxPercentage"`
	SaveToDb           bool    `json:"saveToDb"`
	IsService          bool    `json:"isService"`
}

// InvoiceDiscount describes a promotion applied to the invoice. DiscountType is
// "percentage" or "amount".
type InvoiceDiscount struct {
	Name              string  `json:"name"`
	IsDiscount        bool    `json:"isDiscount"`
	NumberOfItems     int     `json:"numberOfItems"`
	MeasuringUnitName string  `json:"measuringUnitName"`
	Currency          string  `json:"currency"`
	IsTaxIncluded     bool    `json:"isTaxIncluded"`
	TaxName           string  `json:"taxName"`
	TaxPercentage     float64 `json:"taxPercentage"`
	DiscountType      string  `json:"discountType"`
	DiscountValue     float64 `json:"discountValue"`
}

// InvoicePayment records the collected payment. Omitted entirely in test mode.
type InvoicePayment struct {
	Value         float64 `json:"value"`
	PaymentSeries string  `json:"paymentSeries,omitempty"`
	Type          string  `json:"type"`
	IsCash        bool    `json:"isCash"`
}

// InvoiceDocument is the invoice shape the SmartBill API accepts. Optional
// sections are pointers so an absent value is omitted from the wire format
// instead of being stripped after the fact.
type InvoiceDocument struct {
	CompanyVatCode string           `json:"companyVatCode"`
	Client         InvoiceClient    `json:"client"`
	IssueDate      string           `json:"issueDate"`
	SeriesName     string           `json:"seriesName"`
	IsDraft        bool             `json:"isDraft"`
	DueDate        string           `json:"dueDate"`
	DeliveryDate   string           `json:"deliveryDate,omitempty"`
	Products       []InvoiceProduct `json:"products"`
	Discount       *InvoiceDiscount `json:"discount,omitempty"`
	Payment        *InvoicePayment  `json:"payment,omitempty"`
}
