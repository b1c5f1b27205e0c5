package models

// Sentinel values used when the upstream address is missing a field. Resolution
// always terminates with one of these rather than an error.
const (
	UnknownCity    = "Unknown City"
	UnknownCountry = "Unknown Country"
	UnknownCounty  = "Unknown County"
	UnknownSector  = "Unknown Sector"
)

// Address is the raw billing address as supplied by the payment processor.
// Every field is untrusted free text; State carries the claimed county name,
// which may be empty, misspelled or a foreign exonym.
type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
	State      string
}

// Jurisdiction is the resolved (county, city) pair placed on the invoice.
// County is either a member of the valid Romanian county list or UnknownCounty;
// City is the original city, a "Sector N" label for Bucharest, or UnknownSector.
type Jurisdiction struct {
	County string
	City   string
}
