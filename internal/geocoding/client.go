package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// AddressDetails is the structured breakdown Nominatim returns for a match.
// Only the fields the jurisdiction resolver consumes are kept.
type AddressDetails struct {
	County       string `json:"county"`
	State        string `json:"state"`
	Region       string `json:"region"`
	CityDistrict string `json:"city_district"`
	Suburb       string `json:"suburb"`
}

// Geocoder resolves a free-text query to a best-effort address breakdown.
// A nil result with a nil error means the provider found nothing. Callers own
// quota and backoff policy; implementations must honor the context deadline.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*AddressDetails, error)
}

// NominatimClient queries the OpenStreetMap Nominatim search API.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewNominatimClient creates a geocoding client. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration, logger *logrus.Logger) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.WithField("component", "geocoding.nominatim"),
	}
}

// Geocode looks up query and returns the address breakdown of the best match,
// or nil if the provider found nothing.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (*AddressDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var results []struct {
		DisplayName string         `json:"display_name"`
		Address     AddressDetails `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(results) == 0 {
		c.logger.WithField("query", query).Debug("no geocoding result")
		return nil, nil
	}

	c.logger.WithFields(logrus.Fields{
		"query": query,
		"match": results[0].DisplayName,
	}).Debug("geocoding result")

	details := results[0].Address
	return &details, nil
}
