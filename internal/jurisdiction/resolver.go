package jurisdiction

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"invoicing-service/internal/geocoding"
	"invoicing-service/internal/models"
)

// sectorPattern matches the literal word "Sector" followed by optional
// whitespace and digits, e.g. "Sector 3".
var sectorPattern = regexp.MustCompile(`(?i)Sector\s*\d+`)

// Resolver turns an untrusted billing address into a valid invoice
// jurisdiction. It prefers offline validation against the county list and
// falls back to geocoding lookups; every failure path ends in a sentinel, so
// resolution never returns an error to its caller.
type Resolver struct {
	geocoder geocoding.Geocoder
	logger   *logrus.Entry
}

// NewResolver creates a jurisdiction resolver backed by the given geocoder.
func NewResolver(geocoder geocoding.Geocoder, logger *logrus.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		logger:   logger.WithField("component", "jurisdiction.resolver"),
	}
}

// Resolve returns the (county, city) pair for addr. Bucharest addresses take
// the sector path; all others go through the county fallback chain with the
// original city kept as-is.
func (r *Resolver) Resolve(ctx context.Context, addr models.Address) models.Jurisdiction {
	city := addr.City
	if city == "" {
		city = models.UnknownCity
	}

	if isBucharest(city) {
		county, sector := r.ResolveCity(ctx, addr)
		return models.Jurisdiction{County: county, City: sector}
	}

	county := r.ResolveCounty(ctx, strings.TrimSpace(addr.State), addr)
	return models.Jurisdiction{County: county, City: city}
}

// ResolveCounty validates or derives the county for a non-Bucharest address.
// Decision order, first success wins:
//  1. a supplied rawCounty that normalizes into the valid list is returned
//     without any network call;
//  2. a lookup on "postalCode, country" returns its county/state/region field
//     normalized — even when that value is not itself in the valid list, the
//     geocoder is trusted unconditionally on this branch;
//  3. a lookup on "city, country" does the same, degrading to UnknownCounty
//     when the provider answers without a usable field;
//  4. with both lookups dead, the normalized rawCounty (if any) or
//     UnknownCounty.
//
// Lookup timeouts and provider errors are swallowed per step; a failed step
// never prevents the next one from running.
func (r *Resolver) ResolveCounty(ctx context.Context, rawCounty string, addr models.Address) string {
	normalized := Normalize(rawCounty)
	if normalized != "" {
		if IsValidCounty(normalized) {
			return normalized
		}
		r.logger.WithField("county", normalized).Info("county not recognized, attempting geocoding lookup")
	} else {
		r.logger.Info("no county provided, attempting geocoding lookup")
	}

	if county := r.lookupCounty(ctx, joinQuery(addr.PostalCode, addr.Country), false); county != "" {
		return county
	}

	if county := r.lookupCounty(ctx, joinQuery(addr.City, addr.Country), true); county != "" {
		return county
	}

	if normalized != "" {
		return normalized
	}
	return models.UnknownCounty
}

// lookupCounty runs one geocoding query and extracts the county field. With
// sentinelOnEmpty set, a provider response without a usable field yields
// UnknownCounty; otherwise an empty string signals "try the next strategy".
func (r *Resolver) lookupCounty(ctx context.Context, query string, sentinelOnEmpty bool) string {
	details, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Warn("geocoding lookup failed")
		return ""
	}
	if details == nil {
		r.logger.WithField("query", query).Warn("geocoding lookup returned no result")
		return ""
	}

	county := firstNonEmpty(details.County, details.State, details.Region)
	if county == "" {
		if sentinelOnEmpty {
			return models.UnknownCounty
		}
		return ""
	}
	return Normalize(county)
}

// ResolveCity handles capital addresses: the county is forced to "Bucuresti"
// regardless of any claimed state value, and the city becomes the sector. The
// sector is taken from a text match on line1 then line2; failing that, from a
// geocoding lookup's city-district/suburb field; failing that, UnknownSector.
func (r *Resolver) ResolveCity(ctx context.Context, addr models.Address) (county, city string) {
	for _, line := range []string{addr.Line1, addr.Line2} {
		if line == "" {
			continue
		}
		if sector := sectorPattern.FindString(line); sector != "" {
			r.logger.WithField("sector", sector).Debug("sector extracted from address line")
			return CountyBucharest, sector
		}
	}

	query := joinQuery(addr.Line1, addr.City, addr.PostalCode, addr.Country)
	details, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Warn("geocoding lookup for sector failed")
		return CountyBucharest, models.UnknownSector
	}
	if details == nil {
		r.logger.WithField("query", query).Warn("no geocoding result for sector lookup")
		return CountyBucharest, models.UnknownSector
	}

	if sector := firstNonEmpty(details.CityDistrict, details.Suburb); sector != "" {
		return CountyBucharest, sector
	}
	return CountyBucharest, models.UnknownSector
}

// isBucharest matches the capital in both its plain and diacritic spellings.
func isBucharest(city string) bool {
	lower := strings.ToLower(city)
	return lower == "bucuresti" || lower == "bucurești"
}

// joinQuery builds a geocoding query from address parts, omitting empties.
func joinQuery(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
