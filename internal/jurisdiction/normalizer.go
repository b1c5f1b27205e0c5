package jurisdiction

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CountyBucharest is the forced county value for capital addresses.
const CountyBucharest = "Bucuresti"

// validCounties is the ground truth for jurisdiction validation: Romania's
// administrative counties plus the capital, in their diacritic-free billing form.
var validCounties = []string{
	"Alba", "Arad", "Arges", "Bacau", "Bihor", "Bistrita-Nasaud", "Botosani", "Brasov",
	"Braila", "Buzau", "Caras-Severin", "Cluj", "Constanta", "Covasna", "Dambovita", "Dolj",
	"Galati", "Giurgiu", "Gorj", "Harghita", "Hunedoara", "Ialomita", "Iasi", "Ilfov",
	"Maramures", "Mehedinti", "Mures", "Neamt", "Olt", "Prahova", "Satu Mare", "Salaj",
	"Sibiu", "Suceava", "Teleorman", "Timis", "Tulcea", "Vaslui", "Valcea", "Vrancea",
	CountyBucharest,
}

// stripDiacritics decomposes to NFD and drops combining marks, so "București"
// becomes "Bucuresti".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw county name: diacritics removed, surrounding
// whitespace trimmed, first rune uppercased and the rest lowercased. Pure and
// idempotent; invalid input degrades to an empty string, which callers must
// treat as "not recognized".
func Normalize(raw string) string {
	folded, _, err := transform.String(stripDiacritics, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.TrimSpace(folded)
	if folded == "" {
		return ""
	}
	r := []rune(folded)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// IsValidCounty reports whether name is in the valid-county set, ignoring case.
func IsValidCounty(name string) bool {
	for _, county := range validCounties {
		if strings.EqualFold(county, name) {
			return true
		}
	}
	return false
}

// ValidCounties returns a copy of the valid-county set.
func ValidCounties() []string {
	out := make([]string, len(validCounties))
	copy(out, validCounties)
	return out
}
