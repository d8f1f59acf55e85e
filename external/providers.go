package external

import (
	"slices"
	"strings"
)

type ProviderCode string

const (
	DivvyLegacy    ProviderCode = "divvy-2013"
	DivvyQuarterly ProviderCode = "divvy-2019q2"
	DivvyRides     ProviderCode = "divvy-2020"
	Unknown        ProviderCode = "unknown"
)

// ProviderProfile describes one known header layout. A header belongs to the profile
// when it carries every signature column.
type ProviderProfile struct {
	Name      string
	Code      ProviderCode
	Signature []string
}

// Factory for resolving header layouts to providers
type ProviderFactory struct {
	profiles []ProviderProfile
}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{
		profiles: []ProviderProfile{
			{
				Name:      "Divvy 2019 Q2 export",
				Code:      DivvyQuarterly,
				Signature: []string{"01 - Rental Details Rental ID", "01 - Rental Details Local Start Time"},
			},
			{
				Name:      "Divvy rides (2020 onward)",
				Code:      DivvyRides,
				Signature: []string{"ride_id", "rideable_type", "started_at"},
			},
			{
				Name:      "Divvy trips (2013 to 2019)",
				Code:      DivvyLegacy,
				Signature: []string{"trip_id", "bikeid"},
			},

			// Add more providers here
		},
	}
}

// Detect matches header tokens against the known profiles in order. Tokens are
// compared after trimming spaces and surrounding double quotes.
func (f *ProviderFactory) Detect(header []string) (ProviderProfile, bool) {
	cleaned := make([]string, 0, len(header))
	for _, h := range header {
		cleaned = append(cleaned, strings.Trim(strings.TrimSpace(h), `"`))
	}
	for _, p := range f.profiles {
		if containsAll(cleaned, p.Signature) {
			return p, true
		}
	}
	return ProviderProfile{Name: "unrecognised layout", Code: Unknown}, false
}

func containsAll(header, signature []string) bool {
	for _, s := range signature {
		if !slices.Contains(header, s) {
			return false
		}
	}
	return true
}
