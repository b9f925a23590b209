package locale

import (
	"strings"
)

const (
	DefaultTimezone = "Asia/Kolkata"
	DefaultRegion   = "IN"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2
	Name            string
	DefaultTimezone string
	Aliases         []string // other names the zone database or operators use
}

// Matches reports whether tz names one of the country's zones.
func (c Country) Matches(tz string) bool {
	if strings.EqualFold(tz, c.DefaultTimezone) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(tz, alias) {
			return true
		}
	}
	return false
}

var Countries = map[string]Country{
	"IN": {
		Code:            "IN",
		Name:            "India",
		DefaultTimezone: "Asia/Kolkata",
		Aliases:         []string{"Asia/Calcutta", "IST"},
	},
	"NP": {
		Code:            "NP",
		Name:            "Nepal",
		DefaultTimezone: "Asia/Kathmandu",
		Aliases:         []string{"Asia/Katmandu"},
	},
}

// DetectRegion maps a time zone name to its region code, defaulting to India.
func DetectRegion(tz string) string {
	for code, c := range Countries {
		if c.Matches(tz) {
			return code
		}
	}
	return DefaultRegion
}
