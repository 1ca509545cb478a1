package constants

import (
	"strings"
)

type Category string

const (
	Materials      Category = "Materials"
	Fuel           Category = "Fuel"
	Equipment      Category = "Equipment"
	Meals          Category = "Meals"
	Office         Category = "Office"
	Travel         Category = "Travel"
	Transportation Category = "Transportation"
	Utilities      Category = "Utilities"
	Professional   Category = "Professional"
	Other          Category = "Other"
)

var allCategories = []Category{
	Materials,
	Fuel,
	Equipment,
	Meals,
	Office,
	Travel,
	Transportation,
	Utilities,
	Professional,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"building materials": Materials,
		"lumber":             Materials,
		"hardware":           Materials,
		"gas":                Fuel,
		"diesel":             Fuel,
		"tools":              Equipment,
		"rental":             Equipment,
		"food":               Meals,
		"supplies":           Office,
		"lodging":            Travel,
		"hotel":              Travel,
		"parking":            Transportation,
		"tolls":              Transportation,
		"permits":            Professional,
		"inspection":         Professional,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
