// Package classify holds the pure classifiers: vendor → spend category,
// receipt → refund flag, and the tolerant decoder for the external document
// classifier's JSON payloads.
package classify

import (
	"strings"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
)

// rule maps a keyword set to a category with a fixed confidence. Rules are
// evaluated in order and the first substring hit wins, so the order of this
// list is part of the contract.
type rule struct {
	keywords   []string
	category   constants.Category
	confidence float64
}

var categoryRules = []rule{
	{
		keywords: []string{
			"home depot", "lowes", "lowe's", "menards", "ace hardware",
			"84 lumber", "lumber", "building supply", "hardware", "ferguson",
			"fastenal", "drywall", "concrete", "masonry",
		},
		category:   constants.Materials,
		confidence: 0.95,
	},
	{
		keywords: []string{
			"shell", "chevron", "exxon", "speedway", "pilot", "marathon",
			"fuel", "gas station", "diesel",
		},
		category:   constants.Fuel,
		confidence: 0.90,
	},
	{
		keywords: []string{
			"sunbelt", "united rentals", "rental", "harbor freight",
			"grainger", "northern tool", "equipment", "tool",
		},
		category:   constants.Equipment,
		confidence: 0.90,
	},
	{
		keywords: []string{
			"mcdonald", "subway", "chipotle", "starbucks", "restaurant",
			"cafe", "pizza", "deli", "diner", "grill",
		},
		category:   constants.Meals,
		confidence: 0.85,
	},
	{
		keywords:   []string{"staples", "office depot", "office max", "office"},
		category:   constants.Office,
		confidence: 0.85,
	},
	{
		keywords:   []string{"hotel", "motel", "airbnb", "airline", "airways", "inn "},
		category:   constants.Travel,
		confidence: 0.85,
	},
	{
		keywords:   []string{"uber", "lyft", "taxi", "parking", "toll"},
		category:   constants.Transportation,
		confidence: 0.85,
	},
	{
		keywords: []string{
			"electric", "power co", "water dept", "utility", "utilities",
			"internet", "verizon", "at&t", "comcast",
		},
		category:   constants.Utilities,
		confidence: 0.85,
	},
	{
		keywords: []string{
			"engineer", "architect", "attorney", "legal", "permit",
			"inspection", "surveyor", "consulting",
		},
		category:   constants.Professional,
		confidence: 0.85,
	},
}

// Categorize maps a vendor string to a spend category with a confidence.
// Unmatched vendors land in Other at 0.5.
func Categorize(vendor string) (string, float64) {
	lower := strings.ToLower(vendor)
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return string(r.category), r.confidence
			}
		}
	}
	return string(constants.Other), 0.5
}
