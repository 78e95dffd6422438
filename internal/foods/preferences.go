package foods

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DietType is the patient's dietary preference.
type DietType string

const (
	Vegetarian    DietType = "vegetarian"
	NonVegetarian DietType = "non-vegetarian"
	Both          DietType = "both"
)

// ParseDietType validates a diet type. Empty input means Both.
func ParseDietType(s string) (DietType, error) {
	switch DietType(s) {
	case "":
		return Both, nil
	case Vegetarian, NonVegetarian, Both:
		return DietType(s), nil
	}
	return "", fmt.Errorf("diet_type must be one of %q, %q or %q, got %q", Vegetarian, NonVegetarian, Both, s)
}

// Preferences narrow the candidate pool and steer the plan prompt.
type Preferences struct {
	DietType DietType `json:"diet_type"`
	Region   string   `json:"region,omitempty"`
}

// DefaultPreferences applies no dietary or regional restriction.
func DefaultPreferences() Preferences {
	return Preferences{DietType: Both}
}

// Canonical region names used in the knowledge base.
var regions = map[string]string{
	"north":      "North",
	"south":      "South",
	"east":       "East",
	"west":       "West",
	"north_east": "North East",
	"northeast":  "North East",
	"north east": "North East",
}

// NormalizeRegion maps a user-supplied region onto the knowledge-base name.
// Unknown regions are title-cased and passed through.
func NormalizeRegion(region string) string {
	trimmed := strings.TrimSpace(region)
	if name, ok := regions[strings.ToLower(trimmed)]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(trimmed))
}

// FiltersRegion reports whether the preference restricts by region.
func (p Preferences) FiltersRegion() bool {
	return p.Region != "" && !strings.EqualFold(p.Region, "all")
}

// nonVegKeywords mark an ingredient list as containing animal products.
var nonVegKeywords = []string{
	"fish", "chicken", "mutton", "lamb", "pork", "egg", "prawn", "shrimp",
	"crab", "lobster", "meat", "beef", "goat", "duck", "turkey", "bacon",
	"sausage", "ham", "sardine", "tuna", "salmon", "mackerel", "hilsa", "rohu",
}

// IsNonVegetarian does a substring match of the keyword set against the
// ingredient text.
func IsNonVegetarian(ingredients string) bool {
	lower := strings.ToLower(ingredients)
	for _, kw := range nonVegKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
