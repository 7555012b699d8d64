// README: Category definitions and the seeded default set.
package category

import "errors"

var ErrNotFound = errors.New("category not found")

type Category struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
}

// Defaults is the seeded category set.
var Defaults = []Category{
	{Slug: "petrol-pump", DisplayName: "Petrol Pump"},
	{Slug: "ev-charger", DisplayName: "EV Charger"},
	{Slug: "public-toilet", DisplayName: "Public Toilet"},
	{Slug: "hospital", DisplayName: "Hospital"},
	{Slug: "restaurant", DisplayName: "Restaurant"},
	{Slug: "cafe", DisplayName: "Cafe"},
	{Slug: "atm", DisplayName: "ATM"},
	{Slug: "parking", DisplayName: "Parking"},
	{Slug: "police-station", DisplayName: "Police Station"},
	{Slug: "fire-station", DisplayName: "Fire Station"},
}
