package pipeline

import (
	"strings"

	"personals/internal/util"
)

// LocationAlias maps a lowercased spelling to its canonical place name.
type LocationAlias struct {
	Key       string
	Canonical string
}

// LocationAliases is consulted in order; partial matches take the first hit.
var LocationAliases = []LocationAlias{
	{Key: "nyc", Canonical: "New York City"},
	{Key: "new york city", Canonical: "New York City"},
	{Key: "new york", Canonical: "New York City"},
	{Key: "la", Canonical: "Los Angeles"},
	{Key: "los angeles", Canonical: "Los Angeles"},
	{Key: "sf", Canonical: "San Francisco"},
	{Key: "san francisco", Canonical: "San Francisco"},
	{Key: "dc", Canonical: "Washington DC"},
	{Key: "washington dc", Canonical: "Washington DC"},
	{Key: "washington d.c.", Canonical: "Washington DC"},
	{Key: "chicago", Canonical: "Chicago"},
	{Key: "atlanta", Canonical: "Atlanta"},
	{Key: "boston", Canonical: "Boston"},
	{Key: "seattle", Canonical: "Seattle"},
	{Key: "portland", Canonical: "Portland"},
	{Key: "denver", Canonical: "Denver"},
	{Key: "austin", Canonical: "Austin"},
	{Key: "miami", Canonical: "Miami"},
	{Key: "philadelphia", Canonical: "Philadelphia"},
	{Key: "philly", Canonical: "Philadelphia"},
}

// ParseCategories splits on comma, semicolon or pipe, keeping source order.
func ParseCategories(input string) []string {
	return util.SplitAny(input, ",;|")
}

// ParseLocations splits on commas and normalizes each place name.
func ParseLocations(input string) []string {
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		if loc := NormalizeLocation(part); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

// NormalizeLocation resolves exact aliases, then substring aliases, then
// falls back to title-casing the trimmed input.
func NormalizeLocation(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	key := strings.ToLower(trimmed)

	for _, alias := range LocationAliases {
		if alias.Key == key {
			return alias.Canonical
		}
	}
	for _, alias := range LocationAliases {
		if strings.Contains(key, alias.Key) {
			return alias.Canonical
		}
	}
	return util.TitleWords(trimmed)
}
