package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocations(t *testing.T) {
	assert.Equal(t, []string{"New York City", "Los Angeles", "San Francisco"}, ParseLocations("nyc, la, sf"))
	assert.Equal(t, []string{}, ParseLocations(""))
	assert.Equal(t, []string{}, ParseLocations(" , ,"))
	assert.Equal(t, []string{"Philadelphia", "Kansas City"}, ParseLocations("Philly,kansas city"))
}

func TestNormalizeLocation(t *testing.T) {
	cases := map[string]string{
		"NYC":              "New York City",
		" new york ":       "New York City",
		"Washington D.C.":  "Washington DC",
		"brooklyn":         "Brooklyn",
		"upstate new york": "New York City",
		"st. louis":        "St. Louis",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLocation(in), in)
	}
}

func TestNormalizeLocationPartialFollowsTableOrder(t *testing.T) {
	// "la" precedes "atlanta" in the alias table.
	assert.Equal(t, "Los Angeles", NormalizeLocation("atlanta area"))
}

func TestParseCategories(t *testing.T) {
	assert.Equal(t, []string{"Community", "Book Club", "Friendship"}, ParseCategories("Community; Book Club|Friendship"))
	assert.Equal(t, []string{}, ParseCategories(""))
	assert.Equal(t, []string{"a", "b"}, ParseCategories(" a ,, b ;"))
}
