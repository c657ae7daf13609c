package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentaustralia/leadgen/pkg/models"
)

func TestNormalize_FullRecord(t *testing.T) {
	a := NewAdapter("AU")

	input, ok := a.Normalize(models.RawRecord{
		CompanyName: "  Harbour Hotel Group  ",
		ContactName: " Sophie Nguyen ",
		Title:       "General Manager",
		Email:       " Sophie@HarbourHotels.COM.AU ",
		Phone:       "(02) 9555 0100",
		Website:     "harbourhotels.com.au/",
		Industry:    "hospitality",
		Location:    "sydney metro area",
		Source:      models.SourceApollo,
	})
	require.True(t, ok)

	assert.Equal(t, "Harbour Hotel Group", input.CompanyName)
	assert.Equal(t, "Sophie Nguyen", input.ContactName)
	assert.Equal(t, "sophie@harbourhotels.com.au", input.Email)
	assert.Equal(t, "+61295550100", input.Phone)
	assert.Equal(t, "https://harbourhotels.com.au", input.Website)
	assert.Equal(t, "Sydney, NSW", input.Location)
	assert.Equal(t, models.SourceApollo, input.Source)
}

func TestNormalize_DiscardsUnactionable(t *testing.T) {
	a := NewAdapter("AU")

	_, ok := a.Normalize(models.RawRecord{
		Phone:    "(02) 9555 0100",
		Website:  "https://example.com",
		Industry: "hospitality",
		Location: "Sydney",
	})
	assert.False(t, ok)

	// Any one identifying field keeps the record
	_, ok = a.Normalize(models.RawRecord{Email: "someone@example.com"})
	assert.True(t, ok)
	_, ok = a.Normalize(models.RawRecord{ContactName: "Liam Carter"})
	assert.True(t, ok)
}

func TestNormalize_KeepsUnparseablePhone(t *testing.T) {
	a := NewAdapter("AU")

	input, ok := a.Normalize(models.RawRecord{
		CompanyName: "Aroma Boutique",
		Phone:       "call reception",
	})
	require.True(t, ok)
	assert.Equal(t, "call reception", input.Phone)
}

func TestCanonicalLocation(t *testing.T) {
	assert.Equal(t, "Melbourne, VIC", canonicalLocation("melbourne cbd"))
	assert.Equal(t, "Gold Coast, QLD", canonicalLocation("Surfers Paradise, Gold Coast"))
	assert.Equal(t, "Alice Springs NT", canonicalLocation(" Alice Springs NT "))
	assert.Equal(t, "", canonicalLocation("  "))
}

func TestCanonicalLocation_DeterministicWithMultipleCities(t *testing.T) {
	// Mentioning several known cities must always pick the same one, or the
	// (company, location) dedup key would split for identical inputs.
	for i := 0; i < 50; i++ {
		assert.Equal(t, "Melbourne, VIC", canonicalLocation("Sydney Rd, Brunswick, Melbourne"))
		assert.Equal(t, "Gold Coast, QLD", canonicalLocation("between Brisbane and the Gold Coast"))
	}
}

func TestNormalizeBatch_CountsSkipped(t *testing.T) {
	a := NewAdapter("AU")

	inputs, skipped := a.NormalizeBatch([]models.RawRecord{
		{CompanyName: "A Co"},
		{Phone: "0295550100"}, // unactionable
		{Email: "b@b.com"},
		{},                    // unactionable
	})
	assert.Len(t, inputs, 2)
	assert.Equal(t, 2, skipped)
}

func TestNormalize_DefaultsSource(t *testing.T) {
	a := NewAdapter("")

	input, ok := a.Normalize(models.RawRecord{CompanyName: "A Co"})
	require.True(t, ok)
	assert.Equal(t, models.SourceImported, input.Source)
}
