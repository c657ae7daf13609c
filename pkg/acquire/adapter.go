// Package acquire normalizes source-specific raw records into the candidate
// shape the lead store accepts.
package acquire

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scentaustralia/leadgen/pkg/models"
)

// auCities lists known city names with their state for canonical
// "City, State" location strings. Ordered longest name first so a location
// mentioning several cities always canonicalizes the same way.
var auCities = []struct {
	city  string
	state string
}{
	{"gold coast", "QLD"},
	{"wollongong", "NSW"},
	{"melbourne", "VIC"},
	{"newcastle", "NSW"},
	{"adelaide", "SA"},
	{"brisbane", "QLD"},
	{"canberra", "ACT"},
	{"geelong", "VIC"},
	{"cairns", "QLD"},
	{"darwin", "NT"},
	{"hobart", "TAS"},
	{"sydney", "NSW"},
	{"perth", "WA"},
}

var titleCaser = cases.Title(language.English)

// Adapter maps raw provider records into store candidates.
type Adapter struct {
	defaultRegion string
}

// NewAdapter creates an adapter normalizing phone numbers against the given
// ISO region ("AU" for this deployment).
func NewAdapter(region string) *Adapter {
	if region == "" {
		region = "AU"
	}
	return &Adapter{defaultRegion: region}
}

// Normalize converts a raw record into a candidate. Returns false when the
// record carries none of company, contact or email and is not actionable.
func (a *Adapter) Normalize(raw models.RawRecord) (models.LeadInput, bool) {
	input := models.LeadInput{
		CompanyName: strings.TrimSpace(raw.CompanyName),
		ContactName: strings.TrimSpace(raw.ContactName),
		Title:       strings.TrimSpace(raw.Title),
		Email:       strings.ToLower(strings.TrimSpace(raw.Email)),
		Phone:       a.normalizePhone(raw.Phone),
		Website:     normalizeWebsite(raw.Website),
		Industry:    strings.TrimSpace(raw.Industry),
		Location:    canonicalLocation(raw.Location),
		Source:      raw.Source,
	}
	if input.Source == "" {
		input.Source = models.SourceImported
	}

	if input.CompanyName == "" && input.ContactName == "" && input.Email == "" {
		return models.LeadInput{}, false
	}
	return input, true
}

// NormalizeBatch converts a batch, reporting how many records were discarded
// as unactionable.
func (a *Adapter) NormalizeBatch(raws []models.RawRecord) (inputs []models.LeadInput, skipped int) {
	inputs = make([]models.LeadInput, 0, len(raws))
	for _, raw := range raws {
		input, ok := a.Normalize(raw)
		if !ok {
			skipped++
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs, skipped
}

// normalizePhone parses and reformats to E.164 when possible, keeping the
// trimmed original otherwise. A bad phone never discards a record.
func (a *Adapter) normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(phone, a.defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func normalizeWebsite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	return strings.TrimRight(website, "/")
}

// canonicalLocation maps free-text locations onto "City, State" when a known
// city is recognizable, otherwise returns the trimmed original.
func canonicalLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}

	lower := strings.ToLower(location)
	for _, entry := range auCities {
		if strings.Contains(lower, entry.city) {
			return titleCaser.String(entry.city) + ", " + entry.state
		}
	}
	return location
}
