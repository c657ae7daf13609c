package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/scentaustralia/leadgen/pkg/models"
)

// FakeSource generates plausible records for local development and demos.
// Seeded, so the same page always yields the same records.
type FakeSource struct {
	totalPages int
}

// NewFakeSource creates a new fake source
func NewFakeSource() *FakeSource {
	return &FakeSource{totalPages: 4}
}

// Name identifies the source
func (f *FakeSource) Name() string { return string(models.SourceImported) }

var fakeIndustries = []string{
	"Hospitality", "Luxury Retail", "Spa Wellness", "Corporate Offices",
	"Boutique Fashion", "Restaurants", "Real Estate",
}

var fakeCities = []string{
	"Sydney, NSW", "Melbourne, VIC", "Brisbane, QLD", "Perth, WA", "Adelaide, SA",
}

// Search returns a deterministic page of generated records.
func (f *FakeSource) Search(_ context.Context, criteria Criteria) (*Result, error) {
	page := criteria.Page
	if page < 1 {
		page = 1
	}
	perPage := criteria.PerPage
	if perPage < 1 {
		perPage = 25
	}
	if page > f.totalPages {
		return &Result{HasMore: false}, nil
	}

	faker := gofakeit.New(int64(page))

	records := make([]models.RawRecord, 0, perPage)
	for i := 0; i < perPage; i++ {
		company := faker.Company()
		contact := faker.Name()
		domainName := strings.ToLower(strings.ReplaceAll(company, " ", "")) + ".com.au"

		records = append(records, models.RawRecord{
			CompanyName: company,
			ContactName: contact,
			Title:       faker.JobTitle(),
			Email:       fmt.Sprintf("%s@%s", strings.ToLower(strings.Fields(contact)[0]), domainName),
			Phone:       faker.Phone(),
			Website:     "https://" + domainName,
			Industry:    fakeIndustries[faker.Number(0, len(fakeIndustries)-1)],
			Location:    fakeCities[faker.Number(0, len(fakeCities)-1)],
			Source:      models.SourceImported,
		})
	}

	return &Result{
		Records: records,
		HasMore: page < f.totalPages,
	}, nil
}
