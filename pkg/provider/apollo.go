package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

const defaultApolloBaseURL = "https://api.apollo.io/api/v1"

// ApolloConfig configures the Apollo.io source.
type ApolloConfig struct {
	APIKey            string
	BaseURL           string // overridable for tests
	RequestsPerMinute int    // default: 30
}

// ApolloSource searches people via the Apollo.io mixed_people API.
type ApolloSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewApolloSource creates a new Apollo.io source
func NewApolloSource(cfg ApolloConfig, log logger.Logger) *ApolloSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultApolloBaseURL
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}

	return &ApolloSource{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		logger:  log,
	}
}

// Name identifies the source
func (a *ApolloSource) Name() string { return string(models.SourceApollo) }

type apolloSearchRequest struct {
	PerPage           int      `json:"per_page"`
	Page              int      `json:"page"`
	PersonTitles      []string `json:"person_titles,omitempty"`
	PersonLocations   []string `json:"person_locations,omitempty"`
	OrgLocations      []string `json:"organization_locations,omitempty"`
	OrgIndustryTagIDs []string `json:"organization_industry_tag_ids,omitempty"`
	QKeywords         string   `json:"q_keywords,omitempty"`
}

type apolloOrganization struct {
	Name          string   `json:"name"`
	WebsiteURL    string   `json:"website_url"`
	PrimaryDomain string   `json:"primary_domain"`
	Industry      string   `json:"industry"`
	Keywords      []string `json:"keywords"`
}

type apolloPhoneNumber struct {
	SanitizedNumber string `json:"sanitized_number"`
}

type apolloPerson struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	Title            string              `json:"title"`
	Email            string              `json:"email"`
	City             string              `json:"city"`
	State            string              `json:"state"`
	Country          string              `json:"country"`
	OrganizationName string              `json:"organization_name"`
	Organization     *apolloOrganization `json:"organization"`
	PhoneNumbers     []apolloPhoneNumber `json:"phone_numbers"`
}

type apolloSearchResponse struct {
	People     []apolloPerson `json:"people"`
	Pagination struct {
		Page         int `json:"page"`
		TotalPages   int `json:"total_pages"`
		TotalEntries int `json:"total_entries"`
	} `json:"pagination"`
}

// Search runs one page of a people search. Respects the source-side rate
// limit before every request.
func (a *ApolloSource) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	if a.apiKey == "" {
		return nil, domain.NewAuthError("apollo")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, domain.NewTransientError("apollo request cancelled", err)
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	perPage := criteria.PerPage
	if perPage < 1 {
		perPage = 25
	}
	if perPage > 100 {
		perPage = 100
	}

	payload := apolloSearchRequest{
		PerPage:           perPage,
		Page:              page,
		PersonTitles:      criteria.Titles,
		PersonLocations:   criteria.Locations,
		OrgLocations:      criteria.Locations,
		OrgIndustryTagIDs: criteria.Industries,
		QKeywords:         strings.Join(criteria.Keywords, " "),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/mixed_people/search", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.NewTransientError("apollo request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.NewAuthError("apollo")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRateLimitedError("apollo")
	case resp.StatusCode == http.StatusUnprocessableEntity:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewFatalError("apollo rejected search parameters", fmt.Errorf("%s", msg))
	case resp.StatusCode >= 500:
		return nil, domain.NewTransientError(fmt.Sprintf("apollo server error: %d", resp.StatusCode), nil)
	default:
		return nil, domain.NewFatalError(fmt.Sprintf("apollo unexpected status: %d", resp.StatusCode), nil)
	}

	var decoded apolloSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, domain.NewTransientError("apollo response decode failed", err)
	}

	records := make([]models.RawRecord, 0, len(decoded.People))
	for _, p := range decoded.People {
		records = append(records, personToRecord(p))
	}

	a.logger.Debug("apollo search completed", "page", page,
		"results", len(records), "total", decoded.Pagination.TotalEntries)

	return &Result{
		Records: records,
		HasMore: decoded.Pagination.Page < decoded.Pagination.TotalPages,
	}, nil
}

func personToRecord(p apolloPerson) models.RawRecord {
	org := p.Organization
	if org == nil {
		org = &apolloOrganization{Name: p.OrganizationName}
	}

	contact := p.Name
	if contact == "" {
		contact = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	website := org.WebsiteURL
	if website == "" {
		website = org.PrimaryDomain
	}

	industry := org.Industry
	if industry == "" && len(org.Keywords) > 0 {
		n := len(org.Keywords)
		if n > 3 {
			n = 3
		}
		industry = strings.Join(org.Keywords[:n], ", ")
	}

	location := p.City
	if location == "" {
		location = p.State
	}
	if location == "" {
		location = p.Country
	}

	phone := ""
	if len(p.PhoneNumbers) > 0 {
		phone = p.PhoneNumbers[0].SanitizedNumber
	}

	sourceURL := ""
	if p.ID != "" {
		sourceURL = "https://app.apollo.io/#/people/" + p.ID
	}

	return models.RawRecord{
		CompanyName: org.Name,
		ContactName: contact,
		Title:       p.Title,
		Email:       p.Email,
		Phone:       phone,
		Website:     website,
		Industry:    industry,
		Location:    location,
		Source:      models.SourceApollo,
		SourceURL:   sourceURL,
	}
}
