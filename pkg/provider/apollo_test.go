package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

func newApolloAgainst(t *testing.T, handler http.HandlerFunc) *ApolloSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewApolloSource(ApolloConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		RequestsPerMinute: 6000, // don't throttle tests
	}, logger.Discard())
}

func TestApolloSearch_MapsPeopleToRecords(t *testing.T) {
	src := newApolloAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mixed_people/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(25), payload["per_page"])

		resp := map[string]any{
			"people": []map[string]any{
				{
					"id":    "p1",
					"name":  "Sophie Nguyen",
					"title": "General Manager",
					"email": "sophie@harbourhotels.com.au",
					"city":  "Sydney",
					"organization": map[string]any{
						"name":        "Harbour Hotel Group",
						"website_url": "https://harbourhotels.com.au",
						"industry":    "hospitality",
					},
					"phone_numbers": []map[string]any{
						{"sanitized_number": "+61295550100"},
					},
				},
				{
					"first_name":        "Liam",
					"last_name":         "Carter",
					"organization_name": "Aroma Boutique",
					"country":           "Australia",
				},
			},
			"pagination": map[string]any{"page": 1, "total_pages": 3, "total_entries": 61},
		}
		json.NewEncoder(w).Encode(resp)
	})

	result, err := src.Search(context.Background(), Criteria{
		Keywords:  []string{"fragrance"},
		Locations: []string{"Sydney, Australia"},
		Page:      1,
	})
	require.NoError(t, err)

	assert.True(t, result.HasMore)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, "Harbour Hotel Group", first.CompanyName)
	assert.Equal(t, "Sophie Nguyen", first.ContactName)
	assert.Equal(t, "sophie@harbourhotels.com.au", first.Email)
	assert.Equal(t, "+61295550100", first.Phone)
	assert.Equal(t, "Sydney", first.Location)
	assert.Equal(t, models.SourceApollo, first.Source)
	assert.Equal(t, "https://app.apollo.io/#/people/p1", first.SourceURL)

	second := result.Records[1]
	assert.Equal(t, "Aroma Boutique", second.CompanyName)
	assert.Equal(t, "Liam Carter", second.ContactName)
	assert.Equal(t, "Australia", second.Location)
}

func TestApolloSearch_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, domain.ErrCodeAuth},
		{http.StatusForbidden, domain.ErrCodeAuth},
		{http.StatusTooManyRequests, domain.ErrCodeRateLimited},
		{http.StatusUnprocessableEntity, domain.ErrCodeFatal},
		{http.StatusInternalServerError, domain.ErrCodeTransient},
		{http.StatusBadGateway, domain.ErrCodeTransient},
		{http.StatusTeapot, domain.ErrCodeFatal},
	}

	for _, tc := range cases {
		src := newApolloAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := src.Search(context.Background(), Criteria{})
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, domain.IsCode(err, tc.code), "status %d: got %v", tc.status, err)
	}
}

func TestApolloSearch_MissingAPIKey(t *testing.T) {
	src := NewApolloSource(ApolloConfig{}, logger.Discard())

	_, err := src.Search(context.Background(), Criteria{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeAuth))
}

func TestApolloSearch_LastPageHasNoMore(t *testing.T) {
	src := newApolloAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"people":     []map[string]any{},
			"pagination": map[string]any{"page": 3, "total_pages": 3},
		})
	})

	result, err := src.Search(context.Background(), Criteria{Page: 3})
	require.NoError(t, err)
	assert.False(t, result.HasMore)
	assert.Empty(t, result.Records)
}
