package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

func newTestStore() *Service {
	return NewService(logger.Discard())
}

func TestInsertOrMerge_NewLead(t *testing.T) {
	s := newTestStore()

	lead, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Harbour Hotel Group",
		ContactName: "Sophie Nguyen",
		Email:       "Sophie@HarbourHotels.com.au",
		Industry:    "hospitality",
		Source:      models.SourceApollo,
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.Equal(t, "sophie@harbourhotels.com.au", lead.Email)
	assert.Nil(t, lead.Score)
	assert.Empty(t, lead.Priority)
}

func TestInsertOrMerge_DedupByEmailCaseInsensitive(t *testing.T) {
	s := newTestStore()

	first, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Harbour Hotel Group",
		Email:       "sophie@harbourhotels.com.au",
		Phone:       "+61 2 9555 0100",
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Harbour Hotels", // different spelling, same email
		Email:       "SOPHIE@harbourhotels.com.AU",
		Phone:       "", // empty must not erase the existing phone
		Website:     "https://harbourhotels.com.au",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "+61 2 9555 0100", second.Phone)
	assert.Equal(t, "Harbour Hotel Group", second.CompanyName)
	assert.Equal(t, "https://harbourhotels.com.au", second.Website)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Total)
}

func TestInsertOrMerge_DedupByCompanyAndContact(t *testing.T) {
	s := newTestStore()

	first, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Aroma Boutique",
		ContactName: "Liam Carter",
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "aroma boutique",
		ContactName: "LIAM CARTER",
		Email:       "liam@aromaboutique.com",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "liam@aromaboutique.com", second.Email)
}

func TestInsertOrMerge_DedupByCompanyAndLocation(t *testing.T) {
	s := newTestStore()

	_, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Coastal Spa Retreat",
		Location:    "Sydney, NSW",
	})
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = s.InsertOrMerge(models.LeadInput{
		CompanyName: "Coastal Spa Retreat",
		Location:    "sydney, nsw",
	})
	require.NoError(t, err)
	assert.False(t, created)

	// Same company in a different city is a different lead
	_, created, err = s.InsertOrMerge(models.LeadInput{
		CompanyName: "Coastal Spa Retreat",
		Location:    "Perth, WA",
	})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestInsertOrMerge_RejectsEmptyIdentity(t *testing.T) {
	s := newTestStore()

	_, _, err := s.InsertOrMerge(models.LeadInput{
		Phone:    "+61 2 9555 0100",
		Industry: "hospitality",
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))
}

func TestUpdate_RejectsScoringOwnedFields(t *testing.T) {
	s := newTestStore()

	lead, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "Aroma Boutique", ContactName: "Liam Carter"})
	require.NoError(t, err)

	score := 90
	_, err = s.Update(lead.ID, models.UpdateLeadRequest{Score: &score})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))

	prio := "high"
	_, err = s.Update(lead.ID, models.UpdateLeadRequest{Priority: &prio})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))
}

func TestUpdate_AppliesFieldsAndBumpsUpdatedAt(t *testing.T) {
	s := newTestStore()

	lead, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "Aroma Boutique", ContactName: "Liam Carter"})
	require.NoError(t, err)

	status := models.StatusContacted
	title := "Head of Procurement"
	updated, err := s.Update(lead.ID, models.UpdateLeadRequest{Status: &status, Title: &title})
	require.NoError(t, err)

	assert.Equal(t, models.StatusContacted, updated.Status)
	assert.Equal(t, "Head of Procurement", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(lead.UpdatedAt))
}

func TestGetAndDelete_NotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Get("missing")
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))

	err = s.Delete("missing")
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))
}

func TestDelete_RemovesDedupKeys(t *testing.T) {
	s := newTestStore()

	lead, _, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Aroma Boutique",
		Email:       "hello@aromaboutique.com",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(lead.ID))

	// Re-inserting the same identity creates a fresh lead
	again, created, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Aroma Boutique",
		Email:       "hello@aromaboutique.com",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, lead.ID, again.ID)
}

func TestList_Pagination(t *testing.T) {
	s := newTestStore()

	for i := 0; i < 15; i++ {
		_, _, err := s.InsertOrMerge(models.LeadInput{
			CompanyName: fmt.Sprintf("Company %02d", i),
			Email:       fmt.Sprintf("lead%02d@example.com", i),
		})
		require.NoError(t, err)
	}

	page2, err := s.List(models.ListLeadsRequest{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page2.Data, 5)
	assert.Equal(t, 15, page2.Pagination.Total)
	assert.Equal(t, 2, page2.Pagination.TotalPages)
	assert.False(t, page2.Pagination.HasNext)
	assert.True(t, page2.Pagination.HasPrev)

	// Beyond the last page: empty, not an error, total preserved
	page3, err := s.List(models.ListLeadsRequest{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page3.Data)
	assert.Equal(t, 15, page3.Pagination.Total)
}

func TestList_DefaultsAndOrdering(t *testing.T) {
	s := newTestStore()

	for i := 0; i < 3; i++ {
		_, _, err := s.InsertOrMerge(models.LeadInput{
			CompanyName: fmt.Sprintf("Company %d", i),
			Email:       fmt.Sprintf("lead%d@example.com", i),
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	resp, err := s.List(models.ListLeadsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 20, resp.Pagination.PerPage)
	require.Len(t, resp.Data, 3)

	// Newest first
	assert.Equal(t, "Company 2", resp.Data[0].CompanyName)
	assert.Equal(t, "Company 0", resp.Data[2].CompanyName)
}

func TestList_Filters(t *testing.T) {
	s := newTestStore()

	_, _, err := s.InsertOrMerge(models.LeadInput{
		CompanyName: "Harbour Hotel Group",
		ContactName: "Sophie Nguyen",
		Email:       "sophie@harbourhotels.com.au",
		Industry:    "Hospitality",
		Location:    "Sydney, NSW",
	})
	require.NoError(t, err)
	_, _, err = s.InsertOrMerge(models.LeadInput{
		CompanyName: "Aroma Boutique",
		ContactName: "Liam Carter",
		Email:       "liam@aromaboutique.com",
		Industry:    "Luxury Retail",
		Location:    "Melbourne, VIC",
	})
	require.NoError(t, err)

	resp, err := s.List(models.ListLeadsRequest{Industry: "hospitality"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Harbour Hotel Group", resp.Data[0].CompanyName)

	resp, err = s.List(models.ListLeadsRequest{Location: "melbourne"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Aroma Boutique", resp.Data[0].CompanyName)

	// Free-text search ORs across company, contact and email
	resp, err = s.List(models.ListLeadsRequest{Search: "sophie"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Harbour Hotel Group", resp.Data[0].CompanyName)

	// Conjunction with other clauses
	resp, err = s.List(models.ListLeadsRequest{Search: "sophie", Industry: "Luxury Retail"})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestApplyScoreAndStats(t *testing.T) {
	s := newTestStore()

	a, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "A Co", Email: "a@a.com"})
	require.NoError(t, err)
	b, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "B Co", Email: "b@b.com"})
	require.NoError(t, err)

	_, err = s.ApplyScore(a.ID, 80, models.PriorityHigh, models.FitGood, &models.Analysis{
		Source:     models.AnalysisFallback,
		AnalyzedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = s.ApplyScore(b.ID, 40, models.PriorityMedium, models.FitModerate, nil)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ScoredCount)
	assert.InDelta(t, 60.0, stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.ByPriority["high"])
	assert.Equal(t, 1, stats.ByPriority["medium"])
	assert.Equal(t, 2, stats.ByStatus["new"])
}

func TestBulkSetStatus(t *testing.T) {
	s := newTestStore()

	a, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "A Co", Email: "a@a.com"})
	require.NoError(t, err)
	b, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "B Co", Email: "b@b.com"})
	require.NoError(t, err)

	updated, missing := s.BulkSetStatus(models.BulkStatusRequest{
		LeadIDs: []string{a.ID, b.ID, "ghost"},
		Status:  models.StatusContacted,
	})
	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{"ghost"}, missing)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, got.Status)
}

func TestListAndAll_SafeUnderConcurrentWrites(t *testing.T) {
	s := newTestStore()

	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		lead, _, err := s.InsertOrMerge(models.LeadInput{
			CompanyName: fmt.Sprintf("Company %02d", i),
			Email:       fmt.Sprintf("lead%02d@example.com", i),
		})
		require.NoError(t, err)
		ids = append(ids, lead.ID)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			title := fmt.Sprintf("Title %d", i)
			if _, err := s.Update(ids[i%len(ids)], models.UpdateLeadRequest{Title: &title}); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		resp, err := s.List(models.ListLeadsRequest{PerPage: 5})
		assert.NoError(t, err)
		assert.Len(t, resp.Data, 5)
		assert.Len(t, s.All(models.ListLeadsRequest{}), 10)
	}
	<-done
}

func TestCopiesAreIsolated(t *testing.T) {
	s := newTestStore()

	lead, _, err := s.InsertOrMerge(models.LeadInput{CompanyName: "A Co", Email: "a@a.com"})
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store
	lead.CompanyName = "Hacked"
	got, err := s.Get(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "A Co", got.CompanyName)
}
