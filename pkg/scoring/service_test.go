package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/store"
)

var testProfile = TargetProfile{
	Industries:  []string{"hospitality", "luxury retail", "spa wellness", "fragrance"},
	Locations:   []string{"Sydney, Australia", "Melbourne, Australia"},
	MajorCities: []string{"sydney", "melbourne", "brisbane", "perth"},
	Products:    []string{"Ambient Scenting Systems", "Room Diffusers"},
}

// stubAssessor returns a canned assessment or error per call.
type stubAssessor struct {
	assessment *models.Assessment
	err        error
	calls      int
}

func (s *stubAssessor) Assess(_ context.Context, _ models.Lead, _ TargetProfile) (*models.Assessment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	a := *s.assessment
	return &a, nil
}

func newTestService(assessor Assessor) (*Service, *store.Service) {
	st := store.NewService(logger.Discard())
	return NewService(st, assessor, nil, testProfile, logger.Discard()), st
}

func seedLead(t *testing.T, st *store.Service, input models.LeadInput) *models.Lead {
	t.Helper()
	lead, _, err := st.InsertOrMerge(input)
	require.NoError(t, err)
	return lead
}

func TestFallbackDeterminism(t *testing.T) {
	lead := models.Lead{
		CompanyName: "Harbour Hotel Group",
		Email:       "sophie@harbourhotels.com.au",
		Phone:       "+61 2 9555 0100",
		Website:     "https://harbourhotels.com.au",
		Industry:    "Hospitality",
		Location:    "Sydney, NSW",
	}

	first := fallbackAssess(lead, testProfile)
	second := fallbackAssess(lead, testProfile)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Priority, second.Priority)
	assert.Equal(t, first.Fit, second.Fit)
	assert.Equal(t, first.Reasoning, second.Reasoning)
}

func TestFallbackWeights(t *testing.T) {
	// Full house: 20 base + 15 email + 10 phone + 5 website + 30 industry
	// + 20 major city = 100
	full := fallbackAssess(models.Lead{
		CompanyName: "Harbour Hotel Group",
		Email:       "sophie@harbourhotels.com.au",
		Phone:       "+61 2 9555 0100",
		Website:     "https://harbourhotels.com.au",
		Industry:    "hospitality",
		Location:    "Sydney, NSW",
	}, testProfile)
	assert.Equal(t, 100, full.Score)
	assert.Equal(t, "high", full.Priority)
	assert.Equal(t, "excellent", full.Fit)

	// Bare minimum: base only
	bare := fallbackAssess(models.Lead{CompanyName: "Unknown Pty Ltd"}, testProfile)
	assert.Equal(t, 20, bare.Score)
	assert.Equal(t, "low", bare.Priority)
	assert.Equal(t, "poor", bare.Fit)

	// Non-major location still earns the +5 presence bonus
	regional := fallbackAssess(models.Lead{
		CompanyName: "Outback Lodge",
		Location:    "Alice Springs, NT",
	}, testProfile)
	assert.Equal(t, 25, regional.Score)
}

func TestFallbackAlwaysCarriesRiskNote(t *testing.T) {
	a := fallbackAssess(models.Lead{CompanyName: "Any Co"}, testProfile)
	assert.Contains(t, a.RiskFactors, fallbackRiskNote)
}

func TestThresholdTables(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, priorityForScore(70))
	assert.Equal(t, models.PriorityMedium, priorityForScore(69))
	assert.Equal(t, models.PriorityMedium, priorityForScore(40))
	assert.Equal(t, models.PriorityLow, priorityForScore(39))

	assert.Equal(t, models.FitExcellent, fitForScore(85))
	assert.Equal(t, models.FitGood, fitForScore(84))
	assert.Equal(t, models.FitGood, fitForScore(65))
	assert.Equal(t, models.FitModerate, fitForScore(64))
	assert.Equal(t, models.FitModerate, fitForScore(40))
	assert.Equal(t, models.FitPoor, fitForScore(39))
}

func TestEvaluate_SanitizesBackendResponse(t *testing.T) {
	assessor := &stubAssessor{assessment: &models.Assessment{
		Score:             150,        // out of range
		Priority:          "CRITICAL", // unknown token
		Fit:               "amazing",  // unknown token
		IndustryRelevance: -5,
	}}
	svc, _ := newTestService(assessor)

	a, source := svc.Evaluate(context.Background(), models.Lead{CompanyName: "A Co"})

	assert.Equal(t, models.AnalysisAI, source)
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, "high", a.Priority)     // re-derived from clamped score
	assert.Equal(t, "excellent", a.Fit)
	assert.Equal(t, 0, a.IndustryRelevance)
}

func TestEvaluate_FallsBackOnBackendFailure(t *testing.T) {
	assessor := &stubAssessor{err: domain.NewAnalysisUnavailableError(errors.New("timeout"))}
	svc, _ := newTestService(assessor)

	a, source := svc.Evaluate(context.Background(), models.Lead{
		CompanyName: "Harbour Hotel Group",
		Industry:    "hospitality",
	})

	assert.Equal(t, models.AnalysisFallback, source)
	assert.Equal(t, 1, assessor.calls)
	assert.Contains(t, a.RiskFactors, fallbackRiskNote)
}

func TestScoreLead_PersistsDerivedFields(t *testing.T) {
	svc, st := newTestService(nil)
	lead := seedLead(t, st, models.LeadInput{
		CompanyName: "Harbour Hotel Group",
		Email:       "sophie@harbourhotels.com.au",
		Industry:    "hospitality",
		Location:    "Sydney, NSW",
	})

	scored, err := svc.ScoreLead(context.Background(), lead.ID)
	require.NoError(t, err)

	require.NotNil(t, scored.Score)
	assert.Equal(t, priorityForScore(*scored.Score), scored.Priority)
	assert.Equal(t, fitForScore(*scored.Score), scored.Fit)
	require.NotNil(t, scored.Analysis)
	assert.Equal(t, models.AnalysisFallback, scored.Analysis.Source)
	assert.False(t, scored.Analysis.AnalyzedAt.IsZero())
}

func TestScoreLead_NotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ScoreLead(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))
}

func TestBulkScore_PartialFailure(t *testing.T) {
	// Backend errors for every lead; all must still score via fallback.
	assessor := &stubAssessor{err: domain.NewAnalysisUnavailableError(errors.New("down"))}
	svc, st := newTestService(assessor)

	ids := make([]string, 0, 5)
	for _, name := range []string{"A Co", "B Co", "C Co", "D Co", "E Co"} {
		lead := seedLead(t, st, models.LeadInput{CompanyName: name, ContactName: "Owner"})
		ids = append(ids, lead.ID)
	}
	// A missing id is the only way an entry can fail.
	ids = append(ids, "ghost")

	results := svc.BulkScore(context.Background(), ids)
	require.Len(t, results, 6)

	for i, r := range results[:5] {
		assert.True(t, r.Success, "lead %d", i)
		lead, err := st.Get(r.LeadID)
		require.NoError(t, err)
		assert.True(t, lead.Scored())
		assert.True(t, lead.Priority.Valid())
		assert.True(t, lead.Fit.Valid())
	}
	assert.False(t, results[5].Success)
	assert.NotEmpty(t, results[5].Error)
}

func TestQuickAnalyze_NeverTouchesStore(t *testing.T) {
	svc, st := newTestService(nil)

	a := svc.QuickAnalyze(models.LeadInput{
		CompanyName: "Aroma Boutique",
		Industry:    "luxury retail",
		Location:    "Melbourne, VIC",
	})

	assert.Greater(t, a.Score, 0)
	assert.Equal(t, 0, st.Stats().Total)
}

func TestGenerateOutreach_FallbackTemplate(t *testing.T) {
	svc, st := newTestService(nil)
	lead := seedLead(t, st, models.LeadInput{
		CompanyName: "Aroma Boutique",
		ContactName: "Liam Carter",
	})

	body, err := svc.GenerateOutreach(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Contains(t, body, "Aroma Boutique")
	assert.Contains(t, body, "Liam Carter")
	assert.Contains(t, body, "Scent Australia")
}
