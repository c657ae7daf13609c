package scoring

import (
	"context"
	"time"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/store"
)

// TargetProfile is the ideal-customer configuration scoring runs against.
type TargetProfile struct {
	Industries  []string
	Locations   []string
	MajorCities []string
	Products    []string
}

// Assessor is the AI scoring backend. Implementations fail with
// ANALYSIS_UNAVAILABLE; the engine falls back, never propagates.
type Assessor interface {
	Assess(ctx context.Context, lead models.Lead, profile TargetProfile) (*models.Assessment, error)
}

// Composer writes personalized outreach copy for a lead.
type Composer interface {
	Compose(ctx context.Context, lead models.Lead) (string, error)
}

// BulkResult reports the outcome of scoring one lead in a batch.
type BulkResult struct {
	LeadID  string `json:"lead_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service is the scoring engine. It owns the score/priority/fit fields on
// stored leads and guarantees that scoring never hard-fails a lead: any AI
// backend error silently degrades to the deterministic fallback path.
type Service struct {
	store    *store.Service
	assessor Assessor
	composer Composer
	profile  TargetProfile
	logger   logger.Logger
}

// NewService creates a new scoring engine. assessor and composer may be nil,
// in which case only the fallback path runs.
func NewService(st *store.Service, assessor Assessor, composer Composer, profile TargetProfile, log logger.Logger) *Service {
	return &Service{
		store:    st,
		assessor: assessor,
		composer: composer,
		profile:  profile,
		logger:   log,
	}
}

// Evaluate produces a validated assessment for the given lead attributes
// without touching the store. The AI path is tried first when available;
// any failure falls through to the deterministic path.
func (s *Service) Evaluate(ctx context.Context, lead models.Lead) (*models.Assessment, models.AnalysisSource) {
	if s.assessor != nil {
		raw, err := s.assessor.Assess(ctx, lead, s.profile)
		if err == nil {
			return sanitize(raw), models.AnalysisAI
		}
		s.logger.Warn("AI assessment unavailable, using fallback",
			"company", lead.CompanyName, "error", err)
	}
	return fallbackAssess(lead, s.profile), models.AnalysisFallback
}

// ScoreLead scores a stored lead and persists the result.
func (s *Service) ScoreLead(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	assessment, source := s.Evaluate(ctx, *lead)
	analysis := &models.Analysis{
		IndustryRelevance:   assessment.IndustryRelevance,
		RecommendedProducts: assessment.RecommendedProducts,
		TalkingPoints:       assessment.TalkingPoints,
		NextSteps:           assessment.NextSteps,
		RiskFactors:         assessment.RiskFactors,
		AnalyzedAt:          time.Now().UTC(),
		Source:              source,
	}

	return s.store.ApplyScore(id, assessment.Score,
		models.LeadPriority(assessment.Priority), models.LeadFit(assessment.Fit), analysis)
}

// BulkScore scores each lead independently. One lead's failure never blocks
// the rest; per-id outcomes are reported back.
func (s *Service) BulkScore(ctx context.Context, ids []string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.ScoreLead(ctx, id); err != nil {
			results = append(results, BulkResult{LeadID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{LeadID: id, Success: true})
	}
	return results
}

// QuickAnalyze assesses candidate attributes without storing anything.
// Always uses the fallback path: previews must be fast and cost nothing.
func (s *Service) QuickAnalyze(input models.LeadInput) *models.Assessment {
	lead := models.Lead{
		CompanyName: input.CompanyName,
		ContactName: input.ContactName,
		Title:       input.Title,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		Industry:    input.Industry,
		Location:    input.Location,
	}
	return fallbackAssess(lead, s.profile)
}

// GenerateOutreach writes a personalized outreach email for a stored lead,
// degrading to a static template when the AI backend is unavailable.
func (s *Service) GenerateOutreach(ctx context.Context, id string) (string, error) {
	lead, err := s.store.Get(id)
	if err != nil {
		return "", err
	}

	if s.composer != nil {
		body, err := s.composer.Compose(ctx, *lead)
		if err == nil {
			return body, nil
		}
		if !domain.IsCode(err, domain.ErrCodeAnalysisUnavailable) {
			s.logger.Warn("outreach composition failed", "lead_id", id, "error", err)
		}
	}
	return fallbackEmail(*lead), nil
}

// sanitize clamps and coerces a raw backend assessment into valid shape.
// Unrecognized priority or fit tokens are re-derived from the score.
func sanitize(a *models.Assessment) *models.Assessment {
	a.Score = clampScore(a.Score)
	if !models.LeadPriority(a.Priority).Valid() {
		a.Priority = string(priorityForScore(a.Score))
	}
	if !models.LeadFit(a.Fit).Valid() {
		a.Fit = string(fitForScore(a.Score))
	}
	if a.IndustryRelevance < 0 {
		a.IndustryRelevance = 0
	}
	if a.IndustryRelevance > 100 {
		a.IndustryRelevance = 100
	}
	return a
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func priorityForScore(score int) models.LeadPriority {
	switch {
	case score >= 70:
		return models.PriorityHigh
	case score >= 40:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func fitForScore(score int) models.LeadFit {
	switch {
	case score >= 85:
		return models.FitExcellent
	case score >= 65:
		return models.FitGood
	case score >= 40:
		return models.FitModerate
	default:
		return models.FitPoor
	}
}
