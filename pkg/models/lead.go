package models

import "time"

// LeadStatus is the sales lifecycle state of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusLost      LeadStatus = "lost"
)

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

// LeadPriority is the outreach priority tier assigned by the scoring engine.
// The empty string means the lead has not been scored yet.
type LeadPriority string

const (
	PriorityHigh   LeadPriority = "high"
	PriorityMedium LeadPriority = "medium"
	PriorityLow    LeadPriority = "low"
)

// Valid reports whether p is a known priority tier.
func (p LeadPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// LeadFit is the coarse fit category derived from the score.
type LeadFit string

const (
	FitExcellent LeadFit = "excellent"
	FitGood      LeadFit = "good"
	FitModerate  LeadFit = "moderate"
	FitPoor      LeadFit = "poor"
)

// Valid reports whether f is a known fit category.
func (f LeadFit) Valid() bool {
	switch f {
	case FitExcellent, FitGood, FitModerate, FitPoor:
		return true
	}
	return false
}

// LeadSource identifies the acquisition channel that produced a lead.
type LeadSource string

const (
	SourceApollo            LeadSource = "apollo"
	SourceGoogleSearch      LeadSource = "google-search"
	SourceYellowPages       LeadSource = "yellow-pages"
	SourceBusinessDirectory LeadSource = "business-directory"
	SourceManual            LeadSource = "manual"
	SourceImported          LeadSource = "imported"
)

// AnalysisSource records which scoring path produced an analysis.
type AnalysisSource string

const (
	AnalysisAI       AnalysisSource = "ai"
	AnalysisFallback AnalysisSource = "fallback"
)

// Analysis is the structured assessment payload attached to a scored lead.
type Analysis struct {
	IndustryRelevance   int            `json:"industry_relevance"`
	RecommendedProducts []string       `json:"recommended_products"`
	TalkingPoints       []string       `json:"talking_points"`
	NextSteps           []string       `json:"next_steps"`
	RiskFactors         []string       `json:"risk_factors"`
	AnalyzedAt          time.Time      `json:"analyzed_at"`
	Source              AnalysisSource `json:"analysis_source"`
}

// Lead is a business-contact record. The store owns all Lead instances;
// callers receive copies and refer to leads by ID.
type Lead struct {
	ID          string       `json:"id"`
	CompanyName string       `json:"company_name"`
	ContactName string       `json:"contact_name,omitempty"`
	Title       string       `json:"title,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Website     string       `json:"website,omitempty"`
	Industry    string       `json:"industry,omitempty"`
	Location    string       `json:"location,omitempty"`
	Source      LeadSource   `json:"source"`
	Status      LeadStatus   `json:"status"`
	Priority    LeadPriority `json:"priority,omitempty"`
	Score       *int         `json:"score,omitempty"`
	Fit         LeadFit      `json:"fit,omitempty"`
	Analysis    *Analysis    `json:"analysis,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Scored reports whether the scoring engine has processed this lead.
func (l *Lead) Scored() bool {
	return l.Score != nil
}

// LeadInput is a candidate record handed to the store for insert-or-merge.
type LeadInput struct {
	CompanyName string     `json:"company_name" validate:"required"`
	ContactName string     `json:"contact_name"`
	Title       string     `json:"title"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	Industry    string     `json:"industry"`
	Location    string     `json:"location"`
	Source      LeadSource `json:"source"`
}

// UpdateLeadRequest carries a partial lead update. Score, priority and fit
// are present only so the store can reject attempts to set them directly;
// they belong to the scoring engine.
type UpdateLeadRequest struct {
	CompanyName *string     `json:"company_name"`
	ContactName *string     `json:"contact_name"`
	Title       *string     `json:"title"`
	Email       *string     `json:"email" validate:"omitempty,email"`
	Phone       *string     `json:"phone"`
	Website     *string     `json:"website"`
	Industry    *string     `json:"industry"`
	Location    *string     `json:"location"`
	Status      *LeadStatus `json:"status"`

	ID       *string `json:"id"`
	Score    *int    `json:"score"`
	Priority *string `json:"priority"`
	Fit      *string `json:"fit"`
}

// ListLeadsRequest is the filter set for lead listing. All clauses are
// conjunctive; Search matches company, contact and email case-insensitively.
type ListLeadsRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Priority string `query:"priority" validate:"omitempty,oneof=high medium low"`
	Industry string `query:"industry"`
	Location string `query:"location"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PerPage  int    `query:"per_page" validate:"omitempty,min=1,max=200"`
}

// PaginationInfo contains pagination metadata.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// LeadListResponse is a paginated page of leads.
type LeadListResponse struct {
	Data       []Lead         `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// LeadStats aggregates the current lead set.
type LeadStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByPriority   map[string]int `json:"by_priority"`
	ScoredCount  int            `json:"scored_count"`
	AverageScore float64        `json:"average_score"`
}

// BulkStatusRequest applies one status to many leads.
type BulkStatusRequest struct {
	LeadIDs []string   `json:"lead_ids" validate:"required,min=1"`
	Status  LeadStatus `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}
