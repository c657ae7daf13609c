package models

// RawRecord is a source-specific candidate record before normalization.
// Every field is optional; the acquisition adapter validates and coerces
// at this boundary instead of trusting shape at use sites.
type RawRecord struct {
	CompanyName string     `json:"company_name"`
	ContactName string     `json:"contact_name"`
	Title       string     `json:"title"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	Industry    string     `json:"industry"`
	Location    string     `json:"location"`
	Source      LeadSource `json:"source"`
	SourceURL   string     `json:"source_url"`
}

// Assessment is the structured response expected from the AI scoring
// backend, prior to clamping and enum coercion.
type Assessment struct {
	Score               int      `json:"score"`
	Priority            string   `json:"priority"`
	Fit                 string   `json:"fit_assessment"`
	Reasoning           string   `json:"reasoning"`
	IndustryRelevance   int      `json:"industry_relevance"`
	RecommendedProducts []string `json:"recommended_products"`
	TalkingPoints       []string `json:"talking_points"`
	NextSteps           []string `json:"next_steps"`
	RiskFactors         []string `json:"risk_factors"`
}
