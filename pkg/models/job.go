package models

import "time"

// JobState is the lifecycle state of an acquisition job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobStopped   JobState = "stopped"
)

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobStopped:
		return true
	}
	return false
}

// JobSpec is the search/generation criteria submitted with a job.
type JobSpec struct {
	Keywords      []string `json:"keywords"`
	Locations     []string `json:"locations"`
	Titles        []string `json:"titles"`
	Industries    []string `json:"industries"`
	MaxLeads      int      `json:"max_leads" validate:"required,min=1"`
	AnalyzeWithAI bool     `json:"analyze_with_ai"`
	SaveLeads     bool     `json:"save_leads"`
}

// JobProgress tracks counters for a running job.
type JobProgress struct {
	Found    int `json:"found"`
	Analyzed int `json:"analyzed"`
	Skipped  int `json:"skipped"`
	Target   int `json:"target"`
}

// Percent returns the completion percentage against the target.
func (p JobProgress) Percent() float64 {
	if p.Target == 0 {
		return 0
	}
	pct := float64(p.Found) / float64(p.Target) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// JobError describes why a job failed.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Job is an asynchronous acquisition unit of work.
type Job struct {
	ID            string      `json:"id"`
	Spec          JobSpec     `json:"spec"`
	State         JobState    `json:"state"`
	Progress      JobProgress `json:"progress"`
	ResultLeadIDs []string    `json:"result_lead_ids"`
	Error         *JobError   `json:"error,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
}

// JobStats aggregates all known jobs.
type JobStats struct {
	Total              int            `json:"total"`
	ByState            map[string]int `json:"by_state"`
	TotalLeadsFound    int            `json:"total_leads_found"`
	TotalLeadsAnalyzed int            `json:"total_leads_analyzed"`
	AvgProcessingSecs  float64        `json:"avg_processing_seconds"`
}

// PreviewResponse is the dry-run result of a job spec: what the provider
// would return, after normalization, without touching the store.
type PreviewResponse struct {
	Records []LeadInput `json:"records"`
	Skipped int         `json:"skipped"`
	HasMore bool        `json:"has_more"`
}
