package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/scentaustralia/leadgen/pkg/api/errors"
	"github.com/scentaustralia/leadgen/pkg/jobs"
	"github.com/scentaustralia/leadgen/pkg/models"
)

// JobHandler handles acquisition job endpoints
type JobHandler struct {
	orchestrator *jobs.Service
	validator    *validator.Validate
}

// NewJobHandler creates a new job handler
func NewJobHandler(orchestrator *jobs.Service) *JobHandler {
	return &JobHandler{
		orchestrator: orchestrator,
		validator:    validator.New(),
	}
}

// SubmitJobRequest is the wire shape for job submission. The boolean flags
// are pointers so that omitting them defaults to the common case: save and
// analyze everything.
type SubmitJobRequest struct {
	Keywords      []string `json:"keywords"`
	Locations     []string `json:"locations"`
	Titles        []string `json:"titles"`
	Industries    []string `json:"industries"`
	MaxLeads      int      `json:"max_leads" validate:"required,min=1"`
	AnalyzeWithAI *bool    `json:"analyze_with_ai"`
	SaveLeads     *bool    `json:"save_leads"`
}

func (r SubmitJobRequest) toSpec() models.JobSpec {
	spec := models.JobSpec{
		Keywords:      r.Keywords,
		Locations:     r.Locations,
		Titles:        r.Titles,
		Industries:    r.Industries,
		MaxLeads:      r.MaxLeads,
		AnalyzeWithAI: true,
		SaveLeads:     true,
	}
	if r.AnalyzeWithAI != nil {
		spec.AnalyzeWithAI = *r.AnalyzeWithAI
	}
	if r.SaveLeads != nil {
		spec.SaveLeads = *r.SaveLeads
	}
	return spec
}

// Submit handles starting a new acquisition job
func (h *JobHandler) Submit(c echo.Context) error {
	var req SubmitJobRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	job, err := h.orchestrator.Submit(req.toSpec())
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusAccepted, job)
}

// Get handles retrieving a job's status
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.orchestrator.GetStatus(c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

// List handles listing all known jobs, newest first
func (h *JobHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"jobs": h.orchestrator.List()})
}

// Stop handles requesting a cooperative stop
func (h *JobHandler) Stop(c echo.Context) error {
	job, err := h.orchestrator.Stop(c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

// Preview handles dry-running a job spec against the source provider
func (h *JobHandler) Preview(c echo.Context) error {
	var req SubmitJobRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	// Preview tolerates a missing max_leads: nothing is committed.
	if req.MaxLeads == 0 {
		req.MaxLeads = 1
	}

	preview, err := h.orchestrator.Preview(c.Request().Context(), req.toSpec())
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}

// Stats handles aggregate job statistics
func (h *JobHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orchestrator.Stats())
}
