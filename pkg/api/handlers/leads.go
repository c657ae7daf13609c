package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/scentaustralia/leadgen/pkg/api/errors"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/scoring"
	"github.com/scentaustralia/leadgen/pkg/store"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	store     *store.Service
	scoring   *scoring.Service
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(st *store.Service, sc *scoring.Service) *LeadHandler {
	return &LeadHandler{
		store:     st,
		scoring:   sc,
		validator: validator.New(),
	}
}

// List handles listing leads with filters and pagination
func (h *LeadHandler) List(c echo.Context) error {
	var req models.ListLeadsRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	resp, err := h.store.List(req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles inserting or merging a lead candidate
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.LeadInput
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	lead, created, err := h.store.InsertOrMerge(req)
	if err != nil {
		return errors.Domain(c, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]any{
		"lead":    lead,
		"created": created,
	})
}

// Get handles retrieving a single lead
func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.store.Get(c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Update handles partial lead updates
func (h *LeadHandler) Update(c echo.Context) error {
	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	lead, err := h.store.Update(c.Param("id"), req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete handles removing a lead
func (h *LeadHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Param("id")); err != nil {
		return errors.Domain(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles aggregate lead statistics
func (h *LeadHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Stats())
}

// BulkStatus handles applying one status to many leads
func (h *LeadHandler) BulkStatus(c echo.Context) error {
	var req models.BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	updated, missing := h.store.BulkSetStatus(req)
	return c.JSON(http.StatusOK, map[string]any{
		"updated": updated,
		"missing": missing,
	})
}

// Score handles scoring a single lead
func (h *LeadHandler) Score(c echo.Context) error {
	lead, err := h.scoring.ScoreLead(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// BulkScoreRequest asks for a batch of leads to be scored.
type BulkScoreRequest struct {
	LeadIDs []string `json:"lead_ids" validate:"required,min=1"`
}

// BulkScore handles scoring a batch of leads
func (h *LeadHandler) BulkScore(c echo.Context) error {
	var req BulkScoreRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	results := h.scoring.BulkScore(c.Request().Context(), req.LeadIDs)
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

// QuickAnalyze handles dry-run scoring of candidate attributes
func (h *LeadHandler) QuickAnalyze(c echo.Context) error {
	var req models.LeadInput
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	return c.JSON(http.StatusOK, h.scoring.QuickAnalyze(req))
}

// Outreach handles generating an outreach email for a lead
func (h *LeadHandler) Outreach(c echo.Context) error {
	body, err := h.scoring.GenerateOutreach(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"email": body})
}
