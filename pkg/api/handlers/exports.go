package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/scentaustralia/leadgen/pkg/api/errors"
	"github.com/scentaustralia/leadgen/pkg/export"
	"github.com/scentaustralia/leadgen/pkg/models"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	exports   *export.Service
	validator *validator.Validate
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports *export.Service) *ExportHandler {
	return &ExportHandler{
		exports:   exports,
		validator: validator.New(),
	}
}

// Create handles creating a new export
func (h *ExportHandler) Create(c echo.Context) error {
	var req models.ExportRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	exp, err := h.exports.Create(req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusCreated, exp)
}

// Get handles retrieving a single export
func (h *ExportHandler) Get(c echo.Context) error {
	exp, err := h.exports.Get(c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, exp)
}

// List handles listing all exports
func (h *ExportHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"exports": h.exports.List()})
}

// Download handles downloading an export file
func (h *ExportHandler) Download(c echo.Context) error {
	path, err := h.exports.FilePath(c.Param("id"))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.Attachment(path, filepath.Base(path))
}
