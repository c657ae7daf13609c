// Package provider contains the lead source implementations the acquisition
// pipeline pulls raw records from.
package provider

import (
	"context"

	"github.com/scentaustralia/leadgen/pkg/models"
)

// Criteria is a single search request against a source.
type Criteria struct {
	Keywords   []string
	Locations  []string
	Titles     []string
	Industries []string
	Page       int // 1-indexed
	PerPage    int
}

// Result is one page of raw records plus a continuation hint.
type Result struct {
	Records []models.RawRecord
	HasMore bool
}

// Source is a lead provider. Search fails with RATE_LIMITED, AUTH_ERROR or
// TRANSIENT_ERROR (retryable by the orchestrator) or FATAL_ERROR
// (non-retryable).
type Source interface {
	Name() string
	Search(ctx context.Context, criteria Criteria) (*Result, error)
}
