package models

import "time"

// ExportFormat is the serialization format of an export file.
type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
)

// ExportStatus is the processing state of an export.
type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportProcessing ExportStatus = "processing"
	ExportReady      ExportStatus = "ready"
	ExportFailed     ExportStatus = "failed"
)

// ExportRequest asks for the current lead set to be written to a file.
type ExportRequest struct {
	Format  ExportFormat     `json:"format" validate:"required,oneof=csv excel"`
	Filters ListLeadsRequest `json:"filters"`
	MaxRows int              `json:"max_rows" validate:"omitempty,min=1,max=10000"`
}

// Export describes a generated (or in-flight) export file.
type Export struct {
	ID        string       `json:"id"`
	Status    ExportStatus `json:"status"`
	Format    ExportFormat `json:"format"`
	LeadCount int          `json:"lead_count"`
	FileURL   string       `json:"file_url,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
