package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/store"
)

// Service handles export business logic. Export metadata lives in memory;
// only the generated files touch disk.
type Service struct {
	mu      sync.RWMutex
	exports map[string]*exportEntry

	store       *store.Service
	storagePath string
	maxRows     int
	logger      logger.Logger
	wg          sync.WaitGroup
}

type exportEntry struct {
	export   models.Export
	filePath string
}

// NewService creates a new export service
func NewService(st *store.Service, storagePath string, maxRows int, log logger.Logger) *Service {
	// Ensure storage directory exists
	os.MkdirAll(storagePath, 0755)

	if maxRows <= 0 {
		maxRows = 10000
	}

	return &Service{
		exports:     make(map[string]*exportEntry),
		store:       st,
		storagePath: storagePath,
		maxRows:     maxRows,
		logger:      log,
	}
}

// Create registers an export and generates the file in the background.
func (s *Service) Create(req models.ExportRequest) (*models.Export, error) {
	if req.Format != models.ExportCSV && req.Format != models.ExportExcel {
		return nil, domain.NewValidationError("format must be csv or excel")
	}
	if req.MaxRows <= 0 || req.MaxRows > s.maxRows {
		req.MaxRows = s.maxRows
	}

	exp := models.Export{
		ID:        uuid.New().String(),
		Status:    models.ExportPending,
		Format:    req.Format,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.exports[exp.ID] = &exportEntry{export: exp}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.processExport(exp.ID, req)

	snapshot := exp
	return &snapshot, nil
}

// processExport generates the file in the background
func (s *Service) processExport(id string, req models.ExportRequest) {
	defer s.wg.Done()

	s.setStatus(id, models.ExportProcessing, "")

	leads := s.store.All(req.Filters)
	if len(leads) > req.MaxRows {
		leads = leads[:req.MaxRows]
	}

	timestamp := time.Now().Format("20060102-150405")
	ext := "csv"
	if req.Format == models.ExportExcel {
		ext = "xlsx"
	}
	filename := fmt.Sprintf("leads-%s-%s.%s", id[:8], timestamp, ext)
	path := filepath.Join(s.storagePath, filename)

	var genErr error
	if req.Format == models.ExportCSV {
		genErr = generateCSV(path, leads)
	} else {
		genErr = generateExcel(path, leads)
	}
	if genErr != nil {
		s.logger.Error("export generation failed", "export_id", id, "error", genErr)
		s.setStatus(id, models.ExportFailed, genErr.Error())
		return
	}

	s.mu.Lock()
	if entry, ok := s.exports[id]; ok {
		entry.export.Status = models.ExportReady
		entry.export.LeadCount = len(leads)
		entry.export.FileURL = "/api/v1/exports/" + id + "/download"
		entry.filePath = path
	}
	s.mu.Unlock()

	s.logger.Info("export ready", "export_id", id, "rows", len(leads), "file", filename)
}

func (s *Service) setStatus(id string, status models.ExportStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.exports[id]; ok {
		entry.export.Status = status
		entry.export.Error = errMsg
	}
}

// Get retrieves an export by ID
func (s *Service) Get(id string) (*models.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.exports[id]
	if !ok {
		return nil, domain.NewNotFoundError("export")
	}
	snapshot := entry.export
	return &snapshot, nil
}

// List returns all exports, newest first.
func (s *Service) List() []models.Export {
	s.mu.RLock()
	out := make([]models.Export, 0, len(s.exports))
	for _, entry := range s.exports {
		out = append(out, entry.export)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FilePath returns the on-disk path of a ready export's file.
func (s *Service) FilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.exports[id]
	if !ok {
		return "", domain.NewNotFoundError("export")
	}
	if entry.export.Status != models.ExportReady {
		return "", domain.NewInvalidStateError(
			fmt.Sprintf("export not ready: status is %s", entry.export.Status))
	}
	return entry.filePath, nil
}

var exportHeaders = []string{
	"ID", "Company", "Contact", "Title", "Email", "Phone", "Website",
	"Industry", "Location", "Source", "Status", "Priority", "Score", "Fit",
	"Created At",
}

func leadRow(lead models.Lead) []string {
	score := ""
	if lead.Score != nil {
		score = strconv.Itoa(*lead.Score)
	}
	return []string{
		lead.ID,
		lead.CompanyName,
		lead.ContactName,
		lead.Title,
		lead.Email,
		lead.Phone,
		lead.Website,
		lead.Industry,
		lead.Location,
		string(lead.Source),
		string(lead.Status),
		string(lead.Priority),
		score,
		string(lead.Fit),
		lead.CreatedAt.Format(time.RFC3339),
	}
}

// generateCSV generates a CSV file from leads
func generateCSV(path string, leads []models.Lead) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, lead := range leads {
		if err := writer.Write(leadRow(lead)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// generateExcel generates an Excel workbook with a Leads sheet and a
// Summary sheet aggregating the exported set.
func generateExcel(path string, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		for colIdx, value := range leadRow(lead) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	if err := writeSummarySheet(f, headerStyle, leads); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, headerStyle int, leads []models.Lead) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	byStatus := make(map[string]int)
	byPriority := make(map[string]int)
	scored := 0
	scoreSum := 0
	for _, lead := range leads {
		byStatus[string(lead.Status)]++
		if lead.Priority != "" {
			byPriority[string(lead.Priority)]++
		}
		if lead.Score != nil {
			scored++
			scoreSum += *lead.Score
		}
	}

	f.SetCellValue(sheet, "A1", "Metric")
	f.SetCellValue(sheet, "B1", "Value")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)

	rows := [][2]any{
		{"Total Leads", len(leads)},
		{"Scored Leads", scored},
	}
	if scored > 0 {
		rows = append(rows, [2]any{"Average Score", float64(scoreSum) / float64(scored)})
	}
	for _, p := range []string{"high", "medium", "low"} {
		if n, ok := byPriority[p]; ok {
			rows = append(rows, [2]any{"Priority: " + p, n})
		}
	}
	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, [2]any{"Status: " + status, byStatus[status]})
	}
	rows = append(rows, [2]any{"Generated At", time.Now().UTC().Format(time.RFC3339)})

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row[1])
	}
	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "B", 24)

	return nil
}
