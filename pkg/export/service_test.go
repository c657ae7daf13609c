package export

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/store"
)

func newTestExport(t *testing.T) (*Service, *store.Service) {
	t.Helper()
	st := store.NewService(logger.Discard())
	svc := NewService(st, t.TempDir(), 1000, logger.Discard())
	return svc, st
}

func seedLeads(t *testing.T, st *store.Service, n int) {
	t.Helper()
	companies := []string{"Alpha Co", "Beta Co", "Gamma Co", "Delta Co", "Epsilon Co"}
	for i := 0; i < n; i++ {
		lead, _, err := st.InsertOrMerge(models.LeadInput{
			CompanyName: companies[i%len(companies)],
			Email:       companies[i%len(companies)] + "@example.com",
			Industry:    "hospitality",
		})
		require.NoError(t, err)
		if i == 0 {
			_, err = st.ApplyScore(lead.ID, 80, models.PriorityHigh, models.FitGood, nil)
			require.NoError(t, err)
		}
	}
}

func TestCreate_RejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestExport(t)

	_, err := svc.Create(models.ExportRequest{Format: "pdf"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))
}

func TestCreate_CSVRoundTrip(t *testing.T) {
	svc, st := newTestExport(t)
	seedLeads(t, st, 3)

	exp, err := svc.Create(models.ExportRequest{Format: models.ExportCSV})
	require.NoError(t, err)
	svc.wg.Wait()

	got, err := svc.Get(exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportReady, got.Status)
	assert.Equal(t, 3, got.LeadCount)
	assert.Contains(t, got.FileURL, exp.ID)

	path, err := svc.FilePath(exp.ID)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 leads
	assert.Equal(t, exportHeaders, rows[0])

	// First scored lead carries its score and priority
	scoredRows := 0
	for _, row := range rows[1:] {
		if row[12] != "" {
			scoredRows++
			assert.Equal(t, "80", row[12])
			assert.Equal(t, "high", row[11])
		}
	}
	assert.Equal(t, 1, scoredRows)
}

func TestCreate_ExcelHasSummarySheet(t *testing.T) {
	svc, st := newTestExport(t)
	seedLeads(t, st, 2)

	exp, err := svc.Create(models.ExportRequest{Format: models.ExportExcel})
	require.NoError(t, err)
	svc.wg.Wait()

	path, err := svc.FilePath(exp.ID)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Leads")
	assert.Contains(t, f.GetSheetList(), "Summary")

	total, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}

func TestCreate_AppliesFiltersAndRowCap(t *testing.T) {
	svc, st := newTestExport(t)
	seedLeads(t, st, 5)

	exp, err := svc.Create(models.ExportRequest{
		Format:  models.ExportCSV,
		MaxRows: 2,
	})
	require.NoError(t, err)
	svc.wg.Wait()

	got, err := svc.Get(exp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LeadCount)
}

func TestFilePath_StatesAndNotFound(t *testing.T) {
	svc, _ := newTestExport(t)

	_, err := svc.FilePath("ghost")
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))

	_, err = svc.Get("ghost")
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))
}

func TestList_NewestFirst(t *testing.T) {
	svc, st := newTestExport(t)
	seedLeads(t, st, 1)

	first, err := svc.Create(models.ExportRequest{Format: models.ExportCSV})
	require.NoError(t, err)
	second, err := svc.Create(models.ExportRequest{Format: models.ExportCSV})
	require.NoError(t, err)
	svc.wg.Wait()

	exports := svc.List()
	require.Len(t, exports, 2)
	ids := []string{exports[0].ID, exports[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
