package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/store"
)

// docService fakes the document backend and records what it received.
type docService struct {
	paths  []string
	bodies []map[string]models.Draft
	status int
}

func newDocService(t *testing.T, status int) (*docService, *httptest.Server) {
	t.Helper()
	ds := &docService{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds.paths = append(ds.paths, r.Method+" "+r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		var body map[string]models.Draft
		_ = json.Unmarshal(data, &body)
		ds.bodies = append(ds.bodies, body)

		w.WriteHeader(ds.status)
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	t.Cleanup(srv.Close)
	viper.Set("export.base_url", srv.URL)
	return ds, srv
}

func writeDraft(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "draft.yaml")
	require.NoError(t, draftInitRun(path))
	require.NoError(t, draftSetRun(path, "projectName", "Solar Kite"))
	require.NoError(t, draftItemSetRun(path, "fundingMilestones", "0", "Launch MVP"))
	return path
}

func TestExportRun_PDF(t *testing.T) {
	dir, buf := testEnv(t)
	ds, _ := newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)

	require.NoError(t, exportRun(context.Background(), "PDF", path, ""))

	require.Equal(t, []string{"POST /api/download/PDF"}, ds.paths)
	assert.Equal(t, "Solar Kite", ds.bodies[0]["formData"].ProjectName)
	assert.Equal(t, []string{"Launch MVP"}, ds.bodies[0]["formData"].FundingMilestones)

	data, err := os.ReadFile(filepath.Join(dir, "out", "project.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
	assert.Contains(t, buf.String(), "Saved PDF file")

	s, err := getStore()
	require.NoError(t, err)
	recs, err := s.ListExports(context.Background(), store.ExportListFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.ExportStatusSucceeded, recs[0].Status)
	assert.Equal(t, "Solar Kite", recs[0].ProjectName)
}

func TestExportRun_ExcelFailure(t *testing.T) {
	dir, buf := testEnv(t)
	ds, _ := newDocService(t, http.StatusInternalServerError)
	path := writeDraft(t, dir)
	outDir := filepath.Join(dir, "excel")

	err := exportRun(context.Background(), "excel", path, outDir)
	require.Error(t, err)

	var exErr *export.Error
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, export.FormatExcel, exErr.Format)
	var stErr *export.StatusError
	require.True(t, errors.As(err, &stErr))
	assert.Equal(t, http.StatusInternalServerError, stErr.Code)

	assert.Equal(t, []string{"POST /api/download/Excel"}, ds.paths, "exactly one attempt")
	assert.Contains(t, buf.String(), "Failed to download Excel file.")
	_, statErr := os.Stat(filepath.Join(outDir, "project.xlsx"))
	assert.True(t, os.IsNotExist(statErr))

	s, err := getStore()
	require.NoError(t, err)
	recs, err := s.ListExports(context.Background(), store.ExportListFilter{Status: models.ExportStatusFailed})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Error, "500")
}

func TestExportRun_UnknownFormat(t *testing.T) {
	dir, buf := testEnv(t)
	ds, _ := newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)

	buf.Reset()

	err := exportRun(context.Background(), "Word", path, "")
	require.ErrorIs(t, err, export.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "use PDF or Excel")
	assert.Empty(t, ds.paths)
	assert.Empty(t, buf.String(), "the error is reported once, by Execute")
}

func TestExportRun_DryRun(t *testing.T) {
	dir, buf := testEnv(t)
	ds, srv := newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)
	dryRun = true
	ui.DryRun = true

	require.NoError(t, exportRun(context.Background(), "PDF", path, ""))
	assert.Empty(t, ds.paths)
	assert.Contains(t, buf.String(), srv.URL+"/api/download/PDF")
}

func TestExportRun_StrictRejectsIncompleteDraft(t *testing.T) {
	dir, buf := testEnv(t)
	ds, _ := newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)
	viper.Set("submit.strict", true)

	buf.Reset()

	err := exportRun(context.Background(), "PDF", path, "")
	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, ds.paths)
	assert.NotContains(t, buf.String(), "Failed to download")

	s, err := getStore()
	require.NoError(t, err)
	recs, err := s.ListExports(context.Background(), store.ExportListFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs, "a rejected draft is not an export attempt")
}

func TestHistoryRun(t *testing.T) {
	dir, buf := testEnv(t)
	newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)

	historyLimit, historyFormat, historyStatus = 20, "", ""
	require.NoError(t, historyRun(context.Background()))
	assert.Contains(t, buf.String(), "No exports yet")

	require.NoError(t, exportRun(context.Background(), "PDF", path, ""))
	require.NoError(t, exportRun(context.Background(), "Excel", path, ""))
	buf.Reset()

	require.NoError(t, historyRun(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "PDF")
	assert.Contains(t, out, "Excel")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "Solar Kite")

	buf.Reset()
	historyFormat = "xlsx"
	t.Cleanup(func() { historyFormat = "" })
	require.NoError(t, historyRun(context.Background()))
	assert.Equal(t, 1, strings.Count(buf.String(), "succeeded"))
	assert.Contains(t, buf.String(), "Excel")
}

func TestHistoryRun_InvalidFilters(t *testing.T) {
	_, _ = testEnv(t)
	historyLimit, historyFormat = 20, ""

	historyStatus = "pending"
	t.Cleanup(func() { historyStatus = "" })
	err := historyRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestHistoryPruneRun(t *testing.T) {
	dir, buf := testEnv(t)
	newDocService(t, http.StatusOK)
	path := writeDraft(t, dir)
	require.NoError(t, exportRun(context.Background(), "PDF", path, ""))

	historyOlderThan = -time.Hour
	t.Cleanup(func() { historyOlderThan = 0 })
	require.NoError(t, historyPruneRun(context.Background()))
	assert.Contains(t, buf.String(), "Deleted 1 export record(s)")
}
