package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"consensuscli/internal/config"
	apperrors "consensuscli/internal/errors"
	"consensuscli/pkg/contracts/domain"
)

var fixedTime = time.Date(2025, time.October, 21, 14, 30, 0, 0, time.Local)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.Default()
	s.OutputDir = filepath.Join(t.TempDir(), "output")
	return s
}

func sampleRows() ([]domain.Row, []domain.Row) {
	full := []domain.Row{
		{domain.ColSendDemoUUID: "r1", domain.ColViewTime: "10", domain.ColDemoUUIDs: "a;b"},
		{domain.ColSendDemoUUID: "r2", domain.ColOrganization: "Acme"},
		{domain.ColSendDemoUUID: "r3"},
	}
	summary := []domain.Row{
		{domain.SumDemoboardID: "r1", domain.SumViewTimeSeconds: "10", domain.SumDemoIDs: "a;b"},
		{domain.SumDemoboardID: "r2"},
		{domain.SumDemoboardID: "r3"},
	}
	return full, summary
}

func TestExporter_Export(t *testing.T) {
	settings := testSettings(t)
	full, summary := sampleRows()

	exp := New(settings, WithLogger(testLogger(t)), WithClock(func() time.Time { return fixedTime }))
	result, err := exp.Export(context.Background(), full, summary)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(settings.OutputDir, "consensus_full_data_20251021_143000.csv"), result.FullPath)
	assert.Equal(t, filepath.Join(settings.OutputDir, "consensus_summary_20251021_143000.csv"), result.SummaryPath)
	assert.Empty(t, result.WorkbookPath)
	assert.Equal(t, 3, result.FullRows)
	assert.Equal(t, 3, result.SummaryRows)
	assert.Len(t, result.Files(), 2)

	fullRecords := readCSV(t, result.FullPath)
	require.Len(t, fullRecords, 4)
	assert.Equal(t, domain.FullColumns(), fullRecords[0])
	assert.Equal(t, "r1", fullRecords[1][0])
	assert.Equal(t, "a;b", fullRecords[1][9])

	summaryRecords := readCSV(t, result.SummaryPath)
	require.Len(t, summaryRecords, 4)
	assert.Equal(t, domain.SummaryColumns(), summaryRecords[0])
	for _, rec := range summaryRecords {
		assert.Len(t, rec, 6)
	}

	for _, name := range listDir(t, settings.OutputDir) {
		assert.Regexp(t, exportNamePattern, name)
	}
}

func TestExporter_Export_EmptyRows(t *testing.T) {
	settings := testSettings(t)

	result, err := New(settings, WithLogger(testLogger(t))).Export(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{domain.FullColumns()}, readCSV(t, result.FullPath))
	assert.Equal(t, [][]string{domain.SummaryColumns()}, readCSV(t, result.SummaryPath))
}

func TestExporter_Export_SummaryFailureRemovesFull(t *testing.T) {
	settings := testSettings(t)
	summaryPath := settings.OutputPath(FileName(settings.SummaryPrefix, fixedTime))
	require.NoError(t, os.MkdirAll(filepath.Join(summaryPath, "child"), 0755))
	full, summary := sampleRows()

	exp := New(settings, WithLogger(testLogger(t)), WithClock(func() time.Time { return fixedTime }))
	result, err := exp.Export(context.Background(), full, summary)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
	assert.NoFileExists(t, settings.OutputPath(FileName(settings.FullPrefix, fixedTime)))
	assert.Equal(t, []string{filepath.Base(summaryPath)}, listDir(t, settings.OutputDir))
}

func TestExporter_Export_FullFailureWritesNothing(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(settings.OutputDir), 0755))
	require.NoError(t, os.WriteFile(settings.OutputDir, []byte("file"), 0644))
	full, summary := sampleRows()

	_, err := New(settings, WithLogger(testLogger(t))).Export(context.Background(), full, summary)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
}

func TestExporter_Export_Workbook(t *testing.T) {
	settings := testSettings(t)
	settings.WorkbookExport = true
	full, summary := sampleRows()

	exp := New(settings, WithLogger(testLogger(t)), WithClock(func() time.Time { return fixedTime }))
	result, err := exp.Export(context.Background(), full, summary)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(settings.OutputDir, "consensus_export_20251021_143000.xlsx"), result.WorkbookPath)
	assert.Len(t, result.Files(), 3)

	f, err := excelize.OpenFile(result.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{FullSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.SummaryColumns(), rows[0])
}

func TestExporter_Export_WorkbookFailureRemovesCSVs(t *testing.T) {
	settings := testSettings(t)
	settings.WorkbookExport = true
	workbookPath := settings.OutputPath(WorkbookName(config.WorkbookPrefix, fixedTime))
	require.NoError(t, os.MkdirAll(filepath.Join(workbookPath, "child"), 0755))
	full, summary := sampleRows()

	exp := New(settings, WithLogger(testLogger(t)), WithClock(func() time.Time { return fixedTime }))
	_, err := exp.Export(context.Background(), full, summary)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
	assert.Equal(t, []string{filepath.Base(workbookPath)}, listDir(t, settings.OutputDir))
}
