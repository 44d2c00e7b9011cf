package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/shared/testutil"
	"consensuscli/pkg/contracts/domain"
)

// readCSV reads a written file back, dropping a leading BOM
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCSVWriter_WriteRows_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	headers := []string{"id", "name", "note"}
	rows := []domain.Row{
		{"id": "1", "name": "Alpha", "note": "plain"},
		{"id": "2", "name": "Beta, Inc.", "note": "has \"quotes\""},
		{"id": "3", "name": "Gamma", "note": "multi\nline"},
		{"id": "4"},
	}

	writer := NewCSVWriter(WriteOptions{}, testLogger(t))
	require.NoError(t, writer.WriteRows(path, headers, rows))

	records := readCSV(t, path)
	require.Len(t, records, len(rows)+1)
	assert.Equal(t, headers, records[0])
	assert.Equal(t, []string{"2", "Beta, Inc.", "has \"quotes\""}, records[2])
	assert.Equal(t, []string{"3", "Gamma", "multi\nline"}, records[3])
	assert.Equal(t, []string{"4", "", ""}, records[4])
}

func TestCSVWriter_HeaderOnlyWhenNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	writer := NewCSVWriter(WriteOptions{}, testLogger(t))
	require.NoError(t, writer.WriteRows(path, domain.SummaryColumns(), nil))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, domain.SummaryColumns(), records[0])
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	tests := []struct {
		name    string
		bom     bool
		wantBOM bool
	}{
		{"without BOM", false, false},
		{"with BOM", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bom.csv")
			writer := NewCSVWriter(WriteOptions{BOMPrefix: tt.bom}, testLogger(t))
			require.NoError(t, writer.WriteRows(path, []string{"a"}, []domain.Row{{"a": "1"}}))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))
			assert.Equal(t, [][]string{{"a"}, {"1"}}, readCSV(t, path))
		})
	}
}

func TestCSVWriter_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")

	writer := NewCSVWriter(WriteOptions{}, testLogger(t))
	require.NoError(t, writer.WriteRows(path, []string{"a"}, nil))

	assert.FileExists(t, path)
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,content\nx,y\nz,w\n"), 0644))

	writer := NewCSVWriter(WriteOptions{}, testLogger(t))
	require.NoError(t, writer.WriteRows(path, []string{"a"}, []domain.Row{{"a": "fresh"}}))

	assert.Equal(t, [][]string{{"a"}, {"fresh"}}, readCSV(t, path))
}

func TestCSVWriter_FailureIsWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	path := filepath.Join(blocker, "out.csv")

	logger, handler := testutil.NewTestLogger(t)
	writer := NewCSVWriter(WriteOptions{}, logger)
	err := writer.WriteRows(path, []string{"a"}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
	assert.Equal(t, 5, apperrors.ExitCode(err))
	assert.True(t, handler.ContainsMessage("CSV write failed"))
	assert.Equal(t, []string{"not-a-dir"}, listDir(t, dir))
}

func TestCSVWriter_RenameFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taken.csv")
	// a non-empty directory at the destination makes the final rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0755))

	writer := NewCSVWriter(WriteOptions{}, testLogger(t))
	err := writer.WriteRows(path, []string{"a"}, []domain.Row{{"a": "1"}})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
	assert.Equal(t, []string{"taken.csv"}, listDir(t, dir))
}
