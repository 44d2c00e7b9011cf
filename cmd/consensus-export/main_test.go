package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consensuscli/internal/config"
	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/infrastructure"
)

// setupEnv isolates a run in a temporary working directory with console
// logging and the required credentials set
func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	os.Unsetenv(config.ConfigFileEnv)
	t.Setenv("API_BASE_URL", baseURL)
	t.Setenv("API_KEY", "key-abcdef")
	t.Setenv("API_SECRET", "shh-secret")
	t.Setenv("API_EMAIL", "ops@example.test")
	t.Setenv("PAGE_LIMIT", "2")
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "output"))
	t.Setenv("LOG_OUTPUT", "file")
	t.Setenv("LOG_FILE", filepath.Join(dir, "logs", "run.log"))
	t.Setenv("TRACE_EXPORTER", "none")
	t.Setenv("METRICS_FILE", "")
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	code := run([]string{"-version"}, &stdout, io.Discard)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), config.AppVersion)
}

func TestRun_UnknownFlag(t *testing.T) {
	code := run([]string{"-nope"}, io.Discard, io.Discard)
	assert.Equal(t, exitUsage, code)
	assert.NotEqual(t, apperrors.ExitCode(apperrors.NewConfigError("bad", nil)), code)
}

func TestRun_MissingCredentials(t *testing.T) {
	setupEnv(t, "http://unused.invalid")
	t.Setenv("API_KEY", "")

	var stderr bytes.Buffer
	code := run(nil, io.Discard, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "API_KEY")
}

func TestRun_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"items":[{"senddemoUuid":"r1"}]}}`)
	}))
	defer server.Close()
	dir := setupEnv(t, server.URL)
	t.Setenv("METRICS_FILE", filepath.Join(dir, "consensus.prom"))

	var stdout bytes.Buffer
	code := run(nil, &stdout, io.Discard)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Exported 1 records from 1 pages")

	entries, err := os.ReadDir(filepath.Join(dir, "output"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.FileExists(t, filepath.Join(dir, "consensus.prom"))
	assert.FileExists(t, filepath.Join(dir, "logs", "run.log"))
}

func TestRun_APIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	dir := setupEnv(t, server.URL)

	code := run(nil, io.Discard, io.Discard)

	assert.Equal(t, 3, code)
	assert.NoDirExists(t, filepath.Join(dir, "output"))
}

func TestRun_ConfigFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"items":[]}}`)
	}))
	defer server.Close()
	dir := setupEnv(t, server.URL)
	t.Setenv("OUTPUT_DIR", "")
	os.Unsetenv("OUTPUT_DIR")

	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output_dir: from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv(config.ConfigFileEnv) })

	code := run([]string{"-config", configPath}, io.Discard, io.Discard)

	require.Equal(t, 0, code)
	assert.DirExists(t, filepath.Join(dir, "from-file"))
}
