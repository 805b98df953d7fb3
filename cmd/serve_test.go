package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/gitval/internal/daemon"
)

func TestPidFile_Path(t *testing.T) {
	dir := testEnv(t)

	pf := pidFile()
	expected := filepath.Join(dir, "gitval-serve.pid")
	assert.Equal(t, expected, pf.Path)
}

func TestServeLogPath(t *testing.T) {
	dir := testEnv(t)

	logPath := serveLogPath()
	expected := filepath.Join(dir, "gitval-serve.log")
	assert.Equal(t, expected, logPath)
}

func TestServeStatusRun_NotRunning(t *testing.T) {
	testEnv(t)

	// No PID file exists, so status should show "not running" without error.
	err := serveStatusRun()
	assert.NoError(t, err)
	assert.Contains(t, testOut.String(), "not running")
}

func TestServeStatusRun_Running(t *testing.T) {
	dir := testEnv(t)
	pf := daemon.NewPIDFile(filepath.Join(dir, "gitval-serve.pid"))
	require.NoError(t, pf.Claim())
	t.Cleanup(pf.Release)

	require.NoError(t, serveStatusRun())
	assert.Contains(t, testOut.String(), "is running")
	assert.Contains(t, testOut.String(), "http://localhost:8080")
}

func TestServeStopRun_NotRunning(t *testing.T) {
	testEnv(t)

	// No PID file exists, so stop should return an error.
	err := serveStopRun()
	require.Error(t, err)
	assert.ErrorIs(t, err, daemon.ErrNotRunning)
	assert.Contains(t, err.Error(), "not running")
}

func TestServeStartRun_AlreadyRunning(t *testing.T) {
	dir := testEnv(t)

	// The test process itself holds the PID file.
	pf := daemon.NewPIDFile(filepath.Join(dir, "gitval-serve.pid"))
	require.NoError(t, pf.Claim())
	t.Cleanup(pf.Release)

	err := serveStartRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServeStartRun_DryRun(t *testing.T) {
	dir := testEnv(t)
	dryRun = true
	ui.DryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, serveStartRun())
	_, err := os.Stat(filepath.Join(dir, "gitval-serve.pid"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewHandler(t *testing.T) {
	testEnv(t)

	h, err := newHandler()
	require.NoError(t, err)

	for path, status := range map[string]int{
		"/":                      http.StatusOK,
		"/healthz":               http.StatusOK,
		"/api/v1/archetypes":     http.StatusOK,
		"/metrics":               http.StatusOK,
		"/api/v1/resolve?repo=x": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
