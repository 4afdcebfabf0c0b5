package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's config file and REST_* variables out of a test
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, name := range []string{
		"REST_SITE_URL", "REST_USERNAME", "REST_PASSWORD", "REST_TIMEOUT_MS",
		"REST_TRANSCRIPT_ENABLED", "REST_TRANSCRIPT_FILE", "REST_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExec_Get(t *testing.T) {
	isolate(t)

	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	out, _, err := run(t, "exec", "--site", server.URL, "--user", "a", "--password", "b", "foo")
	require.NoError(t, err)

	assert.Equal(t, "{\"ok\":true}\n", out)
	assert.Equal(t, "Basic YTpi", gotAuth)
	assert.Equal(t, "/foo", gotPath)
}

func TestExec_RetryUntilSuccess(t *testing.T) {
	isolate(t)

	var count int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&count, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	out, _, err := run(t, "exec", "--site", server.URL, "--retry", "--attempts", "3", "--sleep", "0s", "flaky")
	require.NoError(t, err)

	assert.Equal(t, "ok\n", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&count))
}

func TestExec_RetryExhausted(t *testing.T) {
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	out, _, err := run(t, "exec", "--site", server.URL, "--retry", "--attempts", "2", "--sleep", "1ms", "down")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "no result")
	assert.Empty(t, out)
}

func TestExec_InvalidInput(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "exec", "--site", "https://x.test", "--method", "PATCH", "foo")
	assert.Error(t, err)

	_, _, err = run(t, "exec", "foo")
	assert.Error(t, err, "missing site url must fail validation")

	_, _, err = run(t, "exec", "--site", "https://x.test")
	assert.Error(t, err, "command argument is required")

	_, _, err = run(t, "exec", "--site", "https://x.test", "--transcript-format", "xml", "foo")
	assert.Error(t, err)
}

// TestExec_TranscriptThenReplay records a jsonl transcript against a live
// server and replays it once the server is gone
func TestExec_TranscriptThenReplay(t *testing.T) {
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("created:" + r.Method))
	}))

	transcriptPath := filepath.Join(t.TempDir(), "trans.jsonl")
	site := server.URL

	out, _, err := run(t, "exec", "--site", site, "--method", "post", "--data", `{"a":1}`,
		"--transcript", "--transcript-file", transcriptPath, "--transcript-format", "jsonl", "issue")
	require.NoError(t, err)
	assert.Equal(t, "created:POST\n", out)

	server.Close()

	data, err := os.ReadFile(transcriptPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))

	out, _, err = run(t, "exec", "--site", site, "--method", "POST", "--data", `{"a":1}`,
		"--replay-from", transcriptPath, "issue")
	require.NoError(t, err)
	assert.Equal(t, "created:POST\n", out)

	_, _, err = run(t, "exec", "--site", site, "--replay-from", transcriptPath, "unknown")
	assert.Error(t, err)
}

func TestExec_MetricsFile(t *testing.T) {
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	metricsPath := filepath.Join(t.TempDir(), "rest.prom")

	_, _, err := run(t, "exec", "--site", server.URL, "--metrics-file", metricsPath, "ping")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rest_requests_total{status="success"} 1`)
}

func TestExec_LogsGoToStderr(t *testing.T) {
	isolate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	out, errOut, err := run(t, "--log-level", "debug", "exec", "--site", server.URL, "ping")
	require.NoError(t, err)

	assert.Equal(t, "ok\n", out)
	assert.Contains(t, errOut, "Command succeeded")
}

func TestConfig_RedactsPassword(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "rest_config.yaml")
	content := `site:
  site_url: https://x.test
  username: alice
  password: s3cret
  timeout: 5s
retry:
  max_attempts: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := run(t, "config", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "site_url: https://x.test")
	assert.Contains(t, out, "username: alice")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, "max_attempts: 4")
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "config", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
