package readme_agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyzer_models "github.com/meysamhadeli/docai/project_analyzer/models"
	"github.com/meysamhadeli/docai/providers/models"
)

func testSummary() *analyzer_models.ProjectSummary {
	return &analyzer_models.ProjectSummary{
		Name:         "demo",
		Structure:    []string{"main.go"},
		Languages:    []string{"Go"},
		Frameworks:   []string{},
		FileCount:    1,
		EstimatedLOC: 30,
	}
}

func newTestProvider(baseURL string, maxAttempts int) *ReadmeAgentConfig {
	provider := NewReadmeAgentProvider(&ReadmeAgentConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: maxAttempts,
		Backoff:     time.Millisecond,
	})
	return provider.(*ReadmeAgentConfig)
}

// A successful round trip returns the backend's readme and sends the
// expected request shape
func TestGenerateDocument_Success(t *testing.T) {
	var gotPath, gotAPIKey, gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotAPIKey, _ = body["apiKey"].(string)
		gotName, _ = body["name"].(string)

		_ = json.NewEncoder(w).Encode(map[string]string{"readme": "# demo\n"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 2)
	readme, err := provider.GenerateDocument(context.Background(), testSummary(), "secret-key")

	require.NoError(t, err)
	assert.Equal(t, "# demo\n", readme)
	assert.Equal(t, "/generate-readme", gotPath)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "demo", gotName)
}

// Transient failures are retried up to MaxAttempts and then succeed
func TestGenerateDocument_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "backend busy"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"readme": "# demo\n"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 2)
	readme, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	require.NoError(t, err)
	assert.Equal(t, "# demo\n", readme)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// When every attempt fails only the last failure is reported
func TestGenerateDocument_ExhaustsAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "backend busy"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 3)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// A refused connection is classified as backend unavailable
func TestGenerateDocument_BackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens on this port anymore

	provider := newTestProvider(server.URL, 1)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var unavailable *models.BackendUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

// A stalled backend is classified as a timeout
func TestGenerateDocument_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		server.Close()
	}()

	provider := NewReadmeAgentProvider(&ReadmeAgentConfig{
		BaseURL:     server.URL,
		Timeout:     50 * time.Millisecond,
		MaxAttempts: 1,
		Backoff:     time.Millisecond,
	})
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var timeout *models.TimeoutError
	require.ErrorAs(t, err, &timeout)
}

// 401 responses are classified as an invalid credential
func TestGenerateDocument_InvalidCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid API key"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 1)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "bad-key")

	var invalid *models.InvalidCredentialError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, http.StatusUnauthorized, invalid.StatusCode)
}

// A credential complaint in the detail is classified regardless of status code
func TestGenerateDocument_CredentialDetailOnOtherStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "the api key was rejected upstream"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 1)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var invalid *models.InvalidCredentialError
	require.ErrorAs(t, err, &invalid)
}

// A 200 with an empty readme is a protocol violation, not a success
func TestGenerateDocument_EmptyReadme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"readme": "   "})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 1)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

// Malformed JSON bodies are reported as remote errors
func TestGenerateDocument_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 1)
	_, err := provider.GenerateDocument(context.Background(), testSummary(), "key")

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

// Cancelling the context aborts immediately without burning retries
func TestGenerateDocument_Cancelled(t *testing.T) {
	var calls int32
	started := make(chan struct{}, 1)
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-block
	}))
	defer func() {
		close(block)
		server.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	provider := newTestProvider(server.URL, 3)
	_, err := provider.GenerateDocument(ctx, testSummary(), "key")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// Health reflects the backend's health endpoint
func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 1)
	assert.NoError(t, provider.Health(context.Background()))

	down := newTestProvider("http://127.0.0.1:1", 1)
	assert.Error(t, down.Health(context.Background()))
}

// Zero-valued settings fall back to the documented defaults
func TestNewReadmeAgentProvider_Defaults(t *testing.T) {
	provider := NewReadmeAgentProvider(&ReadmeAgentConfig{}).(*ReadmeAgentConfig)

	assert.Equal(t, defaultBaseURL, provider.BaseURL)
	assert.Equal(t, defaultTimeout, provider.Timeout)
	assert.Equal(t, defaultMaxAttempts, provider.MaxAttempts)
	assert.Equal(t, defaultBackoff, provider.Backoff)
}
