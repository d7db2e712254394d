package readme_agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	analyzer_models "github.com/meysamhadeli/docai/project_analyzer/models"
	"github.com/meysamhadeli/docai/providers/contracts"
	"github.com/meysamhadeli/docai/providers/models"
)

const (
	defaultBaseURL     = "http://localhost:5000"
	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 2
	defaultBackoff     = 1 * time.Second
)

// ReadmeAgentConfig implements the generation provider against the local
// README agent backend (POST /generate-readme, GET /health).
type ReadmeAgentConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration

	client *http.Client
}

// NewReadmeAgentProvider initializes a new ReadmeAgentConfig with defaults
// filled in for any zero-valued setting.
func NewReadmeAgentProvider(config *ReadmeAgentConfig) contracts.IDocGenProvider {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := config.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &ReadmeAgentConfig{
		BaseURL:     baseURL,
		Timeout:     timeout,
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		client:      &http.Client{Timeout: timeout},
	}
}

func (p *ReadmeAgentConfig) GenerateDocument(ctx context.Context, summary *analyzer_models.ProjectSummary, apiKey string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		readme, err := p.generateOnce(ctx, summary, apiKey)
		if err == nil {
			return readme, nil
		}

		// A cancelled session is abandoned, not classified.
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}

		lastErr = err

		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", lastErr
}

func (p *ReadmeAgentConfig) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.RemoteError{Message: fmt.Sprintf("health check returned status %d", resp.StatusCode)}
	}
	return nil
}

// generateRequest mirrors the backend's ProjectAnalysis body: the summary
// fields plus the caller's credential.
type generateRequest struct {
	analyzer_models.ProjectSummary
	APIKey string `json:"apiKey"`
}

type generateResponse struct {
	Readme string `json:"readme"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (p *ReadmeAgentConfig) generateOnce(ctx context.Context, summary *analyzer_models.ProjectSummary, apiKey string) (string, error) {
	payload, err := json.Marshal(generateRequest{ProjectSummary: *summary, APIKey: apiKey})
	if err != nil {
		return "", &models.RemoteError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/generate-readme", bytes.NewReader(payload))
	if err != nil {
		return "", &models.RemoteError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", p.classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.RemoteError{Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", p.classifyStatus(resp.StatusCode, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &models.RemoteError{Message: "malformed response from backend", Err: err}
	}
	if strings.TrimSpace(parsed.Readme) == "" {
		return "", &models.RemoteError{Message: "backend returned an empty document"}
	}

	return parsed.Readme, nil
}

// classifyTransportError buckets failures that happened before any HTTP
// status was received.
func (p *ReadmeAgentConfig) classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.TimeoutError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &models.TimeoutError{Err: err}
	}
	// http.Client.Timeout surfaces as a url.Error with this message.
	if strings.Contains(err.Error(), "Client.Timeout") {
		return &models.TimeoutError{Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &models.BackendUnavailableError{BaseURL: p.BaseURL, Err: err}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return &models.BackendUnavailableError{BaseURL: p.BaseURL, Err: err}
	}

	return &models.RemoteError{Message: "request failed", Err: err}
}

// classifyStatus buckets HTTP-level failures. The backend reports errors as
// {"detail": "..."} in the FastAPI convention.
func (p *ReadmeAgentConfig) classifyStatus(statusCode int, body []byte) error {
	var parsed errorResponse
	_ = json.Unmarshal(body, &parsed)
	detail := strings.TrimSpace(parsed.Detail)

	switch statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return &models.InvalidCredentialError{StatusCode: statusCode, Detail: detail}
	}

	lower := strings.ToLower(detail)
	if strings.Contains(lower, "api key") || strings.Contains(lower, "api_key") || strings.Contains(lower, "invalid credential") {
		return &models.InvalidCredentialError{StatusCode: statusCode, Detail: detail}
	}

	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return &models.RemoteError{Message: fmt.Sprintf("backend returned status %d: %s", statusCode, detail)}
}
