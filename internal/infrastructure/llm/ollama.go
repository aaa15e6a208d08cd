// Package llm talks to a local Ollama server for prompt completion.
package llm

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

	"skillscope/internal/shared/config"
)

// ErrTimeout reports that the model did not answer within the configured
// window. Callers treat it as a per-item failure, not a fatal one.
var ErrTimeout = errors.New("llm: generation timed out")

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: server error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("llm: server error: status=%d body=%s", e.StatusCode, e.Body)
}

// Client generates a completion for a prompt. Implementations return the raw
// model output; parsing is the caller's problem.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type OllamaClient struct {
	baseURL     string
	timeout     time.Duration
	temperature float64
	jsonMode    bool
	httpClient  *http.Client
}

func NewOllamaClient(cfg config.LLMConfig) (*OllamaClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if baseURL == "" {
		return nil, errors.New("llm: host required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &OllamaClient{
		baseURL:     baseURL,
		timeout:     timeout,
		temperature: cfg.Temperature,
		jsonMode:    cfg.JSONMode,
		httpClient:  &http.Client{Transport: tr},
	}, nil
}

// NewOllamaClientWithHTTPClient is intended for tests; it avoids network
// access by using a custom RoundTripper.
func NewOllamaClientWithHTTPClient(cfg config.LLMConfig, httpClient *http.Client) (*OllamaClient, error) {
	c, err := NewOllamaClient(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Format  string           `json:"format,omitempty"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	}
	if c.jsonMode {
		reqBody.Format = "json"
	}
	if c.temperature > 0 {
		reqBody.Options = &generateOptions{Temperature: c.temperature}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	return parsed.Response, nil
}
