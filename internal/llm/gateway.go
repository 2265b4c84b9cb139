package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/retry"
)

// Gateway talks to an OpenAI-compatible chat-completion endpoint. It maps
// HTTP status codes onto the retry taxonomy so the retry policy can decide
// what is worth another attempt.
type Gateway struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewGateway(url, apiKey string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Gateway{URL: url, APIKey: apiKey, Timeout: timeout}
}

func (g *Gateway) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	log := logger.Component("llm-gateway")

	if g.URL == "" {
		return "", fmt.Errorf("llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": params.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": params.Temperature,
	}
	if params.MaxTokens > 0 {
		reqBody["max_tokens"] = params.MaxTokens
	}
	data, _ := json.Marshal(reqBody)

	callCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, "POST", g.URL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: g.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).Warn("llm request failed")
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.WithField("http_status", resp.StatusCode).Debug("llm response received")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &retry.RateLimitError{Err: fmt.Errorf("llm gateway status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &retry.AuthError{Err: fmt.Errorf("llm gateway status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if content := ContentFromChoices(body); content != "" {
		return content, nil
	}
	// Some gateways return the completion text directly.
	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
