package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

const gatewayTemperature = 0.7

// Completer sends a system + user prompt pair and returns the raw completion text
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// GatewayClient wraps an OpenAI-compatible chat completions endpoint
type GatewayClient struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// NewGatewayClient builds a client. The request context bounds each call;
// no client-side timeout or retry is applied.
func NewGatewayClient(apiKey, url, model string) *GatewayClient {
	return &GatewayClient{
		apiKey: apiKey,
		url:    url,
		model:  model,
		client: &http.Client{},
	}
}

// ── Chat completions request/response types ───────────

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues exactly one chat completion request
func (c *GatewayClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: gatewayTemperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Info().Str("model", c.model).Msg("Calling AI gateway for career recommendations")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("AI gateway error")

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		case http.StatusPaymentRequired:
			return "", ErrPaymentRequired
		default:
			return "", &GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &ParseError{Reason: "undecodable gateway body", Err: err}
	}

	if len(chatResp.Choices) == 0 {
		return "", &ParseError{Reason: "empty response from AI gateway"}
	}

	log.Info().Msg("AI response received, parsing")
	return chatResp.Choices[0].Message.Content, nil
}
