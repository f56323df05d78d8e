package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	maxErrorBody    = 512
	maxResponseBody = 8 << 20
)

// HTTPProvider talks to an OpenAI-compatible chat completion endpoint
type HTTPProvider struct {
	url     string
	apiKey  string
	model   string
	client  *http.Client
	maxBody int64
}

// NewHTTPProvider creates a provider posting to url with a bearer credential
func NewHTTPProvider(url, apiKey, model string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{url: url, apiKey: apiKey, model: model, client: client, maxBody: maxResponseBody}
}

func (p *HTTPProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one request. 429, 408 and 5xx answers are transient,
// any other non-2xx status is permanent.
func (p *HTTPProvider) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", Permanent(fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", Permanent(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode == http.StatusRequestTimeout,
			resp.StatusCode >= 500:
			return "", statusErr
		default:
			return "", Permanent(statusErr)
		}
	}

	if int64(len(body)) > p.maxBody {
		return "", Permanent(fmt.Errorf("response exceeds %d bytes", p.maxBody))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if result.Error != nil && result.Error.Message != "" {
		return "", fmt.Errorf("completion endpoint error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		choice := result.Choices[0]
		if strings.TrimSpace(choice.Message.Content) == "" {
			if choice.FinishReason == "length" {
				return "", ErrTruncated
			}
			return "", ErrEmptyCompletion
		}
		return choice.Message.Content, nil
	}

	if strings.TrimSpace(result.Text) == "" {
		return "", ErrEmptyCompletion
	}
	return result.Text, nil
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
