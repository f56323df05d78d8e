package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiProvider calls Google's Generative Language API
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a Gemini client authenticated with apiKey
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiProvider, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{client: cl, modelName: modelName}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying client
func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	m.SetTemperature(float32(req.Temperature))
	m.SetTopP(float32(req.TopP))

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		if cand.FinishReason == genai.FinishReasonMaxTokens {
			return "", ErrTruncated
		}
		return "", ErrEmptyCompletion
	}
	return b.String(), nil
}

// classifyGeminiError marks request and credential problems as permanent
func classifyGeminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return Permanent(fmt.Errorf("gemini generate: %w", err))
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.NotFound:
		return Permanent(fmt.Errorf("gemini generate: %w", err))
	}
	// REST transport errors may carry only the HTTP status
	var herr *googleapi.Error
	if errors.As(err, &herr) {
		switch herr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return Permanent(fmt.Errorf("gemini generate: %w", err))
		}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
