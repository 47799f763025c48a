package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"shoppr/internal/config"
)

// geminiClient calls the Gemini API directly instead of going through a
// proxy. Gemini reports token counts but no cost figure.
type geminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (Provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client}, nil
}

// Complete sends a prompt, optionally with an image part, and returns the
// generated text.
func (c *geminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := c.client.GenerativeModel(req.Model)
	model.SetTemperature(0.1)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.ImageData(imageFormat(req.ImageMIME), req.Image))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return Response{}, &ProviderError{StatusCode: gerr.Code, Message: gerr.Message}
		}
		return Response{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("no content generated")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return Response{}, fmt.Errorf("generated content is not text")
	}

	usage := TokenUsage{Model: req.Model}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return Response{Content: string(text), Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

// imageFormat converts a MIME type like "image/png" to the bare format name
// genai.ImageData expects.
func imageFormat(mime string) string {
	if idx := strings.IndexByte(mime, '/'); idx >= 0 {
		return mime[idx+1:]
	}
	return mime
}
