package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"shoppr/internal/config"
)

// costHeader carries the per-request cost in USD when going through a litellm
// proxy.
const costHeader = "x-litellm-response-cost"

// liteLLMClient speaks the OpenAI chat-completions format against a litellm
// proxy (or any OpenAI-compatible endpoint).
type liteLLMClient struct {
	baseURL     string
	apiKey      string
	modelPrefix string
	httpClient  *http.Client
	log         *zap.Logger
}

// NewLiteLLMClient creates a client for an OpenAI-compatible proxy. Timeouts
// are owned by the caller's context, not the HTTP client.
func NewLiteLLMClient(cfg *config.Config, log *zap.Logger) Provider {
	return &liteLLMClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		modelPrefix: cfg.ModelPrefix,
		httpClient:  &http.Client{},
		log:         log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// Complete sends one chat-completion request and returns the generated text.
func (c *liteLLMClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if c.modelPrefix != "" && !strings.HasPrefix(model, c.modelPrefix) {
		model = c.modelPrefix + model
	}

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	if req.Image != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.ImageMIME, base64.StdEncoding.EncodeToString(req.Image))
		messages = append(messages, chatMessage{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		})
	} else {
		messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})
	}

	reqBody := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": 0.1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	cost := 0.0
	if h := resp.Header.Get(costHeader); h != "" {
		cost, err = strconv.ParseFloat(h, 64)
		if err != nil {
			c.log.Warn("could not parse cost header", zap.String("value", h))
			cost = 0
		}
	} else {
		c.log.Warn("no cost header in response", zap.String("model", model))
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return Response{}, fmt.Errorf("no content generated")
	}

	return Response{
		Content: chatResp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			Model:            req.Model,
			CostUSD:          cost,
		},
	}, nil
}

// Close is a no-op; the client holds no long-lived connections of its own.
func (c *liteLLMClient) Close() error { return nil }
