// Package llm talks to language-model providers. Provider implementations do
// a single call; the Gateway adds model selection, timeouts, retries and call
// accounting on top.
package llm

import (
	"context"
	"fmt"
)

// TokenUsage tracks the tokens and cost consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	Model            string
	CostUSD          float64
}

// Request is a single provider call. Image is nil for text-only calls.
type Request struct {
	Model     string
	System    string
	Prompt    string
	Image     []byte
	ImageMIME string
}

// Response contains the generated text and metadata like token usage.
type Response struct {
	Content string
	Usage   TokenUsage
}

// Provider executes one model call. Implementations must honor ctx
// cancellation and return *ProviderError for HTTP-level failures so the
// gateway can classify them.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Close() error
}

// ProviderError is an HTTP-level failure from the provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient (5xx-class).
func (e *ProviderError) Retryable() bool {
	return e.StatusCode >= 500
}

// ProviderTimeoutError is surfaced after the retry budget for transient
// failures (timeouts, transport errors, 5xx) is exhausted.
type ProviderTimeoutError struct {
	Attempts int
}

func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("provider unavailable after %d attempts", e.Attempts)
}

func (e *ProviderTimeoutError) Kind() string { return "provider_timeout" }

func (e *ProviderTimeoutError) Hint() string {
	return "the model is not responding, try again in a moment"
}

// ProviderRejectedError is a non-retryable provider failure (4xx-class).
type ProviderRejectedError struct {
	StatusCode int
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("provider rejected the request (status %d)", e.StatusCode)
}

func (e *ProviderRejectedError) Kind() string { return "provider_rejected" }

func (e *ProviderRejectedError) Hint() string {
	return "try a shorter or clearer list"
}
