package llm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoppr/internal/config"
)

// RetryPolicy bounds the gateway's retry loop. BaseDelay doubles per retry;
// tests inject a zero-delay policy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the configured attempt bound with a half-second
// initial backoff.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: 500 * time.Millisecond}
}

func (p RetryPolicy) delay(retry int) time.Duration {
	return p.BaseDelay << uint(retry)
}

// CallMeta describes one completed gateway call for accounting.
type CallMeta struct {
	Agent     string
	RequestID string
	Usage     TokenUsage
	Latency   time.Duration
}

// Recorder receives call accounting. A nil Recorder disables it.
type Recorder interface {
	RecordCall(ctx context.Context, meta CallMeta) error
}

// Gateway executes composed requests against a Provider, selecting the text
// or vision model by payload kind and applying timeout and retry policy. A
// retried call is a fresh attempt, never a cached replay.
type Gateway struct {
	provider    Provider
	policy      RetryPolicy
	timeout     time.Duration
	textModel   string
	visionModel string
	recorder    Recorder
	log         *zap.Logger
}

// NewGateway wires a provider with the configured models and policy.
func NewGateway(provider Provider, cfg *config.Config, recorder Recorder, log *zap.Logger) *Gateway {
	return &Gateway{
		provider:    provider,
		policy:      DefaultRetryPolicy(cfg.MaxAttempts),
		timeout:     cfg.Timeout,
		textModel:   cfg.Model,
		visionModel: cfg.VisionModel,
		recorder:    recorder,
		log:         log,
	}
}

// WithRetryPolicy returns a copy of the gateway using the given policy.
func (g *Gateway) WithRetryPolicy(policy RetryPolicy) *Gateway {
	out := *g
	out.policy = policy
	return &out
}

// Generate runs a text-only call under the given agent name.
func (g *Gateway) Generate(ctx context.Context, agent, system, prompt string) (Response, error) {
	return g.call(ctx, agent, Request{
		Model:  g.textModel,
		System: system,
		Prompt: prompt,
	})
}

// Describe runs a vision call against the vision-capable model.
func (g *Gateway) Describe(ctx context.Context, agent, prompt string, image []byte, mime string) (Response, error) {
	return g.call(ctx, agent, Request{
		Model:     g.visionModel,
		Prompt:    prompt,
		Image:     image,
		ImageMIME: mime,
	})
}

func (g *Gateway) call(ctx context.Context, agent string, req Request) (Response, error) {
	requestID := uuid.NewString()
	var lastErr error

	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(g.policy.delay(attempt - 1)):
			case <-ctx.Done():
				return Response{}, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		start := time.Now()
		resp, err := g.provider.Complete(attemptCtx, req)
		latency := time.Since(start)
		cancel()

		if err == nil {
			g.log.Debug("llm call succeeded",
				zap.String("agent", agent),
				zap.String("request_id", requestID),
				zap.String("model", req.Model),
				zap.Duration("latency", latency),
				zap.Int("attempt", attempt+1))
			if g.recorder != nil {
				if rerr := g.recorder.RecordCall(ctx, CallMeta{
					Agent:     agent,
					RequestID: requestID,
					Usage:     resp.Usage,
					Latency:   latency,
				}); rerr != nil {
					g.log.Warn("failed to record llm call", zap.Error(rerr))
				}
			}
			return resp, nil
		}

		// Caller went away: stop immediately, nothing to retry for.
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}

		var perr *ProviderError
		if errors.As(err, &perr) && !perr.Retryable() {
			g.log.Warn("provider rejected request",
				zap.String("agent", agent),
				zap.String("request_id", requestID),
				zap.Int("status", perr.StatusCode))
			return Response{}, &ProviderRejectedError{StatusCode: perr.StatusCode}
		}

		// Timeout, transport failure or 5xx: transient, retry with backoff.
		lastErr = err
		g.log.Warn("llm call failed, will retry",
			zap.String("agent", agent),
			zap.String("request_id", requestID),
			zap.Int("attempt", attempt+1),
			zap.Duration("latency", latency),
			zap.Error(err))
	}

	g.log.Error("llm call exhausted retries",
		zap.String("agent", agent),
		zap.String("request_id", requestID),
		zap.Int("attempts", g.policy.MaxAttempts),
		zap.Error(lastErr))
	return Response{}, &ProviderTimeoutError{Attempts: g.policy.MaxAttempts}
}
