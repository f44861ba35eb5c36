package genx

import (
	"context"
	"strings"
	"time"

	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	"github.com/hoshino-dev/hoshi/pkg/logx"
)

// ErrorSentinel marks provider failures that arrive as ordinary text.
// Some gateways report upstream errors inside a 200 payload instead of a
// structured error, so the response body itself has to be inspected.
const ErrorSentinel = "API Error"

const (
	defaultAttempts = 3
	defaultDelay    = 5 * time.Second
)

// Generator wraps an LLM client with bounded retries and a static fallback.
// Generate never fails: after the retry budget is exhausted the caller's
// fallback string is returned verbatim.
type Generator struct {
	client    *llm.Client
	attempts  int
	delay     time.Duration
	sentinels []string
	llmOpts   []llm.Option
}

// Option configures a Generator
type Option func(*Generator)

// WithAttempts sets the total number of attempts (including the first call)
func WithAttempts(attempts int) Option {
	return func(g *Generator) {
		if attempts > 0 {
			g.attempts = attempts
		}
	}
}

// WithRetryDelay sets the pause between attempts
func WithRetryDelay(delay time.Duration) Option {
	return func(g *Generator) {
		g.delay = delay
	}
}

// WithSentinels replaces the set of text markers treated as embedded failures
func WithSentinels(sentinels ...string) Option {
	return func(g *Generator) {
		g.sentinels = sentinels
	}
}

// WithLLMOptions sets chat options passed on every generation call
func WithLLMOptions(opts ...llm.Option) Option {
	return func(g *Generator) {
		g.llmOpts = opts
	}
}

// New creates a Generator around the given client
func New(client *llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		attempts:  defaultAttempts,
		delay:     defaultDelay,
		sentinels: []string{ErrorSentinel},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the model for a completion of prompt, retrying on failure.
// The first successful response is returned immediately; once the attempt
// budget is spent, fallback is returned unchanged.
func (g *Generator) Generate(ctx context.Context, prompt, fallback string) string {
	for attempt := 1; attempt <= g.attempts; attempt++ {
		text, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return text
		}

		logx.Warnf("Generation failed (%v). Retrying %d/%d...", err, attempt, g.attempts)

		if attempt < g.attempts {
			if !g.pause(ctx) {
				break
			}
		}
	}
	return fallback
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat(ctx, []llm.Message{llm.NewUserMessage(prompt)}, g.llmOpts...)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Message.Content)
	for _, sentinel := range g.sentinels {
		if strings.Contains(text, sentinel) {
			return "", &sentinelError{payload: text}
		}
	}
	if text == "" {
		return "", &sentinelError{payload: "empty response"}
	}
	return text, nil
}

// pause waits out the retry delay; returns false when the context is done
func (g *Generator) pause(ctx context.Context) bool {
	if g.delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(g.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type sentinelError struct {
	payload string
}

func (e *sentinelError) Error() string {
	return "provider reported failure in payload: " + e.payload
}
