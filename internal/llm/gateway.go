package llm

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSystemPrompt is the role given to the model for every pytutor call.
const DefaultSystemPrompt = "You are a Python tutor."

// DefaultTemperature favours varied questions over repeatable ones.
const DefaultTemperature = 0.7

// Gateway is the single entry point the content pipeline uses to reach a
// model. It turns provider errors into a "no result" signal so callers can
// skip the attempt instead of aborting.
type Gateway struct {
	provider Provider
	system   string
	timeout  time.Duration
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithSystemPrompt overrides DefaultSystemPrompt.
func WithSystemPrompt(system string) GatewayOption {
	return func(g *Gateway) { g.system = system }
}

// WithTimeout bounds each Send, retries included. Zero disables the bound.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// NewGateway wraps p. The provider is expected to carry its own retry
// decorator (see NewProvider).
func NewGateway(p Provider, opts ...GatewayOption) *Gateway {
	g := &Gateway{provider: p, system: DefaultSystemPrompt}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Send runs one completion with the gateway's system prompt. It returns
// ("", false) once the provider has given up.
func (g *Gateway) Send(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, bool) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, UserPrompt(g.system, prompt, temperature, maxTokens))
	if err != nil {
		slog.Warn("model call failed",
			"purpose", PurposeFrom(ctx),
			"model", g.provider.ModelID(),
			"error", err)
		return "", false
	}
	return resp.Content, true
}

// ModelID reports the model behind the gateway.
func (g *Gateway) ModelID() string {
	return g.provider.ModelID()
}
