package assistant

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Replies returned instead of errors.
const (
	UnavailableReply = "I'm sorry, my styling brain (API Key) isn't connected right now! Please try again later."
	EmptyReply       = "I'm thinking about the perfect outfit, but I'm lost for words right now."
	FailureReply     = "Oops! I had a little trouble thinking of that. Can you ask me again?"
)

const defaultTimeout = 20 * time.Second

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Temperature overrides the persona temperature when set. Zero is a valid value.
	Temperature *float32
	Timeout     time.Duration
	Breaker     circuitbreaker.Config
}

// Gateway turns one user message into one model request and always answers with
// display-ready text.
type Gateway struct {
	generator Generator
	initErr   error
	persona   Persona
	model     string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[string]
	logger    *zap.Logger
}

// NewGateway never fails. Without an API key the gateway is disabled; if the client
// cannot be built every call answers FailureReply.
func NewGateway(ctx context.Context, cfg Config, log *zap.Logger) *Gateway {
	g := newGateway(cfg, log)
	if cfg.APIKey == "" {
		g.logger.Warn("API key not configured, assistant disabled")
		return g
	}

	gen, err := NewGenAIGenerator(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		g.logger.Error("failed to initialize client", zap.Error(err))
		g.initErr = err
		return g
	}
	g.generator = gen
	return g
}

// NewGatewayWithGenerator uses gen instead of the Gemini SDK client. A nil gen gives a
// disabled gateway.
func NewGatewayWithGenerator(gen Generator, cfg Config, log *zap.Logger) *Gateway {
	g := newGateway(cfg, log)
	g.generator = gen
	return g
}

func newGateway(cfg Config, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	persona := DefaultPersona()
	if cfg.Temperature != nil {
		persona.Temperature = *cfg.Temperature
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	breakerCfg := cfg.Breaker
	if breakerCfg == (circuitbreaker.Config{}) {
		breakerCfg = circuitbreaker.DefaultConfig()
	}
	return &Gateway{
		persona: persona,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		breaker: circuitbreaker.New[string]("assistant", breakerCfg, log),
		logger:  log.Named("assistant"),
	}
}

func (g *Gateway) Enabled() bool {
	return g.generator != nil || g.initErr != nil
}

func (g *Gateway) GetAdvice(ctx context.Context, userMessage string) string {
	return g.GetAdviceWithHistory(ctx, nil, userMessage)
}

// GetAdviceWithHistory sends history as earlier turns of the conversation.
func (g *Gateway) GetAdviceWithHistory(ctx context.Context, history []domain.ChatMessage, userMessage string) string {
	log := logger.WithTrace(ctx, g.logger)
	if g.initErr != nil {
		log.Error("assistant client unavailable", zap.Error(g.initErr))
		return FailureReply
	}
	if g.generator == nil {
		return UnavailableReply
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := Request{
		Model:             g.model,
		SystemInstruction: g.persona.SystemInstruction,
		Temperature:       g.persona.Temperature,
		History:           history,
		Message:           userMessage,
	}

	start := time.Now()
	text, err := g.breaker.Execute(func() (string, error) {
		return g.generator.Generate(ctx, req)
	})
	if err != nil {
		log.Error("assistant request failed",
			zap.String("model", g.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return FailureReply
	}
	if text == "" {
		log.Warn("assistant returned empty text", zap.String("model", g.model))
		return EmptyReply
	}
	log.Debug("assistant replied",
		zap.String("model", g.model),
		zap.Int("history_turns", len(history)),
		zap.Duration("elapsed", time.Since(start)))
	return text
}
