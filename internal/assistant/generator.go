package assistant

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"google.golang.org/genai"
)

// Request is one round trip to the language model.
type Request struct {
	Model             string
	SystemInstruction string
	Temperature       float32
	// History holds earlier turns, oldest first. Empty for stateless calls.
	History []domain.ChatMessage
	Message string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenAIGenerator calls the Gemini API through the official SDK.
type GenAIGenerator struct {
	client *genai.Client
}

// NewGenAIGenerator creates the SDK client. baseURL overrides the API endpoint and is
// empty in production.
func NewGenAIGenerator(ctx context.Context, apiKey, baseURL string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}
