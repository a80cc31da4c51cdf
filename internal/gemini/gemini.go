package gemini

import (
	"context"
	"fmt"

	"github.com/crewdocs/docmeta/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini reads document images with Google Gemini
type Gemini struct {
	apiKey string
	model  string
}

// New returns a new Gemini provider
func New(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set: %w", providers.ErrNotConfigured)
	}
	return &Gemini{apiKey: apiKey, model: model}, nil
}

// ExtractText transcribes the image in req using Gemini
func (g *Gemini) ExtractText(ctx context.Context, req providers.Request) (string, error) {
	format := req.ImageFormat()
	if format == "" {
		return "", fmt.Errorf("gemini OCR needs an image, got %q", req.ContentType)
	}
	modelName := req.Model
	if modelName == "" {
		modelName = g.model
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Temperature))

	resp, err := model.GenerateContent(ctx, genai.ImageData(format, req.Data), genai.Text(providers.OCRPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
