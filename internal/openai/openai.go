package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/crewdocs/docmeta/internal/providers"
)

// DefaultURL is the chat completions endpoint.
const DefaultURL = "https://api.openai.com/v1/chat/completions"

// OpenAI reads document images with an OpenAI vision model.
type OpenAI struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// New returns a new OpenAI provider
func New(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", providers.ErrNotConfigured)
	}
	return &OpenAI{apiKey: apiKey, model: model, url: DefaultURL, client: &http.Client{}}, nil
}

// WithURL points the provider at another compatible endpoint.
func (o *OpenAI) WithURL(url string) *OpenAI {
	o.url = url
	return o
}

// ExtractText transcribes the image in req using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": providers.OCRPrompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(req.Data),
						},
					},
				},
			},
		},
		"max_tokens":  2000,
		"temperature": req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
