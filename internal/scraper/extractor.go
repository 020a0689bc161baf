package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"tourscan/internal/models"
)

// Extractor is the optional AI collaborator used when pattern-based parsing
// finds nothing on a page. Implementations return a best-effort set of
// activity records for the given HTML.
type Extractor interface {
	ExtractActivities(ctx context.Context, html, sourceURL string) ([]models.Activity, error)
}

const extractionPrompt = `Extract tour and activity listings from the HTML below.
Respond with a JSON object: {"activities":[{"title":"","description":"","location":"","price":"","duration":""}]}.
Only include listings actually present in the page. HTML:

`

// OpenAIExtractor asks a chat model to pull structured listings out of raw
// HTML.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor returns nil when no API key is configured; callers treat
// a nil extractor as "no AI fallback available".
func NewOpenAIExtractor(apiKey string) *OpenAIExtractor {
	if apiKey == "" {
		return nil
	}
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

func (e *OpenAIExtractor) ExtractActivities(ctx context.Context, html, sourceURL string) ([]models.Activity, error) {
	// Keep the payload bounded; listings markup sits well within this.
	const maxHTML = 48000
	if len(html) > maxHTML {
		html = html[:maxHTML]
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: extractionPrompt + html},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no extraction choices returned")
	}

	var payload struct {
		Activities []models.Activity `json:"activities"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("decoding extraction result: %w", err)
	}
	return payload.Activities, nil
}

// DemoExtractor is the documented demo-mode fallback used when no AI
// collaborator is configured: it returns one hardcoded example listing so the
// pipeline stays demonstrable without credentials.
type DemoExtractor struct{}

func (DemoExtractor) ExtractActivities(_ context.Context, _, _ string) ([]models.Activity, error) {
	return []models.Activity{
		{
			Title:       "Guided City Highlights Tour",
			Description: "Example listing returned in demo mode; configure an extraction API key for real results.",
			Location:    "Unknown",
			Price:       "$49",
			Duration:    "3 hours",
			Highlights:  []string{"Old town walk", "Local guide"},
		},
	}, nil
}
