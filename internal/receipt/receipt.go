// Package receipt extracts a bill title and amount from a receipt
// photo via an OpenAI-compatible vision model. Failure is a normal
// outcome: the caller prompts for manual entry, the bill form never
// crashes and never gets a half-filled result.
package receipt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoResult means the model answered but produced nothing usable.
var ErrNoResult = errors.New("no usable result from recognition")

const prompt = "Analyze this receipt. Extract the merchant name (or a short " +
	"description) as the title, and the grand total amount. Respond with a " +
	`JSON object of the form {"title": string, "amount": number} and nothing else.`

// Recognizer calls the vision model.
type Recognizer struct {
	client *openai.Client
	model  string
}

// New creates a Recognizer. baseURL may be empty for the default API
// endpoint; model selects the vision-capable model to use.
func New(apiKey, baseURL, model string) *Recognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Recognizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ParseReceipt sends the receipt image and returns the extracted title
// and amount. Any transport, model, or parse failure returns an error
// and zero values, never a partial result.
func (r *Recognizer) ParseReceipt(ctx context.Context, image []byte) (string, float64, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(image),
		base64.StdEncoding.EncodeToString(image),
	)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("receipt recognition failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, ErrNoResult
	}

	var result struct {
		Title  string  `json:"title"`
		Amount float64 `json:"amount"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return "", 0, fmt.Errorf("unparseable recognition result: %w", err)
	}
	if result.Title == "" || result.Amount <= 0 {
		return "", 0, ErrNoResult
	}

	return result.Title, result.Amount, nil
}
