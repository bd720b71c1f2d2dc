// Package vision extracts text from images through hosted OCR models.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/avatarctic/docflow/internal/core/domain/document"
)

// ExtractionPrompt asks the model to keep paragraphs apart with blank lines,
// which is what the layout engine splits on.
const ExtractionPrompt = "Please extract all the text from this image. Return only the text content, " +
	"maintaining the original formatting and structure. If there are tables, preserve the table structure. " +
	"If there are lists, maintain the list format. Keep the original paragraphs separated by a blank line."

var ErrEmptyResponse = errors.New("vision: model returned no choices")

// OpenAIExtractor reads text with a vision capable chat model.
type OpenAIExtractor struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIExtractor(client *openai.Client, model string, maxTokens int) *OpenAIExtractor {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIExtractor{client: client, model: model, maxTokens: maxTokens}
}

func (e *OpenAIExtractor) Name() string { return "openai" }

func (e *OpenAIExtractor) Extract(ctx context.Context, img document.Upload) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ExtractionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai vision: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
