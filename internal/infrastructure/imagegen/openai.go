// Package imagegen renders images from text prompts with the OpenAI API.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/image"
)

// EnhanceInstructions is the system prompt used to rewrite user prompts.
const EnhanceInstructions = "Rewrite the user's prompt into an optimized 1-3 sentence prompt for image generation. " +
	"Preserve intent but add concrete visual details (subject, scene, composition, style, lighting, mood, " +
	"color palette, medium, camera/lens when helpful). Avoid brands, copyrighted characters, logos, " +
	"text overlays and watermarks. Only return the improved prompt."

// Generator implements ports.ImageGenerator on top of go-openai.
type Generator struct {
	client      *openai.Client
	promptModel string
	imageModel  string
	size        string
	outputDir   string
	logger      *logrus.Logger
}

func NewGenerator(client *openai.Client, cfg *config.OpenAIConfig, logger *logrus.Logger) *Generator {
	g := &Generator{
		client:      client,
		promptModel: cfg.PromptModel,
		imageModel:  cfg.ImageModel,
		size:        cfg.ImageSize,
		outputDir:   cfg.ImageOutputDir,
		logger:      logger,
	}
	if g.promptModel == "" {
		g.promptModel = openai.GPT4oMini
	}
	if g.imageModel == "" {
		g.imageModel = "gpt-image-1"
	}
	if g.size == "" {
		g.size = openai.CreateImageSize1024x1024
	}
	return g
}

// EnhancePrompt asks the chat model for a richer prompt. When previous is set the
// model refines that prompt with the new instruction instead of starting over.
func (g *Generator) EnhancePrompt(ctx context.Context, prompt, previous string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", nil
	}
	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: EnhanceInstructions}}
	if previous != "" {
		msgs = append(msgs,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "Previous image prompt: " + previous},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "Change it as follows: " + prompt},
		)
	} else {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{Model: g.promptModel, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("enhance prompt: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Generate returns the image for prompt as base64 PNG data.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  g.imageModel,
		Size:   g.size,
		N:      1,
	}
	// gpt-image models always answer with b64 and reject the parameter.
	if !strings.HasPrefix(g.imageModel, "gpt-image") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}
	resp, err := g.client.CreateImage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", image.ErrNoImage
	}
	b64 := resp.Data[0].B64JSON
	if g.outputDir != "" {
		if path, err := g.save(b64); err != nil {
			g.warn(err, "failed to save generated image")
		} else if g.logger != nil {
			g.logger.WithField("path", path).Debug("generated image saved")
		}
	}
	return b64, nil
}

func (g *Generator) save(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", err
	}
	suffix := b64
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	suffix = strings.NewReplacer("/", "_", "+", "-", "=", "").Replace(suffix)
	path := filepath.Join(g.outputDir, "image_"+suffix+".png")
	return path, os.WriteFile(path, raw, 0o644)
}

func (g *Generator) warn(err error, msg string) {
	if g.logger != nil {
		g.logger.WithError(err).Warn(msg)
	}
}
