package image

import "errors"

var (
	ErrPromptRequired = errors.New("prompt is required")
	// ErrNoImage means the provider answered without image data.
	ErrNoImage = errors.New("failed to generate image")
)

// GenerateRequest asks for an image. ResponseID links a follow-up to an earlier result.
type GenerateRequest struct {
	Prompt     string `json:"prompt"`
	ResponseID string `json:"responseId,omitempty"`
}

// GenerateResult carries the generated PNG as base64.
type GenerateResult struct {
	ImageBase64 string `json:"imageBase64"`
	DataURL     string `json:"dataUrl"`
	ResponseID  string `json:"responseId"`
}

// History is what a follow-up request needs to refine an earlier image.
type History struct {
	UserID string `json:"userId"`
	Prompt string `json:"prompt"`
}
