// Package image generates images through the OpenAI Images API.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/logger"
)

// Sizes supported by the UI size selector.
var Sizes = []string{"1024x1024", "1024x1536", "1536x1024"}

// Payload holds a generated image in both encodings.
type Payload struct {
	B64   string
	Bytes []byte
}

// Service wraps the image generation endpoint for a fixed model.
type Service struct {
	api         *openai.Client
	model       string
	defaultSize string
}

// NewService creates a Service. An empty defaultSize falls back to 1024x1024.
func NewService(api *openai.Client, model, defaultSize string) *Service {
	if defaultSize == "" {
		defaultSize = "1024x1024"
	}
	logger.Logf("Image generation service initialized with model=%s, default_size=%s.", model, defaultSize)
	return &Service{api: api, model: model, defaultSize: defaultSize}
}

// Generate renders the prompt at the requested size and returns the
// decoded base64 payload.
func (s *Service) Generate(ctx context.Context, prompt, size string) (*Payload, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if size == "" {
		size = s.defaultSize
	}
	logger.Logf("Sending prompt to OpenAI Image API (size=%s).", size)

	resp, err := s.api.CreateImage(ctx, openai.ImageRequest{
		Model:          s.model,
		Prompt:         strings.TrimSpace(prompt),
		Size:           size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		logger.Logf("[Error] Image generation failed: %v", err)
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image payload is empty")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	logger.Log("Image generation succeeded (base64 payload).")
	return &Payload{B64: resp.Data[0].B64JSON, Bytes: raw}, nil
}
