package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/logger"
)

const promptTemplate = "You are an expert prompt engineer for text-to-image models. " +
	"Rewrite the given user request into a vivid, specific English prompt that highlights the main subject, " +
	"environment, composition, lighting, mood, colors, camera details, and artistic style as appropriate. " +
	"Do not mention that you are rewriting or improving a prompt; just output the final prompt."

var whitespaceRe = regexp.MustCompile(`\s+`)

// Client wraps the OpenAI chat API for single-shot completions.
type Client struct {
	API         *openai.Client
	Model       string
	Temperature float32
}

// NewClient builds a Client for the given model and sampling temperature.
func NewClient(api *openai.Client, model string, temperature float32) *Client {
	return &Client{API: api, Model: model, Temperature: temperature}
}

// BuildImagePrompt rewrites a raw speech transcript into an image
// generation prompt.
func (c *Client) BuildImagePrompt(ctx context.Context, transcript string) (string, error) {
	normalized := normalizeTranscript(transcript)
	if normalized == "" {
		return "", fmt.Errorf("transcript is empty")
	}

	resp, err := c.API.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: promptTemplate},
			{
				Role: openai.ChatMessageRoleUser,
				Content: "User speech transcript:\n" + normalized +
					"\n\nProduce only the improved image-generation prompt.",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to contact LLM for prompt generation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	prompt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if prompt == "" {
		return "", fmt.Errorf("LLM returned an empty prompt")
	}
	logger.Log("LLM prompt generation succeeded.")
	logger.Logf("LLM prompt: %s", prompt)
	return prompt, nil
}

// normalizeTranscript collapses whitespace and guarantees terminal
// punctuation so the rewrite model sees a complete sentence.
func normalizeTranscript(transcript string) string {
	normalized := whitespaceRe.ReplaceAllString(strings.TrimSpace(transcript), " ")
	if normalized == "" {
		return ""
	}
	if !strings.HasSuffix(normalized, ".") &&
		!strings.HasSuffix(normalized, "!") &&
		!strings.HasSuffix(normalized, "?") {
		normalized += "."
	}
	return normalized
}
