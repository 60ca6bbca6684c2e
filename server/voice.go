package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mvoronin/speech-apps/image"
	"github.com/mvoronin/speech-apps/logger"
)

// Transcriber turns recorded audio into text. An empty transcript with a
// nil error means no speech was recognized.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// PromptBuilder rewrites a transcript into an image generation prompt.
type PromptBuilder interface {
	BuildImagePrompt(ctx context.Context, transcript string) (string, error)
}

// ImageGenerator renders a prompt at the requested size.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size string) (*image.Payload, error)
}

// ProcessResponse is the voice pipeline result sent to the page.
type ProcessResponse struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt,omitempty"`
	ImageB64   string `json:"image_b64,omitempty"`
	Skipped    bool   `json:"skipped"`
	Message    string `json:"message,omitempty"`
}

// VoiceApp holds the speech → prompt → image pipeline behind the recorder UI.
type VoiceApp struct {
	stt    Transcriber
	llm    PromptBuilder
	images ImageGenerator

	mu    sync.Mutex
	cache map[string]*ProcessResponse // audio md5 → previous result
}

// NewVoiceApp wires the pipeline stages together.
func NewVoiceApp(stt Transcriber, llm PromptBuilder, images ImageGenerator) *VoiceApp {
	return &VoiceApp{
		stt:    stt,
		llm:    llm,
		images: images,
		cache:  make(map[string]*ProcessResponse),
	}
}

// Register mounts the pipeline routes on the fiber app.
func (v *VoiceApp) Register(app *fiber.App) {
	app.Post("/api/process", v.handleProcess)
}

func (v *VoiceApp) handleProcess(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "`audio` file field is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not open uploaded audio"})
	}
	audio, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read uploaded audio"})
	}
	size := c.FormValue("size", "1024x1024")

	sum := md5.Sum(audio)
	hash := hex.EncodeToString(sum[:])
	v.mu.Lock()
	cached, ok := v.cache[hash]
	v.mu.Unlock()
	if ok {
		logger.Log("Audio already processed, returning previous result.")
		return c.JSON(cached)
	}

	requestID := uuid.NewString()
	logger.Logf("[%s] Starting transcription from browser recorder.", requestID)

	transcript, err := v.stt.Transcribe(c.Context(), audio)
	if err != nil {
		logger.Logf("[%s] [Error] Transcription failed: %v", requestID, err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	logger.Logf("[%s] Transcript delivered to UI.", requestID)

	if transcript == "" {
		logger.Logf("[%s] Transcription empty, skipping prompt and image generation.", requestID)
		resp := &ProcessResponse{
			Skipped: true,
			Message: "No transcription result returned; image generation skipped.",
		}
		v.remember(hash, resp)
		return c.JSON(resp)
	}

	prompt, err := v.llm.BuildImagePrompt(c.Context(), transcript)
	if err != nil {
		logger.Logf("[%s] [Error] Prompt generation failed: %v", requestID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":      "failed to prepare the prompt: " + err.Error(),
			"transcript": transcript,
		})
	}
	logger.Logf("[%s] Prompt delivered to UI.", requestID)

	payload, err := v.images.Generate(c.Context(), prompt, size)
	if err != nil {
		logger.Logf("[%s] [Error] Image generation failed: %v", requestID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":      "failed to generate the image: " + err.Error(),
			"transcript": transcript,
			"prompt":     prompt,
		})
	}
	logger.Logf("[%s] Image delivered to UI.", requestID)

	resp := &ProcessResponse{
		Transcript: transcript,
		Prompt:     prompt,
		ImageB64:   payload.B64,
	}
	v.remember(hash, resp)
	return c.JSON(resp)
}

func (v *VoiceApp) remember(hash string, resp *ProcessResponse) {
	v.mu.Lock()
	v.cache[hash] = resp
	v.mu.Unlock()
}
