package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/config"
	"github.com/mvoronin/speech-apps/image"
	"github.com/mvoronin/speech-apps/llm"
	"github.com/mvoronin/speech-apps/logger"
	"github.com/mvoronin/speech-apps/server"
	"github.com/mvoronin/speech-apps/stt"
	"github.com/mvoronin/speech-apps/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateVoice(); err != nil {
		log.Fatal(err)
	}

	api := openai.NewClient(cfg.OpenAIAPIKey)

	logger.Log("Initializing STT service instance.")
	sttService := stt.NewService(cfg.VoskServerURL)

	logger.Log("Initializing LLM agent instance.")
	promptBuilder := llm.NewClient(api, cfg.ChatModel, cfg.Temperature)

	logger.Log("Initializing image generation service instance.")
	imageService := image.NewService(api, cfg.ImageModel, cfg.DefaultImageSize)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(web.VoicePage())
	})
	server.RegisterLogRoutes(app)
	server.NewVoiceApp(sttService, promptBuilder, imageService).Register(app)

	fmt.Printf("voice2image listening on %s\n", cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}
