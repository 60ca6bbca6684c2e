package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/config"
	"github.com/mvoronin/speech-apps/db"
	"github.com/mvoronin/speech-apps/issues"
	"github.com/mvoronin/speech-apps/llm"
	"github.com/mvoronin/speech-apps/logger"
	"github.com/mvoronin/speech-apps/server"
	"github.com/mvoronin/speech-apps/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateChat(); err != nil {
		log.Fatal(err)
	}

	logger.Log("Initializing OpenAI client...")
	api := openai.NewClient(cfg.OpenAIAPIKey)

	store, err := db.Open(cfg.SteamDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	github := issues.NewClient(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubAPIURL)
	agent := llm.NewAgent(llm.NewClient(api, cfg.ChatModel, cfg.Temperature), store, github)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(web.ChatPage())
	})
	server.RegisterLogRoutes(app)
	server.NewChatApp(agent).Register(app)

	fmt.Printf("steamchat listening on %s\n", cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}
