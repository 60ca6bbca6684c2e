package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries the environment-driven settings for both apps.
type Config struct {
	Addr string

	OpenAIAPIKey string
	ChatModel    string
	Temperature  float32

	ImageModel       string
	DefaultImageSize string

	VoskServerURL string

	SteamDBPath  string
	GitHubToken  string
	GitHubRepo   string
	GitHubAPIURL string
}

// Load reads configuration from a .env file (if present) and the
// process environment, filling in defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	return &Config{
		Addr:             getenv("ADDR", ":3000"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ChatModel:        getenv("CHAT_MODEL", "gpt-4o-mini"),
		Temperature:      getenvFloat("CHAT_TEMPERATURE", 0.2),
		ImageModel:       getenv("IMAGE_MODEL", "dall-e-2"),
		DefaultImageSize: getenv("IMAGE_SIZE", "1024x1024"),
		VoskServerURL:    getenv("VOSK_SERVER_URL", "ws://127.0.0.1:2700"),
		SteamDBPath:      getenv("STEAM_DB_PATH", "steam.sqlite"),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:       os.Getenv("GITHUB_REPO"),
		GitHubAPIURL:     getenv("GITHUB_API_URL", "https://api.github.com"),
	}
}

// ValidateVoice checks the variables the voice-to-image app cannot run without.
func (c *Config) ValidateVoice() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set in environment variables")
	}
	if c.VoskServerURL == "" {
		return fmt.Errorf("VOSK_SERVER_URL must not be empty")
	}
	return nil
}

// ValidateChat checks the variables the Steam chat app cannot run without.
// GitHub credentials are deliberately not required here: issue creation is an
// agent tool and reports its own error when they are missing.
func (c *Config) ValidateChat() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set in environment variables")
	}
	if c.SteamDBPath == "" {
		return fmt.Errorf("STEAM_DB_PATH must not be empty")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Printf("invalid %s value %q, using default", key, v)
		return fallback
	}
	return float32(f)
}
