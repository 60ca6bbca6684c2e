package server

import (
	"context"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/llm"
	"github.com/mvoronin/speech-apps/logger"
)

// Agent produces the assistant reply for a conversation history.
type Agent interface {
	Generate(ctx context.Context, history []openai.ChatCompletionMessage) (*llm.Reply, error)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	Usage     llm.Usage `json:"usage"`
}

// ChatApp serves the Steam database chat. Conversation history lives in
// memory per session id and is gone on restart.
type ChatApp struct {
	agent Agent

	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessage
}

// NewChatApp creates a ChatApp around the given agent.
func NewChatApp(agent Agent) *ChatApp {
	return &ChatApp{
		agent:    agent,
		sessions: make(map[string][]openai.ChatCompletionMessage),
	}
}

// Register mounts the chat routes on the fiber app.
func (a *ChatApp) Register(app *fiber.App) {
	app.Post("/api/chat", a.handleChat)
}

func (a *ChatApp) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "`message` field is required"})
	}

	a.mu.Lock()
	sid := req.SessionID
	history, known := a.sessions[sid]
	if sid == "" || !known {
		sid = uuid.NewString()
		history = nil
		logger.Logf("New chat session %s", sid)
	}
	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})
	turn := make([]openai.ChatCompletionMessage, len(history))
	copy(turn, history)
	a.mu.Unlock()

	reply, err := a.agent.Generate(c.Context(), turn)
	if err != nil {
		logger.Logf("[Error] Chat generation failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	content := reply.Content
	if content == "" {
		content = "Sorry, I couldn't produce a response."
	}

	a.mu.Lock()
	a.sessions[sid] = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: content,
	})
	a.mu.Unlock()

	return c.JSON(chatResponse{SessionID: sid, Content: content, Usage: reply.Usage})
}

// historyLen reports the stored message count for a session. Test hook.
func (a *ChatApp) historyLen(sid string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions[sid])
}
