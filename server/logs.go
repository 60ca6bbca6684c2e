package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/mvoronin/speech-apps/logger"
)

// RegisterLogRoutes mounts the sidebar log feed: a JSON backfill endpoint
// and a websocket pushing lines as they are logged.
func RegisterLogRoutes(app *fiber.App) {
	app.Get("/api/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"logs": logger.History()})
	})

	app.Use("/ws/logs", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/logs", websocket.New(func(ws *websocket.Conn) {
		defer ws.Close()

		lines, cancel := logger.Subscribe()
		defer cancel()

		// drain reads so close frames are noticed
		go func() {
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		for line := range lines {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				log.Println("log feed write error:", err)
				return
			}
		}
	}))
}
