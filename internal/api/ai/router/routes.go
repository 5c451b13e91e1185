// Package router đăng ký các route thuộc domain ai.
package router

import (
	"github.com/gofiber/fiber/v3"

	aihdl "content_studio/internal/api/ai/handler"
	apirouter "content_studio/internal/api/router"
)

// Register đăng ký route ai lên v1
func Register(v1 fiber.Router, h *aihdl.AIHandler, authMiddleware fiber.Handler) {
	ai := apirouter.RegisterGroupWithMiddleware(v1, "/ai", authMiddleware)
	ai.Get("/templates", h.HandleListTemplates)
	ai.Post("/render", h.HandleRenderPrompt)
}
