// Package router đăng ký các route thuộc domain content.
package router

import (
	"github.com/gofiber/fiber/v3"

	authmodels "content_studio/internal/api/auth/models"
	contenthdl "content_studio/internal/api/content/handler"
	"content_studio/internal/api/middleware"
	apirouter "content_studio/internal/api/router"
)

// Register đăng ký route content lên v1
func Register(v1 fiber.Router, h *contenthdl.ContentHandler, authMiddleware fiber.Handler) {
	content := apirouter.RegisterGroupWithMiddleware(v1, "/content", authMiddleware)

	// /bulk phải đăng ký trước /:id để không bị nuốt bởi param
	bulk := apirouter.RegisterGroupWithMiddleware(content, "/bulk", middleware.RequireRole(authmodels.RoleAdmin))
	bulk.Post("/publish", h.HandleBulkPublish)
	bulk.Post("/archive", h.HandleBulkArchive)

	content.Post("/generate", h.HandleGenerate)
	content.Get("", h.HandleList)
	content.Get("/:id", h.HandleGet)
	content.Put("/:id", h.HandleUpdate)
	content.Post("/:id/improve", h.HandleImprove)
	content.Post("/:id/publish", h.HandlePublish)
	content.Post("/:id/schedule", h.HandleSchedule)
	content.Put("/:id/channels/:channel", h.HandleChannelStatus)
	content.Post("/:id/archive", h.HandleArchive)
	content.Get("/:id/versions", h.HandleVersions)
	content.Post("/:id/restore", h.HandleRestore)
	content.Get("/:id/analytics", h.HandleAnalytics)
	content.Post("/:id/design/sync", h.HandleSyncDesign)
}
