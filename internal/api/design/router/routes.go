// Package router đăng ký các route thuộc domain design.
package router

import (
	"github.com/gofiber/fiber/v3"

	authmodels "content_studio/internal/api/auth/models"
	designhdl "content_studio/internal/api/design/handler"
	"content_studio/internal/api/middleware"
	apirouter "content_studio/internal/api/router"
)

// Register đăng ký route design lên v1
func Register(v1 fiber.Router, h *designhdl.DesignHandler, authMiddleware fiber.Handler) {
	design := apirouter.RegisterGroupWithMiddleware(v1, "/design", authMiddleware)

	design.Post("/files/batch", h.HandleBatchFiles)
	design.Get("/files/:key", h.HandleGetFile)
	design.Get("/files/:key/nodes", h.HandleGetNodes)
	design.Get("/files/:key/images", h.HandleExportImages)
	design.Get("/files/:key/comments", h.HandleGetComments)
	design.Post("/files/:key/comments", h.HandlePostComment)
	design.Get("/files/:key/styles", h.HandleGetStyles)
	design.Get("/files/:key/components", h.HandleGetComponents)
	design.Get("/files/:key/versions", h.HandleGetVersions)
	design.Get("/files/:key/search", h.HandleSearchNodes)
	design.Get("/files/:key/tokens", h.HandleDesignTokens)
	design.Get("/teams/:teamId/projects", h.HandleTeamProjects)

	apirouter.RegisterRouteWithMiddleware(design, "/webhooks", fiber.MethodPost, "", []fiber.Handler{middleware.RequireRole(authmodels.RoleAdmin)}, h.HandleCreateWebhook)
}
