// Package router đăng ký các route thuộc domain auth: đăng ký, đăng nhập, hồ sơ, API key, tích hợp, thành viên.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "content_studio/internal/api/auth/handler"
	authmodels "content_studio/internal/api/auth/models"
	"content_studio/internal/api/middleware"
	apirouter "content_studio/internal/api/router"
)

// Register đăng ký route auth lên v1. authMiddleware xác thực Bearer / API key.
func Register(v1 fiber.Router, h *authhdl.AuthHandler, authMiddleware fiber.Handler) {
	// Công khai
	v1.Post("/auth/register", h.HandleRegister)
	v1.Post("/auth/login", h.HandleLogin)
	v1.Post("/auth/refresh", h.HandleRefresh)
	v1.Post("/auth/forgot-password", h.HandleForgotPassword)
	v1.Post("/auth/reset-password", h.HandleResetPassword)

	// Cần xác thực: mỗi nhóm có prefix riêng để middleware không lan sang route công khai
	profile := apirouter.RegisterGroupWithMiddleware(v1, "/auth/profile", authMiddleware)
	profile.Get("", h.HandleGetProfile)
	profile.Put("", h.HandleUpdateProfile)

	apiKey := apirouter.RegisterGroupWithMiddleware(v1, "/auth/api-key", authMiddleware)
	apiKey.Post("", h.HandleGenerateAPIKey)
	apiKey.Delete("", h.HandleRevokeAPIKey)

	integration := apirouter.RegisterGroupWithMiddleware(v1, "/auth/integration", authMiddleware)
	integration.Post("", h.HandleConnectIntegration)
	integration.Delete("", h.HandleDisconnectIntegration)

	members := apirouter.RegisterGroupWithMiddleware(v1, "/auth/members", authMiddleware)
	members.Get("", h.HandleListMembers)
	apirouter.RegisterRouteWithMiddleware(members, "/invite", fiber.MethodPost, "", []fiber.Handler{middleware.RequireRole(authmodels.RoleAdmin)}, h.HandleAddMember)
}
