// Package router đăng ký các route thuộc domain analytics.
package router

import (
	"github.com/gofiber/fiber/v3"

	analyticshdl "content_studio/internal/api/analytics/handler"
	authmodels "content_studio/internal/api/auth/models"
	"content_studio/internal/api/middleware"
	apirouter "content_studio/internal/api/router"
)

// Register đăng ký route analytics lên v1. Báo cáo theo tác giả và báo cáo tùy chọn chỉ dành cho admin.
func Register(v1 fiber.Router, h *analyticshdl.AnalyticsHandler, authMiddleware fiber.Handler) {
	analytics := apirouter.RegisterGroupWithMiddleware(v1, "/analytics", authMiddleware)

	// Ghi log thô theo nội dung
	analytics.Post("/content/:id/view", h.HandleRecordView)
	analytics.Post("/content/:id/engagement", h.HandleRecordEngagement)
	analytics.Post("/content/:id/channel-metrics", h.HandleRecordChannelMetrics)
	analytics.Post("/content/:id/sentiment", h.HandleAnalyzeSentiment)

	// Báo cáo
	analytics.Get("/dashboard", h.HandleDashboard)
	analytics.Get("/compare", h.HandleCompare)
	analytics.Get("/timeseries", h.HandleTimeSeries)
	analytics.Get("/performance", h.HandlePerformance)
	analytics.Get("/engagement", h.HandleEngagement)
	analytics.Get("/sentiment", h.HandleSentiment)
	analytics.Get("/distribution", h.HandleDistribution)
	analytics.Get("/channels", h.HandleChannelPerformance)
	analytics.Get("/content-types", h.HandleContentTypes)
	analytics.Get("/realtime", h.HandleRealtime)
	analytics.Get("/export", h.HandleExport)

	adminOnly := []fiber.Handler{middleware.RequireRole(authmodels.RoleAdmin)}
	apirouter.RegisterRouteWithMiddleware(analytics, "/user-activity", fiber.MethodGet, "", adminOnly, h.HandleUserActivity)
	apirouter.RegisterRouteWithMiddleware(analytics, "/custom-report", fiber.MethodPost, "", adminOnly, h.HandleCustomReport)
}
