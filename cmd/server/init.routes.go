package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	aihdl "content_studio/internal/api/ai/handler"
	airouter "content_studio/internal/api/ai/router"
	analyticshdl "content_studio/internal/api/analytics/handler"
	analyticsrouter "content_studio/internal/api/analytics/router"
	authhdl "content_studio/internal/api/auth/handler"
	authrouter "content_studio/internal/api/auth/router"
	basehdl "content_studio/internal/api/base/handler"
	contenthdl "content_studio/internal/api/content/handler"
	contentrouter "content_studio/internal/api/content/router"
	designhdl "content_studio/internal/api/design/handler"
	designrouter "content_studio/internal/api/design/router"
	"content_studio/internal/api/middleware"
	apirouter "content_studio/internal/api/router"
	"content_studio/internal/global"
)

// healthChecks các phụ thuộc được kiểm tra ở /system/health
func healthChecks(svc *Services) map[string]basehdl.Pinger {
	checks := map[string]basehdl.Pinger{
		"cache": func(ctx context.Context) error {
			return svc.Cache.Set(ctx, "health:ping", []byte("1"), time.Second)
		},
	}
	if global.MongoDB_Session != nil {
		checks["database"] = func(ctx context.Context) error {
			return global.MongoDB_Session.Ping(ctx, nil)
		}
	}
	return checks
}

// SetupRoutes đăng ký route của mọi domain dưới /api/v1
func SetupRoutes(app *fiber.App, svc *Services) {
	prefix := apirouter.NewRoutePrefix()
	v1 := app.Group(prefix.V1)

	authMiddleware := middleware.AuthMiddleware(svc.Auth)

	// System
	v1.Get("/system/health", basehdl.NewSystemHandler(healthChecks(svc)).HandleHealth)
	if svc.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(svc.Metrics.Handler()))
	}

	authrouter.Register(v1, authhdl.NewAuthHandler(svc.Auth), authMiddleware)
	airouter.Register(v1, aihdl.NewAIHandler(svc.AI), authMiddleware)
	contentrouter.Register(v1, contenthdl.NewContentHandler(svc.Content), authMiddleware)
	analyticsrouter.Register(v1, analyticshdl.NewAnalyticsHandler(svc.Analytics), authMiddleware)
	designrouter.Register(v1, designhdl.NewDesignHandler(svc.Design), authMiddleware)
}
