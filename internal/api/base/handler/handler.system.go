package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"content_studio/internal/common"
)

// Pinger kiểm tra một phụ thuộc (MongoDB, Redis, ...)
type Pinger func(ctx context.Context) error

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	BaseHandler
	checks map[string]Pinger
}

// NewSystemHandler tạo SystemHandler; checks rỗng nghĩa là chỉ báo trạng thái api
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &SystemHandler{checks: checks}
}

// HandleHealth kiểm tra tình trạng hệ thống
// @Summary Kiểm tra tình trạng hệ thống
// @Description Kiểm tra trạng thái của API và các phụ thuộc (database, cache)
// @Produce json
// @Success 200 {object} map[string]interface{} "Hệ thống hoạt động bình thường"
// @Failure 503 {object} map[string]interface{} "Hệ thống đang gặp sự cố"
// @Router /system/health [get]
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	failed := false
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			services[name] = "error"
			healthData[name+"_error"] = err.Error()
			failed = true
			continue
		}
		services[name] = "ok"
	}

	if failed {
		healthData["status"] = "degraded"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}
