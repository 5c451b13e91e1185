package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// LogAction ghi một hành động audit (đăng ký, đăng nhập, publish, archive, ...)
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}

	fields := logrus.Fields{
		"action":     action,
		"ip":         c.IP(),
		"user_agent": c.Get(fiber.HeaderUserAgent),
		"details":    details,
		"timestamp":  time.Now(),
	}
	if v, ok := c.Locals(LocalAccountID).(string); ok {
		fields["account_id"] = v
	}
	if v, ok := c.Locals(LocalCompanyID).(string); ok {
		fields["company_id"] = v
	}
	if requestID := c.GetRespHeader(fiber.HeaderXRequestID); requestID != "" {
		fields["request_id"] = requestID
	}

	GetAuditLogger().WithFields(fields).Info("Audit log")
}

// LogAuth log các thao tác authentication
func LogAuth(action string, c fiber.Ctx, details map[string]interface{}) {
	LogAction("auth_"+action, c, details)
}

// LogContent log các thao tác thay đổi vòng đời nội dung
func LogContent(action string, contentID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["content_id"] = contentID
	LogAction("content_"+action, c, details)
}
