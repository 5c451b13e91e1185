package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ContextKey là type cho context keys
type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	AccountIDKey ContextKey = "accountID"
	CompanyIDKey ContextKey = "companyID"
)

// Locals keys do middleware xác thực set, dùng chung để log
const (
	LocalAccountID = "account_id"
	LocalCompanyID = "company_id"
)

// WithContext trả về logger entry kèm các field có trong context
func WithContext(ctx context.Context) *logrus.Entry {
	entry := GetAppLogger().WithContext(ctx)
	if v := ctx.Value(RequestIDKey); v != nil {
		entry = entry.WithField("request_id", v)
	}
	if v := ctx.Value(AccountIDKey); v != nil {
		entry = entry.WithField("account_id", v)
	}
	if v := ctx.Value(CompanyIDKey); v != nil {
		entry = entry.WithField("company_id", v)
	}
	return entry
}

// WithRequest trả về logger entry với thông tin request từ Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}

	// requestid middleware ghi vào header response
	requestID := c.GetRespHeader(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = c.Get(fiber.HeaderXRequestID)
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if v, ok := c.Locals(LocalAccountID).(string); ok && v != "" {
		fields["account_id"] = v
	}
	if v, ok := c.Locals(LocalCompanyID).(string); ok && v != "" {
		fields["company_id"] = v
	}

	return GetAppLogger().WithFields(fields)
}

// WithFields trả về logger entry với các fields bổ sung
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields(fields))
}

// WithError trả về logger entry với error
func WithError(err error) *logrus.Entry {
	return GetAppLogger().WithError(err)
}

// WithModule trả về logger entry với module name ("auth", "content", "analytics", "ai", "design", ...)
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}
