package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"content_studio/internal/common"
	"content_studio/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// FieldError chi tiết một field không hợp lệ
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// errorDetails chuyển lỗi validator thành danh sách field để client đọc được
func errorDetails(kind common.ErrorKind, details any) any {
	err, ok := details.(error)
	if !ok {
		return details
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
		}
		return fields
	}
	var upstream common.UpstreamDetails
	if errors.As(err, &upstream) {
		return upstream
	}
	if kind == common.KindValidation {
		return err.Error()
	}
	// Lỗi nội bộ không lộ ra client
	return nil
}

// HandleErrorResponse xử lý và trả về error response cho client.
// Tách riêng khỏi basehdl để middleware dùng được mà không bị import cycle.
func HandleErrorResponse(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		if customErr.StatusCode >= common.StatusInternalServerError {
			logger.WithRequest(c).WithError(err).WithField("code", customErr.Code.Code).Error("Request thất bại")
		}
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": errorDetails(customErr.Kind(), customErr.Details),
			"status":  "error",
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JSONResponse(c, fiberErr.Code, fiber.Map{
			"code":    fiberErr.Code,
			"message": fiberErr.Message,
			"status":  "error",
		})
	}

	logger.WithRequest(c).WithError(err).Error("Lỗi không phân loại")
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	})
}
