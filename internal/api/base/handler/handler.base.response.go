package basehdl

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"content_studio/internal/api/middleware"
	"content_studio/internal/common"
	"content_studio/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	return middleware.JSONResponse(c, statusCode, data)
}

// SafeHandler bọc handler với recover để server luôn trả về response, kể cả khi panic.
func (h *BaseHandler) SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("stack", string(debug.Stack())).Error(fmt.Sprintf("Panic trong handler: %v", r))
			err = middleware.HandleErrorResponse(c, common.NewError(
				common.ErrCodeInternalServer,
				common.MsgInternalError,
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response: lỗi thì theo common.Error, thành công thì 200 kèm data
func (h *BaseHandler) HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return middleware.HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// HandleCreated trả về 201 khi tạo mới thành công
func (h *BaseHandler) HandleCreated(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return middleware.HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusCreated, fiber.Map{
		"code":    common.StatusCreated,
		"message": common.MsgCreated,
		"data":    data,
		"status":  "success",
	})
}
