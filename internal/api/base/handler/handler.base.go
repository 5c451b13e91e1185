// Package basehdl - base handler dùng chung cho các domain handler.
// Cung cấp parse/validate request, lấy principal và chuẩn hóa response.
package basehdl

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "content_studio/internal/api/auth/models"
	basemodels "content_studio/internal/api/base/models"
	"content_studio/internal/api/middleware"
	"content_studio/internal/common"
	"content_studio/internal/global"
	"content_studio/internal/utility"
)

// BaseHandler nhúng vào các domain handler
type BaseHandler struct{}

// ValidateInput validate struct với validator toàn cục
func (h *BaseHandler) ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ParseRequestBody parse và validate dữ liệu từ request body.
// Sử dụng json.Decoder với UseNumber() để xử lý chính xác các số.
func (h *BaseHandler) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return h.ValidateInput(input)
}

// ParseRequestQuery bind query string vào struct (tag `query`) rồi validate
func (h *BaseHandler) ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return h.ValidateInput(input)
}

// ParamObjectID đọc path param dạng ObjectID
func (h *BaseHandler) ParamObjectID(c fiber.Ctx, name string) (primitive.ObjectID, error) {
	return utility.ParseObjectID(name, c.Params(name))
}

// Principal lấy người gọi đã xác thực
func (h *BaseHandler) Principal(c fiber.Ctx) (authmodels.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return authmodels.Principal{}, common.ErrTokenMissing
	}
	return p, nil
}

// Pagination đọc page / limit từ query, mặc định page=1, limit=10, tối đa 100
func (h *BaseHandler) Pagination(c fiber.Ctx) (int64, int64) {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	return basemodels.NormalizePage(page, limit)
}
