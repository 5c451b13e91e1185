// Package router chứa các helper đăng ký route dùng chung cho domain router.
package router

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ============================================================================
// CÁCH ĐĂNG KÝ MIDDLEWARE (FIBER V3)
// ============================================================================
//
// Middleware luôn được gắn bằng .Use() trên group có prefix riêng, không truyền
// trực tiếp vào router.Get(path, middleware, handler).
//
//	protected := RegisterGroupWithMiddleware(v1, "/content", authMiddleware)
//	protected.Get("/:id", handler)
//
// Một prefix chỉ nên gắn middleware một lần: hai lần Use cùng prefix sẽ chạy
// middleware hai lần cho mọi route bên dưới.
// ============================================================================

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// RegisterGroupWithMiddleware tạo group theo prefix và gắn middleware một lần cho cả group
func RegisterGroupWithMiddleware(router fiber.Router, prefix string, middlewares ...fiber.Handler) fiber.Router {
	group := router.Group(prefix)
	for _, mw := range middlewares {
		group.Use(mw)
	}
	return group
}

// RegisterRouteWithMiddleware đăng ký một route với middleware riêng qua .Use() trên group prefix.
// Dùng cho route lẻ cần thêm middleware (ví dụ RequireRole) bên trong group đã xác thực.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := RegisterGroupWithMiddleware(router, prefix, middlewares...)

	switch strings.ToUpper(method) {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodPatch:
		routeGroup.Patch(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}
