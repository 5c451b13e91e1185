package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	authmodels "content_studio/internal/api/auth/models"
	"content_studio/internal/common"
	"content_studio/internal/logger"
	"content_studio/internal/utility"
)

// LocalPrincipal key trong c.Locals chứa authmodels.Principal của request
const LocalPrincipal = "principal"

// HeaderAPIKey header xác thực bằng API key
const HeaderAPIKey = "X-API-Key"

// Authenticator xác thực access token hoặc API key, trả về principal
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (authmodels.Principal, error)
	AuthenticateAPIKey(ctx context.Context, key string) (authmodels.Principal, error)
}

// bearerToken tách token từ header Authorization: Bearer <token>
func bearerToken(c fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware xác thực request bằng Bearer JWT hoặc X-API-Key rồi lưu principal vào Locals
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		var (
			principal authmodels.Principal
			err       error
		)
		if token := bearerToken(c); token != "" {
			principal, err = auth.Authenticate(c.Context(), token)
		} else if key := c.Get(HeaderAPIKey); key != "" {
			principal, err = auth.AuthenticateAPIKey(c.Context(), key)
		} else {
			err = common.ErrTokenMissing
		}
		if err != nil {
			logger.WithRequest(c).WithError(err).Debug("Xác thực thất bại")
			return HandleErrorResponse(c, err)
		}

		c.Locals(LocalPrincipal, principal)
		c.Locals(logger.LocalAccountID, principal.AccountID.Hex())
		c.Locals(logger.LocalCompanyID, principal.CompanyID.Hex())
		return c.Next()
	}
}

// PrincipalFrom lấy principal do AuthMiddleware set
func PrincipalFrom(c fiber.Ctx) (authmodels.Principal, bool) {
	p, ok := c.Locals(LocalPrincipal).(authmodels.Principal)
	return p, ok
}

// RequireRole chỉ cho phép các vai trò được liệt kê; phải đứng sau AuthMiddleware
func RequireRole(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return HandleErrorResponse(c, common.ErrTokenMissing)
		}
		if !utility.Contains(roles, p.Role) {
			return HandleErrorResponse(c, common.ErrForbiddenRole)
		}
		return c.Next()
	}
}
