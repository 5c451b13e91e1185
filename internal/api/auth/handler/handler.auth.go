// Package authhdl - handler HTTP cho domain auth.
package authhdl

import (
	"github.com/gofiber/fiber/v3"

	authdto "content_studio/internal/api/auth/dto"
	authsvc "content_studio/internal/api/auth/service"
	basehdl "content_studio/internal/api/base/handler"
	"content_studio/internal/logger"
)

// AuthHandler xử lý các request xác thực và quản lý tài khoản
type AuthHandler struct {
	basehdl.BaseHandler
	authService *authsvc.AuthService
}

// NewAuthHandler tạo AuthHandler
func NewAuthHandler(authService *authsvc.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// HandleRegister đăng ký công ty mới
func (h *AuthHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.RegisterInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.authService.Register(c.Context(), &input)
		if err == nil {
			logger.LogAuth("register", c, map[string]interface{}{"account_id": result.Account.ID.Hex()})
		}
		return h.HandleCreated(c, result, err)
	})
}

// HandleLogin đăng nhập bằng email + mật khẩu
func (h *AuthHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.LoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.authService.Login(c.Context(), &input)
		if err != nil {
			if authsvc.IsCredentialError(err) {
				logger.LogAuth("login_failed", c, map[string]interface{}{"email": input.Email})
			}
			return h.HandleResponse(c, nil, err)
		}
		logger.LogAuth("login", c, map[string]interface{}{"account_id": result.Account.ID.Hex()})
		return h.HandleResponse(c, result, nil)
	})
}

// HandleRefresh cấp lại cặp token
func (h *AuthHandler) HandleRefresh(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.RefreshInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.authService.Refresh(c.Context(), input.RefreshToken)
		return h.HandleResponse(c, result, err)
	})
}

// HandleGetProfile lấy hồ sơ của người gọi
func (h *AuthHandler) HandleGetProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		account, err := h.authService.Profile(c.Context(), p.AccountID)
		return h.HandleResponse(c, account, err)
	})
}

// HandleUpdateProfile cập nhật hồ sơ / mật khẩu
func (h *AuthHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input authdto.UpdateProfileInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		account, err := h.authService.UpdateProfile(c.Context(), p, &input)
		if err == nil && input.NewPassword != "" {
			logger.LogAuth("password_change", c, nil)
		}
		return h.HandleResponse(c, account, err)
	})
}

// HandleGenerateAPIKey tạo API key mới, key chỉ hiển thị một lần
func (h *AuthHandler) HandleGenerateAPIKey(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		out, err := h.authService.GenerateAPIKey(c.Context(), p.AccountID)
		if err == nil {
			logger.LogAuth("api_key_generate", c, map[string]interface{}{"prefix": out.Prefix})
		}
		return h.HandleCreated(c, out, err)
	})
}

// HandleRevokeAPIKey thu hồi API key
func (h *AuthHandler) HandleRevokeAPIKey(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		err = h.authService.RevokeAPIKey(c.Context(), p.AccountID)
		if err == nil {
			logger.LogAuth("api_key_revoke", c, nil)
		}
		return h.HandleResponse(c, nil, err)
	})
}

// HandleConnectIntegration kết nối công cụ thiết kế
func (h *AuthHandler) HandleConnectIntegration(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input authdto.ConnectIntegrationInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		account, err := h.authService.ConnectIntegration(c.Context(), p.AccountID, &input)
		return h.HandleResponse(c, account, err)
	})
}

// HandleDisconnectIntegration ngắt kết nối công cụ thiết kế
func (h *AuthHandler) HandleDisconnectIntegration(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		return h.HandleResponse(c, nil, h.authService.DisconnectIntegration(c.Context(), p.AccountID))
	})
}

// HandleForgotPassword gửi email đặt lại mật khẩu; luôn trả về thành công
func (h *AuthHandler) HandleForgotPassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.ForgotPasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		err := h.authService.ForgotPassword(c.Context(), input.Email)
		if err == nil {
			logger.LogAuth("password_forgot", c, map[string]interface{}{"email": input.Email})
		}
		return h.HandleResponse(c, nil, err)
	})
}

// HandleResetPassword đặt lại mật khẩu bằng token
func (h *AuthHandler) HandleResetPassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.ResetPasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		err := h.authService.ResetPassword(c.Context(), &input)
		if err == nil {
			logger.LogAuth("password_reset", c, nil)
		}
		return h.HandleResponse(c, nil, err)
	})
}

// HandleListMembers danh sách thành viên công ty
func (h *AuthHandler) HandleListMembers(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		members, err := h.authService.ListMembers(c.Context(), p)
		return h.HandleResponse(c, members, err)
	})
}

// HandleAddMember admin thêm thành viên
func (h *AuthHandler) HandleAddMember(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input authdto.AddMemberInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		member, err := h.authService.AddMember(c.Context(), p, &input)
		if err == nil {
			logger.LogAuth("member_add", c, map[string]interface{}{"member_id": member.ID.Hex(), "role": member.Role})
		}
		return h.HandleCreated(c, member, err)
	})
}
