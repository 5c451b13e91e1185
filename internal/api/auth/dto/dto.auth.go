// Package authdto chứa DTO cho domain auth (đăng ký, đăng nhập, hồ sơ, API key, tích hợp).
package authdto

// RegisterInput dữ liệu đăng ký công ty mới (người đăng ký là admin)
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strong_password"`
	Name        string `json:"name" validate:"required,min=1,max=100,no_xss"`
	CompanyName string `json:"companyName" validate:"required,min=1,max=200,no_xss"`
	Position    string `json:"position,omitempty" validate:"omitempty,max=100,no_xss"`
}

// LoginInput dữ liệu đăng nhập
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput dữ liệu làm mới token
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// PreferencesInput cập nhật giọng văn / ngôn ngữ mặc định
type PreferencesInput struct {
	Tone     *string `json:"tone,omitempty" validate:"omitempty,max=50,no_xss"`
	Language *string `json:"language,omitempty" validate:"omitempty,max=20,no_xss"`
}

// NotificationsInput cập nhật cờ nhận thông báo
type NotificationsInput struct {
	Email    *bool `json:"email,omitempty"`
	Weekly   *bool `json:"weekly,omitempty"`
	Mentions *bool `json:"mentions,omitempty"`
}

// UpdateProfileInput cập nhật hồ sơ; field nil thì giữ nguyên
type UpdateProfileInput struct {
	Name            *string             `json:"name,omitempty" validate:"omitempty,min=1,max=100,no_xss"`
	Position        *string             `json:"position,omitempty" validate:"omitempty,max=100,no_xss"`
	CompanyName     *string             `json:"companyName,omitempty" validate:"omitempty,min=1,max=200,no_xss"`
	Preferences     *PreferencesInput   `json:"preferences,omitempty"`
	Notifications   *NotificationsInput `json:"notifications,omitempty"`
	CurrentPassword string              `json:"currentPassword,omitempty"`
	NewPassword     string              `json:"newPassword,omitempty" validate:"omitempty,strong_password"`
}

// ConnectIntegrationInput kết nối công cụ thiết kế bằng token người dùng cung cấp
type ConnectIntegrationInput struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty" validate:"omitempty,min=0"`
}

// ForgotPasswordInput yêu cầu gửi email đặt lại mật khẩu
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput đặt lại mật khẩu bằng token trong email
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strong_password"`
}

// AddMemberInput admin thêm thành viên vào công ty
type AddMemberInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Name     string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Role     string `json:"role" validate:"required,oneof=user editor"`
	Position string `json:"position,omitempty" validate:"omitempty,max=100,no_xss"`
}

// APIKeyOutput API key chỉ trả về một lần khi tạo
type APIKeyOutput struct {
	APIKey string `json:"apiKey"`
	Prefix string `json:"prefix"`
}
