package global

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("object_id", validateObjectID)
	_ = Validate.RegisterValidation("timezone", validateTimezone)
	_ = Validate.RegisterValidation("strong_password", validateStrongPassword)
	_ = Validate.RegisterValidation("content_type", validateContentType)
	_ = Validate.RegisterValidation("account_role", validateAccountRole)
}

// ContentTypes các loại nội dung hợp lệ
var ContentTypes = []string{"blog", "social_post", "email", "design_doc", "changelog", "internal_comm"}

// AccountRoles các vai trò hợp lệ
var AccountRoles = []string{"user", "admin", "editor"}

// validateContentType loại nội dung nằm trong ContentTypes
func validateContentType(fl validator.FieldLevel) bool {
	return inList(fl.Field().String(), ContentTypes)
}

// validateAccountRole vai trò nằm trong AccountRoles
func validateAccountRole(fl validator.FieldLevel) bool {
	return inList(fl.Field().String(), AccountRoles)
}

func inList(value string, list []string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateObjectID chuỗi phải là ObjectID hex hợp lệ (rỗng = bỏ qua, dùng kèm required nếu bắt buộc)
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

// validateTimezone tên múi giờ IANA, ví dụ "Asia/Ho_Chi_Minh"
func validateTimezone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.LoadLocation(value)
	return err == nil
}

// validateStrongPassword tối thiểu 8 ký tự, có chữ và số
func validateStrongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, ch := range value {
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}
