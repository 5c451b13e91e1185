package common

import (
	"errors"
	"fmt"
)

// ErrorKind phân loại lỗi của service layer. Boundary chỉ dựa vào Kind để chọn HTTP status.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindRateLimit      ErrorKind = "rate_limit"
	KindUpstream       ErrorKind = "upstream"
	KindInternal       ErrorKind = "internal"
)

func kindFromStatus(status int) ErrorKind {
	switch status {
	case StatusBadRequest:
		return KindValidation
	case StatusUnauthorized:
		return KindAuthentication
	case StatusForbidden:
		return KindAuthorization
	case StatusNotFound:
		return KindNotFound
	case StatusConflict:
		return KindConflict
	case StatusTooManyRequests:
		return KindRateLimit
	}
	return KindInternal
}

// KindOf trả về loại lỗi; lỗi không phải *Error được coi là internal
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindInternal
}

// IsKind kiểm tra nhanh loại lỗi
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// NewValidationError lỗi dữ liệu đầu vào (không retry, trả nguyên văn cho client)
func NewValidationError(message string, details any) error {
	return NewError(ErrCodeValidationInput, message, StatusBadRequest, details)
}

// NewAuthenticationError lỗi thiếu / sai / hết hạn thông tin xác thực
func NewAuthenticationError(message string) error {
	return NewError(ErrCodeAuthToken, message, StatusUnauthorized, nil)
}

// NewAuthorizationError đã xác thực nhưng không đủ quyền (sai chủ sở hữu hoặc vai trò)
func NewAuthorizationError(message string) error {
	return NewError(ErrCodeAuthOwnership, message, StatusForbidden, nil)
}

// NewNotFoundError tài nguyên được tham chiếu không tồn tại
func NewNotFoundError(resource string, id string) error {
	return NewError(ErrCodeDatabaseQuery, fmt.Sprintf("Không tìm thấy %s", resource), StatusNotFound, map[string]string{
		"resource": resource,
		"id":       id,
	})
}

// NewConflictError trùng khóa duy nhất hoặc chuyển trạng thái không hợp lệ
func NewConflictError(message string, details any) error {
	return NewError(ErrCodeBusinessConflict, message, StatusConflict, details)
}

// NewRateLimitError bị giới hạn tần suất (phía client hoặc phía dịch vụ ngoài)
func NewRateLimitError(message string, details any) error {
	return NewError(ErrCodeRateLimit, message, StatusTooManyRequests, details)
}

// NewUpstreamError lỗi từ LLM / design tool, luôn map về 503 ở boundary
func NewUpstreamError(service string, status int, message string) error {
	return NewError(ErrCodeUpstream, MsgServiceUnavailable, StatusServiceUnavailable, UpstreamDetails{
		Service: service,
		Status:  status,
		Message: message,
	})
}

// NewInternalError bọc lỗi không phân loại được
func NewInternalError(err error) error {
	return NewError(ErrCodeInternalServer, MsgInternalError, StatusInternalServerError, err)
}

// HTTPStatus trả về status code cho boundary
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.StatusCode > 0 {
		return e.StatusCode
	}
	return StatusInternalServerError
}
