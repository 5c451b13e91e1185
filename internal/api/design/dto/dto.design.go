// Package designdto chứa DTO cho domain design.
package designdto

// NodesQuery danh sách node id, phân cách bởi dấu phẩy
type NodesQuery struct {
	IDs string `query:"ids" validate:"required,max=2000"`
}

// ImagesQuery tham số export ảnh
type ImagesQuery struct {
	IDs    string  `query:"ids" validate:"required,max=2000"`
	Format string  `query:"format" validate:"omitempty,oneof=jpg png svg pdf"`
	Scale  float64 `query:"scale" validate:"omitempty,gte=0.01,lte=4"`
}

// SearchQuery tìm node theo tên
type SearchQuery struct {
	Q     string `query:"q" validate:"required,max=200"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=200"`
}

// CommentInput bình luận trên file
type CommentInput struct {
	Message    string         `json:"message" validate:"required,max=5000"`
	ClientMeta map[string]any `json:"clientMeta,omitempty"`
	CommentID  string         `json:"commentId,omitempty"`
}

// WebhookInput đăng ký webhook cho team
type WebhookInput struct {
	EventType   string `json:"eventType" validate:"required,oneof=FILE_UPDATE FILE_VERSION_UPDATE FILE_DELETE LIBRARY_PUBLISH FILE_COMMENT"`
	TeamID      string `json:"teamId" validate:"required"`
	Endpoint    string `json:"endpoint" validate:"required,url"`
	Passcode    string `json:"passcode" validate:"required,min=8,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=150"`
}

// BatchInput lấy nhiều file cùng lúc
type BatchInput struct {
	FileKeys []string `json:"fileKeys" validate:"required,min=1,max=10,dive,required"`
}
