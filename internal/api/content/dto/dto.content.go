// Package contentdto chứa các DTO cho domain content.
package contentdto

import (
	"content_studio/internal/llm"
)

// GenerateInput yêu cầu sinh nội dung mới
type GenerateInput struct {
	Type       string         `json:"type" validate:"required,content_type"`
	Prompt     string         `json:"prompt" validate:"required,no_xss"`
	Title      string         `json:"title,omitempty" validate:"omitempty,max=200,no_xss"`
	Params     map[string]any `json:"params,omitempty"`
	Parameters llm.Parameters `json:"parameters,omitempty"`
	Tags       []string       `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// ImproveInput góp ý để LLM viết lại nội dung
type ImproveInput struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}

// UpdateInput sửa tiêu đề / tag tại chỗ; sửa body thì tạo revision mới
type UpdateInput struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200,no_xss"`
	Body       *string  `json:"body,omitempty"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	ChangeNote string   `json:"changeNote,omitempty" validate:"omitempty,max=500"`
}

// PublishInput đăng ngay lên các kênh
type PublishInput struct {
	Channels []string `json:"channels" validate:"required,min=1,dive,required,max=50"`
}

// ScheduleInput hẹn giờ đăng. PublishAt tính bằng mili giây.
type ScheduleInput struct {
	PublishAt int64    `json:"publishAt" validate:"required,gt=0"`
	Timezone  string   `json:"timezone" validate:"required,timezone"`
	Channels  []string `json:"channels" validate:"required,min=1,dive,required,max=50"`
}

// RestoreInput khôi phục về một phiên bản cũ
type RestoreInput struct {
	Version int64 `json:"version" validate:"required,gt=0"`
}

// BulkInput danh sách ID cho thao tác hàng loạt
type BulkInput struct {
	IDs      []string `json:"ids" validate:"required,min=1,max=100,dive,object_id"`
	Channels []string `json:"channels,omitempty" validate:"omitempty,dive,required,max=50"`
}

// ChannelStatusInput cập nhật trạng thái một kênh đang pending
type ChannelStatusInput struct {
	Status string `json:"status" validate:"required,oneof=published failed"`
	Error  string `json:"error,omitempty" validate:"omitempty,max=500"`
}

// DesignRefInput một node thiết kế cần đồng bộ
type DesignRefInput struct {
	NodeID string `json:"nodeId" validate:"required"`
	Type   string `json:"type,omitempty"`
}

// SyncDesignInput đồng bộ phần tử thiết kế từ một file
type SyncDesignInput struct {
	FileKey  string           `json:"fileKey" validate:"required"`
	Elements []DesignRefInput `json:"elements" validate:"required,min=1,max=50,dive"`
}

// ListQuery tham số lọc danh sách
type ListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=draft published archived"`
	Type     string `query:"type" validate:"omitempty,content_type"`
	Search   string `query:"search" validate:"omitempty,max=200"`
	Tag      string `query:"tag" validate:"omitempty,max=50"`
	AuthorID string `query:"authorId" validate:"omitempty,object_id"`
}
