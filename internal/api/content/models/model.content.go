// Package models - model nội dung (Content) cùng lịch sử revision, phân phối và phần tử thiết kế.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"content_studio/internal/llm"
)

// Trạng thái nội dung
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Trạng thái của một kênh phân phối
const (
	ChannelPending   = "pending"
	ChannelPublished = "published"
	ChannelFailed    = "failed"
)

// GenerationMetadata thông tin lần sinh nội dung bằng LLM
type GenerationMetadata struct {
	Prompt           string         `json:"prompt" bson:"prompt"`
	Model            string         `json:"model" bson:"model"`
	Parameters       llm.Parameters `json:"parameters" bson:"parameters"`
	ProcessingTimeMs int64          `json:"processingTimeMs" bson:"processingTimeMs"`
	TokenUsage       llm.Usage      `json:"tokenUsage" bson:"tokenUsage"`
}

// DesignElement phần tử thiết kế gắn với nội dung, bị ghi đè toàn bộ mỗi lần sync
type DesignElement struct {
	FileID       string `json:"fileId" bson:"fileId"`
	NodeID       string `json:"nodeId" bson:"nodeId"`
	Type         string `json:"type" bson:"type"`
	Name         string `json:"name" bson:"name"`
	URL          string `json:"url,omitempty" bson:"url,omitempty"`
	LastSyncedAt int64  `json:"lastSyncedAt" bson:"lastSyncedAt"`
}

// Stats số liệu tóm tắt hiển thị cùng nội dung
type Stats struct {
	Views      int64   `json:"views" bson:"views"`
	Engagement int64   `json:"engagement" bson:"engagement"`
	Sentiment  float64 `json:"sentiment" bson:"sentiment"`
}

// Channel một kênh phân phối
type Channel struct {
	Name        string `json:"name" bson:"name"`
	Status      string `json:"status" bson:"status"` // pending, published, failed
	PublishedAt int64  `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
}

// Schedule lịch đăng
type Schedule struct {
	PublishAt int64  `json:"publishAt" bson:"publishAt"`
	Timezone  string `json:"timezone" bson:"timezone"`
}

// Distribution cấu hình phân phối
type Distribution struct {
	Channels []Channel `json:"channels" bson:"channels"`
	Schedule *Schedule `json:"schedule,omitempty" bson:"schedule,omitempty"`
}

// Revision ảnh chụp body trước một lần sửa. Chỉ thêm, không sửa / xóa.
type Revision struct {
	Body       string             `json:"body" bson:"body"`
	EditorID   primitive.ObjectID `json:"editorId" bson:"editorId"`
	EditedAt   int64              `json:"editedAt" bson:"editedAt"`
	Version    int64              `json:"version" bson:"version"`
	ChangeNote string             `json:"changeNote,omitempty" bson:"changeNote,omitempty"`
}

// Content nội dung được sinh / biên tập.
// Collection: contents
type Content struct {
	ID    primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title string             `json:"title" bson:"title"`
	Type  string             `json:"type" bson:"type" index:"single:1"`
	Body  string             `json:"body" bson:"body"`

	Metadata GenerationMetadata `json:"metadata" bson:"metadata"`

	Status    string             `json:"status" bson:"status" index:"compound:company_status"`
	AuthorID  primitive.ObjectID `json:"authorId" bson:"authorId" index:"single:1"`
	CompanyID primitive.ObjectID `json:"companyId" bson:"companyId" index:"compound:company_status"`

	DesignElements []DesignElement `json:"designElements" bson:"designElements"`
	Stats          Stats           `json:"stats" bson:"stats"`
	Distribution   Distribution    `json:"distribution" bson:"distribution"`

	// Version tăng đúng 1 mỗi lần sửa body; đồng thời là khóa optimistic khi ghi
	Version   int64      `json:"version" bson:"version"`
	Revisions []Revision `json:"revisions" bson:"revisions"`

	IsArchived bool     `json:"isArchived" bson:"isArchived"`
	Tags       []string `json:"tags" bson:"tags" index:"single:1"`
	CreatedAt  int64    `json:"createdAt" bson:"createdAt" index:"single:1,order:-1"`
	UpdatedAt  int64    `json:"updatedAt" bson:"updatedAt"`
}

// FindRevision trả về revision có version n
func (c *Content) FindRevision(n int64) (Revision, bool) {
	for _, r := range c.Revisions {
		if r.Version == n {
			return r, true
		}
	}
	return Revision{}, false
}

// ChannelNames tên các kênh phân phối hiện tại
func (c *Content) ChannelNames() []string {
	names := make([]string, 0, len(c.Distribution.Channels))
	for _, ch := range c.Distribution.Channels {
		names = append(names, ch.Name)
	}
	return names
}

// VersionSummary một dòng trong danh sách phiên bản
type VersionSummary struct {
	Version    int64              `json:"version"`
	EditorID   primitive.ObjectID `json:"editorId"`
	EditedAt   int64              `json:"editedAt"`
	ChangeNote string             `json:"changeNote,omitempty"`
	Current    bool               `json:"current"`
}

// BulkResult kết quả thao tác hàng loạt
type BulkResult struct {
	Requested int64 `json:"requested"`
	Matched   int64 `json:"matched"`
	Modified  int64 `json:"modified"`
}

// DesignRef tham chiếu tới một node trong file thiết kế cần đồng bộ
type DesignRef struct {
	NodeID string `json:"nodeId"`
	Type   string `json:"type,omitempty"`
}
