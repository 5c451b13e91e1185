// Package models - bản ghi analytics của nội dung: log thô, bộ đếm và rollup dẫn xuất.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại tương tác
const (
	EngagementLike    = "like"
	EngagementShare   = "share"
	EngagementComment = "comment"
)

// ViewEvent một lượt xem
type ViewEvent struct {
	ID        string `json:"id" bson:"id"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
	Source    string `json:"source,omitempty" bson:"source,omitempty"`
	UserAgent string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Location  string `json:"location,omitempty" bson:"location,omitempty"`
}

// Interaction một lượt thích / chia sẻ / bình luận
type Interaction struct {
	UserID    string `json:"userId,omitempty" bson:"userId,omitempty"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
	Text      string `json:"text,omitempty" bson:"text,omitempty"`
}

// Engagement log tương tác thô
type Engagement struct {
	Likes    []Interaction `json:"likes" bson:"likes"`
	Shares   []Interaction `json:"shares" bson:"shares"`
	Comments []Interaction `json:"comments" bson:"comments"`
}

// ChannelMetrics số liệu cộng dồn của một kênh phân phối
type ChannelMetrics struct {
	Channel     string `json:"channel" bson:"channel"`
	Impressions int64  `json:"impressions" bson:"impressions"`
	Clicks      int64  `json:"clicks" bson:"clicks"`
	Conversions int64  `json:"conversions" bson:"conversions"`
	UpdatedAt   int64  `json:"updatedAt" bson:"updatedAt"`
}

// SentimentSample một lần chấm điểm cảm xúc
type SentimentSample struct {
	Score     float64 `json:"score" bson:"score"`
	Timestamp int64   `json:"timestamp" bson:"timestamp"`
}

// Sentiment Overall luôn là trung bình cộng của History
type Sentiment struct {
	Overall float64           `json:"overall" bson:"overall"`
	History []SentimentSample `json:"history" bson:"history"`
}

// Totals bộ đếm tăng cùng lúc với log thô
type Totals struct {
	Views    int64 `json:"views" bson:"views"`
	Likes    int64 `json:"likes" bson:"likes"`
	Shares   int64 `json:"shares" bson:"shares"`
	Comments int64 `json:"comments" bson:"comments"`
}

// Engagement tổng tương tác (thích + chia sẻ + bình luận)
func (t Totals) Engagement() int64 {
	return t.Likes + t.Shares + t.Comments
}

// Bucket số liệu của một ngày / tuần / tháng. Key theo định dạng của chu kỳ.
type Bucket struct {
	Key       string `json:"date" bson:"date"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
	Views     int64  `json:"views" bson:"views"`
	Likes     int64  `json:"likes" bson:"likes"`
	Shares    int64  `json:"shares" bson:"shares"`
	Comments  int64  `json:"comments" bson:"comments"`
}

// Rollups các bucket dẫn xuất, chỉ được ghi bởi bước tính lại
type Rollups struct {
	Daily   []Bucket `json:"daily" bson:"daily"`
	Weekly  []Bucket `json:"weekly" bson:"weekly"`
	Monthly []Bucket `json:"monthly" bson:"monthly"`
}

// ContentAnalytics bản ghi analytics, đúng một bản ghi cho mỗi nội dung.
// Collection: content_analytics
type ContentAnalytics struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ContentID   primitive.ObjectID `json:"contentId" bson:"contentId" index:"unique"`
	CompanyID   primitive.ObjectID `json:"companyId" bson:"companyId" index:"compound:company_author"`
	AuthorID    primitive.ObjectID `json:"authorId" bson:"authorId" index:"compound:company_author"`
	ContentType string             `json:"contentType" bson:"contentType"`

	Views        []ViewEvent      `json:"views" bson:"views"`
	Engagement   Engagement       `json:"engagement" bson:"engagement"`
	Distribution []ChannelMetrics `json:"distribution" bson:"distribution"`
	Sentiment    Sentiment        `json:"sentiment" bson:"sentiment"`
	Totals       Totals           `json:"totals" bson:"totals"`

	TimeSeries []Bucket `json:"timeSeries" bson:"timeSeries"`
	Rollups    Rollups  `json:"rollups" bson:"rollups"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// NewContentAnalytics bản ghi rỗng (mảng rỗng, không nil) cho một nội dung
func NewContentAnalytics(contentID, companyID, authorID primitive.ObjectID, contentType string, now int64) *ContentAnalytics {
	return &ContentAnalytics{
		ID:          primitive.NewObjectID(),
		ContentID:   contentID,
		CompanyID:   companyID,
		AuthorID:    authorID,
		ContentType: contentType,
		Views:       []ViewEvent{},
		Engagement: Engagement{
			Likes:    []Interaction{},
			Shares:   []Interaction{},
			Comments: []Interaction{},
		},
		Distribution: []ChannelMetrics{},
		Sentiment:    Sentiment{History: []SentimentSample{}},
		TimeSeries:   []Bucket{},
		Rollups: Rollups{
			Daily:   []Bucket{},
			Weekly:  []Bucket{},
			Monthly: []Bucket{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
