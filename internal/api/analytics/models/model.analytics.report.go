package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary số liệu gộp của một tập bản ghi trong một khoảng thời gian
type Summary struct {
	Contents       int64   `json:"contents" bson:"contents"`
	Views          int64   `json:"views" bson:"views"`
	Likes          int64   `json:"likes" bson:"likes"`
	Shares         int64   `json:"shares" bson:"shares"`
	Comments       int64   `json:"comments" bson:"comments"`
	Engagement     int64   `json:"engagement" bson:"engagement"`
	SentimentSum   float64 `json:"-" bson:"sentimentSum"`
	SentimentCount int64   `json:"-" bson:"sentimentCount"`
	AvgSentiment   float64 `json:"avgSentiment" bson:"-"`
}

// Finalize tính các trường dẫn xuất sau khi cộng dồn
func (s *Summary) Finalize() {
	s.Engagement = s.Likes + s.Shares + s.Comments
	if s.SentimentCount > 0 {
		s.AvgSentiment = s.SentimentSum / float64(s.SentimentCount)
	} else {
		s.AvgSentiment = 0
	}
}

// DateRange khoảng thời gian báo cáo (mili giây, gồm cả hai đầu)
type DateRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Contains thời điểm nằm trong khoảng
func (r DateRange) Contains(ts int64) bool {
	return ts >= r.From && ts <= r.To
}

// Dashboard tổng quan của công ty
type Dashboard struct {
	Range        DateRange        `json:"range"`
	StatusCounts map[string]int64 `json:"statusCounts"`
	Totals       Summary          `json:"totals"`
}

// Comparison so sánh hai khoảng thời gian
type Comparison struct {
	Period1 Summary            `json:"period1"`
	Period2 Summary            `json:"period2"`
	Changes map[string]float64 `json:"changes"`
}

// TimeSeriesPoint một điểm của chuỗi thời gian đã gom theo interval
type TimeSeriesPoint struct {
	Key       string `json:"date"`
	Timestamp int64  `json:"timestamp"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Shares    int64  `json:"shares"`
	Comments  int64  `json:"comments"`
}

// ContentPerformance số liệu của một nội dung trong khoảng thời gian
type ContentPerformance struct {
	ContentID      primitive.ObjectID `json:"contentId"`
	Title          string             `json:"title"`
	Type           string             `json:"type"`
	Status         string             `json:"status"`
	AuthorID       primitive.ObjectID `json:"authorId"`
	CreatedAt      int64              `json:"createdAt"`
	Views          int64              `json:"views"`
	Likes          int64              `json:"likes"`
	Shares         int64              `json:"shares"`
	Comments       int64              `json:"comments"`
	Engagement     int64              `json:"engagement"`
	EngagementRate float64            `json:"engagementRate"`
	Sentiment      float64            `json:"sentiment"`

	// mẫu sentiment trong khoảng, để gộp nhóm theo trung bình mẫu
	SentimentSum     float64 `json:"-"`
	SentimentSamples int64   `json:"-"`
}

// EngagementReport tổng tương tác và tỷ lệ tương tác / lượt xem (%)
type EngagementReport struct {
	Views    int64   `json:"views"`
	Likes    int64   `json:"likes"`
	Shares   int64   `json:"shares"`
	Comments int64   `json:"comments"`
	Total    int64   `json:"total"`
	Rate     float64 `json:"rate"`
}

// SentimentReport điểm trung bình và phân bố
type SentimentReport struct {
	Average  float64 `json:"average"`
	Samples  int64   `json:"samples"`
	Positive int64   `json:"positive"`
	Neutral  int64   `json:"neutral"`
	Negative int64   `json:"negative"`
}

// ChannelStatusCount số kênh theo trạng thái (từ nội dung)
type ChannelStatusCount struct {
	Channel   string `json:"channel"`
	Total     int64  `json:"total"`
	Published int64  `json:"published"`
	Pending   int64  `json:"pending"`
	Failed    int64  `json:"failed"`
}

// ChannelPerformance số liệu cộng dồn theo kênh
type ChannelPerformance struct {
	Channel        string  `json:"channel"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversionRate"`
}

// ContentTypeStats số liệu theo loại nội dung
type ContentTypeStats struct {
	Type         string  `json:"type"`
	Count        int64   `json:"count"`
	Views        int64   `json:"views"`
	Engagement   int64   `json:"engagement"`
	AvgSentiment float64 `json:"avgSentiment"`
}

// UserActivity hoạt động của một tác giả
type UserActivity struct {
	AuthorID   primitive.ObjectID `json:"authorId"`
	Contents   int64              `json:"contents"`
	Published  int64              `json:"published"`
	Archived   int64              `json:"archived"`
	Views      int64              `json:"views"`
	Engagement int64              `json:"engagement"`
}

// Realtime lượt xem 24 giờ gần nhất theo giờ
type Realtime struct {
	Total int64             `json:"total"`
	Hours []TimeSeriesPoint `json:"hours"`
}

// CustomReportRow một nhóm trong báo cáo tùy chọn
type CustomReportRow struct {
	Group  string             `json:"group"`
	Values map[string]float64 `json:"values"`
}

// CustomReport báo cáo tùy chọn: metrics x group-by
type CustomReport struct {
	GroupBy string            `json:"groupBy"`
	Metrics []string          `json:"metrics"`
	Rows    []CustomReportRow `json:"rows"`
}

// ExportRow một dòng phẳng khi xuất dữ liệu
type ExportRow struct {
	ContentID string  `json:"contentId"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"createdAt"`
	Views     int64   `json:"views"`
	Likes     int64   `json:"likes"`
	Shares    int64   `json:"shares"`
	Comments  int64   `json:"comments"`
	Sentiment float64 `json:"sentiment"`
}

// JoinedRecord nội dung ghép với bản ghi analytics (xuất nguyên dạng)
type JoinedRecord struct {
	ContentID primitive.ObjectID `json:"contentId"`
	Title     string             `json:"title"`
	Type      string             `json:"type"`
	Status    string             `json:"status"`
	Analytics *ContentAnalytics  `json:"analytics"`
}

// ReportExport dữ liệu cho bản in: tổng hợp + chi tiết
type ReportExport struct {
	Summary Summary     `json:"summary"`
	Details []ExportRow `json:"details"`
}

// Export kết quả xuất. Data là []ExportRow (csv), ReportExport (pdf) hoặc []JoinedRecord.
type Export struct {
	Format string `json:"format"`
	Data   any    `json:"data"`
}
