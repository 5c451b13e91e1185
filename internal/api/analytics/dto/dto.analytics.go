// Package analyticsdto chứa DTO cho domain analytics.
package analyticsdto

// DateFormat định dạng ngày của query from / to
const DateFormat = "2006-01-02"

// ViewInput một lượt xem
type ViewInput struct {
	Source    string `json:"source,omitempty" validate:"omitempty,max=100"`
	UserAgent string `json:"userAgent,omitempty" validate:"omitempty,max=500"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// EngagementInput một lượt tương tác
type EngagementInput struct {
	Kind string `json:"kind" validate:"required,oneof=like share comment"`
	Text string `json:"text,omitempty" validate:"omitempty,max=2000,no_xss"`
}

// ChannelMetricsInput số liệu cộng thêm cho một kênh
type ChannelMetricsInput struct {
	Channel     string `json:"channel" validate:"required,max=50"`
	Impressions int64  `json:"impressions" validate:"gte=0"`
	Clicks      int64  `json:"clicks" validate:"gte=0"`
	Conversions int64  `json:"conversions" validate:"gte=0"`
}

// RangeQuery khoảng ngày (YYYY-MM-DD); bỏ trống thì lấy 30 ngày gần nhất
type RangeQuery struct {
	From      string `query:"from"`
	To        string `query:"to"`
	Interval  string `query:"interval"`
	ContentID string `query:"contentId" validate:"omitempty,object_id"`
	Limit     int64  `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Format    string `query:"format"`
}

// CompareQuery hai khoảng ngày cần so sánh
type CompareQuery struct {
	From1 string `query:"from1" validate:"required"`
	To1   string `query:"to1" validate:"required"`
	From2 string `query:"from2" validate:"required"`
	To2   string `query:"to2" validate:"required"`
}

// CustomReportInput báo cáo tùy chọn
type CustomReportInput struct {
	From    string   `json:"from,omitempty"`
	To      string   `json:"to,omitempty"`
	Metrics []string `json:"metrics" validate:"required,min=1,dive,oneof=count views likes shares comments engagement sentiment"`
	GroupBy string   `json:"groupBy" validate:"required,oneof=type status author"`
}
