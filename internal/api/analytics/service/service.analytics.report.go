package analyticssvc

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsdto "content_studio/internal/api/analytics/dto"
	analyticsmodels "content_studio/internal/api/analytics/models"
	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/common"
	"content_studio/internal/utility"
)

const (
	defaultRangeDays   = 30
	defaultTopLimit    = 10
	sentimentThreshold = 0.2
)

// Các định dạng xuất
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

// CustomMetrics metrics hợp lệ của báo cáo tùy chọn
var CustomMetrics = []string{"count", "views", "likes", "shares", "comments", "engagement", "sentiment"}

// CustomGroupBys các chiều gom nhóm hợp lệ
var CustomGroupBys = []string{"type", "status", "author"}

// ResolveRange đọc from / to (YYYY-MM-DD, theo múi giờ báo cáo).
// Thiếu to thì tính đến hiện tại; thiếu from thì lấy 30 ngày trước to.
func (s *AnalyticsService) ResolveRange(from, to string) (analyticsmodels.DateRange, error) {
	end := s.localNow()
	r := analyticsmodels.DateRange{To: end.UnixMilli()}
	if to != "" {
		t, err := time.ParseInLocation(analyticsdto.DateFormat, to, s.loc)
		if err != nil {
			return r, common.NewValidationError("to không đúng định dạng YYYY-MM-DD", map[string]string{"to": to})
		}
		end = t.AddDate(0, 0, 1)
		r.To = end.UnixMilli() - 1
	}
	r.From = end.AddDate(0, 0, -defaultRangeDays).UnixMilli()
	if from != "" {
		t, err := time.ParseInLocation(analyticsdto.DateFormat, from, s.loc)
		if err != nil {
			return r, common.NewValidationError("from không đúng định dạng YYYY-MM-DD", map[string]string{"from": from})
		}
		r.From = t.UnixMilli()
	}
	if r.From > r.To {
		return r, common.NewValidationError("from phải nhỏ hơn hoặc bằng to", nil)
	}
	return r, nil
}

func rangeFilter(p authmodels.Principal, r analyticsmodels.DateRange) RecordFilter {
	return RecordFilter{CompanyID: p.CompanyID, From: r.From, To: r.To}
}

// Dashboard số nội dung theo trạng thái và tổng số liệu trong khoảng thời gian
func (s *AnalyticsService) Dashboard(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) (*analyticsmodels.Dashboard, error) {
	contents, err := s.contents.ListCompany(ctx, p.CompanyID, r.From, r.To)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{
		contentmodels.StatusDraft:     0,
		contentmodels.StatusPublished: 0,
		contentmodels.StatusArchived:  0,
	}
	for _, c := range contents {
		counts[c.Status]++
	}
	summary, err := s.store.Summarize(ctx, rangeFilter(p, r))
	if err != nil {
		return nil, err
	}
	return &analyticsmodels.Dashboard{Range: r, StatusCounts: counts, Totals: summary}, nil
}

// Compare so sánh hai khoảng thời gian; Changes tính từ period1 sang period2
func (s *AnalyticsService) Compare(ctx context.Context, p authmodels.Principal, r1, r2 analyticsmodels.DateRange) (*analyticsmodels.Comparison, error) {
	first, err := s.store.Summarize(ctx, rangeFilter(p, r1))
	if err != nil {
		return nil, err
	}
	second, err := s.store.Summarize(ctx, rangeFilter(p, r2))
	if err != nil {
		return nil, err
	}
	return &analyticsmodels.Comparison{
		Period1: first,
		Period2: second,
		Changes: map[string]float64{
			"views":      PercentChange(float64(first.Views), float64(second.Views)),
			"likes":      PercentChange(float64(first.Likes), float64(second.Likes)),
			"shares":     PercentChange(float64(first.Shares), float64(second.Shares)),
			"comments":   PercentChange(float64(first.Comments), float64(second.Comments)),
			"engagement": PercentChange(float64(first.Engagement), float64(second.Engagement)),
			"sentiment":  PercentChange(first.AvgSentiment, second.AvgSentiment),
		},
	}, nil
}

// TimeSeries chuỗi thời gian gom theo interval; contentID khác zero thì chỉ lấy một nội dung
func (s *AnalyticsService) TimeSeries(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange, interval string, contentID primitive.ObjectID) ([]analyticsmodels.TimeSeriesPoint, error) {
	filter := rangeFilter(p, r)
	if !contentID.IsZero() {
		if _, err := s.authorize(ctx, contentID, p); err != nil {
			return nil, err
		}
		filter.ContentID = contentID
	}
	points, err := s.store.TimeSeriesPoints(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GroupPoints(points, interval, s.loc), nil
}

// performanceRows ghép nội dung với số liệu trong khoảng thời gian
func (s *AnalyticsService) performanceRows(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) ([]analyticsmodels.ContentPerformance, map[primitive.ObjectID]*analyticsmodels.ContentAnalytics, []contentmodels.Content, error) {
	contents, err := s.contents.ListCompany(ctx, p.CompanyID, 0, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	filter := rangeFilter(p, r)
	recs, err := s.store.List(ctx, RecordFilter{CompanyID: p.CompanyID})
	if err != nil {
		return nil, nil, nil, err
	}
	byContent := make(map[primitive.ObjectID]*analyticsmodels.ContentAnalytics, len(recs))
	for i := range recs {
		byContent[recs[i].ContentID] = &recs[i]
	}

	rows := make([]analyticsmodels.ContentPerformance, 0, len(contents))
	for _, c := range contents {
		row := analyticsmodels.ContentPerformance{
			ContentID: c.ID,
			Title:     c.Title,
			Type:      c.Type,
			Status:    c.Status,
			AuthorID:  c.AuthorID,
			CreatedAt: c.CreatedAt,
		}
		if rec, ok := byContent[c.ID]; ok {
			counts := countInRange(rec, filter)
			row.Views = counts.Views
			row.Likes = counts.Likes
			row.Shares = counts.Shares
			row.Comments = counts.Comments
			row.Engagement = counts.Engagement
			row.Sentiment = counts.AvgSentiment
			row.SentimentSum = counts.SentimentSum
			row.SentimentSamples = counts.SentimentCount
			if counts.Views > 0 {
				row.EngagementRate = float64(counts.Engagement) / float64(counts.Views) * 100
			}
		}
		rows = append(rows, row)
	}
	return rows, byContent, contents, nil
}

// Performance nội dung nhiều lượt xem nhất
func (s *AnalyticsService) Performance(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange, limit int64) ([]analyticsmodels.ContentPerformance, error) {
	rows, _, _, err := s.performanceRows(ctx, p, r)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Views > rows[j].Views })
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Engagement tổng tương tác và tỷ lệ trên lượt xem
func (s *AnalyticsService) Engagement(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) (*analyticsmodels.EngagementReport, error) {
	summary, err := s.store.Summarize(ctx, rangeFilter(p, r))
	if err != nil {
		return nil, err
	}
	report := &analyticsmodels.EngagementReport{
		Views:    summary.Views,
		Likes:    summary.Likes,
		Shares:   summary.Shares,
		Comments: summary.Comments,
		Total:    summary.Engagement,
	}
	if summary.Views > 0 {
		report.Rate = float64(summary.Engagement) / float64(summary.Views) * 100
	}
	return report, nil
}

// Sentiment điểm trung bình và phân bố tích cực / trung tính / tiêu cực
func (s *AnalyticsService) Sentiment(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) (*analyticsmodels.SentimentReport, error) {
	recs, err := s.store.List(ctx, RecordFilter{CompanyID: p.CompanyID})
	if err != nil {
		return nil, err
	}
	report := &analyticsmodels.SentimentReport{}
	var sum float64
	for _, rec := range recs {
		for _, h := range rec.Sentiment.History {
			if !r.Contains(h.Timestamp) {
				continue
			}
			report.Samples++
			sum += h.Score
			switch {
			case h.Score > sentimentThreshold:
				report.Positive++
			case h.Score < -sentimentThreshold:
				report.Negative++
			default:
				report.Neutral++
			}
		}
	}
	if report.Samples > 0 {
		report.Average = sum / float64(report.Samples)
	}
	return report, nil
}

// Distribution số kênh theo trạng thái, đọc từ nội dung tạo trong khoảng thời gian
func (s *AnalyticsService) Distribution(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) ([]analyticsmodels.ChannelStatusCount, error) {
	contents, err := s.contents.ListCompany(ctx, p.CompanyID, r.From, r.To)
	if err != nil {
		return nil, err
	}
	byChannel := map[string]*analyticsmodels.ChannelStatusCount{}
	for _, c := range contents {
		for _, ch := range c.Distribution.Channels {
			row, ok := byChannel[ch.Name]
			if !ok {
				row = &analyticsmodels.ChannelStatusCount{Channel: ch.Name}
				byChannel[ch.Name] = row
			}
			row.Total++
			switch ch.Status {
			case contentmodels.ChannelPublished:
				row.Published++
			case contentmodels.ChannelPending:
				row.Pending++
			case contentmodels.ChannelFailed:
				row.Failed++
			}
		}
	}
	out := make([]analyticsmodels.ChannelStatusCount, 0, len(byChannel))
	for _, row := range byChannel {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

// ChannelPerformance số liệu cộng dồn theo kênh kèm CTR / tỷ lệ chuyển đổi (%)
func (s *AnalyticsService) ChannelPerformance(ctx context.Context, p authmodels.Principal) ([]analyticsmodels.ChannelPerformance, error) {
	recs, err := s.store.List(ctx, RecordFilter{CompanyID: p.CompanyID})
	if err != nil {
		return nil, err
	}
	byChannel := map[string]*analyticsmodels.ChannelPerformance{}
	for _, rec := range recs {
		for _, m := range rec.Distribution {
			row, ok := byChannel[m.Channel]
			if !ok {
				row = &analyticsmodels.ChannelPerformance{Channel: m.Channel}
				byChannel[m.Channel] = row
			}
			row.Impressions += m.Impressions
			row.Clicks += m.Clicks
			row.Conversions += m.Conversions
		}
	}
	out := make([]analyticsmodels.ChannelPerformance, 0, len(byChannel))
	for _, row := range byChannel {
		if row.Impressions > 0 {
			row.CTR = float64(row.Clicks) / float64(row.Impressions) * 100
		}
		if row.Clicks > 0 {
			row.ConversionRate = float64(row.Conversions) / float64(row.Clicks) * 100
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

// ContentTypes số liệu theo loại nội dung
func (s *AnalyticsService) ContentTypes(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) ([]analyticsmodels.ContentTypeStats, error) {
	rows, _, _, err := s.performanceRows(ctx, p, r)
	if err != nil {
		return nil, err
	}
	byType := map[string]*analyticsmodels.ContentTypeStats{}
	sentiment := map[string]*analyticsmodels.Summary{}
	for _, row := range rows {
		st, ok := byType[row.Type]
		if !ok {
			st = &analyticsmodels.ContentTypeStats{Type: row.Type}
			byType[row.Type] = st
			sentiment[row.Type] = &analyticsmodels.Summary{}
		}
		st.Count++
		st.Views += row.Views
		st.Engagement += row.Engagement
		sentiment[row.Type].SentimentSum += row.SentimentSum
		sentiment[row.Type].SentimentCount += row.SentimentSamples
	}
	out := make([]analyticsmodels.ContentTypeStats, 0, len(byType))
	for t, st := range byType {
		sentiment[t].Finalize()
		st.AvgSentiment = sentiment[t].AvgSentiment
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// UserActivity hoạt động theo tác giả (admin)
func (s *AnalyticsService) UserActivity(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange) ([]analyticsmodels.UserActivity, error) {
	if !p.IsAdmin() {
		return nil, common.ErrForbiddenRole
	}
	rows, _, _, err := s.performanceRows(ctx, p, r)
	if err != nil {
		return nil, err
	}
	byAuthor := map[primitive.ObjectID]*analyticsmodels.UserActivity{}
	for _, row := range rows {
		ua, ok := byAuthor[row.AuthorID]
		if !ok {
			ua = &analyticsmodels.UserActivity{AuthorID: row.AuthorID}
			byAuthor[row.AuthorID] = ua
		}
		if r.Contains(row.CreatedAt) {
			ua.Contents++
		}
		switch row.Status {
		case contentmodels.StatusPublished:
			ua.Published++
		case contentmodels.StatusArchived:
			ua.Archived++
		}
		ua.Views += row.Views
		ua.Engagement += row.Engagement
	}
	out := make([]analyticsmodels.UserActivity, 0, len(byAuthor))
	for _, ua := range byAuthor {
		out = append(out, *ua)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].AuthorID.Hex() < out[j].AuthorID.Hex()
	})
	return out, nil
}

// Realtime lượt xem 24 giờ gần nhất, mỗi giờ một điểm
func (s *AnalyticsService) Realtime(ctx context.Context, p authmodels.Principal) (*analyticsmodels.Realtime, error) {
	recs, err := s.store.List(ctx, RecordFilter{CompanyID: p.CompanyID})
	if err != nil {
		return nil, err
	}
	now := s.localNow()
	first := BucketStart(now.Add(-23*time.Hour), IntervalHour)
	hours := make([]analyticsmodels.TimeSeriesPoint, 24)
	index := make(map[string]int, 24)
	for i := range hours {
		t := first.Add(time.Duration(i) * time.Hour)
		key := BucketKey(t, IntervalHour)
		hours[i] = analyticsmodels.TimeSeriesPoint{Key: key, Timestamp: t.UnixMilli()}
		index[key] = i
	}

	out := &analyticsmodels.Realtime{Hours: hours}
	from, to := first.UnixMilli(), now.UnixMilli()
	for _, rec := range recs {
		for _, v := range rec.Views {
			if v.Timestamp < from || v.Timestamp > to {
				continue
			}
			if i, ok := index[BucketKey(time.UnixMilli(v.Timestamp).In(s.loc), IntervalHour)]; ok {
				hours[i].Views++
				out.Total++
			}
		}
	}
	return out, nil
}

// CustomReport gom nhóm theo type / status / author với các metrics được chọn (admin)
func (s *AnalyticsService) CustomReport(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange, metricNames []string, groupBy string) (*analyticsmodels.CustomReport, error) {
	if !p.IsAdmin() {
		return nil, common.ErrForbiddenRole
	}
	if !utility.Contains(CustomGroupBys, groupBy) {
		return nil, common.NewValidationError("groupBy không hợp lệ", map[string]string{"groupBy": groupBy})
	}
	metricNames = utility.Unique(metricNames)
	if len(metricNames) == 0 {
		return nil, common.NewValidationError("Cần ít nhất một metric", nil)
	}
	for _, m := range metricNames {
		if !utility.Contains(CustomMetrics, m) {
			return nil, common.NewValidationError("Metric không hợp lệ", map[string]string{"metric": m})
		}
	}

	rows, _, _, err := s.performanceRows(ctx, p, r)
	if err != nil {
		return nil, err
	}
	type acc struct {
		count                                      int64
		views, likes, shares, comments, engagement int64
		sentimentSum                               float64
		sentimentSamples                           int64
	}
	groups := map[string]*acc{}
	order := []string{}
	for _, row := range rows {
		var key string
		switch groupBy {
		case "type":
			key = row.Type
		case "status":
			key = row.Status
		default:
			key = row.AuthorID.Hex()
		}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
			order = append(order, key)
		}
		a.count++
		a.views += row.Views
		a.likes += row.Likes
		a.shares += row.Shares
		a.comments += row.Comments
		a.engagement += row.Engagement
		a.sentimentSum += row.SentimentSum
		a.sentimentSamples += row.SentimentSamples
	}
	sort.Strings(order)

	report := &analyticsmodels.CustomReport{GroupBy: groupBy, Metrics: metricNames, Rows: make([]analyticsmodels.CustomReportRow, 0, len(order))}
	for _, key := range order {
		a := groups[key]
		values := make(map[string]float64, len(metricNames))
		for _, m := range metricNames {
			switch m {
			case "count":
				values[m] = float64(a.count)
			case "views":
				values[m] = float64(a.views)
			case "likes":
				values[m] = float64(a.likes)
			case "shares":
				values[m] = float64(a.shares)
			case "comments":
				values[m] = float64(a.comments)
			case "engagement":
				values[m] = float64(a.engagement)
			case "sentiment":
				if a.sentimentSamples > 0 {
					values[m] = a.sentimentSum / float64(a.sentimentSamples)
				} else {
					values[m] = 0
				}
			}
		}
		report.Rows = append(report.Rows, analyticsmodels.CustomReportRow{Group: key, Values: values})
	}
	return report, nil
}

func exportRow(row analyticsmodels.ContentPerformance) analyticsmodels.ExportRow {
	return analyticsmodels.ExportRow{
		ContentID: row.ContentID.Hex(),
		Title:     row.Title,
		Type:      row.Type,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		Views:     row.Views,
		Likes:     row.Likes,
		Shares:    row.Shares,
		Comments:  row.Comments,
		Sentiment: row.Sentiment,
	}
}

// Export xuất dữ liệu: csv -> dòng phẳng, pdf -> tổng hợp + chi tiết, còn lại -> bản ghi ghép nguyên dạng
func (s *AnalyticsService) Export(ctx context.Context, p authmodels.Principal, r analyticsmodels.DateRange, format string) (*analyticsmodels.Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	rows, byContent, contents, err := s.performanceRows(ctx, p, r)
	if err != nil {
		return nil, err
	}
	out := &analyticsmodels.Export{Format: format}
	switch format {
	case ExportCSV:
		flat := make([]analyticsmodels.ExportRow, 0, len(rows))
		for _, row := range rows {
			flat = append(flat, exportRow(row))
		}
		out.Data = flat
	case ExportPDF:
		summary, err := s.store.Summarize(ctx, rangeFilter(p, r))
		if err != nil {
			return nil, err
		}
		report := analyticsmodels.ReportExport{Summary: summary, Details: make([]analyticsmodels.ExportRow, 0, len(rows))}
		for _, row := range rows {
			report.Details = append(report.Details, exportRow(row))
		}
		out.Data = report
	default:
		records := make([]analyticsmodels.JoinedRecord, 0, len(contents))
		for _, c := range contents {
			records = append(records, analyticsmodels.JoinedRecord{
				ContentID: c.ID,
				Title:     c.Title,
				Type:      c.Type,
				Status:    c.Status,
				Analytics: byContent[c.ID],
			})
		}
		out.Data = records
	}
	return out, nil
}
