package analyticssvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsdto "content_studio/internal/api/analytics/dto"
	analyticsmodels "content_studio/internal/api/analytics/models"
	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	contentsvc "content_studio/internal/api/content/service"
	"content_studio/internal/common"
)

type fakeAnalyzer struct {
	score float64
	err   error
}

func (f fakeAnalyzer) AnalyzeSentiment(context.Context, string) (float64, error) {
	return f.score, f.err
}

type fixture struct {
	svc      *AnalyticsService
	store    *MemoryAnalyticsStore
	contents *contentsvc.MemoryContentStore
	now      time.Time
	admin    authmodels.Principal
}

func newFixture(t *testing.T, analyzer SentimentAnalyzer) *fixture {
	t.Helper()
	store := NewMemoryAnalyticsStore()
	contents := contentsvc.NewMemoryContentStore()
	f := &fixture{
		svc:      NewAnalyticsService(store, contents, analyzer, nil, time.UTC),
		store:    store,
		contents: contents,
		now:      time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
		admin: authmodels.Principal{
			AccountID: primitive.NewObjectID(),
			CompanyID: primitive.NewObjectID(),
			Role:      authmodels.RoleAdmin,
		},
	}
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addContent(t *testing.T, p authmodels.Principal, contentType, status string) *contentmodels.Content {
	t.Helper()
	content := &contentmodels.Content{
		Title:     contentType + " " + status,
		Type:      contentType,
		Body:      "body",
		Status:    status,
		AuthorID:  p.AccountID,
		CompanyID: p.CompanyID,
		Version:   1,
		CreatedAt: f.now.UnixMilli(),
		UpdatedAt: f.now.UnixMilli(),
	}
	require.NoError(t, f.contents.Create(context.Background(), content))
	require.NoError(t, f.svc.CreateRecord(context.Background(), content))
	return content
}

func (f *fixture) today(t *testing.T) analyticsmodels.DateRange {
	t.Helper()
	day := f.now.Format(analyticsdto.DateFormat)
	r, err := f.svc.ResolveRange(day, day)
	require.NoError(t, err)
	return r
}

func TestThreeViewsSameDay(t *testing.T) {
	f := newFixture(t, nil)
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)

	for i := 0; i < 3; i++ {
		f.now = f.now.Add(time.Minute)
		require.NoError(t, f.svc.RecordView(context.Background(), content.ID, &analyticsdto.ViewInput{Source: "web"}, f.admin))
	}

	rec, err := f.svc.Record(context.Background(), content.ID)
	require.NoError(t, err)
	require.Len(t, rec.Views, 3)
	assert.NotEmpty(t, rec.Views[0].ID)
	assert.Equal(t, "web", rec.Views[0].Source)
	assert.Equal(t, int64(3), rec.Totals.Views)
	require.Len(t, rec.Rollups.Daily, 1)
	assert.Equal(t, "2026-03-11", rec.Rollups.Daily[0].Key)
	assert.Equal(t, int64(3), rec.Rollups.Daily[0].Views)
	assert.Equal(t, rec.Rollups.Daily, rec.TimeSeries)

	stored, err := f.contents.FindByID(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stats.Views, "stats của nội dung được cập nhật theo")
}

func TestRecordEngagement(t *testing.T) {
	f := newFixture(t, nil)
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	ctx := context.Background()

	require.NoError(t, f.svc.RecordEngagement(ctx, content.ID, analyticsmodels.EngagementLike, "ignored", f.admin))
	require.NoError(t, f.svc.RecordEngagement(ctx, content.ID, analyticsmodels.EngagementComment, "hay quá", f.admin))
	require.NoError(t, f.svc.RecordEngagement(ctx, content.ID, analyticsmodels.EngagementShare, "", f.admin))

	err := f.svc.RecordEngagement(ctx, content.ID, "clap", "", f.admin)
	assert.True(t, common.IsKind(err, common.KindValidation))

	rec, err := f.svc.Record(ctx, content.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Engagement.Likes, 1)
	assert.Empty(t, rec.Engagement.Likes[0].Text, "chỉ bình luận mới lưu text")
	assert.Equal(t, "hay quá", rec.Engagement.Comments[0].Text)
	assert.Equal(t, f.admin.AccountID.Hex(), rec.Engagement.Comments[0].UserID)
	assert.Equal(t, int64(3), rec.Totals.Engagement())

	stored, err := f.contents.FindByID(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stats.Engagement)
}

func TestCrossCompanyWriteDenied(t *testing.T) {
	f := newFixture(t, nil)
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusDraft)
	outsider := authmodels.Principal{AccountID: primitive.NewObjectID(), CompanyID: primitive.NewObjectID(), Role: authmodels.RoleAdmin}

	err := f.svc.RecordView(context.Background(), content.ID, &analyticsdto.ViewInput{}, outsider)
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	err = f.svc.RecordView(context.Background(), primitive.NewObjectID(), &analyticsdto.ViewInput{}, f.admin)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestAnalyzeSentiment(t *testing.T) {
	f := newFixture(t, fakeAnalyzer{score: 0.5})
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)

	sample, err := f.svc.AnalyzeSentiment(context.Background(), content.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 0.5, sample.Score)

	rec, err := f.svc.Record(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Sentiment.History, 1)
	assert.Equal(t, 0.5, rec.Sentiment.Overall)

	stored, err := f.contents.FindByID(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, stored.Stats.Sentiment)
}

func TestAnalyzeSentimentUpstreamFailure(t *testing.T) {
	f := newFixture(t, fakeAnalyzer{err: common.NewUpstreamError("llm", 500, "boom")})
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)

	_, err := f.svc.AnalyzeSentiment(context.Background(), content.ID, f.admin)
	assert.True(t, common.IsKind(err, common.KindUpstream))

	rec, err := f.svc.Record(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.Sentiment.History)
}

func TestRecordChannelMetricsAccumulates(t *testing.T) {
	f := newFixture(t, nil)
	content := f.addContent(t, f.admin, "social_post", contentmodels.StatusPublished)
	ctx := context.Background()

	require.NoError(t, f.svc.RecordChannelMetrics(ctx, content.ID, &analyticsdto.ChannelMetricsInput{Channel: "linkedin", Impressions: 100, Clicks: 10, Conversions: 1}, f.admin))
	require.NoError(t, f.svc.RecordChannelMetrics(ctx, content.ID, &analyticsdto.ChannelMetricsInput{Channel: "linkedin", Impressions: 100, Clicks: 10, Conversions: 3}, f.admin))
	require.NoError(t, f.svc.RecordChannelMetrics(ctx, content.ID, &analyticsdto.ChannelMetricsInput{Channel: "x", Impressions: 50}, f.admin))

	err := f.svc.RecordChannelMetrics(ctx, content.ID, &analyticsdto.ChannelMetricsInput{Channel: "x", Clicks: -1}, f.admin)
	assert.True(t, common.IsKind(err, common.KindValidation))

	rec, err := f.svc.Record(ctx, content.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Distribution, 2)

	perf, err := f.svc.ChannelPerformance(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, perf, 2)
	assert.Equal(t, "linkedin", perf[0].Channel)
	assert.Equal(t, int64(200), perf[0].Impressions)
	assert.Equal(t, int64(4), perf[0].Conversions)
	assert.InDelta(t, 10.0, perf[0].CTR, 1e-9)
	assert.InDelta(t, 20.0, perf[0].ConversionRate, 1e-9)
	assert.Equal(t, 0.0, perf[1].CTR)
}

func TestResolveRange(t *testing.T) {
	f := newFixture(t, nil)

	r, err := f.svc.ResolveRange("2026-03-01", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), r.From)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).UnixMilli()-1, r.To, "to tính đến hết ngày")

	r, err = f.svc.ResolveRange("", "")
	require.NoError(t, err)
	assert.Equal(t, f.now.UnixMilli(), r.To)
	assert.Equal(t, f.now.AddDate(0, 0, -30).UnixMilli(), r.From)

	r, err = f.svc.ResolveRange("", "2025-12-31")
	require.NoError(t, err, "chỉ có to cũ hơn 30 ngày vẫn hợp lệ")
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()-1, r.To)
	assert.Equal(t, time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), r.From, "from mặc định neo theo to")

	_, err = f.svc.ResolveRange("01/03/2026", "")
	assert.True(t, common.IsKind(err, common.KindValidation))
	_, err = f.svc.ResolveRange("2026-03-05", "2026-03-01")
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestEmptyCompanyReportsHaveZeroShapes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	r := f.today(t)

	dashboard, err := f.svc.Dashboard(ctx, f.admin, r)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"draft": 0, "published": 0, "archived": 0}, dashboard.StatusCounts)
	assert.Equal(t, analyticsmodels.Summary{}, dashboard.Totals)

	series, err := f.svc.TimeSeries(ctx, f.admin, r, IntervalDay, primitive.NilObjectID)
	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Empty(t, series)

	perf, err := f.svc.Performance(ctx, f.admin, r, 0)
	require.NoError(t, err)
	assert.NotNil(t, perf)
	assert.Empty(t, perf)

	engagement, err := f.svc.Engagement(ctx, f.admin, r)
	require.NoError(t, err)
	assert.Equal(t, 0.0, engagement.Rate)

	realtime, err := f.svc.Realtime(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, realtime.Hours, 24)
	assert.Equal(t, int64(0), realtime.Total)

	export, err := f.svc.Export(ctx, f.admin, r, "csv")
	require.NoError(t, err)
	rows, ok := export.Data.([]analyticsmodels.ExportRow)
	require.True(t, ok)
	assert.Empty(t, rows)
}

func TestDashboardAndCompare(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	published := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	f.addContent(t, f.admin, "changelog", contentmodels.StatusDraft)

	yesterday := f.now.AddDate(0, 0, -1)
	today := f.now
	f.now = yesterday
	require.NoError(t, f.svc.RecordView(ctx, published.ID, &analyticsdto.ViewInput{}, f.admin))
	require.NoError(t, f.svc.RecordView(ctx, published.ID, &analyticsdto.ViewInput{}, f.admin))
	f.now = today
	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.RecordView(ctx, published.ID, &analyticsdto.ViewInput{}, f.admin))
	}
	require.NoError(t, f.svc.RecordEngagement(ctx, published.ID, analyticsmodels.EngagementLike, "", f.admin))

	r := f.today(t)
	dashboard, err := f.svc.Dashboard(ctx, f.admin, r)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.StatusCounts["published"])
	assert.Equal(t, int64(1), dashboard.StatusCounts["draft"])
	assert.Equal(t, int64(3), dashboard.Totals.Views, "chỉ đếm log trong khoảng")
	assert.Equal(t, int64(1), dashboard.Totals.Engagement)

	day := func(t time.Time) string { return t.Format(analyticsdto.DateFormat) }
	r1, err := f.svc.ResolveRange(day(yesterday), day(yesterday))
	require.NoError(t, err)
	cmp, err := f.svc.Compare(ctx, f.admin, r1, r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cmp.Period1.Views)
	assert.Equal(t, int64(3), cmp.Period2.Views)
	assert.InDelta(t, 50.0, cmp.Changes["views"], 1e-9)
	assert.InDelta(t, 100.0, cmp.Changes["likes"], 1e-9)

	series, err := f.svc.TimeSeries(ctx, f.admin, analyticsmodels.DateRange{From: r1.From, To: r.To}, IntervalDay, published.ID)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(2), series[0].Views)
	assert.Equal(t, int64(3), series[1].Views)

	engagement, err := f.svc.Engagement(ctx, f.admin, r)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3, engagement.Rate, 1e-9)
}

func TestOtherCompanyDataIsInvisible(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	other := authmodels.Principal{AccountID: primitive.NewObjectID(), CompanyID: primitive.NewObjectID(), Role: authmodels.RoleAdmin}
	content := f.addContent(t, other, "blog", contentmodels.StatusPublished)
	require.NoError(t, f.svc.RecordView(ctx, content.ID, &analyticsdto.ViewInput{}, other))

	dashboard, err := f.svc.Dashboard(ctx, f.admin, f.today(t))
	require.NoError(t, err)
	assert.Equal(t, int64(0), dashboard.Totals.Views)
	assert.Equal(t, int64(0), dashboard.StatusCounts["published"])

	_, err = f.svc.TimeSeries(ctx, f.admin, f.today(t), IntervalDay, content.ID)
	assert.True(t, common.IsKind(err, common.KindAuthorization))
}

func TestSentimentDistribution(t *testing.T) {
	analyzer := &scriptedAnalyzer{scores: []float64{0.9, 0.1, -0.6, 0.2}}
	f := newFixture(t, analyzer)
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	for range analyzer.scores {
		_, err := f.svc.AnalyzeSentiment(context.Background(), content.ID, f.admin)
		require.NoError(t, err)
	}

	report, err := f.svc.Sentiment(context.Background(), f.admin, f.today(t))
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Samples)
	assert.Equal(t, int64(1), report.Positive)
	assert.Equal(t, int64(2), report.Neutral, "0.2 nằm ở ngưỡng nên tính trung tính")
	assert.Equal(t, int64(1), report.Negative)
	assert.InDelta(t, 0.15, report.Average, 1e-9)
}

type scriptedAnalyzer struct {
	scores []float64
	i      int
}

func (s *scriptedAnalyzer) AnalyzeSentiment(context.Context, string) (float64, error) {
	if s.i >= len(s.scores) {
		return 0, errors.New("hết điểm")
	}
	score := s.scores[s.i]
	s.i++
	return score, nil
}

func TestGroupSentimentIgnoresContentWithoutSamples(t *testing.T) {
	analyzer := &scriptedAnalyzer{scores: []float64{0.8, 0.4}}
	f := newFixture(t, analyzer)
	ctx := context.Background()
	scored := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	f.addContent(t, f.admin, "blog", contentmodels.StatusDraft)
	for range analyzer.scores {
		_, err := f.svc.AnalyzeSentiment(ctx, scored.ID, f.admin)
		require.NoError(t, err)
	}
	r := f.today(t)

	types, err := f.svc.ContentTypes(ctx, f.admin, r)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, int64(2), types[0].Count)
	assert.InDelta(t, 0.6, types[0].AvgSentiment, 1e-9)

	report, err := f.svc.CustomReport(ctx, f.admin, r, []string{"sentiment"}, "status")
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	values := map[string]float64{}
	for _, row := range report.Rows {
		values[row.Group] = row.Values["sentiment"]
	}
	assert.InDelta(t, 0.6, values[contentmodels.StatusPublished], 1e-9)
	assert.Equal(t, 0.0, values[contentmodels.StatusDraft])
}

func TestAdminOnlyReports(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	member := authmodels.Principal{AccountID: primitive.NewObjectID(), CompanyID: f.admin.CompanyID, Role: authmodels.RoleUser}
	f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	f.addContent(t, member, "blog", contentmodels.StatusDraft)
	f.addContent(t, member, "social_post", contentmodels.StatusArchived)
	r := f.today(t)

	_, err := f.svc.UserActivity(ctx, member, r)
	assert.ErrorIs(t, err, common.ErrForbiddenRole)
	_, err = f.svc.CustomReport(ctx, member, r, []string{"count"}, "type")
	assert.ErrorIs(t, err, common.ErrForbiddenRole)

	activity, err := f.svc.UserActivity(ctx, f.admin, r)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	byAuthor := map[primitive.ObjectID]analyticsmodels.UserActivity{}
	for _, a := range activity {
		byAuthor[a.AuthorID] = a
	}
	assert.Equal(t, int64(2), byAuthor[member.AccountID].Contents)
	assert.Equal(t, int64(1), byAuthor[member.AccountID].Archived)
	assert.Equal(t, int64(1), byAuthor[f.admin.AccountID].Published)

	report, err := f.svc.CustomReport(ctx, f.admin, r, []string{"count", "views", "count"}, "type")
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "views"}, report.Metrics)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "blog", report.Rows[0].Group)
	assert.Equal(t, 2.0, report.Rows[0].Values["count"])
	assert.Equal(t, 1.0, report.Rows[1].Values["count"])

	_, err = f.svc.CustomReport(ctx, f.admin, r, []string{"revenue"}, "type")
	assert.True(t, common.IsKind(err, common.KindValidation))
	_, err = f.svc.CustomReport(ctx, f.admin, r, []string{"views"}, "channel")
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestExportFormats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	content := f.addContent(t, f.admin, "blog", contentmodels.StatusPublished)
	require.NoError(t, f.svc.RecordView(ctx, content.ID, &analyticsdto.ViewInput{}, f.admin))
	r := f.today(t)

	csv, err := f.svc.Export(ctx, f.admin, r, "CSV")
	require.NoError(t, err)
	rows := csv.Data.([]analyticsmodels.ExportRow)
	require.Len(t, rows, 1)
	assert.Equal(t, content.ID.Hex(), rows[0].ContentID)
	assert.Equal(t, int64(1), rows[0].Views)

	pdf, err := f.svc.Export(ctx, f.admin, r, "pdf")
	require.NoError(t, err)
	report := pdf.Data.(analyticsmodels.ReportExport)
	assert.Equal(t, int64(1), report.Summary.Views)
	assert.Len(t, report.Details, 1)

	raw, err := f.svc.Export(ctx, f.admin, r, "json")
	require.NoError(t, err)
	records := raw.Data.([]analyticsmodels.JoinedRecord)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Analytics)
	assert.Len(t, records[0].Analytics.Views, 1)
}
