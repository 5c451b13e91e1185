package analyticssvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsmodels "content_studio/internal/api/analytics/models"
)

func TestBucketKey(t *testing.T) {
	ts := time.Date(2026, 1, 4, 15, 30, 0, 0, time.UTC) // Chủ nhật

	assert.Equal(t, "2026-01-04-15", BucketKey(ts, IntervalHour))
	assert.Equal(t, "2026-01-04", BucketKey(ts, IntervalDay))
	assert.Equal(t, "2026-01", BucketKey(ts, IntervalMonth))
	assert.Equal(t, "2026-01", BucketKey(ts, IntervalWeek))
	assert.Equal(t, "2026-01-04", BucketKey(ts, "quarter"), "interval lạ coi như day")
}

func TestSundayWeek(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0},  // thứ năm, trước Chủ nhật đầu tiên
		{time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), 0},  // thứ bảy
		{time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), 1},  // Chủ nhật đầu tiên
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 1}, // thứ bảy cùng tuần
		{time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 1}, // năm bắt đầu bằng Chủ nhật
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sundayWeek(tc.date), tc.date.Format("2006-01-02"))
	}
}

func TestBucketStart(t *testing.T) {
	ts := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // thứ tư

	assert.Equal(t, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), BucketStart(ts, IntervalHour))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), BucketStart(ts, IntervalDay))
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), BucketStart(ts, IntervalWeek))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, IntervalMonth))

	jan2 := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), BucketStart(jan2, IntervalWeek), "tuần 00 bắt đầu từ 1/1")
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentChange(0, 0))
	assert.Equal(t, 100.0, PercentChange(0, 7))
	assert.Equal(t, 50.0, PercentChange(10, 15))
	assert.Equal(t, -100.0, PercentChange(4, 0))
	assert.Equal(t, 200.0, PercentChange(-0.5, 0.5), "sentiment âm tăng lên thì thay đổi dương")
	assert.Equal(t, -100.0, PercentChange(-0.5, -1))
}

func TestMeanSentiment(t *testing.T) {
	assert.Equal(t, 0.0, MeanSentiment(nil))
	assert.InDelta(t, 0.25, MeanSentiment([]analyticsmodels.SentimentSample{{Score: 0.5}, {Score: 0}}), 1e-9)
}

func TestRecomputeRollupsCountsTodayOnly(t *testing.T) {
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	rec := analyticsmodels.NewContentAnalytics(primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), "blog", now.UnixMilli())
	rec.Views = []analyticsmodels.ViewEvent{
		{Timestamp: yesterday.UnixMilli()},
		{Timestamp: now.Add(-time.Hour).UnixMilli()},
		{Timestamp: now.UnixMilli()},
	}
	rec.Engagement.Likes = []analyticsmodels.Interaction{{Timestamp: now.UnixMilli()}}
	rec.Sentiment.History = []analyticsmodels.SentimentSample{{Score: 0.8}, {Score: -0.2}}

	RecomputeRollups(rec, now)

	assert.Len(t, rec.TimeSeries, 1)
	assert.Equal(t, "2026-03-11", rec.TimeSeries[0].Key)
	assert.Equal(t, int64(2), rec.TimeSeries[0].Views)
	assert.Equal(t, int64(1), rec.TimeSeries[0].Likes)
	assert.Equal(t, rec.TimeSeries, rec.Rollups.Daily)
	assert.Equal(t, int64(3), rec.Rollups.Weekly[0].Views, "thứ ba và thứ tư cùng tuần")
	assert.Equal(t, int64(3), rec.Rollups.Monthly[0].Views)
	assert.InDelta(t, 0.3, rec.Sentiment.Overall, 1e-9)

	// chạy lại cùng ngày thì ghi đè bucket, không nhân đôi
	RecomputeRollups(rec, now)
	assert.Len(t, rec.TimeSeries, 1)
	assert.Len(t, rec.Rollups.Weekly, 1)
}

func TestGroupPoints(t *testing.T) {
	day := func(d int) int64 { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC).UnixMilli() }
	points := []analyticsmodels.Bucket{
		{Timestamp: day(3), Views: 1},
		{Timestamp: day(2), Views: 2},
		{Timestamp: day(2), Views: 4, Likes: 1},
		{Timestamp: day(9), Views: 8},
	}

	daily := GroupPoints(points, IntervalDay, time.UTC)
	assert.Len(t, daily, 3)
	assert.Equal(t, "2026-03-02", daily[0].Key)
	assert.Equal(t, int64(6), daily[0].Views)
	assert.Equal(t, int64(1), daily[0].Likes)

	monthly := GroupPoints(points, IntervalMonth, time.UTC)
	assert.Len(t, monthly, 1)
	assert.Equal(t, int64(15), monthly[0].Views)

	assert.Empty(t, GroupPoints(nil, IntervalDay, time.UTC))
	assert.NotNil(t, GroupPoints(nil, IntervalDay, time.UTC))
}
