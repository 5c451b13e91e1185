package analyticssvc

import (
	"fmt"
	"math"
	"sort"
	"time"

	analyticsmodels "content_studio/internal/api/analytics/models"
)

// Các interval gom chuỗi thời gian
const (
	IntervalHour  = "hour"
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
)

// NormalizeInterval interval không hợp lệ được coi là day
func NormalizeInterval(interval string) string {
	switch interval {
	case IntervalHour, IntervalDay, IntervalWeek, IntervalMonth:
		return interval
	}
	return IntervalDay
}

// sundayWeek số tuần trong năm, tuần bắt đầu từ Chủ nhật.
// Các ngày trước Chủ nhật đầu tiên của năm thuộc tuần 00.
func sundayWeek(t time.Time) int {
	return (t.YearDay() + 6 - int(t.Weekday())) / 7
}

// BucketKey khóa bucket của t: hour "2006-01-02-15", day "2006-01-02", week "2006-WW", month "2006-01"
func BucketKey(t time.Time, interval string) string {
	switch interval {
	case IntervalHour:
		return t.Format("2006-01-02-15")
	case IntervalWeek:
		return fmt.Sprintf("%04d-%02d", t.Year(), sundayWeek(t))
	case IntervalMonth:
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// BucketStart thời điểm bắt đầu bucket chứa t (theo múi giờ của t)
func BucketStart(t time.Time, interval string) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch interval {
	case IntervalHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case IntervalWeek:
		start := time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc)
		if newYear := time.Date(y, time.January, 1, 0, 0, 0, 0, loc); start.Before(newYear) {
			return newYear
		}
		return start
	case IntervalMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MeanSentiment trung bình cộng điểm; lịch sử rỗng trả về 0
func MeanSentiment(history []analyticsmodels.SentimentSample) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, s := range history {
		sum += s.Score
	}
	return sum / float64(len(history))
}

// PercentChange phần trăm thay đổi: 0 -> 0 là 0, 0 -> x là 100.
// Chia cho |old| để chiều tăng / giảm giữ đúng dấu khi old âm (sentiment).
func PercentChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		if newValue == 0 {
			return 0
		}
		return 100
	}
	return (newValue - oldValue) / math.Abs(oldValue) * 100
}

// countBucket đếm log thô rơi vào cùng bucket với now
func countBucket(rec *analyticsmodels.ContentAnalytics, now time.Time, interval string) analyticsmodels.Bucket {
	key := BucketKey(now, interval)
	bucket := analyticsmodels.Bucket{Key: key, Timestamp: BucketStart(now, interval).UnixMilli()}
	in := func(ts int64) bool {
		return BucketKey(time.UnixMilli(ts).In(now.Location()), interval) == key
	}
	for _, v := range rec.Views {
		if in(v.Timestamp) {
			bucket.Views++
		}
	}
	for _, e := range rec.Engagement.Likes {
		if in(e.Timestamp) {
			bucket.Likes++
		}
	}
	for _, e := range rec.Engagement.Shares {
		if in(e.Timestamp) {
			bucket.Shares++
		}
	}
	for _, e := range rec.Engagement.Comments {
		if in(e.Timestamp) {
			bucket.Comments++
		}
	}
	return bucket
}

// upsertBucket ghi đè bucket cùng key hoặc thêm mới, giữ thứ tự theo thời gian
func upsertBucket(buckets []analyticsmodels.Bucket, b analyticsmodels.Bucket) []analyticsmodels.Bucket {
	for i := range buckets {
		if buckets[i].Key == b.Key {
			buckets[i] = b
			return buckets
		}
	}
	buckets = append(buckets, b)
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Timestamp < buckets[j].Timestamp })
	return buckets
}

// RecomputeRollups tính lại bucket hôm nay / tuần này / tháng này từ log thô và điểm cảm xúc tổng.
// Ngày được cắt theo múi giờ của now.
func RecomputeRollups(rec *analyticsmodels.ContentAnalytics, now time.Time) {
	day := countBucket(rec, now, IntervalDay)
	rec.TimeSeries = upsertBucket(rec.TimeSeries, day)
	rec.Rollups.Daily = upsertBucket(rec.Rollups.Daily, day)
	rec.Rollups.Weekly = upsertBucket(rec.Rollups.Weekly, countBucket(rec, now, IntervalWeek))
	rec.Rollups.Monthly = upsertBucket(rec.Rollups.Monthly, countBucket(rec, now, IntervalMonth))
	rec.Sentiment.Overall = MeanSentiment(rec.Sentiment.History)
}

// GroupPoints gom các điểm theo interval, sắp xếp theo thời gian
func GroupPoints(points []analyticsmodels.Bucket, interval string, loc *time.Location) []analyticsmodels.TimeSeriesPoint {
	interval = NormalizeInterval(interval)
	grouped := map[string]*analyticsmodels.TimeSeriesPoint{}
	for _, p := range points {
		t := time.UnixMilli(p.Timestamp).In(loc)
		key := BucketKey(t, interval)
		g, ok := grouped[key]
		if !ok {
			g = &analyticsmodels.TimeSeriesPoint{Key: key, Timestamp: BucketStart(t, interval).UnixMilli()}
			grouped[key] = g
		}
		g.Views += p.Views
		g.Likes += p.Likes
		g.Shares += p.Shares
		g.Comments += p.Comments
	}
	out := make([]analyticsmodels.TimeSeriesPoint, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
