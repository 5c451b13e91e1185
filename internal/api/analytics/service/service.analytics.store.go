package analyticssvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	analyticsmodels "content_studio/internal/api/analytics/models"
	basesvc "content_studio/internal/api/base/service"
	"content_studio/internal/common"
	"content_studio/internal/global"
)

// RecordFilter phạm vi bản ghi cho báo cáo; From/To (mili giây) lọc log thô, 0 là không giới hạn
type RecordFilter struct {
	CompanyID primitive.ObjectID
	ContentID primitive.ObjectID
	AuthorID  primitive.ObjectID
	From      int64
	To        int64
}

// AnalyticsStore lưu trữ bản ghi analytics.
// Mỗi thao tác append là một update nguyên tử ($push + $inc) trên một document.
type AnalyticsStore interface {
	Create(ctx context.Context, rec *analyticsmodels.ContentAnalytics) error
	FindByContentID(ctx context.Context, contentID primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error)
	AppendView(ctx context.Context, contentID primitive.ObjectID, view analyticsmodels.ViewEvent) error
	AppendEngagement(ctx context.Context, contentID primitive.ObjectID, kind string, in analyticsmodels.Interaction) error
	UpsertChannelMetrics(ctx context.Context, contentID primitive.ObjectID, m analyticsmodels.ChannelMetrics) error
	AppendSentiment(ctx context.Context, contentID primitive.ObjectID, sample analyticsmodels.SentimentSample) error
	SaveDerived(ctx context.Context, rec *analyticsmodels.ContentAnalytics) error
	List(ctx context.Context, filter RecordFilter) ([]analyticsmodels.ContentAnalytics, error)
	Summarize(ctx context.Context, filter RecordFilter) (analyticsmodels.Summary, error)
	TimeSeriesPoints(ctx context.Context, filter RecordFilter) ([]analyticsmodels.Bucket, error)
}

// engagementFields field log thô và bộ đếm của từng loại tương tác
var engagementFields = map[string][2]string{
	analyticsmodels.EngagementLike:    {"engagement.likes", "totals.likes"},
	analyticsmodels.EngagementShare:   {"engagement.shares", "totals.shares"},
	analyticsmodels.EngagementComment: {"engagement.comments", "totals.comments"},
}

func notFoundRecord(contentID primitive.ObjectID) error {
	return common.NewNotFoundError("bản ghi analytics", contentID.Hex())
}

// ====================================
// MONGODB
// ====================================

// MongoAnalyticsStore AnalyticsStore trên collection content_analytics
type MongoAnalyticsStore struct {
	*basesvc.BaseServiceMongoImpl[analyticsmodels.ContentAnalytics]
}

// NewMongoAnalyticsStore lấy collection từ registry
func NewMongoAnalyticsStore() (*MongoAnalyticsStore, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentAnalytics)
	if !exist {
		return nil, fmt.Errorf("failed to get content_analytics collection: %v", common.ErrNotFound)
	}
	return &MongoAnalyticsStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[analyticsmodels.ContentAnalytics](collection),
	}, nil
}

// Create thêm bản ghi; trùng contentId trả về ConflictError (unique index)
func (s *MongoAnalyticsStore) Create(ctx context.Context, rec *analyticsmodels.ContentAnalytics) error {
	created, err := s.InsertOne(ctx, *rec)
	if err != nil {
		return err
	}
	*rec = created
	return nil
}

// FindByContentID tìm theo nội dung
func (s *MongoAnalyticsStore) FindByContentID(ctx context.Context, contentID primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error) {
	rec, err := s.FindOne(ctx, bson.M{"contentId": contentID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, notFoundRecord(contentID)
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoAnalyticsStore) updateRecord(ctx context.Context, contentID primitive.ObjectID, update bson.M) error {
	matched, err := s.UpdateOne(ctx, bson.M{"contentId": contentID}, update)
	if err != nil {
		return err
	}
	if matched == 0 {
		return notFoundRecord(contentID)
	}
	return nil
}

// AppendView thêm lượt xem và tăng bộ đếm
func (s *MongoAnalyticsStore) AppendView(ctx context.Context, contentID primitive.ObjectID, view analyticsmodels.ViewEvent) error {
	return s.updateRecord(ctx, contentID, bson.M{
		"$push": bson.M{"views": view},
		"$inc":  bson.M{"totals.views": 1},
		"$set":  bson.M{"updatedAt": view.Timestamp},
	})
}

// AppendEngagement thêm tương tác và tăng bộ đếm tương ứng
func (s *MongoAnalyticsStore) AppendEngagement(ctx context.Context, contentID primitive.ObjectID, kind string, in analyticsmodels.Interaction) error {
	fields, ok := engagementFields[kind]
	if !ok {
		return common.NewValidationError("Loại tương tác không hợp lệ", map[string]string{"kind": kind})
	}
	return s.updateRecord(ctx, contentID, bson.M{
		"$push": bson.M{fields[0]: in},
		"$inc":  bson.M{fields[1]: 1},
		"$set":  bson.M{"updatedAt": in.Timestamp},
	})
}

// UpsertChannelMetrics cộng dồn số liệu của kênh; kênh chưa có thì thêm mới
func (s *MongoAnalyticsStore) UpsertChannelMetrics(ctx context.Context, contentID primitive.ObjectID, m analyticsmodels.ChannelMetrics) error {
	for attempt := 0; attempt < 2; attempt++ {
		matched, err := s.UpdateOne(ctx, bson.M{"contentId": contentID, "distribution.channel": m.Channel}, bson.M{
			"$inc": bson.M{
				"distribution.$.impressions": m.Impressions,
				"distribution.$.clicks":      m.Clicks,
				"distribution.$.conversions": m.Conversions,
			},
			"$set": bson.M{"distribution.$.updatedAt": m.UpdatedAt, "updatedAt": m.UpdatedAt},
		})
		if err != nil {
			return err
		}
		if matched > 0 {
			return nil
		}

		// Kênh chưa tồn tại: push, điều kiện $ne tránh hai request cùng thêm một kênh
		matched, err = s.UpdateOne(ctx, bson.M{"contentId": contentID, "distribution.channel": bson.M{"$ne": m.Channel}}, bson.M{
			"$push": bson.M{"distribution": m},
			"$set":  bson.M{"updatedAt": m.UpdatedAt},
		})
		if err != nil {
			return err
		}
		if matched > 0 {
			return nil
		}
	}
	exists, err := s.DocumentExists(ctx, bson.M{"contentId": contentID})
	if err != nil {
		return err
	}
	if !exists {
		return notFoundRecord(contentID)
	}
	return common.ErrVersionConflict
}

// AppendSentiment thêm một điểm cảm xúc
func (s *MongoAnalyticsStore) AppendSentiment(ctx context.Context, contentID primitive.ObjectID, sample analyticsmodels.SentimentSample) error {
	return s.updateRecord(ctx, contentID, bson.M{
		"$push": bson.M{"sentiment.history": sample},
		"$set":  bson.M{"updatedAt": sample.Timestamp},
	})
}

// SaveDerived ghi các trường dẫn xuất (chuỗi thời gian, rollup, điểm tổng)
func (s *MongoAnalyticsStore) SaveDerived(ctx context.Context, rec *analyticsmodels.ContentAnalytics) error {
	return s.updateRecord(ctx, rec.ContentID, bson.M{
		"$set": bson.M{
			"timeSeries":        rec.TimeSeries,
			"rollups":           rec.Rollups,
			"sentiment.overall": rec.Sentiment.Overall,
		},
	})
}

func recordMatch(f RecordFilter) bson.M {
	match := bson.M{"companyId": f.CompanyID}
	if !f.ContentID.IsZero() {
		match["contentId"] = f.ContentID
	}
	if !f.AuthorID.IsZero() {
		match["authorId"] = f.AuthorID
	}
	return match
}

// List các bản ghi trong phạm vi
func (s *MongoAnalyticsStore) List(ctx context.Context, filter RecordFilter) ([]analyticsmodels.ContentAnalytics, error) {
	return s.Find(ctx, recordMatch(filter), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// inRange biểu thức $filter giữ phần tử có timestamp trong [From, To]
func inRange(field string, f RecordFilter) bson.M {
	conds := bson.A{}
	if f.From > 0 {
		conds = append(conds, bson.M{"$gte": bson.A{"$$e.timestamp", f.From}})
	}
	if f.To > 0 {
		conds = append(conds, bson.M{"$lte": bson.A{"$$e.timestamp", f.To}})
	}
	cond := interface{}(true)
	if len(conds) > 0 {
		cond = bson.M{"$and": conds}
	}
	return bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{field, bson.A{}}},
		"as":    "e",
		"cond":  cond,
	}}
}

// Summarize đếm log thô trong khoảng thời gian bằng aggregation pipeline
func (s *MongoAnalyticsStore) Summarize(ctx context.Context, filter RecordFilter) (analyticsmodels.Summary, error) {
	pipeline := bson.A{
		bson.M{"$match": recordMatch(filter)},
		bson.M{"$project": bson.M{
			"views":     bson.M{"$size": inRange("$views", filter)},
			"likes":     bson.M{"$size": inRange("$engagement.likes", filter)},
			"shares":    bson.M{"$size": inRange("$engagement.shares", filter)},
			"comments":  bson.M{"$size": inRange("$engagement.comments", filter)},
			"sentiment": inRange("$sentiment.history", filter),
		}},
		bson.M{"$group": bson.M{
			"_id":            nil,
			"contents":       bson.M{"$sum": 1},
			"views":          bson.M{"$sum": "$views"},
			"likes":          bson.M{"$sum": "$likes"},
			"shares":         bson.M{"$sum": "$shares"},
			"comments":       bson.M{"$sum": "$comments"},
			"sentimentSum":   bson.M{"$sum": bson.M{"$sum": "$sentiment.score"}},
			"sentimentCount": bson.M{"$sum": bson.M{"$size": "$sentiment"}},
		}},
	}
	rows, err := basesvc.Aggregate[analyticsmodels.Summary](ctx, s.Collection(), pipeline)
	if err != nil {
		return analyticsmodels.Summary{}, err
	}
	var summary analyticsmodels.Summary
	if len(rows) > 0 {
		summary = rows[0]
	}
	summary.Finalize()
	return summary, nil
}

// TimeSeriesPoints các bucket ngày trong khoảng thời gian
func (s *MongoAnalyticsStore) TimeSeriesPoints(ctx context.Context, filter RecordFilter) ([]analyticsmodels.Bucket, error) {
	pipeline := bson.A{
		bson.M{"$match": recordMatch(filter)},
		bson.M{"$unwind": "$timeSeries"},
	}
	ts := bson.M{}
	if filter.From > 0 {
		ts["$gte"] = filter.From
	}
	if filter.To > 0 {
		ts["$lte"] = filter.To
	}
	if len(ts) > 0 {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"timeSeries.timestamp": ts}})
	}
	pipeline = append(pipeline,
		bson.M{"$replaceRoot": bson.M{"newRoot": "$timeSeries"}},
		bson.M{"$sort": bson.M{"timestamp": 1}},
	)
	return basesvc.Aggregate[analyticsmodels.Bucket](ctx, s.Collection(), pipeline)
}

// ====================================
// IN-MEMORY
// ====================================

// MemoryAnalyticsStore AnalyticsStore trong bộ nhớ
type MemoryAnalyticsStore struct {
	docs *basesvc.MemoryCollection[analyticsmodels.ContentAnalytics]
}

// NewMemoryAnalyticsStore tạo store rỗng
func NewMemoryAnalyticsStore() *MemoryAnalyticsStore {
	return &MemoryAnalyticsStore{
		docs: basesvc.NewMemoryCollection(func(r *analyticsmodels.ContentAnalytics) primitive.ObjectID { return r.ID }),
	}
}

// Create thêm bản ghi, kiểm tra unique contentId
func (s *MemoryAnalyticsStore) Create(_ context.Context, rec *analyticsmodels.ContentAnalytics) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.docs.FindFirst(func(r *analyticsmodels.ContentAnalytics) bool { return r.ContentID == rec.ContentID }); err == nil {
		return common.ErrMongoDuplicate
	}
	return s.docs.Insert(*rec)
}

// FindByContentID tìm theo nội dung
func (s *MemoryAnalyticsStore) FindByContentID(_ context.Context, contentID primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error) {
	rec, err := s.docs.FindFirst(func(r *analyticsmodels.ContentAnalytics) bool { return r.ContentID == contentID })
	if err != nil {
		return nil, notFoundRecord(contentID)
	}
	return &rec, nil
}

func (s *MemoryAnalyticsStore) update(contentID primitive.ObjectID, fn func(*analyticsmodels.ContentAnalytics)) error {
	matched, _, err := s.docs.UpdateWhere(func(r *analyticsmodels.ContentAnalytics) bool {
		return r.ContentID == contentID
	}, func(r *analyticsmodels.ContentAnalytics) bool {
		fn(r)
		return true
	})
	if err != nil {
		return err
	}
	if matched == 0 {
		return notFoundRecord(contentID)
	}
	return nil
}

// AppendView thêm lượt xem
func (s *MemoryAnalyticsStore) AppendView(_ context.Context, contentID primitive.ObjectID, view analyticsmodels.ViewEvent) error {
	return s.update(contentID, func(r *analyticsmodels.ContentAnalytics) {
		r.Views = append(r.Views, view)
		r.Totals.Views++
		r.UpdatedAt = view.Timestamp
	})
}

// AppendEngagement thêm tương tác
func (s *MemoryAnalyticsStore) AppendEngagement(_ context.Context, contentID primitive.ObjectID, kind string, in analyticsmodels.Interaction) error {
	if _, ok := engagementFields[kind]; !ok {
		return common.NewValidationError("Loại tương tác không hợp lệ", map[string]string{"kind": kind})
	}
	return s.update(contentID, func(r *analyticsmodels.ContentAnalytics) {
		switch kind {
		case analyticsmodels.EngagementLike:
			r.Engagement.Likes = append(r.Engagement.Likes, in)
			r.Totals.Likes++
		case analyticsmodels.EngagementShare:
			r.Engagement.Shares = append(r.Engagement.Shares, in)
			r.Totals.Shares++
		case analyticsmodels.EngagementComment:
			r.Engagement.Comments = append(r.Engagement.Comments, in)
			r.Totals.Comments++
		}
		r.UpdatedAt = in.Timestamp
	})
}

// UpsertChannelMetrics cộng dồn số liệu kênh
func (s *MemoryAnalyticsStore) UpsertChannelMetrics(_ context.Context, contentID primitive.ObjectID, m analyticsmodels.ChannelMetrics) error {
	return s.update(contentID, func(r *analyticsmodels.ContentAnalytics) {
		r.UpdatedAt = m.UpdatedAt
		for i := range r.Distribution {
			if r.Distribution[i].Channel == m.Channel {
				r.Distribution[i].Impressions += m.Impressions
				r.Distribution[i].Clicks += m.Clicks
				r.Distribution[i].Conversions += m.Conversions
				r.Distribution[i].UpdatedAt = m.UpdatedAt
				return
			}
		}
		r.Distribution = append(r.Distribution, m)
	})
}

// AppendSentiment thêm điểm cảm xúc
func (s *MemoryAnalyticsStore) AppendSentiment(_ context.Context, contentID primitive.ObjectID, sample analyticsmodels.SentimentSample) error {
	return s.update(contentID, func(r *analyticsmodels.ContentAnalytics) {
		r.Sentiment.History = append(r.Sentiment.History, sample)
		r.UpdatedAt = sample.Timestamp
	})
}

// SaveDerived ghi các trường dẫn xuất
func (s *MemoryAnalyticsStore) SaveDerived(_ context.Context, rec *analyticsmodels.ContentAnalytics) error {
	return s.update(rec.ContentID, func(r *analyticsmodels.ContentAnalytics) {
		r.TimeSeries = append([]analyticsmodels.Bucket(nil), rec.TimeSeries...)
		r.Rollups = analyticsmodels.Rollups{
			Daily:   append([]analyticsmodels.Bucket(nil), rec.Rollups.Daily...),
			Weekly:  append([]analyticsmodels.Bucket(nil), rec.Rollups.Weekly...),
			Monthly: append([]analyticsmodels.Bucket(nil), rec.Rollups.Monthly...),
		}
		r.Sentiment.Overall = rec.Sentiment.Overall
	})
}

func (f RecordFilter) matches(r *analyticsmodels.ContentAnalytics) bool {
	if r.CompanyID != f.CompanyID {
		return false
	}
	if !f.ContentID.IsZero() && r.ContentID != f.ContentID {
		return false
	}
	return f.AuthorID.IsZero() || r.AuthorID == f.AuthorID
}

func (f RecordFilter) inRange(ts int64) bool {
	if f.From > 0 && ts < f.From {
		return false
	}
	return f.To <= 0 || ts <= f.To
}

// List các bản ghi trong phạm vi, mới nhất trước
func (s *MemoryAnalyticsStore) List(_ context.Context, filter RecordFilter) ([]analyticsmodels.ContentAnalytics, error) {
	recs, err := s.docs.Filter(filter.matches)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// Summarize đếm log thô trong khoảng thời gian
func (s *MemoryAnalyticsStore) Summarize(ctx context.Context, filter RecordFilter) (analyticsmodels.Summary, error) {
	recs, err := s.List(ctx, filter)
	if err != nil {
		return analyticsmodels.Summary{}, err
	}
	var summary analyticsmodels.Summary
	for i := range recs {
		c := countInRange(&recs[i], filter)
		summary.Contents++
		summary.Views += c.Views
		summary.Likes += c.Likes
		summary.Shares += c.Shares
		summary.Comments += c.Comments
		summary.SentimentSum += c.SentimentSum
		summary.SentimentCount += c.SentimentCount
	}
	summary.Finalize()
	return summary, nil
}

// TimeSeriesPoints các bucket ngày trong khoảng thời gian
func (s *MemoryAnalyticsStore) TimeSeriesPoints(ctx context.Context, filter RecordFilter) ([]analyticsmodels.Bucket, error) {
	recs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	points := []analyticsmodels.Bucket{}
	for _, r := range recs {
		for _, b := range r.TimeSeries {
			if filter.inRange(b.Timestamp) {
				points = append(points, b)
			}
		}
	}
	return points, nil
}

// countInRange đếm log thô của một bản ghi trong khoảng thời gian của filter
func countInRange(r *analyticsmodels.ContentAnalytics, f RecordFilter) analyticsmodels.Summary {
	var out analyticsmodels.Summary
	for _, v := range r.Views {
		if f.inRange(v.Timestamp) {
			out.Views++
		}
	}
	for _, e := range r.Engagement.Likes {
		if f.inRange(e.Timestamp) {
			out.Likes++
		}
	}
	for _, e := range r.Engagement.Shares {
		if f.inRange(e.Timestamp) {
			out.Shares++
		}
	}
	for _, e := range r.Engagement.Comments {
		if f.inRange(e.Timestamp) {
			out.Comments++
		}
	}
	for _, h := range r.Sentiment.History {
		if f.inRange(h.Timestamp) {
			out.SentimentSum += h.Score
			out.SentimentCount++
		}
	}
	out.Contents = 1
	out.Finalize()
	return out
}
