// Package analyticssvc - ghi nhận lượt xem / tương tác / cảm xúc và tổng hợp báo cáo theo công ty.
//
// Mỗi lần ghi log thô gồm hai bước: append nguyên tử, rồi tính lại bucket hôm nay và ghi đè
// các trường dẫn xuất. Bước hai thất bại chỉ được ghi log và đếm metrics, không hoàn tác bước một.
// Hai request append đồng thời có thể làm mất một lần cập nhật rollup; lần ghi kế tiếp sẽ tính lại.
package analyticssvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsdto "content_studio/internal/api/analytics/dto"
	analyticsmodels "content_studio/internal/api/analytics/models"
	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/common"
	"content_studio/internal/logger"
	"content_studio/internal/metrics"
)

// ContentSource nội dung mà analytics cần đọc (ContentStore của contentsvc)
type ContentSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*contentmodels.Content, error)
	ListCompany(ctx context.Context, companyID primitive.ObjectID, from, to int64) ([]contentmodels.Content, error)
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats contentmodels.Stats) error
}

// SentimentAnalyzer chấm điểm cảm xúc của văn bản trong [-1, 1]
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (float64, error)
}

// AnalyticsService nghiệp vụ analytics
type AnalyticsService struct {
	store    AnalyticsStore
	contents ContentSource
	analyzer SentimentAnalyzer
	metrics  *metrics.Metrics
	loc      *time.Location
	now      func() time.Time
}

// NewAnalyticsService tạo AnalyticsService; loc là múi giờ cắt ngày (nil = UTC)
func NewAnalyticsService(store AnalyticsStore, contents ContentSource, analyzer SentimentAnalyzer, m *metrics.Metrics, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{store: store, contents: contents, analyzer: analyzer, metrics: m, loc: loc, now: time.Now}
}

func (s *AnalyticsService) localNow() time.Time {
	return s.now().In(s.loc)
}

// ====================================
// BẢN GHI ĐI KÈM NỘI DUNG
// ====================================

// CreateRecord tạo bản ghi rỗng cho nội dung vừa sinh
func (s *AnalyticsService) CreateRecord(ctx context.Context, content *contentmodels.Content) error {
	rec := analyticsmodels.NewContentAnalytics(content.ID, content.CompanyID, content.AuthorID, content.Type, s.now().UnixMilli())
	return s.store.Create(ctx, rec)
}

// Record bản ghi analytics của nội dung
func (s *AnalyticsService) Record(ctx context.Context, contentID primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error) {
	return s.store.FindByContentID(ctx, contentID)
}

// authorize nội dung phải tồn tại và cùng công ty với người gọi
func (s *AnalyticsService) authorize(ctx context.Context, contentID primitive.ObjectID, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.contents.FindByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("nội dung", contentID.Hex())
		}
		return nil, err
	}
	if !p.SameCompany(content.CompanyID) {
		return nil, common.NewAuthorizationError("Không có quyền truy cập nội dung của công ty khác")
	}
	return content, nil
}

// ====================================
// GHI LOG THÔ
// ====================================

// refresh tính lại rollup sau một lần append. Lỗi không được trả về caller.
func (s *AnalyticsService) refresh(ctx context.Context, contentID primitive.ObjectID) {
	if err := s.recompute(ctx, contentID); err != nil {
		s.metrics.IncRollupFailure()
		logger.WithContext(ctx).WithError(err).WithField("content_id", contentID.Hex()).Error("Tính lại rollup thất bại")
	}
}

func (s *AnalyticsService) recompute(ctx context.Context, contentID primitive.ObjectID) error {
	rec, err := s.store.FindByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	RecomputeRollups(rec, s.localNow())
	if err := s.store.SaveDerived(ctx, rec); err != nil {
		return err
	}
	return s.contents.UpdateStats(ctx, contentID, contentmodels.Stats{
		Views:      rec.Totals.Views,
		Engagement: rec.Totals.Engagement(),
		Sentiment:  rec.Sentiment.Overall,
	})
}

// RecordView ghi một lượt xem
func (s *AnalyticsService) RecordView(ctx context.Context, contentID primitive.ObjectID, input *analyticsdto.ViewInput, p authmodels.Principal) error {
	if _, err := s.authorize(ctx, contentID, p); err != nil {
		return err
	}
	view := analyticsmodels.ViewEvent{
		ID:        uuid.NewString(),
		Timestamp: s.now().UnixMilli(),
		Source:    input.Source,
		UserAgent: input.UserAgent,
		Location:  input.Location,
	}
	if err := s.store.AppendView(ctx, contentID, view); err != nil {
		return err
	}
	s.refresh(ctx, contentID)
	return nil
}

// RecordEngagement ghi một lượt thích / chia sẻ / bình luận
func (s *AnalyticsService) RecordEngagement(ctx context.Context, contentID primitive.ObjectID, kind, text string, p authmodels.Principal) error {
	if _, ok := engagementFields[kind]; !ok {
		return common.NewValidationError("Loại tương tác không hợp lệ", map[string]string{"kind": kind})
	}
	if _, err := s.authorize(ctx, contentID, p); err != nil {
		return err
	}
	in := analyticsmodels.Interaction{UserID: p.AccountID.Hex(), Timestamp: s.now().UnixMilli()}
	if kind == analyticsmodels.EngagementComment {
		in.Text = text
	}
	if err := s.store.AppendEngagement(ctx, contentID, kind, in); err != nil {
		return err
	}
	s.refresh(ctx, contentID)
	return nil
}

// RecordChannelMetrics cộng dồn số liệu của một kênh
func (s *AnalyticsService) RecordChannelMetrics(ctx context.Context, contentID primitive.ObjectID, input *analyticsdto.ChannelMetricsInput, p authmodels.Principal) error {
	if _, err := s.authorize(ctx, contentID, p); err != nil {
		return err
	}
	channel := strings.TrimSpace(input.Channel)
	if channel == "" {
		return common.NewValidationError("Thiếu tên kênh", nil)
	}
	if input.Impressions < 0 || input.Clicks < 0 || input.Conversions < 0 {
		return common.NewValidationError("Số liệu kênh không được âm", nil)
	}
	return s.store.UpsertChannelMetrics(ctx, contentID, analyticsmodels.ChannelMetrics{
		Channel:     channel,
		Impressions: input.Impressions,
		Clicks:      input.Clicks,
		Conversions: input.Conversions,
		UpdatedAt:   s.now().UnixMilli(),
	})
}

// AnalyzeSentiment chấm điểm body hiện tại qua LLM và thêm vào lịch sử
func (s *AnalyticsService) AnalyzeSentiment(ctx context.Context, contentID primitive.ObjectID, p authmodels.Principal) (*analyticsmodels.SentimentSample, error) {
	content, err := s.authorize(ctx, contentID, p)
	if err != nil {
		return nil, err
	}
	score, err := s.analyzer.AnalyzeSentiment(ctx, content.Body)
	if err != nil {
		return nil, err
	}
	sample := analyticsmodels.SentimentSample{Score: score, Timestamp: s.now().UnixMilli()}
	if err := s.store.AppendSentiment(ctx, contentID, sample); err != nil {
		return nil, err
	}
	s.refresh(ctx, contentID)
	return &sample, nil
}
