// Package analyticshdl - handler HTTP cho domain analytics: ghi log thô và các báo cáo.
package analyticshdl

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsdto "content_studio/internal/api/analytics/dto"
	analyticsmodels "content_studio/internal/api/analytics/models"
	analyticssvc "content_studio/internal/api/analytics/service"
	authmodels "content_studio/internal/api/auth/models"
	basehdl "content_studio/internal/api/base/handler"
	"content_studio/internal/common"
	"content_studio/internal/logger"
	"content_studio/internal/utility"
)

// AnalyticsHandler xử lý các request analytics
type AnalyticsHandler struct {
	basehdl.BaseHandler
	analyticsService *analyticssvc.AnalyticsService
}

// NewAnalyticsHandler tạo AnalyticsHandler
func NewAnalyticsHandler(analyticsService *analyticssvc.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// rangeRequest principal + khoảng ngày từ query
func (h *AnalyticsHandler) rangeRequest(c fiber.Ctx) (authmodels.Principal, analyticsdto.RangeQuery, analyticsmodels.DateRange, error) {
	var q analyticsdto.RangeQuery
	p, err := h.Principal(c)
	if err != nil {
		return p, q, analyticsmodels.DateRange{}, err
	}
	if err := h.ParseRequestQuery(c, &q); err != nil {
		return p, q, analyticsmodels.DateRange{}, err
	}
	r, err := h.analyticsService.ResolveRange(q.From, q.To)
	return p, q, r, err
}

// contentRequest principal + content id từ path
func (h *AnalyticsHandler) contentRequest(c fiber.Ctx) (authmodels.Principal, primitive.ObjectID, error) {
	p, err := h.Principal(c)
	if err != nil {
		return p, primitive.NilObjectID, err
	}
	id, err := h.ParamObjectID(c, "id")
	return p, id, err
}

// ====================================
// GHI LOG THÔ
// ====================================

// HandleRecordView ghi một lượt xem
func (h *AnalyticsHandler) HandleRecordView(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, id, err := h.contentRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input analyticsdto.ViewInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		if input.UserAgent == "" {
			input.UserAgent = c.Get(fiber.HeaderUserAgent)
		}
		err = h.analyticsService.RecordView(c.Context(), id, &input, p)
		return h.HandleCreated(c, fiber.Map{"contentId": id.Hex()}, err)
	})
}

// HandleRecordEngagement ghi một lượt thích / chia sẻ / bình luận
func (h *AnalyticsHandler) HandleRecordEngagement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, id, err := h.contentRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input analyticsdto.EngagementInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		err = h.analyticsService.RecordEngagement(c.Context(), id, input.Kind, input.Text, p)
		return h.HandleCreated(c, fiber.Map{"contentId": id.Hex(), "kind": input.Kind}, err)
	})
}

// HandleRecordChannelMetrics cộng dồn số liệu kênh
func (h *AnalyticsHandler) HandleRecordChannelMetrics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, id, err := h.contentRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input analyticsdto.ChannelMetricsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		err = h.analyticsService.RecordChannelMetrics(c.Context(), id, &input, p)
		return h.HandleResponse(c, fiber.Map{"contentId": id.Hex(), "channel": input.Channel}, err)
	})
}

// HandleAnalyzeSentiment chấm điểm cảm xúc của body hiện tại
func (h *AnalyticsHandler) HandleAnalyzeSentiment(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, id, err := h.contentRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		sample, err := h.analyticsService.AnalyzeSentiment(c.Context(), id, p)
		return h.HandleResponse(c, sample, err)
	})
}

// ====================================
// BÁO CÁO
// ====================================

// HandleDashboard tổng quan công ty
func (h *AnalyticsHandler) HandleDashboard(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Dashboard(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleCompare so sánh hai khoảng ngày
func (h *AnalyticsHandler) HandleCompare(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var q analyticsdto.CompareQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		r1, err := h.analyticsService.ResolveRange(q.From1, q.To1)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		r2, err := h.analyticsService.ResolveRange(q.From2, q.To2)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Compare(c.Context(), p, r1, r2)
		return h.HandleResponse(c, result, err)
	})
}

// HandleTimeSeries chuỗi thời gian theo interval (hour, day, week, month)
func (h *AnalyticsHandler) HandleTimeSeries(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, q, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		contentID := primitive.NilObjectID
		if q.ContentID != "" {
			if contentID, err = utility.ParseObjectID("contentId", q.ContentID); err != nil {
				return h.HandleResponse(c, nil, err)
			}
		}
		result, err := h.analyticsService.TimeSeries(c.Context(), p, r, q.Interval, contentID)
		return h.HandleResponse(c, result, err)
	})
}

// HandlePerformance top nội dung theo tương tác
func (h *AnalyticsHandler) HandlePerformance(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, q, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Performance(c.Context(), p, r, q.Limit)
		return h.HandleResponse(c, result, err)
	})
}

// HandleEngagement tổng tương tác và tỷ lệ
func (h *AnalyticsHandler) HandleEngagement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Engagement(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleSentiment phân bố cảm xúc
func (h *AnalyticsHandler) HandleSentiment(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Sentiment(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleDistribution trạng thái phân phối theo kênh
func (h *AnalyticsHandler) HandleDistribution(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Distribution(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleChannelPerformance số liệu cộng dồn theo kênh
func (h *AnalyticsHandler) HandleChannelPerformance(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.ChannelPerformance(c.Context(), p)
		return h.HandleResponse(c, result, err)
	})
}

// HandleContentTypes số liệu theo loại nội dung
func (h *AnalyticsHandler) HandleContentTypes(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.ContentTypes(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleUserActivity hoạt động theo tác giả (admin)
func (h *AnalyticsHandler) HandleUserActivity(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, _, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.UserActivity(c.Context(), p, r)
		return h.HandleResponse(c, result, err)
	})
}

// HandleRealtime lượt xem 24 giờ gần nhất
func (h *AnalyticsHandler) HandleRealtime(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Realtime(c.Context(), p)
		return h.HandleResponse(c, result, err)
	})
}

// HandleCustomReport báo cáo tùy chọn (admin)
func (h *AnalyticsHandler) HandleCustomReport(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input analyticsdto.CustomReportInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		r, err := h.analyticsService.ResolveRange(input.From, input.To)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.CustomReport(c.Context(), p, r, input.Metrics, input.GroupBy)
		return h.HandleResponse(c, result, err)
	})
}

// HandleExport xuất dữ liệu; format=csv trả file text/csv, còn lại trả JSON
func (h *AnalyticsHandler) HandleExport(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, q, r, err := h.rangeRequest(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.analyticsService.Export(c.Context(), p, r, q.Format)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		logger.LogAction("analytics_export", c, map[string]interface{}{"format": result.Format})
		rows, ok := result.Data.([]analyticsmodels.ExportRow)
		if result.Format != analyticssvc.ExportCSV || !ok {
			return h.HandleResponse(c, result, nil)
		}
		body, err := renderCSV(rows)
		if err != nil {
			return h.HandleResponse(c, nil, common.NewInternalError(err))
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="analytics.csv"`)
		return c.Status(common.StatusOK).Send(body)
	})
}

var csvHeader = []string{"contentId", "title", "type", "status", "createdAt", "views", "likes", "shares", "comments", "sentiment"}

func renderCSV(rows []analyticsmodels.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.ContentID,
			r.Title,
			r.Type,
			r.Status,
			strconv.FormatInt(r.CreatedAt, 10),
			strconv.FormatInt(r.Views, 10),
			strconv.FormatInt(r.Likes, 10),
			strconv.FormatInt(r.Shares, 10),
			strconv.FormatInt(r.Comments, 10),
			fmt.Sprintf("%.4f", r.Sentiment),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
