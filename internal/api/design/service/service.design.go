// Package designsvc - điều phối các lời gọi tới công cụ thiết kế theo integration của từng tài khoản:
// pass-through, tìm node, trích xuất design token (có cache) và đồng bộ phần tử cho nội dung.
package designsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	designmodels "content_studio/internal/api/design/models"
	"content_studio/internal/cache"
	"content_studio/internal/common"
	"content_studio/internal/designtool"
	"content_studio/internal/logger"
	"content_studio/internal/metrics"
)

const (
	upstreamService = "design"
	// Số lời gọi song song tối đa khi đồng bộ phần tử / lấy nhiều file
	maxParallel = 4
)

// TokenSource token integration của tài khoản (AuthService)
type TokenSource interface {
	IntegrationToken(ctx context.Context, accountID primitive.ObjectID) (string, error)
	MarkSynced(ctx context.Context, accountID primitive.ObjectID, at int64) error
}

// DesignService orchestrator công cụ thiết kế
type DesignService struct {
	client   *designtool.Client
	tokens   TokenSource
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	// Gộp các lần tải cùng một file đang diễn ra
	inflight singleflight.Group
}

// NewDesignService tạo DesignService; c == nil thì không cache
func NewDesignService(client *designtool.Client, tokens TokenSource, c cache.Cache, cacheTTL time.Duration, m *metrics.Metrics) *DesignService {
	return &DesignService{
		client:   client,
		tokens:   tokens,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *DesignService) token(ctx context.Context, p authmodels.Principal) (string, error) {
	return s.tokens.IntegrationToken(ctx, p.AccountID)
}

// call đo thời gian một lời gọi upstream và chuẩn hóa lỗi. resource dùng cho lỗi 404.
func call[T any](ctx context.Context, s *DesignService, op, resource string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		outcome := "error"
		if isTimeout(err) {
			outcome = "timeout"
		}
		s.metrics.ObserveUpstream(upstreamService, outcome, elapsed)
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"module":    "design",
			"operation": op,
			"resource":  resource,
			"outcome":   outcome,
			"elapsed":   elapsed.String(),
		}).WithError(err).Warn("Gọi công cụ thiết kế thất bại")
		var zero T
		return zero, toServiceError(err, resource)
	}
	s.metrics.ObserveUpstream(upstreamService, "ok", elapsed)
	return out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// toServiceError map status của công cụ thiết kế sang taxonomy lỗi
func toServiceError(err error, resource string) error {
	if errors.Is(err, designtool.ErrMissingToken) {
		return common.ErrIntegrationUnset
	}
	var apiErr *designtool.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401:
			return common.NewAuthenticationError("Token công cụ thiết kế không hợp lệ hoặc đã bị thu hồi")
		case 403:
			return common.NewAuthorizationError("Không có quyền truy cập tài nguyên thiết kế")
		case 404:
			return common.NewNotFoundError("tài nguyên thiết kế", resource)
		case 429:
			return common.NewRateLimitError("Công cụ thiết kế đang giới hạn tần suất, thử lại sau", common.UpstreamDetails{
				Service: upstreamService,
				Status:  apiErr.StatusCode,
				Message: apiErr.Message,
			})
		}
		return common.NewUpstreamError(upstreamService, apiErr.StatusCode, apiErr.Message)
	}
	if isTimeout(err) {
		return common.NewUpstreamError(upstreamService, 0, "request timed out")
	}
	return common.NewUpstreamError(upstreamService, 0, err.Error())
}

// SplitIDs tách danh sách id phân cách bởi dấu phẩy, bỏ phần tử rỗng
func SplitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ====================================
// CACHE
// ====================================

func (s *DesignService) cacheKey(p authmodels.Principal, kind, fileKey string) string {
	return fmt.Sprintf("design:%s:%s:%s", p.CompanyID.Hex(), kind, fileKey)
}

func cached[T any](ctx context.Context, s *DesignService, key string) (T, bool) {
	var zero T
	if s.cache == nil {
		return zero, false
	}
	v, err := cache.GetJSON[T](ctx, s.cache, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Đọc cache thất bại")
		}
		return zero, false
	}
	return v, true
}

func (s *DesignService) putCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, value, s.cacheTTL); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Ghi cache thất bại")
	}
}

// file cây tài liệu đã giải mã, ưu tiên cache
func (s *DesignService) file(ctx context.Context, p authmodels.Principal, fileKey string) (*designtool.File, error) {
	key := s.cacheKey(p, "file", fileKey)
	if f, ok := cached[designtool.File](ctx, s, key); ok {
		return &f, nil
	}
	token, err := s.token(ctx, p)
	if err != nil {
		return nil, err
	}
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		f, err := call(ctx, s, "file", fileKey, func() (*designtool.File, error) {
			return s.client.File(ctx, token, fileKey)
		})
		if err != nil {
			return nil, err
		}
		s.putCache(ctx, key, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*designtool.File), nil
}

// ====================================
// PASS-THROUGH
// ====================================

// raw gọi một endpoint trả nguyên JSON
func (s *DesignService) raw(ctx context.Context, p authmodels.Principal, op, resource string, fn func(token string) (json.RawMessage, error)) (json.RawMessage, error) {
	token, err := s.token(ctx, p)
	if err != nil {
		return nil, err
	}
	return call(ctx, s, op, resource, func() (json.RawMessage, error) { return fn(token) })
}

// GetFile file thiết kế nguyên dạng
func (s *DesignService) GetFile(ctx context.Context, p authmodels.Principal, fileKey string) (json.RawMessage, error) {
	return s.raw(ctx, p, "file", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.FileRaw(ctx, token, fileKey, nil)
	})
}

// GetNodes các node theo id
func (s *DesignService) GetNodes(ctx context.Context, p authmodels.Principal, fileKey string, ids []string) (json.RawMessage, error) {
	if len(ids) == 0 {
		return nil, common.NewValidationError("Cần ít nhất một node id", nil)
	}
	return s.raw(ctx, p, "nodes", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.NodesRaw(ctx, token, fileKey, ids)
	})
}

// ExportImages render node thành URL ảnh (format jpg | png | svg | pdf, scale 0.01..4)
func (s *DesignService) ExportImages(ctx context.Context, p authmodels.Principal, fileKey string, ids []string, opts designtool.ImageOptions) (map[string]string, error) {
	if len(ids) == 0 {
		return nil, common.NewValidationError("Cần ít nhất một node id", nil)
	}
	token, err := s.token(ctx, p)
	if err != nil {
		return nil, err
	}
	resp, err := call(ctx, s, "images", fileKey, func() (*designtool.ImagesResponse, error) {
		return s.client.Images(ctx, token, fileKey, ids, opts)
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(resp.Images))
	for id, u := range resp.Images {
		if u != nil {
			out[id] = *u
		}
	}
	return out, nil
}

// GetImages URL ảnh với tham số mặc định
func (s *DesignService) GetImages(ctx context.Context, p authmodels.Principal, fileKey string, ids []string) (map[string]string, error) {
	return s.ExportImages(ctx, p, fileKey, ids, designtool.ImageOptions{})
}

// GetComments bình luận của file
func (s *DesignService) GetComments(ctx context.Context, p authmodels.Principal, fileKey string) (json.RawMessage, error) {
	return s.raw(ctx, p, "comments", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.Comments(ctx, token, fileKey)
	})
}

// PostComment thêm bình luận
func (s *DesignService) PostComment(ctx context.Context, p authmodels.Principal, fileKey string, req designtool.CommentRequest) (json.RawMessage, error) {
	return s.raw(ctx, p, "post_comment", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.PostComment(ctx, token, fileKey, req)
	})
}

// GetStyles style đã publish của file
func (s *DesignService) GetStyles(ctx context.Context, p authmodels.Principal, fileKey string) (json.RawMessage, error) {
	return s.raw(ctx, p, "styles", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.Styles(ctx, token, fileKey)
	})
}

// GetComponents component thư viện của file
func (s *DesignService) GetComponents(ctx context.Context, p authmodels.Principal, fileKey string) (json.RawMessage, error) {
	return s.raw(ctx, p, "components", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.Components(ctx, token, fileKey)
	})
}

// GetVersions lịch sử phiên bản của file
func (s *DesignService) GetVersions(ctx context.Context, p authmodels.Principal, fileKey string) (json.RawMessage, error) {
	return s.raw(ctx, p, "versions", fileKey, func(token string) (json.RawMessage, error) {
		return s.client.Versions(ctx, token, fileKey)
	})
}

// GetTeamProjects các project của team
func (s *DesignService) GetTeamProjects(ctx context.Context, p authmodels.Principal, teamID string) (json.RawMessage, error) {
	return s.raw(ctx, p, "team_projects", teamID, func(token string) (json.RawMessage, error) {
		return s.client.TeamProjects(ctx, token, teamID)
	})
}

// CreateWebhook đăng ký webhook cho team
func (s *DesignService) CreateWebhook(ctx context.Context, p authmodels.Principal, req designtool.WebhookRequest) (json.RawMessage, error) {
	return s.raw(ctx, p, "create_webhook", req.TeamID, func(token string) (json.RawMessage, error) {
		return s.client.CreateWebhook(ctx, token, req)
	})
}

// BatchFiles lấy nhiều file song song; lỗi của từng file nằm trong kết quả của file đó
func (s *DesignService) BatchFiles(ctx context.Context, p authmodels.Principal, fileKeys []string) ([]designmodels.FileResult, error) {
	token, err := s.token(ctx, p)
	if err != nil {
		return nil, err
	}
	results := make([]designmodels.FileResult, len(fileKeys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, key := range fileKeys {
		i, key := i, key
		results[i].FileKey = key
		g.Go(func() error {
			f, err := call(gctx, s, "file", key, func() (json.RawMessage, error) {
				return s.client.FileRaw(gctx, token, key, nil)
			})
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].File = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ====================================
// ĐỒNG BỘ PHẦN TỬ
// ====================================

// SyncDesignElements lấy metadata node và URL ảnh cho từng phần tử, song song.
// Một phần tử lỗi làm hỏng cả lần đồng bộ; danh sách trả về giữ thứ tự refs.
func (s *DesignService) SyncDesignElements(ctx context.Context, p authmodels.Principal, fileKey string, refs []contentmodels.DesignRef) ([]contentmodels.DesignElement, error) {
	if strings.TrimSpace(fileKey) == "" {
		return nil, common.NewValidationError("Thiếu fileKey", nil)
	}
	if len(refs) == 0 {
		return nil, common.NewValidationError("Cần ít nhất một phần tử thiết kế", nil)
	}
	token, err := s.token(ctx, p)
	if err != nil {
		return nil, err
	}

	syncedAt := s.now().UnixMilli()
	elements := make([]contentmodels.DesignElement, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			el, err := s.syncElement(gctx, token, fileKey, ref)
			if err != nil {
				return err
			}
			el.LastSyncedAt = syncedAt
			elements[i] = el
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.tokens.MarkSynced(ctx, p.AccountID, syncedAt); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("account_id", p.AccountID.Hex()).Warn("Không cập nhật được thời điểm đồng bộ")
	}
	return elements, nil
}

func (s *DesignService) syncElement(ctx context.Context, token, fileKey string, ref contentmodels.DesignRef) (contentmodels.DesignElement, error) {
	ids := []string{ref.NodeID}
	nodes, err := call(ctx, s, "nodes", ref.NodeID, func() (*designtool.NodesResponse, error) {
		return s.client.Nodes(ctx, token, fileKey, ids)
	})
	if err != nil {
		return contentmodels.DesignElement{}, err
	}
	wrap := nodes.Nodes[ref.NodeID]
	if wrap == nil {
		return contentmodels.DesignElement{}, common.NewNotFoundError("node thiết kế", ref.NodeID)
	}
	images, err := call(ctx, s, "images", ref.NodeID, func() (*designtool.ImagesResponse, error) {
		return s.client.Images(ctx, token, fileKey, ids, designtool.ImageOptions{Format: "png"})
	})
	if err != nil {
		return contentmodels.DesignElement{}, err
	}

	el := contentmodels.DesignElement{
		FileID: fileKey,
		NodeID: ref.NodeID,
		Type:   ref.Type,
		Name:   wrap.Document.Name,
	}
	if el.Type == "" {
		el.Type = wrap.Document.Type
	}
	if u := images.Images[ref.NodeID]; u != nil {
		el.URL = *u
	}
	return el, nil
}
