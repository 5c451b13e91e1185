// Package contentsvc - vòng đời nội dung: sinh, biên tập có revision, đăng / hẹn giờ, archive, khôi phục phiên bản.
package contentsvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	aisvc "content_studio/internal/api/ai/service"
	analyticsmodels "content_studio/internal/api/analytics/models"
	authmodels "content_studio/internal/api/auth/models"
	basemodels "content_studio/internal/api/base/models"
	contentdto "content_studio/internal/api/content/dto"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/common"
	"content_studio/internal/global"
	"content_studio/internal/llm"
	"content_studio/internal/logger"
	"content_studio/internal/metrics"
	"content_studio/internal/utility"
)

const (
	maxPromptRunes       = 1000
	titleFromPromptRunes = 80
)

// Generator sinh / viết lại nội dung (Orchestrator của aisvc)
type Generator interface {
	GenerateContent(ctx context.Context, contentType string, params map[string]any, overrides llm.Parameters) (*aisvc.Result, error)
	ImproveContent(ctx context.Context, body, feedback string) (*aisvc.Result, error)
}

// DesignSyncer lấy metadata + ảnh của các node thiết kế
type DesignSyncer interface {
	SyncDesignElements(ctx context.Context, p authmodels.Principal, fileKey string, refs []contentmodels.DesignRef) ([]contentmodels.DesignElement, error)
}

// AnalyticsRecorder quản lý bản ghi analytics đi kèm nội dung
type AnalyticsRecorder interface {
	CreateRecord(ctx context.Context, content *contentmodels.Content) error
	Record(ctx context.Context, contentID primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error)
}

// PreferenceSource giọng văn / ngôn ngữ mặc định của tài khoản
type PreferenceSource interface {
	Preferences(ctx context.Context, accountID primitive.ObjectID) (authmodels.Preferences, error)
}

// Dependencies các thành phần ContentService cần
type Dependencies struct {
	Store       ContentStore
	Generator   Generator
	Designer    DesignSyncer
	Analytics   AnalyticsRecorder
	Preferences PreferenceSource
	Metrics     *metrics.Metrics
}

// ContentService nghiệp vụ vòng đời nội dung
type ContentService struct {
	store     ContentStore
	generator Generator
	designer  DesignSyncer
	analytics AnalyticsRecorder
	prefs     PreferenceSource
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewContentService tạo ContentService
func NewContentService(deps Dependencies) *ContentService {
	return &ContentService{
		store:     deps.Store,
		generator: deps.Generator,
		designer:  deps.Designer,
		analytics: deps.Analytics,
		prefs:     deps.Preferences,
		metrics:   deps.Metrics,
		now:       time.Now,
	}
}

// Store trả về store (analytics dùng để đọc nội dung của công ty)
func (s *ContentService) Store() ContentStore {
	return s.store
}

func (s *ContentService) nowMilli() int64 {
	return s.now().UnixMilli()
}

// ====================================
// QUYỀN TRUY CẬP
// ====================================

func (s *ContentService) load(ctx context.Context, id primitive.ObjectID) (*contentmodels.Content, error) {
	content, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("nội dung", id.Hex())
		}
		return nil, err
	}
	return content, nil
}

// loadForRead đọc được khi cùng công ty
func (s *ContentService) loadForRead(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.SameCompany(content.CompanyID) {
		return nil, common.NewAuthorizationError("Không có quyền truy cập nội dung của công ty khác")
	}
	return content, nil
}

// canEdit tác giả, hoặc admin / editor cùng công ty
func canEdit(content *contentmodels.Content, p authmodels.Principal) bool {
	return content.AuthorID == p.AccountID || p.CanManage()
}

func archivedError(content *contentmodels.Content) error {
	return common.NewConflictError("Nội dung đã archive, không thể thay đổi", map[string]string{
		"id":     content.ID.Hex(),
		"status": content.Status,
	})
}

// loadForWrite đọc để sửa: cần quyền sửa và nội dung chưa archive
func (s *ContentService) loadForWrite(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForRead(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !canEdit(content, p) {
		return nil, common.ErrNotOwner
	}
	if content.IsArchived {
		return nil, archivedError(content)
	}
	return content, nil
}

// applyRevision lưu body hiện tại thành revision rồi ghi body mới, version + 1
func applyRevision(content *contentmodels.Content, editorID primitive.ObjectID, newBody, changeNote string, now int64) {
	content.Revisions = append(content.Revisions, contentmodels.Revision{
		Body:       content.Body,
		EditorID:   editorID,
		EditedAt:   now,
		Version:    content.Version,
		ChangeNote: changeNote,
	})
	content.Body = newBody
	content.Version++
	content.UpdatedAt = now
}

func (s *ContentService) save(ctx context.Context, content *contentmodels.Content, expectedVersion int64, action string) error {
	if err := s.store.Replace(ctx, content, expectedVersion); err != nil {
		return err
	}
	s.metrics.IncLifecycle(action)
	logger.WithModule("content").WithFields(map[string]interface{}{
		"content_id": content.ID.Hex(),
		"action":     action,
		"version":    content.Version,
	}).Debug("Đã lưu nội dung")
	return nil
}

// ====================================
// SINH NỘI DUNG
// ====================================

// normalizeTags bỏ khoảng trắng, tag rỗng và tag trùng
func normalizeTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return utility.Unique(cleaned)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// generationParams gộp params của caller với prompt, title và preferences của tài khoản
func (s *ContentService) generationParams(ctx context.Context, input *contentdto.GenerateInput, prompt, title string, p authmodels.Principal) map[string]any {
	params := make(map[string]any, len(input.Params)+4)
	for k, v := range input.Params {
		params[k] = v
	}
	params["prompt"] = prompt
	params["title"] = title
	if s.prefs == nil {
		return params
	}
	prefs, err := s.prefs.Preferences(ctx, p.AccountID)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Không đọc được preferences, dùng mặc định của template")
		return params
	}
	if _, ok := params["tone"]; !ok && prefs.Tone != "" {
		params["tone"] = prefs.Tone
	}
	if _, ok := params["language"]; !ok && prefs.Language != "" {
		params["language"] = prefs.Language
	}
	return params
}

// Generate sinh nội dung mới (draft, version 1) và tạo bản ghi analytics đi kèm
func (s *ContentService) Generate(ctx context.Context, input *contentdto.GenerateInput, p authmodels.Principal) (*contentmodels.Content, error) {
	if !utility.Contains(global.ContentTypes, input.Type) {
		return nil, common.NewValidationError("Loại nội dung không hợp lệ", map[string]string{"type": input.Type})
	}
	prompt := strings.TrimSpace(input.Prompt)
	if n := utf8.RuneCountInString(prompt); n < 1 || n > maxPromptRunes {
		return nil, common.NewValidationError(
			fmt.Sprintf("Prompt phải có từ 1 đến %d ký tự", maxPromptRunes),
			map[string]int{"length": n},
		)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = truncateRunes(prompt, titleFromPromptRunes)
	}
	params := s.generationParams(ctx, input, prompt, title, p)
	result, err := s.generator.GenerateContent(ctx, input.Type, params, input.Parameters)
	if err != nil {
		return nil, err
	}

	now := s.nowMilli()
	content := &contentmodels.Content{
		ID:    primitive.NewObjectID(),
		Title: title,
		Type:  input.Type,
		Body:  result.Text,
		Metadata: contentmodels.GenerationMetadata{
			Prompt:           result.Prompt,
			Model:            result.Model,
			Parameters:       result.Parameters,
			ProcessingTimeMs: result.ProcessingTimeMs,
			TokenUsage:       result.Usage,
		},
		Status:         contentmodels.StatusDraft,
		AuthorID:       p.AccountID,
		CompanyID:      p.CompanyID,
		DesignElements: []contentmodels.DesignElement{},
		Distribution:   contentmodels.Distribution{Channels: []contentmodels.Channel{}},
		Version:        1,
		Revisions:      []contentmodels.Revision{},
		Tags:           normalizeTags(input.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, content); err != nil {
		return nil, err
	}
	if s.analytics != nil {
		if err := s.analytics.CreateRecord(ctx, content); err != nil {
			log := logger.WithContext(ctx).WithField("content_id", content.ID.Hex())
			log.WithError(err).Error("Không tạo được bản ghi analytics, gỡ nội dung vừa tạo")
			if delErr := s.store.Delete(ctx, content.ID); delErr != nil {
				log.WithError(delErr).Error("Không gỡ được nội dung thiếu bản ghi analytics")
			}
			return nil, err
		}
	}
	s.metrics.IncLifecycle("generate")
	return content, nil
}

// ====================================
// BIÊN TẬP
// ====================================

// Improve nhờ LLM viết lại theo góp ý; chỉ tác giả được dùng
func (s *ContentService) Improve(ctx context.Context, id primitive.ObjectID, feedback string, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForRead(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if content.AuthorID != p.AccountID {
		return nil, common.ErrNotOwner
	}
	if content.IsArchived {
		return nil, archivedError(content)
	}

	result, err := s.generator.ImproveContent(ctx, content.Body, feedback)
	if err != nil {
		return nil, err
	}
	expected := content.Version
	applyRevision(content, p.AccountID, result.Text, "improved: "+truncateRunes(feedback, 200), s.nowMilli())
	if err := s.save(ctx, content, expected, "improve"); err != nil {
		return nil, err
	}
	return content, nil
}

// AddRevision lưu body hiện tại làm revision và ghi đè body mới. Caller đã kiểm tra quyền.
func (s *ContentService) AddRevision(ctx context.Context, id, editorID primitive.ObjectID, newBody, changeNote string) (*contentmodels.Content, error) {
	content, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if content.IsArchived {
		return nil, archivedError(content)
	}
	expected := content.Version
	applyRevision(content, editorID, newBody, changeNote, s.nowMilli())
	if err := s.save(ctx, content, expected, "revise"); err != nil {
		return nil, err
	}
	return content, nil
}

// Update sửa tiêu đề / tag tại chỗ; body thay đổi thì đi qua revision
func (s *ContentService) Update(ctx context.Context, id primitive.ObjectID, input *contentdto.UpdateInput, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	expected := content.Version
	now := s.nowMilli()
	changed := false

	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" && title != content.Title {
			content.Title = title
			changed = true
		}
	}
	if input.Tags != nil {
		content.Tags = normalizeTags(input.Tags)
		changed = true
	}
	if input.Body != nil && *input.Body != content.Body {
		applyRevision(content, p.AccountID, *input.Body, input.ChangeNote, now)
		changed = true
	}
	if !changed {
		return content, nil
	}
	content.UpdatedAt = now
	if err := s.save(ctx, content, expected, "update"); err != nil {
		return nil, err
	}
	return content, nil
}

// RestoreVersion đưa body về ảnh chụp của version n, tạo một version mới
func (s *ContentService) RestoreVersion(ctx context.Context, id primitive.ObjectID, n int64, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	revision, ok := content.FindRevision(n)
	if !ok {
		return nil, common.NewNotFoundError("phiên bản", strconv.FormatInt(n, 10))
	}
	expected := content.Version
	applyRevision(content, p.AccountID, revision.Body, fmt.Sprintf("restored to version %d", n), s.nowMilli())
	if err := s.save(ctx, content, expected, "restore"); err != nil {
		return nil, err
	}
	return content, nil
}

// ====================================
// PHÂN PHỐI
// ====================================

func channelList(names []string, status string, publishedAt int64) ([]contentmodels.Channel, error) {
	names = normalizeTags(names)
	if len(names) == 0 {
		return nil, common.NewValidationError("Cần ít nhất một kênh phân phối", nil)
	}
	channels := make([]contentmodels.Channel, 0, len(names))
	for _, name := range names {
		channels = append(channels, contentmodels.Channel{Name: name, Status: status, PublishedAt: publishedAt})
	}
	return channels, nil
}

// Publish đăng ngay: thay toàn bộ kênh bằng danh sách mới (published), trạng thái -> published
func (s *ContentService) Publish(ctx context.Context, id primitive.ObjectID, channelNames []string, p authmodels.Principal) (*contentmodels.Content, error) {
	now := s.nowMilli()
	channels, err := channelList(channelNames, contentmodels.ChannelPublished, now)
	if err != nil {
		return nil, err
	}
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	content.Distribution.Channels = channels
	content.Distribution.Schedule = nil
	content.Status = contentmodels.StatusPublished
	content.UpdatedAt = now
	if err := s.save(ctx, content, content.Version, "publish"); err != nil {
		return nil, err
	}
	return content, nil
}

// Schedule hẹn giờ đăng: kênh ở trạng thái pending, trạng thái nội dung giữ nguyên
func (s *ContentService) Schedule(ctx context.Context, id primitive.ObjectID, publishAt time.Time, timezone string, channelNames []string, p authmodels.Principal) (*contentmodels.Content, error) {
	if _, err := time.LoadLocation(timezone); err != nil || timezone == "" {
		return nil, common.NewValidationError("Múi giờ không hợp lệ", map[string]string{"timezone": timezone})
	}
	now := s.now()
	if !publishAt.After(now) {
		return nil, common.NewValidationError("Thời điểm đăng phải ở tương lai", map[string]int64{"publishAt": publishAt.UnixMilli()})
	}
	channels, err := channelList(channelNames, contentmodels.ChannelPending, 0)
	if err != nil {
		return nil, err
	}
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	content.Distribution.Channels = channels
	content.Distribution.Schedule = &contentmodels.Schedule{PublishAt: publishAt.UnixMilli(), Timezone: timezone}
	content.UpdatedAt = now.UnixMilli()
	if err := s.save(ctx, content, content.Version, "schedule"); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateChannelStatus chuyển một kênh từ pending sang published / failed
func (s *ContentService) UpdateChannelStatus(ctx context.Context, id primitive.ObjectID, channel, status, errMsg string, p authmodels.Principal) (*contentmodels.Content, error) {
	if status != contentmodels.ChannelPublished && status != contentmodels.ChannelFailed {
		return nil, common.NewValidationError("Trạng thái kênh không hợp lệ", map[string]string{"status": status})
	}
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, ch := range content.Distribution.Channels {
		if ch.Name == channel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, common.NewNotFoundError("kênh phân phối", channel)
	}
	current := &content.Distribution.Channels[idx]
	if current.Status != contentmodels.ChannelPending {
		return nil, common.NewConflictError("Chỉ kênh đang pending mới được cập nhật", map[string]string{
			"channel": channel,
			"status":  current.Status,
		})
	}

	now := s.nowMilli()
	current.Status = status
	if status == contentmodels.ChannelPublished {
		current.PublishedAt = now
		current.Error = ""
		content.Status = contentmodels.StatusPublished
	} else {
		current.Error = errMsg
	}
	if !hasPending(content.Distribution.Channels) {
		content.Distribution.Schedule = nil
	}
	content.UpdatedAt = now
	if err := s.save(ctx, content, content.Version, "channel_"+status); err != nil {
		return nil, err
	}
	return content, nil
}

func hasPending(channels []contentmodels.Channel) bool {
	for _, ch := range channels {
		if ch.Status == contentmodels.ChannelPending {
			return true
		}
	}
	return false
}

// PublishDue đăng các nội dung có lịch đã đến hạn: kênh pending -> published, xóa lịch.
// Lỗi từng nội dung chỉ được ghi log; trả về số nội dung đã đăng.
func (s *ContentService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	nowMilli := now.UnixMilli()
	due, err := s.store.FindDue(ctx, nowMilli)
	if err != nil {
		return 0, err
	}

	published := 0
	for i := range due {
		content := &due[i]
		for j := range content.Distribution.Channels {
			ch := &content.Distribution.Channels[j]
			if ch.Status == contentmodels.ChannelPending {
				ch.Status = contentmodels.ChannelPublished
				ch.PublishedAt = nowMilli
			}
		}
		content.Distribution.Schedule = nil
		content.Status = contentmodels.StatusPublished
		content.UpdatedAt = nowMilli
		if err := s.save(ctx, content, content.Version, "scheduled_publish"); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("content_id", content.ID.Hex()).Error("Đăng theo lịch thất bại")
			continue
		}
		published++
	}
	return published, nil
}

// ====================================
// ARCHIVE & HÀNG LOẠT
// ====================================

// Archive đánh dấu archive (soft). Gọi lại trên nội dung đã archive không làm gì.
func (s *ContentService) Archive(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForRead(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !canEdit(content, p) {
		return nil, common.ErrNotOwner
	}
	if content.IsArchived {
		return content, nil
	}
	content.IsArchived = true
	content.Status = contentmodels.StatusArchived
	content.UpdatedAt = s.nowMilli()
	if err := s.save(ctx, content, content.Version, "archive"); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *ContentService) bulk(ctx context.Context, ids []primitive.ObjectID, apply BulkChange, p authmodels.Principal, action string) (*contentmodels.BulkResult, error) {
	if !p.IsAdmin() {
		return nil, common.ErrForbiddenRole
	}
	ids = utility.Unique(ids)
	if len(ids) == 0 {
		return nil, common.NewValidationError("Danh sách ID rỗng", nil)
	}
	matched, modified, err := s.store.BulkApply(ctx, p.CompanyID, ids, apply)
	if err != nil {
		return nil, err
	}
	result := &contentmodels.BulkResult{Requested: int64(len(ids)), Matched: matched, Modified: modified}
	s.metrics.IncLifecycle(action)
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"action":    action,
		"requested": result.Requested,
		"matched":   matched,
		"modified":  modified,
	}).Info("Thao tác hàng loạt")
	return result, nil
}

// BulkPublish đăng hàng loạt nội dung của công ty (admin)
func (s *ContentService) BulkPublish(ctx context.Context, ids []primitive.ObjectID, channelNames []string, p authmodels.Principal) (*contentmodels.BulkResult, error) {
	apply := BulkChange{Status: contentmodels.StatusPublished, UpdatedAt: s.nowMilli()}
	if len(channelNames) > 0 {
		channels, err := channelList(channelNames, contentmodels.ChannelPublished, apply.UpdatedAt)
		if err != nil {
			return nil, err
		}
		apply.Channels = channels
	}
	return s.bulk(ctx, ids, apply, p, "bulk_publish")
}

// BulkArchive archive hàng loạt nội dung của công ty (admin)
func (s *ContentService) BulkArchive(ctx context.Context, ids []primitive.ObjectID, p authmodels.Principal) (*contentmodels.BulkResult, error) {
	apply := BulkChange{Status: contentmodels.StatusArchived, Archive: true, UpdatedAt: s.nowMilli()}
	return s.bulk(ctx, ids, apply, p, "bulk_archive")
}

// ====================================
// ĐỌC
// ====================================

// Get chi tiết nội dung
func (s *ContentService) Get(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) (*contentmodels.Content, error) {
	return s.loadForRead(ctx, id, p)
}

// List danh sách nội dung của công ty
func (s *ContentService) List(ctx context.Context, query *contentdto.ListQuery, page, limit int64, p authmodels.Principal) (*basemodels.PaginateResult[contentmodels.Content], error) {
	filter := ListFilter{CompanyID: p.CompanyID}
	if query != nil {
		filter.Status = query.Status
		filter.Type = query.Type
		filter.Search = strings.TrimSpace(query.Search)
		filter.Tag = query.Tag
		if query.AuthorID != "" {
			authorID, err := utility.ParseObjectID("authorId", query.AuthorID)
			if err != nil {
				return nil, err
			}
			filter.AuthorID = authorID
		}
	}
	return s.store.List(ctx, filter, page, limit)
}

// Versions lịch sử phiên bản, mới nhất trước (gồm cả phiên bản hiện tại)
func (s *ContentService) Versions(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) ([]contentmodels.VersionSummary, error) {
	content, err := s.loadForRead(ctx, id, p)
	if err != nil {
		return nil, err
	}
	editor := content.AuthorID
	if n := len(content.Revisions); n > 0 {
		editor = content.Revisions[n-1].EditorID
	}
	versions := make([]contentmodels.VersionSummary, 0, len(content.Revisions)+1)
	versions = append(versions, contentmodels.VersionSummary{
		Version:  content.Version,
		EditorID: editor,
		EditedAt: content.UpdatedAt,
		Current:  true,
	})
	for i := len(content.Revisions) - 1; i >= 0; i-- {
		r := content.Revisions[i]
		versions = append(versions, contentmodels.VersionSummary{
			Version:    r.Version,
			EditorID:   r.EditorID,
			EditedAt:   r.EditedAt,
			ChangeNote: r.ChangeNote,
		})
	}
	return versions, nil
}

// Analytics bản ghi analytics của nội dung
func (s *ContentService) Analytics(ctx context.Context, id primitive.ObjectID, p authmodels.Principal) (*analyticsmodels.ContentAnalytics, error) {
	if _, err := s.loadForRead(ctx, id, p); err != nil {
		return nil, err
	}
	if s.analytics == nil {
		return nil, common.NewNotFoundError("analytics", id.Hex())
	}
	return s.analytics.Record(ctx, id)
}

// SyncDesign lấy lại các phần tử thiết kế và ghi đè toàn bộ danh sách cũ
func (s *ContentService) SyncDesign(ctx context.Context, id primitive.ObjectID, fileKey string, refs []contentmodels.DesignRef, p authmodels.Principal) (*contentmodels.Content, error) {
	content, err := s.loadForWrite(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if s.designer == nil {
		return nil, common.ErrIntegrationUnset
	}
	elements, err := s.designer.SyncDesignElements(ctx, p, fileKey, refs)
	if err != nil {
		return nil, err
	}
	content.DesignElements = elements
	content.UpdatedAt = s.nowMilli()
	if err := s.save(ctx, content, content.Version, "sync_design"); err != nil {
		return nil, err
	}
	return content, nil
}
