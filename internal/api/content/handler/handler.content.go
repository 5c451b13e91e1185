// Package contenthdl - handler HTTP cho domain content.
package contenthdl

import (
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "content_studio/internal/api/base/handler"
	contentdto "content_studio/internal/api/content/dto"
	contentmodels "content_studio/internal/api/content/models"
	contentsvc "content_studio/internal/api/content/service"
	"content_studio/internal/logger"
	"content_studio/internal/utility"
)

// ContentHandler xử lý các request vòng đời nội dung
type ContentHandler struct {
	basehdl.BaseHandler
	contentService *contentsvc.ContentService
}

// NewContentHandler tạo ContentHandler
func NewContentHandler(contentService *contentsvc.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// HandleGenerate sinh nội dung mới qua LLM
func (h *ContentHandler) HandleGenerate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.GenerateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Generate(c.Context(), &input, p)
		if err == nil {
			logger.LogContent("generate", content.ID.Hex(), c, map[string]interface{}{"type": content.Type})
		}
		return h.HandleCreated(c, content, err)
	})
}

// HandleList danh sách nội dung của công ty
func (h *ContentHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var query contentdto.ListQuery
		if err := h.ParseRequestQuery(c, &query); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		page, limit := h.Pagination(c)
		result, err := h.contentService.List(c.Context(), &query, page, limit, p)
		return h.HandleResponse(c, result, err)
	})
}

// HandleGet chi tiết một nội dung
func (h *ContentHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Get(c.Context(), id, p)
		return h.HandleResponse(c, content, err)
	})
}

// HandleUpdate sửa tiêu đề / tag / body
func (h *ContentHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.UpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Update(c.Context(), id, &input, p)
		if err == nil {
			logger.LogContent("update", id.Hex(), c, map[string]interface{}{"version": content.Version})
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandleImprove viết lại nội dung theo góp ý
func (h *ContentHandler) HandleImprove(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.ImproveInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Improve(c.Context(), id, input.Feedback, p)
		if err == nil {
			logger.LogContent("improve", id.Hex(), c, map[string]interface{}{"version": content.Version})
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandlePublish đăng ngay
func (h *ContentHandler) HandlePublish(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.PublishInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Publish(c.Context(), id, input.Channels, p)
		if err == nil {
			logger.LogContent("publish", id.Hex(), c, map[string]interface{}{"channels": input.Channels})
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandleSchedule hẹn giờ đăng
func (h *ContentHandler) HandleSchedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.ScheduleInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Schedule(c.Context(), id, time.UnixMilli(input.PublishAt), input.Timezone, input.Channels, p)
		if err == nil {
			logger.LogContent("schedule", id.Hex(), c, map[string]interface{}{"publish_at": input.PublishAt, "timezone": input.Timezone})
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandleChannelStatus cập nhật kết quả đăng của một kênh
func (h *ContentHandler) HandleChannelStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.ChannelStatusInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.UpdateChannelStatus(c.Context(), id, c.Params("channel"), input.Status, input.Error, p)
		return h.HandleResponse(c, content, err)
	})
}

// HandleArchive lưu trữ nội dung
func (h *ContentHandler) HandleArchive(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.Archive(c.Context(), id, p)
		if err == nil {
			logger.LogContent("archive", id.Hex(), c, nil)
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandleVersions lịch sử phiên bản, mới nhất trước
func (h *ContentHandler) HandleVersions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		versions, err := h.contentService.Versions(c.Context(), id, p)
		return h.HandleResponse(c, versions, err)
	})
}

// HandleRestore khôi phục một phiên bản cũ
func (h *ContentHandler) HandleRestore(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.RestoreInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		content, err := h.contentService.RestoreVersion(c.Context(), id, input.Version, p)
		if err == nil {
			logger.LogContent("restore", id.Hex(), c, map[string]interface{}{"from_version": input.Version})
		}
		return h.HandleResponse(c, content, err)
	})
}

// HandleAnalytics bản ghi analytics đi kèm nội dung
func (h *ContentHandler) HandleAnalytics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		rec, err := h.contentService.Analytics(c.Context(), id, p)
		return h.HandleResponse(c, rec, err)
	})
}

// HandleSyncDesign đồng bộ phần tử thiết kế vào nội dung
func (h *ContentHandler) HandleSyncDesign(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParamObjectID(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.SyncDesignInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		refs := make([]contentmodels.DesignRef, 0, len(input.Elements))
		for _, e := range input.Elements {
			refs = append(refs, contentmodels.DesignRef{NodeID: e.NodeID, Type: e.Type})
		}
		content, err := h.contentService.SyncDesign(c.Context(), id, input.FileKey, refs, p)
		if err == nil {
			logger.LogContent("design_sync", id.Hex(), c, map[string]interface{}{"file_key": input.FileKey, "elements": len(refs)})
		}
		return h.HandleResponse(c, content, err)
	})
}

// ====================================
// HÀNG LOẠT (ADMIN)
// ====================================

// HandleBulkPublish đăng hàng loạt
func (h *ContentHandler) HandleBulkPublish(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.BulkInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		ids, err := utility.StringArray2ObjectIDArray("ids", input.IDs)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.contentService.BulkPublish(c.Context(), ids, input.Channels, p)
		if err == nil {
			logger.LogAction("content_bulk_publish", c, map[string]interface{}{"requested": result.Requested, "modified": result.Modified})
		}
		return h.HandleResponse(c, result, err)
	})
}

// HandleBulkArchive lưu trữ hàng loạt
func (h *ContentHandler) HandleBulkArchive(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input contentdto.BulkInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		ids, err := utility.StringArray2ObjectIDArray("ids", input.IDs)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.contentService.BulkArchive(c.Context(), ids, p)
		if err == nil {
			logger.LogAction("content_bulk_archive", c, map[string]interface{}{"requested": result.Requested, "modified": result.Modified})
		}
		return h.HandleResponse(c, result, err)
	})
}
