// Package designhdl - handler HTTP cho domain design (công cụ thiết kế).
package designhdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "content_studio/internal/api/base/handler"
	designdto "content_studio/internal/api/design/dto"
	designsvc "content_studio/internal/api/design/service"
	"content_studio/internal/designtool"
	"content_studio/internal/logger"
)

// DesignHandler xử lý các request tới công cụ thiết kế
type DesignHandler struct {
	basehdl.BaseHandler
	designService *designsvc.DesignService
}

// NewDesignHandler tạo DesignHandler
func NewDesignHandler(designService *designsvc.DesignService) *DesignHandler {
	return &DesignHandler{designService: designService}
}

// HandleGetFile file thiết kế nguyên dạng
func (h *DesignHandler) HandleGetFile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		file, err := h.designService.GetFile(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, file, err)
	})
}

// HandleGetNodes các node theo id
func (h *DesignHandler) HandleGetNodes(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var q designdto.NodesQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		nodes, err := h.designService.GetNodes(c.Context(), p, c.Params("key"), designsvc.SplitIDs(q.IDs))
		return h.HandleResponse(c, nodes, err)
	})
}

// HandleExportImages URL ảnh của các node
func (h *DesignHandler) HandleExportImages(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var q designdto.ImagesQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		images, err := h.designService.ExportImages(c.Context(), p, c.Params("key"), designsvc.SplitIDs(q.IDs), designtool.ImageOptions{
			Format: q.Format,
			Scale:  q.Scale,
		})
		return h.HandleResponse(c, images, err)
	})
}

// HandleGetComments bình luận của file
func (h *DesignHandler) HandleGetComments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		comments, err := h.designService.GetComments(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, comments, err)
	})
}

// HandlePostComment thêm bình luận
func (h *DesignHandler) HandlePostComment(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input designdto.CommentInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		comment, err := h.designService.PostComment(c.Context(), p, c.Params("key"), designtool.CommentRequest{
			Message:    input.Message,
			ClientMeta: input.ClientMeta,
			CommentID:  input.CommentID,
		})
		return h.HandleCreated(c, comment, err)
	})
}

// HandleGetStyles style của file
func (h *DesignHandler) HandleGetStyles(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		styles, err := h.designService.GetStyles(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, styles, err)
	})
}

// HandleGetComponents component thư viện
func (h *DesignHandler) HandleGetComponents(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		components, err := h.designService.GetComponents(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, components, err)
	})
}

// HandleGetVersions lịch sử phiên bản
func (h *DesignHandler) HandleGetVersions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		versions, err := h.designService.GetVersions(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, versions, err)
	})
}

// HandleSearchNodes tìm node theo tên
func (h *DesignHandler) HandleSearchNodes(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var q designdto.SearchQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		matches, err := h.designService.SearchNodes(c.Context(), p, c.Params("key"), q.Q, q.Limit)
		return h.HandleResponse(c, matches, err)
	})
}

// HandleDesignTokens design token của file
func (h *DesignHandler) HandleDesignTokens(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		tokens, err := h.designService.ExtractDesignTokens(c.Context(), p, c.Params("key"))
		return h.HandleResponse(c, tokens, err)
	})
}

// HandleBatchFiles lấy nhiều file cùng lúc
func (h *DesignHandler) HandleBatchFiles(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input designdto.BatchInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		files, err := h.designService.BatchFiles(c.Context(), p, input.FileKeys)
		return h.HandleResponse(c, files, err)
	})
}

// HandleTeamProjects project của team
func (h *DesignHandler) HandleTeamProjects(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		projects, err := h.designService.GetTeamProjects(c.Context(), p, c.Params("teamId"))
		return h.HandleResponse(c, projects, err)
	})
}

// HandleCreateWebhook đăng ký webhook (admin)
func (h *DesignHandler) HandleCreateWebhook(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		p, err := h.Principal(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input designdto.WebhookInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		webhook, err := h.designService.CreateWebhook(c.Context(), p, designtool.WebhookRequest{
			EventType:   input.EventType,
			TeamID:      input.TeamID,
			Endpoint:    input.Endpoint,
			Passcode:    input.Passcode,
			Description: input.Description,
		})
		if err == nil {
			logger.LogAction("design_webhook_create", c, map[string]interface{}{"team_id": input.TeamID, "event_type": input.EventType})
		}
		return h.HandleCreated(c, webhook, err)
	})
}
