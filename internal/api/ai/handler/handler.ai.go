// Package aihdl - handler HTTP cho domain ai.
package aihdl

import (
	"github.com/gofiber/fiber/v3"

	aidto "content_studio/internal/api/ai/dto"
	aisvc "content_studio/internal/api/ai/service"
	basehdl "content_studio/internal/api/base/handler"
)

// AIHandler xử lý các request về prompt template
type AIHandler struct {
	basehdl.BaseHandler
	orchestrator *aisvc.Orchestrator
}

// NewAIHandler tạo AIHandler
func NewAIHandler(orchestrator *aisvc.Orchestrator) *AIHandler {
	return &AIHandler{orchestrator: orchestrator}
}

// HandleListTemplates danh sách template theo loại nội dung
func (h *AIHandler) HandleListTemplates(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		catalog := h.orchestrator.Catalog()
		out := make([]aidto.TemplateInfo, 0, len(catalog))
		for _, t := range catalog.Types() {
			tpl := catalog[t]
			defaults := tpl.Defaults
			if defaults == nil {
				defaults = map[string]string{}
			}
			out = append(out, aidto.TemplateInfo{Type: t, Placeholders: tpl.Placeholders(), Defaults: defaults})
		}
		return h.HandleResponse(c, out, nil)
	})
}

// HandleRenderPrompt render prompt để xem trước
func (h *AIHandler) HandleRenderPrompt(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input aidto.RenderPromptInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		tpl, prompt, err := h.orchestrator.RenderPrompt(input.Type, input.Params)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		return h.HandleResponse(c, aidto.RenderPromptOutput{System: tpl.System, Prompt: prompt}, nil)
	})
}
