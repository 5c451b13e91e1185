// Package aidto chứa DTO cho domain ai (xem trước prompt, danh sách template).
package aidto

// RenderPromptInput xem trước prompt sau khi render, không gọi LLM
type RenderPromptInput struct {
	Type   string         `json:"type" validate:"required,content_type"`
	Params map[string]any `json:"params"`
}

// RenderPromptOutput prompt đã render
type RenderPromptOutput struct {
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

// TemplateInfo mô tả một template cho client
type TemplateInfo struct {
	Type         string            `json:"type"`
	Placeholders []string          `json:"placeholders"`
	Defaults     map[string]string `json:"defaults"`
}
