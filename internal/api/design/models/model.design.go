package models

import "encoding/json"

// ColorToken một màu solid, đã gộp trùng theo mã hex
type ColorToken struct {
	Hex     string  `json:"hex"`
	Opacity float64 `json:"opacity"`
	Name    string  `json:"name"`
	Usage   int     `json:"usage"`
}

// TypographyToken một kiểu chữ
type TypographyToken struct {
	FontFamily    string  `json:"fontFamily"`
	FontWeight    float64 `json:"fontWeight"`
	FontSize      float64 `json:"fontSize"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	TextCase      string  `json:"textCase,omitempty"`
}

// SpacingToken padding / khoảng cách của một auto-layout frame
type SpacingToken struct {
	Top         float64 `json:"top"`
	Right       float64 `json:"right"`
	Bottom      float64 `json:"bottom"`
	Left        float64 `json:"left"`
	ItemSpacing float64 `json:"itemSpacing"`
}

// EffectToken shadow / blur
type EffectToken struct {
	Type    string  `json:"type"`
	Radius  float64 `json:"radius"`
	Spread  float64 `json:"spread,omitempty"`
	Color   string  `json:"color,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
}

// DesignTokens token thiết kế trích xuất từ một file
type DesignTokens struct {
	FileKey     string            `json:"fileKey"`
	FileName    string            `json:"fileName"`
	Version     string            `json:"version"`
	Colors      []ColorToken      `json:"colors"`
	Typography  []TypographyToken `json:"typography"`
	Spacing     []SpacingToken    `json:"spacing"`
	Effects     []EffectToken     `json:"effects"`
	ExtractedAt int64             `json:"extractedAt"`
}

// NodeMatch kết quả tìm node theo tên
type NodeMatch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// FileResult một file trong lần lấy hàng loạt; lỗi của từng file không làm hỏng cả lô
type FileResult struct {
	FileKey string          `json:"fileKey"`
	File    json.RawMessage `json:"file,omitempty"`
	Error   string          `json:"error,omitempty"`
}
