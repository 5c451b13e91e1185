package designtool

// File là file thiết kế đã giải mã (chỉ các trường cần cho trích xuất token / tìm kiếm)
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Version      string `json:"version"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Document     Node   `json:"document"`
}

// Node một node trong cây tài liệu
type Node struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Visible  *bool      `json:"visible,omitempty"`
	Children []Node     `json:"children,omitempty"`
	Fills    []Paint    `json:"fills,omitempty"`
	Strokes  []Paint    `json:"strokes,omitempty"`
	Effects  []Effect   `json:"effects,omitempty"`
	Style    *TypeStyle `json:"style,omitempty"`

	LayoutMode    string  `json:"layoutMode,omitempty"`
	PaddingLeft   float64 `json:"paddingLeft,omitempty"`
	PaddingRight  float64 `json:"paddingRight,omitempty"`
	PaddingTop    float64 `json:"paddingTop,omitempty"`
	PaddingBottom float64 `json:"paddingBottom,omitempty"`
	ItemSpacing   float64 `json:"itemSpacing,omitempty"`
}

// Paint fill / stroke
type Paint struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// Color RGBA chuẩn hóa trong [0, 1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// TypeStyle kiểu chữ của node TEXT
type TypeStyle struct {
	FontFamily    string  `json:"fontFamily"`
	FontWeight    float64 `json:"fontWeight"`
	FontSize      float64 `json:"fontSize"`
	LineHeightPx  float64 `json:"lineHeightPx,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	TextCase      string  `json:"textCase,omitempty"`
}

// Effect shadow / blur
type Effect struct {
	Type    string  `json:"type"`
	Visible bool    `json:"visible"`
	Radius  float64 `json:"radius"`
	Spread  float64 `json:"spread,omitempty"`
	Color   *Color  `json:"color,omitempty"`
	Offset  *Vector `json:"offset,omitempty"`
}

// Vector toạ độ 2D
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodesResponse kết quả GET /v1/files/:key/nodes
type NodesResponse struct {
	Name  string               `json:"name"`
	Nodes map[string]*NodeWrap `json:"nodes"`
}

// NodeWrap node có thể null khi id không tồn tại
type NodeWrap struct {
	Document Node `json:"document"`
}

// ImagesResponse kết quả GET /v1/images/:key
type ImagesResponse struct {
	Err    *string            `json:"err"`
	Images map[string]*string `json:"images"`
}

// ImageOptions tham số export ảnh
type ImageOptions struct {
	Format string  // jpg | png | svg | pdf
	Scale  float64 // 0.01 .. 4
}

// CommentRequest body POST comment
type CommentRequest struct {
	Message    string         `json:"message"`
	ClientMeta map[string]any `json:"client_meta,omitempty"`
	CommentID  string         `json:"comment_id,omitempty"`
}

// WebhookRequest body POST /v2/webhooks
type WebhookRequest struct {
	EventType   string `json:"event_type"`
	TeamID      string `json:"team_id"`
	Endpoint    string `json:"endpoint"`
	Passcode    string `json:"passcode"`
	Description string `json:"description,omitempty"`
}
