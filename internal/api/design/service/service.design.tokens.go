package designsvc

import (
	"context"
	"fmt"
	"math"
	"strings"

	authmodels "content_studio/internal/api/auth/models"
	designmodels "content_studio/internal/api/design/models"
	"content_studio/internal/common"
	"content_studio/internal/designtool"
)

const defaultSearchLimit = 50

// HexColor màu RGB trong [0, 1] thành "#rrggbb"
func HexColor(c designtool.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func visible(flag *bool) bool {
	return flag == nil || *flag
}

// tokenCollector gom token khi duyệt cây, mỗi loại gộp trùng theo giá trị
type tokenCollector struct {
	out        designmodels.DesignTokens
	colorIndex map[string]int
	seenType   map[designmodels.TypographyToken]bool
	seenSpace  map[designmodels.SpacingToken]bool
	seenEffect map[designmodels.EffectToken]bool
}

func newTokenCollector() *tokenCollector {
	return &tokenCollector{
		out: designmodels.DesignTokens{
			Colors:     []designmodels.ColorToken{},
			Typography: []designmodels.TypographyToken{},
			Spacing:    []designmodels.SpacingToken{},
			Effects:    []designmodels.EffectToken{},
		},
		colorIndex: map[string]int{},
		seenType:   map[designmodels.TypographyToken]bool{},
		seenSpace:  map[designmodels.SpacingToken]bool{},
		seenEffect: map[designmodels.EffectToken]bool{},
	}
}

func (tc *tokenCollector) addPaint(node *designtool.Node, paint designtool.Paint) {
	if paint.Type != "SOLID" || paint.Color == nil || !visible(paint.Visible) {
		return
	}
	hex := HexColor(*paint.Color)
	if i, ok := tc.colorIndex[hex]; ok {
		tc.out.Colors[i].Usage++
		return
	}
	opacity := paint.Color.A
	if paint.Opacity != nil {
		opacity *= *paint.Opacity
	}
	tc.colorIndex[hex] = len(tc.out.Colors)
	tc.out.Colors = append(tc.out.Colors, designmodels.ColorToken{Hex: hex, Opacity: opacity, Name: node.Name, Usage: 1})
}

func (tc *tokenCollector) visit(node *designtool.Node) {
	if !visible(node.Visible) {
		return
	}
	for _, f := range node.Fills {
		tc.addPaint(node, f)
	}
	for _, s := range node.Strokes {
		tc.addPaint(node, s)
	}

	if node.Type == "TEXT" && node.Style != nil {
		t := designmodels.TypographyToken{
			FontFamily:    node.Style.FontFamily,
			FontWeight:    node.Style.FontWeight,
			FontSize:      node.Style.FontSize,
			LineHeight:    node.Style.LineHeightPx,
			LetterSpacing: node.Style.LetterSpacing,
			TextCase:      node.Style.TextCase,
		}
		if !tc.seenType[t] {
			tc.seenType[t] = true
			tc.out.Typography = append(tc.out.Typography, t)
		}
	}

	if node.LayoutMode != "" && node.LayoutMode != "NONE" {
		sp := designmodels.SpacingToken{
			Top:         node.PaddingTop,
			Right:       node.PaddingRight,
			Bottom:      node.PaddingBottom,
			Left:        node.PaddingLeft,
			ItemSpacing: node.ItemSpacing,
		}
		if !tc.seenSpace[sp] {
			tc.seenSpace[sp] = true
			tc.out.Spacing = append(tc.out.Spacing, sp)
		}
	}

	for _, e := range node.Effects {
		if !e.Visible {
			continue
		}
		et := designmodels.EffectToken{Type: e.Type, Radius: e.Radius, Spread: e.Spread}
		if e.Color != nil {
			et.Color = HexColor(*e.Color)
		}
		if e.Offset != nil {
			et.OffsetX, et.OffsetY = e.Offset.X, e.Offset.Y
		}
		if !tc.seenEffect[et] {
			tc.seenEffect[et] = true
			tc.out.Effects = append(tc.out.Effects, et)
		}
	}

	for i := range node.Children {
		tc.visit(&node.Children[i])
	}
}

// CollectTokens duyệt toàn bộ cây và trả về token đã gộp trùng
func CollectTokens(root *designtool.Node) designmodels.DesignTokens {
	tc := newTokenCollector()
	tc.visit(root)
	return tc.out
}

// ExtractDesignTokens trích xuất màu, kiểu chữ, khoảng cách và hiệu ứng của file (có cache)
func (s *DesignService) ExtractDesignTokens(ctx context.Context, p authmodels.Principal, fileKey string) (*designmodels.DesignTokens, error) {
	key := s.cacheKey(p, "tokens", fileKey)
	if tokens, ok := cached[designmodels.DesignTokens](ctx, s, key); ok {
		return &tokens, nil
	}
	f, err := s.file(ctx, p, fileKey)
	if err != nil {
		return nil, err
	}
	tokens := CollectTokens(&f.Document)
	tokens.FileKey = fileKey
	tokens.FileName = f.Name
	tokens.Version = f.Version
	tokens.ExtractedAt = s.now().UnixMilli()
	s.putCache(ctx, key, tokens)
	return &tokens, nil
}

// SearchNodes tìm node có tên chứa query (không phân biệt hoa thường), theo thứ tự duyệt cây
func (s *DesignService) SearchNodes(ctx context.Context, p authmodels.Principal, fileKey, query string, limit int) ([]designmodels.NodeMatch, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, common.NewValidationError("Thiếu từ khóa tìm kiếm", nil)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	f, err := s.file(ctx, p, fileKey)
	if err != nil {
		return nil, err
	}
	return MatchNodes(&f.Document, query, limit), nil
}

// MatchNodes tìm theo tên trong cây; path là chuỗi tên tổ tiên nối bằng " / "
func MatchNodes(root *designtool.Node, query string, limit int) []designmodels.NodeMatch {
	out := []designmodels.NodeMatch{}
	var walk func(n *designtool.Node, path []string) bool
	walk = func(n *designtool.Node, path []string) bool {
		path = append(path, n.Name)
		if strings.Contains(strings.ToLower(n.Name), query) {
			out = append(out, designmodels.NodeMatch{ID: n.ID, Name: n.Name, Type: n.Type, Path: strings.Join(path, " / ")})
			if len(out) >= limit {
				return false
			}
		}
		for i := range n.Children {
			if !walk(&n.Children[i], path) {
				return false
			}
		}
		return true
	}
	walk(root, nil)
	return out
}
