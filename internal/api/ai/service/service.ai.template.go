// Package aisvc - orchestrator sinh nội dung qua LLM: catalog prompt template, render placeholder, gọi completion.
package aisvc

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"content_studio/internal/common"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

var placeholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Template prompt template cho một loại nội dung
type Template struct {
	System   string            `yaml:"system" json:"system"`
	Template string            `yaml:"template" json:"template"`
	Defaults map[string]string `yaml:"defaults" json:"defaults,omitempty"`
}

// Placeholders danh sách placeholder (không trùng, theo thứ tự xuất hiện)
func (t Template) Placeholders() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, m := range placeholderRegex.FindAllStringSubmatch(t.Template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Catalog map loại nội dung -> template
type Catalog map[string]Template

// LoadCatalog parse catalog từ YAML
func LoadCatalog(data []byte) (Catalog, error) {
	catalog := Catalog{}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}
	for name, tpl := range catalog {
		if strings.TrimSpace(tpl.Template) == "" {
			return nil, fmt.Errorf("prompt template %q is empty", name)
		}
	}
	return catalog, nil
}

// DefaultCatalog catalog nhúng trong binary
func DefaultCatalog() Catalog {
	catalog, err := LoadCatalog(defaultTemplatesYAML)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Types các loại nội dung có template, sắp xếp theo tên
func (c Catalog) Types() []string {
	types := make([]string, 0, len(c))
	for t := range c {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// MissingPlaceholderError các placeholder không có giá trị
type MissingPlaceholderError struct {
	Names []string
}

func (e *MissingPlaceholderError) Error() string {
	return "missing placeholder values: " + strings.Join(e.Names, ", ")
}

// Render thay {name} bằng giá trị tương ứng. Placeholder không có giá trị trả về
// MissingPlaceholderError bọc trong ValidationError.
func Render(template string, values map[string]any) (string, error) {
	var missing []string
	seen := map[string]bool{}
	out := placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := values[name]
		if !ok || value == nil {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return match
		}
		return fmt.Sprint(value)
	})
	if len(missing) > 0 {
		return "", common.NewValidationError("Thiếu giá trị cho placeholder của template", &MissingPlaceholderError{Names: missing})
	}
	return out, nil
}

// valuesWithDefaults gộp defaults của template với params của caller (caller ưu tiên)
func valuesWithDefaults(tpl Template, params map[string]any) map[string]any {
	values := make(map[string]any, len(tpl.Defaults)+len(params))
	for k, v := range tpl.Defaults {
		values[k] = v
	}
	for k, v := range params {
		if v != nil {
			values[k] = v
		}
	}
	return values
}
