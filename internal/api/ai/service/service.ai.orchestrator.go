package aisvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"content_studio/internal/common"
	"content_studio/internal/llm"
	"content_studio/internal/logger"
	"content_studio/internal/metrics"
)

const upstreamService = "llm"

// Tham số mặc định khi caller không truyền
const (
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 1500
	DefaultTopP             = 1.0
	DefaultFrequencyPenalty = 0.0
	DefaultPresencePenalty  = 0.0
)

// DefaultParameters bộ tham số mặc định (bản sao mới mỗi lần gọi)
func DefaultParameters() llm.Parameters {
	temperature, maxTokens, topP := DefaultTemperature, DefaultMaxTokens, DefaultTopP
	frequency, presence := DefaultFrequencyPenalty, DefaultPresencePenalty
	return llm.Parameters{
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		TopP:             &topP,
		FrequencyPenalty: &frequency,
		PresencePenalty:  &presence,
	}
}

// MergeParameters ghi đè từng key của overrides lên bộ mặc định
func MergeParameters(overrides llm.Parameters) llm.Parameters {
	merged := DefaultParameters()
	if overrides.Temperature != nil {
		v := *overrides.Temperature
		merged.Temperature = &v
	}
	if overrides.MaxTokens != nil {
		v := *overrides.MaxTokens
		merged.MaxTokens = &v
	}
	if overrides.TopP != nil {
		v := *overrides.TopP
		merged.TopP = &v
	}
	if overrides.FrequencyPenalty != nil {
		v := *overrides.FrequencyPenalty
		merged.FrequencyPenalty = &v
	}
	if overrides.PresencePenalty != nil {
		v := *overrides.PresencePenalty
		merged.PresencePenalty = &v
	}
	return merged
}

// Result kết quả sinh nội dung kèm metadata
type Result struct {
	Text             string         `json:"text"`
	Prompt           string         `json:"prompt"`
	Model            string         `json:"model"`
	Parameters       llm.Parameters `json:"parameters"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
	Usage            llm.Usage      `json:"usage"`
}

// Orchestrator gọi LLM theo template; mỗi thao tác đúng một lần gọi, không retry
type Orchestrator struct {
	client  llm.Completer
	catalog Catalog
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewOrchestrator tạo Orchestrator; catalog nil thì dùng catalog nhúng
func NewOrchestrator(client llm.Completer, catalog Catalog, m *metrics.Metrics) *Orchestrator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Orchestrator{client: client, catalog: catalog, metrics: m, now: time.Now}
}

// Catalog trả về catalog template đang dùng
func (o *Orchestrator) Catalog() Catalog {
	return o.catalog
}

// RenderPrompt chọn template theo loại và render với params (không gọi LLM)
func (o *Orchestrator) RenderPrompt(contentType string, params map[string]any) (Template, string, error) {
	tpl, ok := o.catalog[contentType]
	if !ok {
		return Template{}, "", common.NewValidationError("Loại nội dung không có template", map[string]string{"type": contentType})
	}
	prompt, err := Render(tpl.Template, valuesWithDefaults(tpl, params))
	if err != nil {
		return Template{}, "", err
	}
	return tpl, prompt, nil
}

// GenerateContent render template theo loại nội dung rồi gọi completion một lần
func (o *Orchestrator) GenerateContent(ctx context.Context, contentType string, params map[string]any, overrides llm.Parameters) (*Result, error) {
	tpl, prompt, err := o.RenderPrompt(contentType, params)
	if err != nil {
		return nil, err
	}

	merged := MergeParameters(overrides)
	messages := []llm.Message{{Role: "user", Content: prompt}}
	if tpl.System != "" {
		messages = append([]llm.Message{{Role: "system", Content: tpl.System}}, messages...)
	}

	start := o.now()
	completion, err := o.complete(ctx, "generate", messages, merged)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:             completion.Text,
		Prompt:           prompt,
		Model:            completion.Model,
		Parameters:       merged,
		ProcessingTimeMs: o.now().Sub(start).Milliseconds(),
		Usage:            completion.Usage,
	}, nil
}

// ImproveContent viết lại nội dung theo góp ý, một lần gọi
func (o *Orchestrator) ImproveContent(ctx context.Context, body, feedback string) (*Result, error) {
	prompt := fmt.Sprintf("Improve the following content based on this feedback.\n\nFeedback: %s\n\nContent:\n%s\n\nReturn only the improved content.", feedback, body)
	messages := []llm.Message{
		{Role: "system", Content: "You are an expert editor. Keep the original intent and format."},
		{Role: "user", Content: prompt},
	}
	merged := DefaultParameters()

	start := o.now()
	completion, err := o.complete(ctx, "improve", messages, merged)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:             completion.Text,
		Prompt:           prompt,
		Model:            completion.Model,
		Parameters:       merged,
		ProcessingTimeMs: o.now().Sub(start).Milliseconds(),
		Usage:            completion.Usage,
	}, nil
}

// AnalyzeSentiment yêu cầu model trả về một số trong [-1, 1].
// Phản hồi không phải số hoặc ngoài khoảng là lỗi của upstream.
func (o *Orchestrator) AnalyzeSentiment(ctx context.Context, text string) (float64, error) {
	temperature, maxTokens := 0.0, 10
	params := llm.Parameters{Temperature: &temperature, MaxTokens: &maxTokens}
	messages := []llm.Message{
		{Role: "system", Content: "Analyze the sentiment of the user's text. Respond with a single number between -1 (very negative) and 1 (very positive). Respond with the number only."},
		{Role: "user", Content: text},
	}

	completion, err := o.complete(ctx, "sentiment", messages, params)
	if err != nil {
		return 0, err
	}
	score, err := ParseSentimentScore(completion.Text)
	if err != nil {
		logger.WithModule("ai").WithField("response", completion.Text).Warn("Phản hồi sentiment không hợp lệ")
		return 0, common.NewUpstreamError(upstreamService, 0, err.Error())
	}
	return score, nil
}

// ParseSentimentScore đọc số thực trong [-1, 1] từ phản hồi của model
func ParseSentimentScore(text string) (float64, error) {
	cleaned := strings.TrimRight(strings.TrimSpace(text), ".")
	score, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("sentiment response is not numeric: %q", text)
	}
	if score < -1 || score > 1 {
		return 0, fmt.Errorf("sentiment score %v out of range [-1, 1]", score)
	}
	return score, nil
}

// complete gọi client, đo thời gian và chuyển lỗi sang UpstreamError
func (o *Orchestrator) complete(ctx context.Context, op string, messages []llm.Message, params llm.Parameters) (*llm.Completion, error) {
	start := time.Now()
	completion, err := o.client.Complete(ctx, messages, params)
	elapsed := time.Since(start)
	if err != nil {
		outcome := "error"
		if isTimeout(err) {
			outcome = "timeout"
		}
		o.metrics.ObserveUpstream(upstreamService, outcome, elapsed)
		logger.WithModule("ai").WithFields(map[string]interface{}{
			"operation": op,
			"outcome":   outcome,
			"elapsed":   elapsed.String(),
		}).WithError(err).Error("Gọi LLM thất bại")
		return nil, toUpstreamError(err)
	}
	o.metrics.ObserveUpstream(upstreamService, "ok", elapsed)
	return completion, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// toUpstreamError giữ lại status + message của provider
func toUpstreamError(err error) error {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return common.NewUpstreamError(upstreamService, apiErr.StatusCode, apiErr.Message)
	}
	if isTimeout(err) {
		return common.NewUpstreamError(upstreamService, 0, "request timed out")
	}
	return common.NewUpstreamError(upstreamService, 0, err.Error())
}
