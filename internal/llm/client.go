// Package llm là client tối giản cho API chat completion tương thích OpenAI.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message là một lượt hội thoại gửi lên model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Parameters tham số sinh văn bản. Con trỏ nil nghĩa là không gửi lên.
type Parameters struct {
	Temperature      *float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty" bson:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty" bson:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" bson:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" bson:"presence_penalty,omitempty"`
}

// Usage số token đã dùng
type Usage struct {
	PromptTokens     int `json:"prompt_tokens" bson:"promptTokens"`
	CompletionTokens int `json:"completion_tokens" bson:"completionTokens"`
	TotalTokens      int `json:"total_tokens" bson:"totalTokens"`
}

// Completion kết quả một lần gọi
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Completer được orchestrator sử dụng, cho phép thay client thật bằng bản giả trong test
type Completer interface {
	Complete(ctx context.Context, messages []Message, params Parameters) (*Completion, error)
	Model() string
}

// Config cấu hình client
type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// APIError lỗi HTTP non-2xx trả về từ provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm: unexpected status %d: %s", e.StatusCode, e.Message)
}

// ErrEmptyCompletion provider trả về 200 nhưng không có choice nào
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client gọi /chat/completions
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewClient tạo client; Timeout mặc định 10 giây
func NewClient(cfg Config) *Client {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// Model trả về tên model đang dùng
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Parameters
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete gửi một request (không stream, không retry)
func (c *Client) Complete(ctx context.Context, messages []Message, params Parameters) (*Completion, error) {
	if c.model == "" {
		return nil, errors.New("llm: model is required")
	}

	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(body))
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	model := out.Model
	if model == "" {
		model = c.model
	}
	return &Completion{
		Text:  strings.TrimSpace(out.Choices[0].Message.Content),
		Model: model,
		Usage: out.Usage,
	}, nil
}
