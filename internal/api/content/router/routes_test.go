package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	aisvc "content_studio/internal/api/ai/service"
	analyticssvc "content_studio/internal/api/analytics/service"
	authmodels "content_studio/internal/api/auth/models"
	contenthdl "content_studio/internal/api/content/handler"
	contentsvc "content_studio/internal/api/content/service"
	"content_studio/internal/api/middleware"
	"content_studio/internal/common"
	"content_studio/internal/global"
	"content_studio/internal/llm"
)

type stubGenerator struct{}

func (stubGenerator) GenerateContent(_ context.Context, _ string, params map[string]any, overrides llm.Parameters) (*aisvc.Result, error) {
	return &aisvc.Result{Text: "Đã sửa lỗi đăng nhập.", Prompt: "rendered", Model: "gpt-test", Parameters: aisvc.MergeParameters(overrides)}, nil
}

func (stubGenerator) ImproveContent(_ context.Context, body, _ string) (*aisvc.Result, error) {
	return &aisvc.Result{Text: body + " (v2)", Model: "gpt-test"}, nil
}

// stubAuth token cố định -> principal
type stubAuth map[string]authmodels.Principal

func (a stubAuth) Authenticate(_ context.Context, token string) (authmodels.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return authmodels.Principal{}, common.NewAuthenticationError("token không hợp lệ")
}

func (a stubAuth) AuthenticateAPIKey(ctx context.Context, key string) (authmodels.Principal, error) {
	return a.Authenticate(ctx, key)
}

type envelope struct {
	Code   any             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	global.InitValidator()

	company := primitive.NewObjectID()
	auth := stubAuth{
		"user-token":  {AccountID: primitive.NewObjectID(), CompanyID: company, Role: authmodels.RoleUser},
		"admin-token": {AccountID: primitive.NewObjectID(), CompanyID: company, Role: authmodels.RoleAdmin},
	}

	store := contentsvc.NewMemoryContentStore()
	analytics := analyticssvc.NewAnalyticsService(analyticssvc.NewMemoryAnalyticsStore(), store, nil, nil, nil)
	svc := contentsvc.NewContentService(contentsvc.Dependencies{
		Store:     store,
		Generator: stubGenerator{},
		Analytics: analytics,
	})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.HandleErrorResponse})
	Register(app.Group("/api/v1"), contenthdl.NewContentHandler(svc), middleware.AuthMiddleware(auth))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func generate(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/api/v1/content/generate", token, map[string]any{
		"type":   "changelog",
		"prompt": "Fix login bug",
	})
	require.Equal(t, http.StatusCreated, status)
	var content struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Version int64  `json:"version"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))
	assert.Equal(t, "draft", content.Status)
	assert.Equal(t, int64(1), content.Version)
	return content.ID
}

func TestRequiresAuthentication(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/content", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error", env.Status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/content", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGenerateAndGet(t *testing.T) {
	app := newApp(t)
	id := generate(t, app, "user-token")

	status, env := do(t, app, http.MethodGet, "/api/v1/content/"+id, "user-token", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/content/not-an-id", "user-token", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/content/"+primitive.NewObjectID().Hex(), "user-token", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerateValidation(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/v1/content/generate", "user-token", map[string]any{
		"type":   "podcast",
		"prompt": "Fix login bug",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/content/generate", "user-token", map[string]any{
		"type": "blog",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBulkRoutesAreAdminOnly(t *testing.T) {
	app := newApp(t)
	id := generate(t, app, "user-token")
	body := map[string]any{"ids": []string{id, primitive.NewObjectID().Hex()}}

	status, _ := do(t, app, http.MethodPost, "/api/v1/content/bulk/archive", "user-token", body)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := do(t, app, http.MethodPost, "/api/v1/content/bulk/archive", "admin-token", body)
	require.Equal(t, http.StatusOK, status)
	var res struct {
		Requested int64 `json:"requested"`
		Matched   int64 `json:"matched"`
		Modified  int64 `json:"modified"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(2), res.Requested)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, int64(1), res.Modified)
}

func TestEditCreatesRevision(t *testing.T) {
	app := newApp(t)
	id := generate(t, app, "user-token")

	status, _ := do(t, app, http.MethodPut, "/api/v1/content/"+id, "user-token", map[string]any{"body": "Bản mới", "changeNote": "sửa"})
	require.Equal(t, http.StatusOK, status)

	status, env := do(t, app, http.MethodGet, "/api/v1/content/"+id+"/versions", "user-token", nil)
	require.Equal(t, http.StatusOK, status)
	var versions []struct {
		Version    int64  `json:"version"`
		ChangeNote string `json:"changeNote"`
		Current    bool   `json:"current"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &versions))
	require.Len(t, versions, 2)
	assert.Equal(t, int64(2), versions[0].Version)
	assert.True(t, versions[0].Current)
	assert.Equal(t, int64(1), versions[1].Version)
	assert.Equal(t, "sửa", versions[1].ChangeNote)
}
